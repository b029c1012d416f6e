package rag

import (
	"context"
	"strings"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/metrics"
	"github.com/avolpe/manualchat/internal/rag/generate"
	"github.com/avolpe/manualchat/internal/rag/queryproc"
	"github.com/avolpe/manualchat/internal/rag/ragerr"
	"github.com/avolpe/manualchat/pkg/logx"
	"github.com/google/uuid"
)

// prepared is everything the generation engine needs, resolved once and
// shared by the batch and streaming paths.
type prepared struct {
	enriched string
	vector   []float32
	context  []manualModel.RankedResult
}

// prepare runs the query half of the pipeline: normalize, resolve the
// conversation, enrich with history, embed, retrieve, rerank, select.
// It also fills in a fresh conversation id on the input when the client
// did not send one.
func (s *service) prepare(ctx context.Context, log *logx.Logger, in *QueryInput) (*prepared, error) {
	in.Question = queryproc.Preprocess(in.Question)

	if in.ConversationID == "" {
		in.ConversationID = uuid.NewString()
		if err := s.conversations.InitConversation(ctx, in.ConversationID); err != nil {
			log.Error("could not init conversation", "error", err)
		}
	}

	enriched := in.Question
	if in.MemoryEnabled {
		history := s.history(ctx, log, in.ConversationID)
		enriched = queryproc.EnrichQuery(in.Question, history)
	}

	embedStart := time.Now()
	vector, err := s.embedder.GetEmbedding(ctx, enriched)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ErrEmbedding, err)
	}

	searchStart := time.Now()
	hits, err := queryproc.Retrieve(ctx, s.vectorDB, vector, in.Category)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(searchStart))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ErrVectorDB, err)
	}

	// rerank against the same enriched query that was embedded, so the
	// lexical signal sees the conversation context too
	ranked := queryproc.Rerank(enriched, hits)
	if len(ranked) > config.ContextChunks {
		ranked = ranked[:config.ContextChunks]
	}
	log.Debug("query prepared", "hits", len(hits), "context", len(ranked))

	return &prepared{enriched: enriched, vector: vector, context: ranked}, nil
}

// checkCache asks the answer cache for a near-duplicate query. Cache
// failures degrade to a miss - the cache may never fail a query.
func (s *service) checkCache(ctx context.Context, log *logx.Logger, vector []float32) (string, bool) {
	start := time.Now()
	answer, found, err := s.vectorDB.GetCachedAnswer(ctx, vector)
	metrics.CaptureExecutionMetrics("answer_cache", time.Since(start))
	if err != nil {
		log.Error("answer cache lookup failed", "error", err)
		return "", false
	}
	return answer, found
}

// saveToCache records a freshly generated answer, best effort.
func (s *service) saveToCache(ctx context.Context, log *logx.Logger, vector []float32, answer string) {
	if err := s.vectorDB.SaveToCache(ctx, uuid.NewString(), vector, answer); err != nil {
		log.Error("answer cache save failed", "error", err)
	}
}

// finish derives the output payload and, when memory is on, records the
// exchange. Persistence is best effort: a conversation store outage must
// not lose an already generated answer.
func (s *service) finish(ctx context.Context, log *logx.Logger, in QueryInput, result *generate.Result) *QueryOutput {
	out := &QueryOutput{
		Answer:         result.Answer,
		Sources:        result.Sources,
		Citations:      result.Citations,
		Confidence:     result.Confidence,
		Actions:        result.Actions,
		MessageID:      newMessageID(),
		ConversationID: in.ConversationID,
	}

	if in.MemoryEnabled {
		now := time.Now().UTC()
		userMsg := convModel.Message{
			ID:        newMessageID(),
			Role:      convModel.RoleUser,
			Content:   in.Question,
			CreatedAt: now,
		}
		assistantMsg := convModel.Message{
			ID:        out.MessageID,
			Role:      convModel.RoleAssistant,
			Content:   out.Answer,
			Citations: out.Citations,
			Actions:   out.Actions,
			CreatedAt: now,
		}
		if err := s.conversations.AppendMessage(ctx, in.ConversationID, userMsg); err != nil {
			log.Error("could not persist user message", "error", err)
		} else if err := s.conversations.AppendMessage(ctx, in.ConversationID, assistantMsg); err != nil {
			log.Error("could not persist assistant message", "error", err)
		}
	}

	return out
}

// history fetches the last few exchanges, oldest first. Store failures
// degrade to an empty history rather than failing the query.
func (s *service) history(ctx context.Context, log *logx.Logger, conversationID string) []convModel.Message {
	msgs, err := s.conversations.History(ctx, conversationID, config.MemoryExchanges*2)
	if err != nil {
		log.Error("could not load conversation history", "error", err)
		return nil
	}
	return msgs
}

func newMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
