package rag

import (
	"context"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/metrics"
	"github.com/avolpe/manualchat/internal/rag/embedding"
	"github.com/avolpe/manualchat/internal/rag/generate"
	"github.com/avolpe/manualchat/internal/rag/ingest"
	"github.com/avolpe/manualchat/internal/rag/llm"
	"github.com/avolpe/manualchat/internal/rag/ragerr"
	"github.com/avolpe/manualchat/internal/rag/vectorDB"
	"github.com/avolpe/manualchat/internal/stream"
	"github.com/avolpe/manualchat/pkg/logx"
)

// QueryInput is one chat turn as the handlers hand it down.
type QueryInput struct {
	Question       string
	ConversationID string
	Category       string
	MemoryEnabled  bool
}

// QueryOutput is one answered chat turn.
type QueryOutput struct {
	Answer         string
	Sources        []manualModel.SourceRef
	Citations      []manualModel.Citation
	Confidence     float64
	Actions        []manualModel.Action
	MessageID      string
	ConversationID string
}

// Service is the only thing the transport layer and the worker see. The
// vector store, model clients and conversation store stay behind it so
// tests can swap in doubles.
type Service interface {
	ProcessQuery(ctx context.Context, in QueryInput) (*QueryOutput, error)
	StreamQuery(ctx context.Context, in QueryInput, w *stream.Writer) error
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	DeleteCategory(ctx context.Context, category string) error
	DeleteManual(ctx context.Context, category string, manualID string) error
}

type service struct {
	vectorDB      vectorDB.DataProcessor
	llmProvider   llm.Provider
	embedder      embedding.Embedder
	conversations convModel.ConversationStore
	engine        *generate.Engine
	logger        *logx.Logger
}

// NewService wires the pipeline together. Every dependency is injected,
// constructed once by the caller and shared.
func NewService(vector vectorDB.DataProcessor, provider llm.Provider, em embedding.Embedder, conversations convModel.ConversationStore) Service {
	return &service{
		vectorDB:      vector,
		llmProvider:   provider,
		embedder:      em,
		conversations: conversations,
		engine:        generate.NewEngine(provider),
		logger:        logx.NewLogger("RAG Service :"),
	}
}

// ProcessQuery answers one question in batch mode: the full pipeline
// runs and the complete answer comes back in a single response.
func (s *service) ProcessQuery(ctx context.Context, in QueryInput) (*QueryOutput, error) {
	start := time.Now()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	prep, err := s.prepare(ctx, log, &in)
	if err != nil {
		metrics.CaptureJobMetrics("error", time.Since(start))
		return nil, err
	}

	var result *generate.Result
	if cached, hit := s.cacheLookup(ctx, log, prep); hit {
		result = s.engine.FromAnswer(cached, prep.context)
	} else {
		genStart := time.Now()
		result, err = s.engine.Answer(ctx, in.Category, prep.enriched, prep.context)
		metrics.CaptureExecutionMetrics("llm_generation", time.Since(genStart))
		if err != nil {
			metrics.CaptureJobMetrics("error", time.Since(start))
			return nil, err
		}
		if len(prep.context) > 0 {
			s.saveToCache(ctx, log, prep.vector, result.Answer)
		}
	}

	out := s.finish(ctx, log, in, result)
	metrics.CaptureJobMetrics("success", time.Since(start))
	return out, nil
}

// StreamQuery answers one question over an NDJSON stream: metadata goes
// out as soon as retrieval resolves, content deltas follow as the model
// produces them, and the final frame carries actions and the message id.
// On any failure after metadata the stream terminates without a final
// frame - the client treats that as an aborted answer.
func (s *service) StreamQuery(ctx context.Context, in QueryInput, w *stream.Writer) error {
	start := time.Now()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	prep, err := s.prepare(ctx, log, &in)
	if err != nil {
		metrics.CaptureJobMetrics("error", time.Since(start))
		return err
	}

	if err := w.Metadata(in.ConversationID, generate.BuildSources(prep.context)); err != nil {
		return err
	}

	genStart := time.Now()
	result, err := s.engine.AnswerStream(ctx, in.Category, prep.enriched, prep.context, w.Content)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(genStart))
	if err != nil {
		log.Error("streaming generation aborted", "error", err)
		metrics.CaptureJobMetrics("error", time.Since(start))
		return err
	}

	out := s.finish(ctx, log, in, result)
	if err := w.Final(out.MessageID, out.Actions, out.Confidence); err != nil {
		return err
	}
	metrics.CaptureJobMetrics("success", time.Since(start))
	return nil
}

// IngestDocument runs one uploaded manual through extraction, chunking,
// embedding and indexing. Called from the worker pool, never inline with
// a request.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.vectorDB)
}

// cacheLookup consults the answer cache only when retrieval produced
// context: a no-context answer is cheap to regenerate and caching it
// would pin "nothing found" past the next ingestion.
func (s *service) cacheLookup(ctx context.Context, log *logx.Logger, prep *prepared) (string, bool) {
	if len(prep.context) == 0 {
		return "", false
	}
	return s.checkCache(ctx, log, prep.vector)
}

// DeleteCategory drops every passage in one category partition at once.
func (s *service) DeleteCategory(ctx context.Context, category string) error {
	if err := s.vectorDB.DeleteCategory(ctx, category); err != nil {
		return ragerr.Wrap(ragerr.ErrVectorDB, err)
	}
	return nil
}

func (s *service) DeleteManual(ctx context.Context, category string, manualID string) error {
	if err := s.vectorDB.DeleteManual(ctx, category, manualID); err != nil {
		return ragerr.Wrap(ragerr.ErrVectorDB, err)
	}
	return nil
}
