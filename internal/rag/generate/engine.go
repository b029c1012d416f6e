package generate

import (
	"context"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/rag/llm"
	"github.com/avolpe/manualchat/internal/rag/ragerr"
	"github.com/avolpe/manualchat/pkg/logx"
)

// NoResultsAnswer is returned without touching the model when retrieval
// produced nothing above the similarity threshold. Zero matches is a
// valid outcome, not an error.
const NoResultsAnswer = "I couldn't find any relevant information in the documentation for your query. Try rephrasing your question or check if documents have been uploaded."

// Result is one complete generated answer with everything derived from
// it and from the context that produced it.
type Result struct {
	Answer     string
	Sources    []manualModel.SourceRef
	Citations  []manualModel.Citation
	Confidence float64
	Actions    []manualModel.Action
}

// Engine turns an enriched query plus ranked context passages into a
// cited answer. The provider is injected so tests can run without a
// live model.
type Engine struct {
	provider llm.Provider
	logger   *logx.Logger
}

func NewEngine(provider llm.Provider) *Engine {
	return &Engine{
		provider: provider,
		logger:   logx.NewLogger("generate"),
	}
}

// Answer runs one batch generation call.
func (e *Engine) Answer(ctx context.Context, category string, query string, passages []manualModel.RankedResult) (*Result, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if len(passages) == 0 {
		log.Debug("no passages above threshold, answering without model")
		return e.noResults(), nil
	}

	answer, err := e.provider.Generate(ctx, SystemInstruction(category), BuildPrompt(query, passages))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ErrGeneration, err)
	}
	return e.finish(answer, passages), nil
}

// AnswerStream streams the model output through onDelta and returns the
// same Result a batch call would have produced for the full text. When
// the stream dies partway the partial result is NOT returned - the
// caller must not frame a final event over inconsistent state.
func (e *Engine) AnswerStream(ctx context.Context, category string, query string, passages []manualModel.RankedResult, onDelta func(delta string) error) (*Result, error) {
	if len(passages) == 0 {
		res := e.noResults()
		if err := onDelta(res.Answer); err != nil {
			return nil, err
		}
		return res, nil
	}

	answer, err := e.provider.GenerateStream(ctx, SystemInstruction(category), BuildPrompt(query, passages), onDelta)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.ErrGeneration, err)
	}
	return e.finish(answer, passages), nil
}

// FromAnswer derives the full result for an answer that already exists,
// used when the answer cache short-circuits generation. Sources,
// citations and confidence still come from this query's own retrieval.
func (e *Engine) FromAnswer(answer string, passages []manualModel.RankedResult) *Result {
	return e.finish(answer, passages)
}

func (e *Engine) finish(answer string, passages []manualModel.RankedResult) *Result {
	return &Result{
		Answer:     answer,
		Sources:    BuildSources(passages),
		Citations:  BuildCitations(passages),
		Confidence: Confidence(passages),
		Actions:    DetectActions(answer),
	}
}

func (e *Engine) noResults() *Result {
	return &Result{
		Answer:     NoResultsAnswer,
		Sources:    []manualModel.SourceRef{},
		Citations:  []manualModel.Citation{},
		Confidence: 0.0,
		Actions:    nil,
	}
}
