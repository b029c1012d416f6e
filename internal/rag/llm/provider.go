package llm

import "context"

// Provider abstracts the generation model. Generate returns the whole
// answer at once; GenerateStream hands text deltas to onDelta as they
// arrive and returns the concatenated answer. A non-nil onDelta error
// aborts the stream.
type Provider interface {
	Generate(ctx context.Context, systemInstruction string, prompt string) (string, error)
	GenerateStream(ctx context.Context, systemInstruction string, prompt string, onDelta func(delta string) error) (string, error)
}
