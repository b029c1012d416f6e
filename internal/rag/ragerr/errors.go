package ragerr

import "fmt"

// Sentinel-style wrapped errors, one per pipeline stage, so handlers can
// map a failure to the right status code with errors.Is.
var (
	ErrExtraction = fmt.Errorf("document extraction failed")
	ErrEmbedding  = fmt.Errorf("embedding service failed")
	ErrGeneration = fmt.Errorf("generation service failed")
	ErrVectorDB   = fmt.Errorf("vector store unavailable")
)

// Wrap attaches a stage sentinel to a cause without losing either.
func Wrap(stage error, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", stage, cause)
}
