package generate

import (
	"fmt"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// BuildCitations synthesizes one citation per supplied context passage,
// in context order. The model's own bracket markers are ignored on
// purpose: a hallucinated or omitted [n] must never change which pages
// the client can highlight.
func BuildCitations(passages []manualModel.RankedResult) []manualModel.Citation {
	citations := make([]manualModel.Citation, 0, len(passages))
	for i, p := range passages {
		citations = append(citations, manualModel.Citation{
			ID:         fmt.Sprintf("cite_%d", i+1),
			Source:     sourceRef(p),
			QuotedText: quoted(p.Text),
		})
	}
	return citations
}

// BuildSources flattens the context passages into the source list sent
// ahead of the answer, same order as the citations.
func BuildSources(passages []manualModel.RankedResult) []manualModel.SourceRef {
	sources := make([]manualModel.SourceRef, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, sourceRef(p))
	}
	return sources
}

// Confidence scores an answer from retrieval quality alone, never from
// the generated text: mean similarity of the context passages, +0.1 when
// three or more sources back the answer, capped at 0.95. No context
// means no confidence.
func Confidence(passages []manualModel.RankedResult) float64 {
	if len(passages) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, p := range passages {
		sum += p.Similarity
	}
	confidence := sum / float64(len(passages))

	if len(passages) >= 3 {
		confidence += 0.1
	}
	if confidence > 0.95 {
		return 0.95
	}
	return confidence
}

func sourceRef(p manualModel.RankedResult) manualModel.SourceRef {
	return manualModel.SourceRef{
		ManualName: p.Meta.ManualName,
		ManualFile: p.Meta.ManualFile,
		PageNumber: p.Meta.PageNumber,
		Section:    p.Meta.Section,
		BBox:       p.Meta.BBox,
		Confidence: p.Similarity,
	}
}

func quoted(text string) string {
	runes := []rune(text)
	if len(runes) <= config.QuotedTextLimit {
		return text
	}
	return string(runes[:config.QuotedTextLimit])
}
