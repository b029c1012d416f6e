package chunker

import (
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// BuildPassages attaches document provenance to freshly cut chunks, producing
// the records the vector index stores. The chunk id doubles as the storage
// key within the category partition.
func BuildPassages(chunks []manualModel.Chunk, doc manualModel.Document) []manualModel.IndexedPassage {
	now := time.Now().UTC()
	passages := make([]manualModel.IndexedPassage, 0, len(chunks))

	language := doc.Language
	if language == "" {
		language = config.DefaultLanguage
	}

	for _, c := range chunks {
		passages = append(passages, manualModel.IndexedPassage{
			Chunk:      c,
			Manual:     doc,
			Confidence: config.DefaultConfidence,
			CreatedAt:  now,
		})
		passages[len(passages)-1].Manual.Language = language
	}
	return passages
}

// PassageMeta flattens an indexed passage into the metadata shape search
// results carry back out of the store.
func PassageMeta(p manualModel.IndexedPassage) manualModel.PassageMeta {
	return manualModel.PassageMeta{
		ManualName: p.Manual.Name,
		ManualFile: p.Manual.File,
		ManualID:   p.Manual.ID,
		Category:   p.Manual.Category,
		PageNumber: p.PageNumber,
		Section:    p.Section,
		BBox:       p.BBox,
		Confidence: p.Confidence,
		Language:   p.Manual.Language,
		ChunkIndex: p.ChunkIndex,
	}
}
