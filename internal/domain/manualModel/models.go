package manualModel

import "time"

type BlockType string

const (
	BlockHeading BlockType = "heading"
	BlockText    BlockType = "text"
	BlockCaption BlockType = "caption"
	BlockList    BlockType = "list"
	BlockTable   BlockType = "table"
)

// BBox is an axis-aligned rectangle in PDF page space: origin bottom-left,
// Y increasing upward, captured at 1.0 scale. It is stored verbatim so a
// citation can later be projected back onto a rendered page.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union grows the box to cover other. The zero BBox acts as identity.
func (b BBox) Union(other BBox) BBox {
	if b.IsZero() {
		return other
	}
	if other.IsZero() {
		return b
	}
	if other.X0 < b.X0 {
		b.X0 = other.X0
	}
	if other.Y0 < b.Y0 {
		b.Y0 = other.Y0
	}
	if other.X1 > b.X1 {
		b.X1 = other.X1
	}
	if other.Y1 > b.Y1 {
		b.Y1 = other.Y1
	}
	return b
}

func (b BBox) IsZero() bool {
	return b.X0 == 0 && b.Y0 == 0 && b.X1 == 0 && b.Y1 == 0
}

// TextSpan is one positioned run of text on a page. Immutable once extracted.
type TextSpan struct {
	Text       string    `json:"text"`
	BBox       BBox      `json:"bbox"`
	PageNumber int       `json:"page_number"`
	FontSize   float64   `json:"font_size"`
	FontName   string    `json:"font_name"`
	BlockType  BlockType `json:"block_type"`
}

// Document identifies one ingested manual.
type Document struct {
	ID         string    `json:"manual_id"`
	Name       string    `json:"manual_name"`
	File       string    `json:"manual_file"`
	Category   string    `json:"category"`
	Language   string    `json:"language"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is the retrieval granule: a bounded run of span text with its page
// provenance. Created once during ingestion, never mutated.
type Chunk struct {
	ID         string `json:"id"` //short content hash, stable across re-ingestion
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	Section    string `json:"section,omitempty"`
	ChunkIndex int    `json:"chunk_index"`
	BBox       BBox   `json:"bbox"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
}

// IndexedPassage is a Chunk plus the metadata it is stored under in a
// category partition of the vector store.
type IndexedPassage struct {
	Chunk
	Manual     Document  `json:"manual"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// PassageMeta is the metadata half of a search hit.
type PassageMeta struct {
	ManualName string  `json:"manual_name"`
	ManualFile string  `json:"manual_file"`
	ManualID   string  `json:"manual_id"`
	Category   string  `json:"category"`
	PageNumber int     `json:"page_number"`
	Section    string  `json:"section,omitempty"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	ChunkIndex int     `json:"chunk_index"`
}

// RetrievalResult is one search hit above the similarity threshold.
// Ephemeral, never persisted.
type RetrievalResult struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Meta       PassageMeta `json:"metadata"`
	Similarity float64     `json:"similarity"`
}

// RankedResult carries the blended rerank score next to the raw hit.
type RankedResult struct {
	RetrievalResult
	RerankScore float64 `json:"rerank_score"`
}

// SourceRef is the part of a citation a client needs to render a highlight.
type SourceRef struct {
	ManualName string  `json:"manual_name"`
	ManualFile string  `json:"manual_file"`
	PageNumber int     `json:"page_number"`
	Section    string  `json:"section,omitempty"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// Citation ties a quoted passage to its on-page location. Synthesized
// positionally from the context supplied to the model, one per passage.
type Citation struct {
	ID         string    `json:"id"`
	Source     SourceRef `json:"source"`
	QuotedText string    `json:"quoted_text"`
}

// Action is a suggested follow-up derived from the answer text.
type Action struct {
	Type   string            `json:"type"`
	Label  string            `json:"label"`
	Params map[string]string `json:"params,omitempty"`
}
