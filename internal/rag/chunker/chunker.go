package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// Config controls chunk assembly. Overlap is counted in blocks, not tokens:
// the chunker never splits inside a block (splitting would destroy bbox
// fidelity), so block-count overlap composes cleanly with bbox unions.
type Config struct {
	ChunkSize     int //token proxy budget per chunk
	OverlapBlocks int //trailing blocks re-seeded into the next chunk
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:     config.ChunkSizeTokens,
		OverlapBlocks: config.ChunkOverlapBlocks,
	}
}

// ChunkSpans greedily packs the ordered span list into chunks. A chunk is
// closed when the next span would push the running token count over the
// budget; a single span larger than the budget still becomes its own chunk.
// Chunk ids are content hashes, so re-ingesting an unchanged document
// produces identical ids and upserts dedupe instead of duplicating.
func ChunkSpans(spans []manualModel.TextSpan, cfg Config) []manualModel.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = config.ChunkSizeTokens
	}

	positions := charPositions(spans)

	var chunks []manualModel.Chunk
	var buffer []int //indices into spans
	runningTokens := 0
	chunkIndex := 0

	for i, span := range spans {
		tokens := tokenCount(span.Text)

		if runningTokens+tokens > cfg.ChunkSize && len(buffer) > 0 {
			chunks = append(chunks, buildChunk(spans, positions, buffer, chunkIndex))
			chunkIndex++

			buffer = overlapTail(buffer, cfg.OverlapBlocks)
			runningTokens = 0
			for _, j := range buffer {
				runningTokens += tokenCount(spans[j].Text)
			}
			// the reseed may never consume more than half the budget, or
			// chunks stop advancing and the index fills with near-copies
			for len(buffer) > 0 && runningTokens*2 > cfg.ChunkSize {
				runningTokens -= tokenCount(spans[buffer[0]].Text)
				buffer = buffer[1:]
			}
		}

		buffer = append(buffer, i)
		runningTokens += tokens
	}

	if len(buffer) > 0 {
		chunks = append(chunks, buildChunk(spans, positions, buffer, chunkIndex))
	}

	return chunks
}

func buildChunk(spans []manualModel.TextSpan, positions []charPos, buffer []int, index int) manualModel.Chunk {
	parts := make([]string, 0, len(buffer))
	for _, i := range buffer {
		parts = append(parts, spans[i].Text)
	}
	text := strings.Join(parts, " ")

	first := spans[buffer[0]]

	section := ""
	for _, i := range buffer {
		if spans[i].BlockType == manualModel.BlockHeading {
			section = spans[i].Text
			break
		}
	}

	// bbox is the union of member spans on the chunk's page; spans that
	// spill onto the next page do not stretch the highlight rectangle.
	var bbox manualModel.BBox
	for _, i := range buffer {
		if spans[i].PageNumber == first.PageNumber {
			bbox = bbox.Union(spans[i].BBox)
		}
	}

	return manualModel.Chunk{
		ID:         ChunkID(text),
		Text:       text,
		PageNumber: first.PageNumber,
		Section:    section,
		ChunkIndex: index,
		BBox:       bbox,
		StartChar:  positions[buffer[0]].start,
		EndChar:    positions[buffer[len(buffer)-1]].end,
	}
}

// ChunkID is a short deterministic content hash: stable citation identity
// and dedup key within a category partition.
func ChunkID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}

// tokenCount is the intentionally coarse token proxy: whitespace fields, not
// a real tokenizer.
func tokenCount(text string) int {
	return len(strings.Fields(text))
}

func overlapTail(buffer []int, overlap int) []int {
	if overlap <= 0 {
		return nil
	}
	if len(buffer) <= overlap {
		return append([]int(nil), buffer...)
	}
	return append([]int(nil), buffer[len(buffer)-overlap:]...)
}

type charPos struct{ start, end int }

func charPositions(spans []manualModel.TextSpan) []charPos {
	positions := make([]charPos, len(spans))
	pos := 0
	for i, span := range spans {
		positions[i] = charPos{start: pos, end: pos + len(span.Text)}
		pos += len(span.Text)
	}
	return positions
}
