package extract

import (
	"strings"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

const (
	headingMinFontSize = 14.0
	captionMaxFontSize = 9.0
)

// Classify assigns a block type purely from formatting: large or bold runs
// are headings, small runs captions, everything else body text. Pure
// function of (fontSize, fontName) so classification is deterministic.
func Classify(fontSize float64, fontName string) manualModel.BlockType {
	if fontSize > headingMinFontSize || strings.Contains(strings.ToLower(fontName), "bold") {
		return manualModel.BlockHeading
	}
	if fontSize > 0 && fontSize < captionMaxFontSize {
		return manualModel.BlockCaption
	}
	return manualModel.BlockText
}
