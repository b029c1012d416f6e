package extract

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/dslipak/pdf"
)

const pageExtractTimeout = 10 * time.Second

// baselineTolerance groups text runs onto the same visual line despite small
// baseline jitter from kerning or sub/superscripts.
const baselineTolerance = 2.0

// protectExtractPage guards a single page parse with a recover and a timeout.
// The pdf library panics on some malformed content streams; a bad page must
// not take down the whole document.
func protectExtractPage(page pdf.Page, number int) (Page, error) {
	type result struct {
		page Page
		err  error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page content panic: %v", r)}
			}
		}()
		p, err := extractPage(page, number)
		resChan <- result{page: p, err: err}
	}()

	select {
	case r := <-resChan:
		return r.page, r.err
	case <-time.After(pageExtractTimeout):
		return Page{}, errors.New("page extraction timeout")
	}
}

func extractPage(page pdf.Page, number int) (Page, error) {
	width, height := pageSize(page)
	content := page.Content()

	out := Page{Number: number, Width: width, Height: height}

	// The library yields individual text runs; consecutive runs sharing a
	// baseline and font are merged into one span so the bbox covers the
	// whole visual line fragment.
	var current *manualModel.TextSpan
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}

		runBox := manualModel.BBox{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + t.FontSize}

		if current != nil &&
			current.FontName == t.Font &&
			math.Abs(current.BBox.Y0-t.Y) <= baselineTolerance {
			current.Text += t.S
			current.BBox = current.BBox.Union(runBox)
			continue
		}

		if current != nil {
			flushSpan(&out, current)
		}
		current = &manualModel.TextSpan{
			Text:       t.S,
			BBox:       runBox,
			PageNumber: number,
			FontSize:   t.FontSize,
			FontName:   t.Font,
		}
	}
	if current != nil {
		flushSpan(&out, current)
	}

	return out, nil
}

func flushSpan(p *Page, span *manualModel.TextSpan) {
	span.Text = strings.TrimSpace(span.Text)
	if span.Text == "" {
		return
	}
	span.BlockType = Classify(span.FontSize, span.FontName)
	p.Spans = append(p.Spans, *span)
}

func pageSize(page pdf.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return 0, 0
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	return x1 - x0, y1 - y0
}
