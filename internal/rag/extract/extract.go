package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/pkg/logx"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var logger = logx.NewLogger("Extractor")

// Page is the extraction output for one document page: ordered positioned
// spans plus the page box needed later for coordinate mapping.
type Page struct {
	Number int
	Width  float64
	Height float64
	Spans  []manualModel.TextSpan
}

// Result covers one whole document. SkippedPages counts pages that could not
// be parsed - unreadable pages are skipped, never fatal to the document.
type Result struct {
	Pages        []Page
	SkippedPages int
}

// Spans flattens all pages into the ordered span list the chunker consumes.
func (r Result) Spans() []manualModel.TextSpan {
	var spans []manualModel.TextSpan
	for _, p := range r.Pages {
		spans = append(spans, p.Spans...)
	}
	return spans
}

// ExtractDocument dispatches on file extension. PDFs keep their geometry;
// everything cat can read degrades to a single synthetic page without
// coordinates.
func ExtractDocument(path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ExtractPDF(path)
	case ".docx", ".txt", ".rtf", ".odt":
		return extractPlainText(path)
	default:
		return Result{}, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

// ExtractPDF walks every page, recording each text run with its bbox in the
// PDF's own coordinate space (origin bottom-left, 1.0 scale). That space is
// preserved verbatim: the coordinate mapper depends on it.
func ExtractPDF(path string) (Result, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open pdf: %w", err)
	}

	var res Result
	numPages := f.NumPage()
	logger.Debug("extractPDF", "path", path, "pages", numPages)

	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			res.SkippedPages++
			continue
		}

		extracted, err := protectExtractPage(page, i)
		if err != nil {
			logger.Error("skipping unreadable page", "page", i, "error", err)
			res.SkippedPages++
			continue
		}
		if len(extracted.Spans) == 0 {
			continue
		}
		res.Pages = append(res.Pages, extracted)
	}
	return res, nil
}

// extractPlainText reads a .docx/.txt/.rtf/.odt file as one synthetic page.
// No geometry is available, so spans carry a zero bbox and highlights for
// these manuals degrade to page-level.
func extractPlainText(path string) (Result, error) {
	text, err := cat.File(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract document text: %w", err)
	}

	var spans []manualModel.TextSpan
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		spans = append(spans, manualModel.TextSpan{
			Text:       para,
			PageNumber: 1,
			BlockType:  manualModel.BlockText,
		})
	}
	if len(spans) == 0 {
		return Result{}, nil
	}
	return Result{Pages: []Page{{Number: 1, Spans: spans}}}, nil
}
