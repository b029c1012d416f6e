package highlight

import "github.com/avolpe/manualchat/internal/domain/manualModel"

// Rect is an overlay rectangle in renderer space: origin top-left, pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapToCanvas projects a stored PDF-space bbox (origin bottom-left) onto a
// page rendered at the given pixel scale. pageHeight is the page height in
// PDF units at 1.0 scale. The Y flip happens here and must be re-applied on
// every render - the result is scale-specific and must never be cached
// across a zoom change.
func MapToCanvas(bbox manualModel.BBox, scale, pageHeight float64) Rect {
	return Rect{
		X:      bbox.X0 * scale,
		Y:      (pageHeight - bbox.Y1) * scale,
		Width:  (bbox.X1 - bbox.X0) * scale,
		Height: (bbox.Y1 - bbox.Y0) * scale,
	}
}

// MapToPage inverts MapToCanvas, recovering the PDF-space bbox from an
// overlay rectangle at a known scale.
func MapToPage(r Rect, scale, pageHeight float64) manualModel.BBox {
	x0 := r.X / scale
	y1 := pageHeight - r.Y/scale
	return manualModel.BBox{
		X0: x0,
		Y0: y1 - r.Height/scale,
		X1: x0 + r.Width/scale,
		Y1: y1,
	}
}
