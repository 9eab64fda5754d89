package render

import (
	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/ir/semantic"
)

// Surface owns the paginated drawing surface: page dimensions, margins and
// the current write cursor. Callers work in top-down coordinates (y grows
// downward from the top edge of the page); the surface converts to PDF
// user space when issuing draws. It performs no layout itself, only
// bookkeeping and the overflow check.
type Surface struct {
	b       builder.PDFBuilder
	page    builder.PageBuilder
	pageW   float64
	pageH   float64
	margins Margins

	y         float64 // cursor: offset from page top
	pageIndex int
}

func newSurface(b builder.PDFBuilder, size builder.PaperSize, margins Margins) *Surface {
	s := &Surface{b: b, pageW: size.Width, pageH: size.Height, margins: margins}
	s.page = b.NewPage(s.pageW, s.pageH)
	s.y = margins.Top
	return s
}

// Y returns the current cursor offset from the page top.
func (s *Surface) Y() float64 { return s.y }

// SetY moves the cursor to an absolute top offset.
func (s *Surface) SetY(y float64) { s.y = y }

// Advance moves the cursor down.
func (s *Surface) Advance(h float64) { s.y += h }

// PageIndex returns the zero-based index of the active page.
func (s *Surface) PageIndex() int { return s.pageIndex }

// Left returns the left content edge.
func (s *Surface) Left() float64 { return s.margins.Left }

// Right returns the right content edge.
func (s *Surface) Right() float64 { return s.pageW - s.margins.Right }

// Bottom returns the lowest writable top offset.
func (s *Surface) Bottom() float64 { return s.pageH - s.margins.Bottom }

// ContentWidth is the usable horizontal drawing area.
func (s *Surface) ContentWidth() float64 { return s.pageW - s.margins.Left - s.margins.Right }

// Fits reports whether required height still fits above the bottom
// margin at the current cursor.
func (s *Surface) Fits(required float64) bool {
	return s.y+required <= s.Bottom()
}

// EnsureSpace checks whether required height still fits above the bottom
// margin. If not it breaks the page, resets the cursor to the top margin
// and reports true so the caller can re-materialize per-page chrome. Page
// creation is irreversible within a render.
func (s *Surface) EnsureSpace(required float64) bool {
	if s.Fits(required) {
		return false
	}
	s.BreakPage()
	return true
}

// Finish closes the active page. The surface must not be drawn to
// afterwards.
func (s *Surface) Finish() {
	s.page.Finish()
}

// BreakPage unconditionally starts a new page.
func (s *Surface) BreakPage() {
	s.page.Finish()
	s.page = s.b.NewPage(s.pageW, s.pageH)
	s.pageIndex++
	s.y = s.margins.Top
}

// MeasureText reports text width via the underlying builder's font
// metrics.
func (s *Surface) MeasureText(text string, fontSize float64, fontName string) float64 {
	return s.b.MeasureText(text, fontSize, fontName)
}

// Text draws text whose ascent box starts at top offset y.
func (s *Surface) Text(text string, x, y float64, opts builder.TextOptions) {
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}
	s.page.DrawText(text, x, s.pageH-y-size, opts)
}

// Rect draws a rectangle whose top edge sits at top offset y.
func (s *Surface) Rect(x, y, w, h float64, opts builder.RectOptions) {
	s.page.DrawRectangle(x, s.pageH-y-h, w, h, opts)
}

// Line draws a line between two points given in top-down coordinates.
func (s *Surface) Line(x1, y1, x2, y2 float64, opts builder.LineOptions) {
	s.page.DrawLine(x1, s.pageH-y1, x2, s.pageH-y2, opts)
}

// Image places an image whose top edge sits at top offset y.
func (s *Surface) Image(img *semantic.Image, x, y, w, h float64) {
	s.page.DrawImage(img, x, s.pageH-y-h, w, h, builder.ImageOptions{Interpolate: true})
}
