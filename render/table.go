package render

import (
	"context"

	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/ir/semantic"
)

// tableColumn describes one column of the line-item table.
type tableColumn struct {
	title  string
	weight float64
	align  Align
}

// lineItemColumns is the fixed column set, widths as weights scaled to the
// content width at draw time.
var lineItemColumns = []tableColumn{
	{title: "", weight: 1.0, align: AlignCenter}, // product image
	{title: "ITEM / SKU", weight: 1.6, align: AlignCenter},
	{title: "DESCRIPTION", weight: 2.7, align: AlignLeft},
	{title: "COLOR", weight: 1.0, align: AlignLeft},
	{title: "UNIT PRICE", weight: 1.2, align: AlignLeft},
	{title: "QTY", weight: 0.8, align: AlignLeft},
	{title: "TOTAL", weight: 1.2, align: AlignLeft},
}

var (
	tableBorder = builder.Color{R: 0.45, G: 0.45, B: 0.45}
	headerFill  = builder.Color{R: 0.90, G: 0.90, B: 0.90}
	zebraFill   = builder.Color{R: 0.965, G: 0.965, B: 0.965}
)

const borderWidth = 0.6

// lineItemTable draws the item grid with cross-page continuation. Inner
// column separators are drawn row by row; the outer left/right rails are
// drawn once per page segment, and the bottom rule only when the true last
// row's bottom edge is known. The header band is never repeated.
type lineItemTable struct {
	s        *Surface
	opts     Options
	pipeline *imagePipeline

	xs     []float64 // column edges, len(columns)+1
	segTop float64   // top of the open border segment on the current page

	// lastBottom is the bottom edge of the final row, recorded so the
	// closure invariant is observable by callers and tests.
	lastBottom float64
}

func newLineItemTable(s *Surface, opts Options, pipeline *imagePipeline) *lineItemTable {
	var total float64
	for _, c := range lineItemColumns {
		total += c.weight
	}
	xs := make([]float64, 0, len(lineItemColumns)+1)
	x := s.Left()
	xs = append(xs, x)
	for _, c := range lineItemColumns {
		x += s.ContentWidth() * c.weight / total
		xs = append(xs, x)
	}
	// Absorb float drift so the right rail sits exactly on the margin.
	xs[len(xs)-1] = s.Right()
	return &lineItemTable{s: s, opts: opts, pipeline: pipeline, xs: xs}
}

func (t *lineItemTable) colWidth(i int) float64 { return t.xs[i+1] - t.xs[i] }

// draw renders the full table. An empty item list draws nothing at all,
// not even the header band.
func (t *lineItemTable) draw(ctx context.Context, items []LineItem) {
	if len(items) == 0 {
		return
	}
	items = sortedItems(items)

	headerH := t.opts.BodySize + 2*cellPadding
	// Never strand the header band alone at the page bottom.
	t.s.EnsureSpace(headerH + t.minRowHeight())
	t.segTop = t.s.Y()
	t.hline(t.segTop)
	t.drawHeader(headerH)

	for i, item := range items {
		t.drawRow(ctx, i, item, items)
	}

	// All rows are placed; close the outer border at the final row's
	// bottom edge.
	t.lastBottom = t.s.Y()
	t.rails(t.segTop, t.lastBottom)
	t.hline(t.lastBottom)
}

func (t *lineItemTable) minRowHeight() float64 {
	return t.opts.CellImageMax + 2*cellPadding
}

func (t *lineItemTable) drawHeader(headerH float64) {
	s := t.s
	top := s.Y()
	s.Rect(s.Left(), top, s.ContentWidth(), headerH, builder.RectOptions{
		Fill:      true,
		FillColor: headerFill,
	})
	for i, c := range lineItemColumns {
		if c.title != "" {
			off := AlignOffset(s, c.title, t.colWidth(i), t.opts.BodySize, t.opts.BoldFont, c.align)
			s.Text(c.title, t.xs[i]+off, top+cellPadding, builder.TextOptions{
				Font:     t.opts.BoldFont,
				FontSize: t.opts.BodySize,
			})
		}
	}
	t.separators(top, top+headerH)
	s.Advance(headerH)
	t.hline(s.Y())
}

// rowCells materializes the textual cells for one item, wrapped to their
// column widths. Index 0 (the image column) stays empty.
func (t *lineItemTable) rowCells(item LineItem) [][]string {
	cells := make([][]string, len(lineItemColumns))
	wrap := func(col int, text string) []string {
		if text == "" {
			return nil
		}
		return Wrap(t.s, text, t.colWidth(col)-2*cellPadding, t.opts.BodySize, t.opts.BodyFont)
	}
	cells[1] = wrap(1, item.SKU)
	desc := item.Name
	if item.Notes != "" {
		desc += "\n" + item.Notes
	}
	cells[2] = wrap(2, desc)
	cells[3] = wrap(3, parseAttributes(item.Attributes).Color)
	cells[4] = []string{formatMoney(item.UnitPrice)}
	cells[5] = []string{formatQuantity(item.Quantity)}
	cells[6] = []string{formatMoney(item.Total)}
	return cells
}

func (t *lineItemTable) drawRow(ctx context.Context, index int, item LineItem, all []LineItem) {
	s := t.s
	cells := t.rowCells(item)
	img := t.pipeline.resolveRowImage(ctx, item, all)

	lineH := t.opts.BodySize * t.opts.LineHeight
	maxLines := 0
	for _, lines := range cells {
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowH := float64(maxLines)*lineH + 2*cellPadding
	if min := t.minRowHeight(); rowH < min {
		rowH = min
	}

	if !s.Fits(rowH) {
		// Close the rails on the finished segment before leaving the
		// page, then reopen the grid with a fresh top rule. No bottom
		// rule here: the outer border closes only under the last row.
		t.rails(t.segTop, s.Y())
		s.BreakPage()
		t.segTop = s.Y()
		t.hline(t.segTop)
	}
	top := s.Y()

	if index%2 == 1 {
		s.Rect(s.Left(), top, s.ContentWidth(), rowH, builder.RectOptions{
			Fill:      true,
			FillColor: zebraFill,
		})
	}

	if img != nil {
		t.drawCellImage(img, top, rowH)
	}
	for col, lines := range cells {
		for li, line := range lines {
			if line == "" {
				continue
			}
			off := AlignOffset(s, line, t.colWidth(col), t.opts.BodySize, t.opts.BodyFont, lineItemColumns[col].align)
			s.Text(line, t.xs[col]+off, top+cellPadding+float64(li)*lineH, builder.TextOptions{
				Font:     t.opts.BodyFont,
				FontSize: t.opts.BodySize,
			})
		}
	}
	t.separators(top, top+rowH)

	s.Advance(rowH)
}

// drawCellImage centers a product image in the first column, scaled down
// to fit the cell cap, the row height and the column width with aspect
// ratio preserved.
func (t *lineItemTable) drawCellImage(img *semantic.Image, rowTop, rowH float64) {
	w, h := float64(img.Width), float64(img.Height)
	if w <= 0 || h <= 0 {
		return
	}
	maxW := t.opts.CellImageMax
	if cw := t.colWidth(0) - 2*cellPadding; cw < maxW {
		maxW = cw
	}
	maxH := t.opts.CellImageMax
	if rh := rowH - 2*cellPadding; rh < maxH {
		maxH = rh
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	dw, dh := w*scale, h*scale
	x := t.xs[0] + (t.colWidth(0)-dw)/2
	y := rowTop + (rowH-dh)/2
	t.s.Image(img, x, y, dw, dh)
}

// hline draws a full-width horizontal rule at top offset y.
func (t *lineItemTable) hline(y float64) {
	t.s.Line(t.s.Left(), y, t.s.Right(), y, builder.LineOptions{
		StrokeColor: tableBorder,
		LineWidth:   borderWidth,
	})
}

// separators draws the inner vertical separators (after every column
// except the last) between two top offsets.
func (t *lineItemTable) separators(fromY, toY float64) {
	for _, x := range t.xs[1 : len(t.xs)-1] {
		t.s.Line(x, fromY, x, toY, builder.LineOptions{
			StrokeColor: tableBorder,
			LineWidth:   borderWidth,
		})
	}
}

// rails draws the outer left and right borders for one page segment.
func (t *lineItemTable) rails(fromY, toY float64) {
	for _, x := range [2]float64{t.xs[0], t.xs[len(t.xs)-1]} {
		t.s.Line(x, fromY, x, toY, builder.LineOptions{
			StrokeColor: tableBorder,
			LineWidth:   borderWidth,
		})
	}
}
