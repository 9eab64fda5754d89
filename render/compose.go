package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/fonts"
	"github.com/eazisol/podoc/ir/semantic"
	"github.com/eazisol/podoc/observability"
	"github.com/eazisol/podoc/writer"
)

// Renderer renders purchase-order documents. A Renderer is safe to reuse
// across renders; all per-render state (pages, cursor, image cache) is
// created inside Render and discarded when it returns.
type Renderer struct {
	opts Options
}

// New constructs a Renderer. Zero-valued options fall back to defaults.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// FileName is the download name for a rendered purchase order.
func FileName(poNumber string) string {
	return "PO-" + poNumber + ".pdf"
}

// Render produces the finished PDF for one purchase order. Missing data
// (images, signatures, addresses, notes) degrades to omission; only
// document assembly or serialization failure is returned as an error.
func (r *Renderer) Render(ctx context.Context, input DocumentInput) ([]byte, error) {
	opts := r.opts
	b := builder.NewBuilder()
	b.RegisterFont(opts.BoldFont, fonts.HelveticaBold())
	b.SetInfo(&semantic.DocumentInfo{
		Title:    "Purchase Order " + input.Order.Number,
		Producer: "podoc",
	})

	s := newSurface(b, opts.PaperSize, opts.Margins)
	c := &composer{
		s:        s,
		opts:     opts,
		pipeline: newImagePipeline(opts),
		log:      opts.Logger,
	}

	c.header(input.Order)
	c.addressBlock(input)
	newLineItemTable(s, opts, c.pipeline).draw(ctx, input.Order.Items)
	c.financialSummary(input.Order)
	c.approvalBand()
	c.instruction()
	c.signatures(ctx, input.Approvals)
	c.footer(input.Order)
	drawOverflowPage(s, opts, input.Order)
	s.Finish()

	doc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("assemble document: %w", err)
	}
	var buf bytes.Buffer
	pw := (&writer.WriterBuilder{}).Build()
	cfg := writer.Config{Version: writer.PDF17, ContentFilter: writer.FilterFlate}
	if err := pw.Write(ctx, doc, &buf, cfg); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	c.log.Info("purchase order rendered",
		observability.String("po", input.Order.Number),
		observability.Int("pages", b.PageCount()),
		observability.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// composer walks the fixed section sequence, advancing the surface cursor.
type composer struct {
	s        *Surface
	opts     Options
	pipeline *imagePipeline
	log      observability.Logger
}

func (c *composer) lineH() float64 {
	return c.opts.BodySize * c.opts.LineHeight
}

func (c *composer) text(text string, x, y, size float64, bold bool) {
	font := c.opts.BodyFont
	if bold {
		font = c.opts.BoldFont
	}
	c.s.Text(text, x, y, builder.TextOptions{Font: font, FontSize: size})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// header draws the document title and PO number on one band, closed by a
// rule.
func (c *composer) header(order PurchaseOrder) {
	s := c.s
	const titleSize = 16
	top := s.Y()
	c.text("PURCHASE ORDER", s.Left(), top, titleSize, true)
	if order.Number != "" {
		num := "# " + order.Number
		w := s.MeasureText(num, titleSize, c.opts.BoldFont)
		c.text(num, s.Right()-w, top, titleSize, true)
	}
	s.Advance(titleSize * 1.5)
	s.Line(s.Left(), s.Y(), s.Right(), s.Y(), builder.LineOptions{
		StrokeColor: tableBorder,
		LineWidth:   1,
	})
	s.Advance(c.lineH())
}

// addressColumn is the prepared content of one address-block column.
type addressColumn struct {
	title string
	lines []string
}

// addressBlock lays out ship-to, vendor and PO details side by side. Each
// column wraps independently; the cursor resumes below the tallest one.
func (c *composer) addressBlock(input DocumentInput) {
	s := c.s
	cols := []addressColumn{
		{title: "SHIP TO", lines: input.Warehouse.Lines()},
		{title: "VENDOR", lines: input.Vendor.Lines()},
		{title: "PO DETAILS", lines: c.poDetails(input.Order)},
	}

	const gutter = 12.0
	colW := (s.ContentWidth() - 2*gutter) / 3

	// Wrap everything up front so the section height is known before any
	// drawing.
	wrapped := make([][]string, len(cols))
	maxLines := 0
	for i, col := range cols {
		for _, line := range col.lines {
			wrapped[i] = append(wrapped[i], Wrap(s, line, colW, c.opts.BodySize, c.opts.BodyFont)...)
		}
		if n := len(wrapped[i]); n > maxLines {
			maxLines = n
		}
	}
	if maxLines == 0 {
		return
	}

	titleH := c.lineH() * 1.3
	height := titleH + float64(maxLines)*c.lineH()
	s.EnsureSpace(height)
	top := s.Y()
	for i, col := range cols {
		x := s.Left() + float64(i)*(colW+gutter)
		c.text(col.title, x, top, c.opts.BodySize, true)
		for li, line := range wrapped[i] {
			c.text(line, x, top+titleH+float64(li)*c.lineH(), c.opts.BodySize, false)
		}
	}
	s.SetY(top + height)
	s.Advance(c.lineH() * 1.5)
}

func (c *composer) poDetails(order PurchaseOrder) []string {
	var lines []string
	push := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	push("PO Number", order.Number)
	push("Order Date", formatDate(order.OrderDate))
	push("Expected", formatDate(order.ExpectedDate))
	push("Currency", order.Currency)
	return lines
}

// financialSummary draws the totals box on the right-hand side: subtotal,
// tax, total, recorded payments and the outstanding balance.
func (c *composer) financialSummary(order PurchaseOrder) {
	s := c.s
	type row struct {
		label, value string
		bold         bool
	}
	rows := []row{
		{label: "Subtotal", value: formatMoney(order.Subtotal)},
		{label: "Tax", value: formatMoney(order.Tax)},
		{label: "Total", value: formatAmount(order.Currency, order.Total), bold: true},
	}
	for _, p := range order.Payments {
		label := "Paid"
		if p.Method != "" {
			label += " - " + p.Method
		}
		if d := formatDate(p.Date); d != "" {
			label += " (" + d + ")"
		}
		rows = append(rows, row{label: label, value: formatMoney(p.Amount)})
	}
	if order.Paid != 0 || len(order.Payments) > 0 {
		rows = append(rows, row{
			label: "Balance Due",
			value: formatAmount(order.Currency, order.Total-order.Paid),
			bold:  true,
		})
	}

	const boxW = 220.0
	rowH := c.lineH() * 1.2
	boxH := float64(len(rows))*rowH + 2*cellPadding

	s.Advance(c.lineH())
	s.EnsureSpace(boxH)
	top := s.Y()
	left := s.Right() - boxW
	s.Rect(left, top, boxW, boxH, builder.RectOptions{
		Stroke:      true,
		StrokeColor: tableBorder,
		LineWidth:   borderWidth,
	})
	for i, r := range rows {
		y := top + cellPadding + float64(i)*rowH
		c.text(r.label, left+cellPadding, y, c.opts.BodySize, r.bold)
		w := c.measureRow(r.value, r.bold)
		c.text(r.value, left+boxW-cellPadding-w, y, c.opts.BodySize, r.bold)
	}
	s.SetY(top + boxH)
	s.Advance(c.lineH() * 1.5)
}

func (c *composer) measureRow(text string, bold bool) float64 {
	font := c.opts.BodyFont
	if bold {
		font = c.opts.BoldFont
	}
	return c.s.MeasureText(text, c.opts.BodySize, font)
}

// approvalBand draws the filled band that opens the approval block.
func (c *composer) approvalBand() {
	s := c.s
	bandH := c.opts.BodySize + 2*cellPadding
	s.EnsureSpace(bandH + c.lineH()*4) // keep the band with its content
	top := s.Y()
	s.Rect(s.Left(), top, s.ContentWidth(), bandH, builder.RectOptions{
		Fill:      true,
		FillColor: headerFill,
	})
	c.text("APPROVAL", s.Left()+cellPadding, top+cellPadding, c.opts.BodySize, true)
	s.Advance(bandH + c.lineH())
}

// instruction emits the standing instruction paragraph under the approval
// band.
func (c *composer) instruction() {
	s := c.s
	for _, line := range Wrap(s, c.opts.InstructionText, s.ContentWidth(), c.opts.BodySize, c.opts.BodyFont) {
		s.EnsureSpace(c.lineH())
		if line != "" {
			c.text(line, s.Left(), s.Y(), c.opts.BodySize, false)
		}
		s.Advance(c.lineH())
	}
	s.Advance(c.lineH())
}

// signatureRoles maps approval records to captions by list position, not
// by any role field on the record.
var signatureRoles = [2]string{"CFO", "DIRECTOR"}

// signatures renders up to two approval slots side by side: the signature
// image (when one resolves) above a rule, with the role caption and
// approver details beneath.
func (c *composer) signatures(ctx context.Context, approvals []Approval) {
	if len(approvals) == 0 {
		return
	}
	if len(approvals) > len(signatureRoles) {
		approvals = approvals[:len(signatureRoles)]
	}
	s := c.s

	const imgH = 46.0
	const gutter = 30.0
	slotW := (s.ContentWidth() - gutter) / 2
	blockH := imgH + 4 + c.lineH()*3
	s.EnsureSpace(blockH)
	top := s.Y()

	for i, a := range approvals {
		x := s.Left() + float64(i)*(slotW+gutter)
		if img := c.pipeline.loadSignature(ctx, a.SignaturePath); img != nil {
			c.drawSignature(img, x, top, slotW, imgH)
		}
		ruleY := top + imgH + 4
		s.Line(x, ruleY, x+slotW, ruleY, builder.LineOptions{
			StrokeColor: builder.Color{},
			LineWidth:   0.8,
		})
		c.text(signatureRoles[i], x, ruleY+4, c.opts.BodySize, true)
		caption := a.UserName
		if d := formatDate(a.DecidedAt); d != "" && a.Status != ApprovalPending {
			if caption != "" {
				caption += "  "
			}
			caption += d
		}
		if caption != "" {
			c.text(caption, x, ruleY+4+c.lineH(), c.opts.BodySize, false)
		}
		if a.Comment != "" {
			lines := Wrap(s, a.Comment, slotW, c.opts.BodySize, c.opts.BodyFont)
			c.text(lines[0], x, ruleY+4+2*c.lineH(), c.opts.BodySize, false)
		}
	}
	s.SetY(top + blockH)
	s.Advance(c.lineH())
}

func (c *composer) drawSignature(img *semantic.Image, x, top, slotW, imgH float64) {
	w, h := float64(img.Width), float64(img.Height)
	if w <= 0 || h <= 0 {
		return
	}
	scale := slotW / w
	if sc := imgH / h; sc < scale {
		scale = sc
	}
	if scale > 1 {
		scale = 1
	}
	dw, dh := w*scale, h*scale
	c.s.Image(img, x+(slotW-dw)/2, top+imgH-dh, dw, dh)
}

// footer draws the closing bar with the document identity.
func (c *composer) footer(order PurchaseOrder) {
	s := c.s
	barH := c.opts.BodySize + 2*cellPadding
	s.EnsureSpace(barH)
	top := s.Y()
	s.Rect(s.Left(), top, s.ContentWidth(), barH, builder.RectOptions{
		Fill:      true,
		FillColor: headerFill,
	})
	label := "Purchase Order"
	if order.Number != "" {
		label += " " + order.Number
	}
	c.text(label, s.Left()+cellPadding, top+cellPadding, c.opts.BodySize, false)
	if d := formatDate(order.OrderDate); d != "" {
		w := c.measureRow(d, false)
		c.text(d, s.Right()-cellPadding-w, top+cellPadding, c.opts.BodySize, false)
	}
	s.Advance(barH)
}
