package builder

import (
	"fmt"

	"github.com/eazisol/podoc/contentstream"
	"github.com/eazisol/podoc/fonts"
	"github.com/eazisol/podoc/ir/semantic"
)

// PDFBuilder provides a fluent API for PDF construction.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	RegisterFont(name string, font *semantic.Font) PDFBuilder
	RegisterTrueTypeFont(name string, data []byte) PDFBuilder
	MeasureText(text string, fontSize float64, fontName string) float64
	PageCount() int
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for page construction. All coordinates
// are PDF user space (origin bottom-left).
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	Finish() PDFBuilder
}

// TextOptions configures text drawing.
type TextOptions struct {
	Font        string
	FontSize    float64
	Color       Color
	RenderMode  contentstream.TextRenderMode
	CharSpacing float64
}

// RectOptions configures rectangle drawing (defaults to stroke if neither
// fill nor stroke is set).
type RectOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	DashPattern []float64
	DashPhase   float64
	Fill        bool
	Stroke      bool
}

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
	LineCap     contentstream.LineCap
	DashPattern []float64
	DashPhase   float64
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Interpolate bool
	SMask       *semantic.Image
}

// Color represents an RGB color (components in [0,1]).
type Color struct {
	R, G, B float64
	A       float64
}

// PaperSize describes a standard page size in points.
type PaperSize struct {
	Width  float64
	Height float64
}

var (
	A4     = PaperSize{Width: 595.28, Height: 841.89}
	Letter = PaperSize{Width: 612, Height: 792}
)

type fontResource struct {
	font      *semantic.Font
	runeToCID map[rune]int
}

type builderImpl struct {
	pages        []*semantic.Page
	info         *semantic.DocumentInfo
	fonts        map[string]fontResource
	defaultFont  string
	xobjectCount int
	xobjectNames map[*semantic.Image]string
	fontErr      error
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

const defaultFontResource = "F1"

// NewBuilder constructs a PDFBuilder with Helvetica registered as the
// default font.
func NewBuilder() PDFBuilder {
	b := &builderImpl{}
	b.addFont(defaultFontResource, fonts.Helvetica())
	return b
}

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h}}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) RegisterFont(name string, font *semantic.Font) PDFBuilder {
	return b.addFont(name, font)
}

func (b *builderImpl) RegisterTrueTypeFont(name string, data []byte) PDFBuilder {
	font, err := fonts.LoadTrueType(name, data)
	if err != nil {
		b.fontErr = err
		return b
	}
	return b.addFont(name, font)
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) addFont(name string, font *semantic.Font) PDFBuilder {
	if font == nil {
		return b
	}
	if b.fonts == nil {
		b.fonts = make(map[string]fontResource)
	}
	b.fonts[name] = fontResource{font: font, runeToCID: runeToCID(font)}
	if b.defaultFont == "" {
		b.defaultFont = name
	}
	return b
}

func (b *builderImpl) Build() (*semantic.Document, error) {
	if b.fontErr != nil {
		return nil, b.fontErr
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info}, nil
}

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	ops := p.ensureContentOps()
	res := p.ensureResources()

	font, fontName, cmap := p.parent.fontForName(opts.Font)
	if _, ok := res.Fonts[fontName]; !ok {
		res.Fonts[fontName] = font
	}
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}

	*ops = append(*ops, semantic.Operation{Operator: "BT"})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tf",
		Operands: []semantic.Operand{semantic.NameOperand{Value: fontName}, semantic.NumberOperand{Value: size}},
	})
	if opts.CharSpacing != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "Tc", Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.CharSpacing}}})
	}
	if opts.RenderMode != contentstream.TextFill {
		*ops = append(*ops, semantic.Operation{Operator: "Tr", Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.RenderMode)}}})
	}
	*ops = append(*ops, semantic.Operation{
		Operator: "Tm",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: 1},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 1},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		},
	})
	if !isZeroColor(opts.Color) {
		p.appendColorOp(ops, opts.Color, false)
		if opts.RenderMode == contentstream.TextStroke || opts.RenderMode == contentstream.TextFillStroke {
			p.appendColorOp(ops, opts.Color, true)
		}
	}
	*ops = append(*ops, semantic.Operation{
		Operator: "Tj",
		Operands: []semantic.Operand{semantic.StringOperand{Value: encodeText(text, font, cmap)}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "ET"})
	return p
}

func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder {
	if img == nil {
		return p
	}
	res := p.ensureResources()

	name := p.parent.imageName(img)
	if _, exists := res.XObjects[name]; !exists {
		xobj := semantic.XObject(*img)
		xobj.Subtype = "Image"
		if opts.Interpolate {
			xobj.Interpolate = true
		}
		if opts.SMask != nil {
			xobj.SMask = opts.SMask
		}
		res.XObjects[name] = xobj
	}
	w := width
	if w == 0 {
		w = float64(img.Width)
	}
	h := height
	if h == 0 {
		h = float64(img.Height)
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	*ops = append(*ops, semantic.Operation{
		Operator: "cm",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: w},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: h},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "Do",
		Operands: []semantic.Operand{semantic.NameOperand{Value: name}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	po := opts
	if !po.Stroke && !po.Fill {
		po.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPaintState(ops, po)
	*ops = append(*ops, semantic.Operation{
		Operator: "re",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
			semantic.NumberOperand{Value: width},
			semantic.NumberOperand{Value: height},
		},
	})
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(po.Fill, po.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	po := RectOptions{
		StrokeColor: opts.StrokeColor,
		LineWidth:   opts.LineWidth,
		DashPattern: opts.DashPattern,
		DashPhase:   opts.DashPhase,
		Stroke:      true,
	}
	p.applyPaintState(ops, po)
	if opts.LineCap != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "J", Operands: []semantic.Operand{semantic.NumberOperand{Value: float64(opts.LineCap)}}})
	}
	*ops = append(*ops, semantic.Operation{
		Operator: "m",
		Operands: []semantic.Operand{semantic.NumberOperand{Value: x1}, semantic.NumberOperand{Value: y1}},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "l",
		Operands: []semantic.Operand{semantic.NumberOperand{Value: x2}, semantic.NumberOperand{Value: y2}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "S"})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (b *builderImpl) fontForName(name string) (*semantic.Font, string, map[rune]int) {
	if name == "" {
		name = b.defaultFont
		if name == "" {
			name = defaultFontResource
		}
	}
	if f, ok := b.fonts[name]; ok {
		return f.font, name, f.runeToCID
	}
	// Unknown resource names resolve to the default font under the
	// requested name so drawing never fails.
	font := fonts.Helvetica()
	b.addFont(name, font)
	return font, name, nil
}

func (b *builderImpl) imageName(img *semantic.Image) string {
	if b.xobjectNames == nil {
		b.xobjectNames = make(map[*semantic.Image]string)
	}
	if name, ok := b.xobjectNames[img]; ok {
		return name
	}
	b.xobjectCount++
	name := fmt.Sprintf("Im%d", b.xobjectCount)
	b.xobjectNames[img] = name
	return name
}

func runeToCID(font *semantic.Font) map[rune]int {
	if font == nil || len(font.ToUnicode) == 0 {
		return nil
	}
	m := make(map[rune]int)
	for cid, runes := range font.ToUnicode {
		for _, r := range runes {
			if _, exists := m[r]; !exists {
				m[r] = cid
			}
		}
	}
	return m
}

func encodeText(text string, font *semantic.Font, cmap map[rune]int) []byte {
	if font != nil && font.Subtype == "Type0" && font.Encoding == "Identity-H" && len(cmap) > 0 {
		buf := make([]byte, 0, len(text)*2)
		for _, r := range text {
			cid, ok := cmap[r]
			if !ok {
				cid = 0
			}
			buf = append(buf, byte(cid>>8), byte(cid))
		}
		return buf
	}
	return []byte(text)
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.Fonts == nil {
		p.page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]semantic.XObject)
	}
	return p.page.Resources
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func (p *pageBuilderImpl) appendColorOp(ops *[]semantic.Operation, c Color, stroking bool) {
	if isZeroColor(c) {
		return
	}
	op := "rg"
	if stroking {
		op = "RG"
	}
	*ops = append(*ops, semantic.Operation{
		Operator: op,
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: c.R},
			semantic.NumberOperand{Value: c.G},
			semantic.NumberOperand{Value: c.B},
		},
	})
}

func (p *pageBuilderImpl) applyPaintState(ops *[]semantic.Operation, opts RectOptions) {
	if opts.Fill {
		p.appendColorOp(ops, opts.FillColor, false)
	}
	if opts.Stroke {
		p.appendColorOp(ops, opts.StrokeColor, true)
		if opts.LineWidth > 0 {
			*ops = append(*ops, semantic.Operation{Operator: "w", Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.LineWidth}}})
		}
		if len(opts.DashPattern) > 0 {
			vals := make([]semantic.Operand, 0, len(opts.DashPattern))
			for _, v := range opts.DashPattern {
				vals = append(vals, semantic.NumberOperand{Value: v})
			}
			*ops = append(*ops, semantic.Operation{
				Operator: "d",
				Operands: []semantic.Operand{
					semantic.ArrayOperand{Values: vals},
					semantic.NumberOperand{Value: opts.DashPhase},
				},
			})
		}
	}
}

func isZeroColor(c Color) bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

func paintOperator(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "B"
	case fill:
		return "f"
	default:
		return "S"
	}
}

// MeasureText returns the width of text in user units for the given font
// resource at fontSize. Embedded TrueType fonts are measured by shaping;
// core fonts fall back to their AFM width tables.
func (b *builderImpl) MeasureText(text string, fontSize float64, fontName string) float64 {
	if fontSize <= 0 {
		fontSize = 12
	}
	font, resolved, _ := b.fontForName(fontName)
	if font == nil {
		return float64(len(text)) * fontSize * 0.5
	}
	if adv, ok := fonts.ShapeAdvance(font, text); ok {
		return (adv / 1000) * fontSize
	}
	if len(font.Widths) == 0 {
		return float64(len(text)) * fontSize * 0.5
	}
	widthSum := 0.0
	for _, r := range text {
		code := int(r)
		if font.Subtype == "Type0" && font.Encoding == "Identity-H" {
			// CID fonts key widths by CID, derived via ToUnicode.
			if cmap := b.fonts[resolved].runeToCID; cmap != nil {
				if cid, ok := cmap[r]; ok {
					code = cid
				}
			}
		}
		if w, ok := font.Widths[code]; ok {
			widthSum += float64(w)
		} else {
			widthSum += 500 // default width in glyph space
		}
	}
	return (widthSum / 1000) * fontSize
}
