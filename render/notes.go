package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/eazisol/podoc/builder"
)

// overflowSection is one free-text block on the overflow page.
type overflowSection struct {
	title string
	body  string
}

// drawOverflowPage renders the trailing free-text sections (notes,
// delivery term, packing) on their own page. If every section is empty no
// page is added at all. Section bodies are treated as markdown.
func drawOverflowPage(s *Surface, opts Options, order PurchaseOrder) {
	sections := []overflowSection{
		{title: "NOTES", body: order.Notes},
		{title: "DELIVERY TERM", body: order.DeliveryTerm},
		{title: "PACKING", body: order.Packing},
	}
	any := false
	for _, sec := range sections {
		if strings.TrimSpace(sec.body) != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}

	s.BreakPage()
	nw := &notesWriter{s: s, opts: opts}
	for _, sec := range sections {
		if strings.TrimSpace(sec.body) == "" {
			continue
		}
		nw.sectionTitle(sec.title)
		nw.markdown(sec.body)
		s.Advance(opts.BodySize * opts.LineHeight)
	}
}

// notesWriter renders markdown free text onto the surface with page-break
// aware line emission.
type notesWriter struct {
	s    *Surface
	opts Options
}

func (w *notesWriter) lineHeight(fontSize float64) float64 {
	return fontSize * w.opts.LineHeight
}

func (w *notesWriter) sectionTitle(title string) {
	size := w.opts.BodySize + 2
	w.s.EnsureSpace(w.lineHeight(size) * 3) // keep the title with some body
	w.s.Text(title, w.s.Left(), w.s.Y(), builder.TextOptions{
		Font:     w.opts.BoldFont,
		FontSize: size,
	})
	w.s.Advance(w.lineHeight(size) * 1.4)
}

func (w *notesWriter) markdown(source string) {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))
	w.walk(doc, src)
}

func (w *notesWriter) walk(node ast.Node, source []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			w.heading(n, source)
		case *ast.Paragraph:
			w.paragraph(w.s.Left(), inlineText(n, source))
		case *ast.List:
			w.walk(n, source)
		case *ast.ListItem:
			w.listItem(n, source)
		}
	}
}

func (w *notesWriter) heading(n *ast.Heading, source []byte) {
	size := w.opts.BodySize * 1.3
	if n.Level >= 3 {
		size = w.opts.BodySize * 1.15
	}
	w.s.EnsureSpace(w.lineHeight(size))
	w.s.Text(string(n.Text(source)), w.s.Left(), w.s.Y(), builder.TextOptions{
		Font:     w.opts.BoldFont,
		FontSize: size,
	})
	w.s.Advance(w.lineHeight(size))
}

func (w *notesWriter) listItem(n *ast.ListItem, source []byte) {
	var body string
	if child := n.FirstChild(); child != nil {
		if p, ok := child.(*ast.Paragraph); ok {
			body = inlineText(p, source)
		} else {
			body = string(child.Text(source))
		}
	}
	w.s.EnsureSpace(w.lineHeight(w.opts.BodySize))
	w.s.Text("-", w.s.Left(), w.s.Y(), builder.TextOptions{
		Font:     w.opts.BodyFont,
		FontSize: w.opts.BodySize,
	})
	w.paragraph(w.s.Left()+12, body)
}

// paragraph wraps body to the remaining width at x and emits each line,
// breaking the page between lines when needed.
func (w *notesWriter) paragraph(x float64, body string) {
	maxWidth := w.s.Right() - x
	lineH := w.lineHeight(w.opts.BodySize)
	for _, line := range Wrap(w.s, body, maxWidth, w.opts.BodySize, w.opts.BodyFont) {
		w.s.EnsureSpace(lineH)
		if line != "" {
			w.s.Text(line, x, w.s.Y(), builder.TextOptions{
				Font:     w.opts.BodyFont,
				FontSize: w.opts.BodySize,
			})
		}
		w.s.Advance(lineH)
	}
}

// inlineText flattens a paragraph's inline children to plain text, turning
// soft breaks into spaces. Emphasis and code spans lose their styling.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(string(child.Text(source)))
	}
	return sb.String()
}
