package builder

import (
	"testing"

	"github.com/eazisol/podoc/contentstream"
	"github.com/eazisol/podoc/fonts"
	"github.com/eazisol/podoc/ir/semantic"
)

func TestBuilder_DrawTextPopulatesResourcesAndOps(t *testing.T) {
	b := NewBuilder()
	font := fonts.HelveticaBold()
	b.RegisterFont("F2", font)

	b.NewPage(200, 200).
		DrawText("Hello", 10, 20, TextOptions{
			Font:        "F2",
			FontSize:    16,
			Color:       Color{R: 0.1, G: 0.2, B: 0.3},
			RenderMode:  contentstream.TextFillStroke,
			CharSpacing: 0.5,
		}).
		Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Resources == nil || page.Resources.Fonts["F2"] != font {
		t.Fatalf("font not registered on page resources")
	}
	ops := page.Contents[0].Operations
	expectOperators := []string{"BT", "Tf", "Tc", "Tr", "Tm", "rg", "RG", "Tj", "ET"}
	if len(ops) != len(expectOperators) {
		t.Fatalf("got %d operations, want %d", len(ops), len(expectOperators))
	}
	for i, op := range expectOperators {
		if ops[i].Operator != op {
			t.Fatalf("operation %d = %s, want %s", i, ops[i].Operator, op)
		}
	}
	if nameOp, ok := ops[1].Operands[0].(semantic.NameOperand); !ok || nameOp.Value != "F2" {
		t.Fatalf("Tf not set to F2 font")
	}
	tm := ops[4].Operands
	if tm[4].(semantic.NumberOperand).Value != 10 || tm[5].(semantic.NumberOperand).Value != 20 {
		t.Fatalf("Tm coordinates not set: %+v", tm)
	}
	if tj := ops[7].Operands[0].(semantic.StringOperand); string(tj.Value) != "Hello" {
		t.Fatalf("Tj text mismatch: %q", tj.Value)
	}
}

func TestBuilder_UnknownFontFallsBack(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).
		DrawText("x", 5, 5, TextOptions{Font: "Missing", FontSize: 9}).
		Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	font := doc.Pages[0].Resources.Fonts["Missing"]
	if font == nil || font.BaseFont != "Helvetica" {
		t.Fatalf("unknown resource should resolve to Helvetica, got %+v", font)
	}
}

func TestBuilder_DrawShapes(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).
		DrawRectangle(10, 10, 50, 20, RectOptions{
			Fill:      true,
			FillColor: Color{R: 0.9, G: 0.9, B: 0.9},
		}).
		DrawLine(0, 0, 100, 100, LineOptions{
			StrokeColor: Color{R: 0.4, G: 0.4, B: 0.4},
			LineWidth:   0.6,
		}).
		Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ops := doc.Pages[0].Contents[0].Operations
	var sawRe, sawFill, sawLine, sawStroke bool
	for _, op := range ops {
		switch op.Operator {
		case "re":
			sawRe = true
		case "f":
			sawFill = true
		case "l":
			sawLine = true
		case "S":
			sawStroke = true
		}
	}
	if !sawRe || !sawFill {
		t.Fatalf("rectangle fill ops missing")
	}
	if !sawLine || !sawStroke {
		t.Fatalf("line stroke ops missing")
	}
}

func TestBuilder_DrawImageSharesXObject(t *testing.T) {
	img := &semantic.Image{Width: 2, Height: 2, BitsPerComponent: 8,
		ColorSpace: semantic.DeviceColorSpace{Name: "DeviceRGB"},
		Data:       make([]byte, 12)}
	b := NewBuilder()
	page := b.NewPage(100, 100)
	page.DrawImage(img, 0, 0, 10, 10, ImageOptions{})
	page.DrawImage(img, 20, 20, 10, 10, ImageOptions{})
	page.Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(doc.Pages[0].Resources.XObjects); got != 1 {
		t.Fatalf("same image registered %d times, want 1", got)
	}
	var doCount int
	for _, op := range doc.Pages[0].Contents[0].Operations {
		if op.Operator == "Do" {
			doCount++
		}
	}
	if doCount != 2 {
		t.Fatalf("expected two Do operations, got %d", doCount)
	}
}

func TestMeasureText_CoreFontWidths(t *testing.T) {
	b := NewBuilder()
	helv := fonts.Helvetica()

	var want float64
	for _, r := range "Widget" {
		if w, ok := helv.Widths[int(r)]; ok {
			want += float64(w)
		} else {
			want += 500
		}
	}
	want = want / 1000 * 9

	if got := b.MeasureText("Widget", 9, "F1"); got != want {
		t.Fatalf("width = %.4f, want %.4f", got, want)
	}
	if b.MeasureText("", 9, "F1") != 0 {
		t.Fatalf("empty string must measure zero")
	}
	if b.MeasureText("ab", 9, "F1") <= b.MeasureText("a", 9, "F1") {
		t.Fatalf("width must grow with content")
	}
}

func TestMeasureText_BoldIsWider(t *testing.T) {
	b := NewBuilder()
	b.RegisterFont("F2", fonts.HelveticaBold())
	text := "PURCHASE ORDER"
	if b.MeasureText(text, 12, "F2") <= b.MeasureText(text, 12, "F1") {
		t.Fatalf("bold text should measure wider than regular")
	}
}
