package render

import (
	"testing"

	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/ir/semantic"
)

func testSurface() (*Surface, builder.PDFBuilder) {
	b := builder.NewBuilder()
	m := Margins{Top: 40, Bottom: 40, Left: 40, Right: 40}
	return newSurface(b, builder.A4, m), b
}

func TestSurface_CursorBookkeeping(t *testing.T) {
	s, _ := testSurface()
	if s.Y() != 40 {
		t.Fatalf("cursor starts at %.2f, want top margin", s.Y())
	}
	s.Advance(100)
	if s.Y() != 140 {
		t.Fatalf("cursor after advance = %.2f", s.Y())
	}
	if s.Left() != 40 || s.Right() != builder.A4.Width-40 {
		t.Fatalf("content edges wrong: %f..%f", s.Left(), s.Right())
	}
	if got := s.ContentWidth(); got != builder.A4.Width-80 {
		t.Fatalf("content width = %.2f", got)
	}
}

func TestSurface_EnsureSpaceBreaksBeforeBottomMargin(t *testing.T) {
	s, b := testSurface()
	s.SetY(s.Bottom() - 10)

	if s.EnsureSpace(10) {
		t.Fatalf("content that exactly fits must not break the page")
	}
	if s.EnsureSpace(11) != true {
		t.Fatalf("overflow must break the page")
	}
	if s.PageIndex() != 1 {
		t.Fatalf("page index = %d, want 1", s.PageIndex())
	}
	if s.Y() != 40 {
		t.Fatalf("cursor not reset to top margin: %.2f", s.Y())
	}
	if b.PageCount() != 2 {
		t.Fatalf("page count = %d, want 2", b.PageCount())
	}
}

func TestSurface_Fits(t *testing.T) {
	s, _ := testSurface()
	s.SetY(s.Bottom() - 5)
	if !s.Fits(5) {
		t.Fatalf("5pt should fit")
	}
	if s.Fits(6) {
		t.Fatalf("6pt should not fit")
	}
	if s.PageIndex() != 0 {
		t.Fatalf("Fits must not break pages")
	}
}

func TestSurface_DrawsInTopDownCoordinates(t *testing.T) {
	s, b := testSurface()
	s.Text("hello", s.Left(), 100, builder.TextOptions{FontSize: 10})
	s.Finish()

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ops := doc.Pages[0].Contents[0].Operations
	var ty float64
	for _, op := range ops {
		if op.Operator == "Tm" {
			ty = op.Operands[5].(semantic.NumberOperand).Value
		}
	}
	want := builder.A4.Height - 100 - 10
	if ty != want {
		t.Fatalf("text baseline y = %.2f, want %.2f", ty, want)
	}
}
