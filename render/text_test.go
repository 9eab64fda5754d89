package render

import (
	"strings"
	"testing"

	"github.com/eazisol/podoc/builder"
)

func testMeasurer() Measurer { return builder.NewBuilder() }

func TestWrap_WidthBound(t *testing.T) {
	m := testMeasurer()
	text := "The quick brown fox jumps over the lazy dog and keeps on running until the page ends"
	const maxWidth = 120.0
	lines := Wrap(m, text, maxWidth, 9, "F1")
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	for _, line := range lines {
		if strings.Contains(line, " ") {
			if w := m.MeasureText(line, 9, "F1"); w > maxWidth {
				t.Fatalf("line %q measures %.2f, exceeds %.2f", line, w, maxWidth)
			}
		}
	}
	if joined := strings.Join(lines, " "); joined != text {
		t.Fatalf("content lost in wrapping:\n got %q\nwant %q", joined, text)
	}
}

func TestWrap_Idempotence(t *testing.T) {
	m := testMeasurer()
	text := "Partial shipments accepted.\n\nLabel each carton with the purchase order number and the destination warehouse code."
	const maxWidth = 150.0
	lines := Wrap(m, text, maxWidth, 9, "F1")
	again := Wrap(m, strings.Join(lines, "\n"), maxWidth, 9, "F1")
	if len(again) != len(lines) {
		t.Fatalf("re-wrap changed line count: %d -> %d", len(lines), len(again))
	}
	for i := range lines {
		if lines[i] != again[i] {
			t.Fatalf("line %d changed on re-wrap: %q -> %q", i, lines[i], again[i])
		}
	}
}

func TestWrap_OverwideWordKeptWhole(t *testing.T) {
	m := testMeasurer()
	word := "Pneumonoultramicroscopicsilicovolcanoconiosis"
	lines := Wrap(m, "a "+word+" b", 40, 9, "F1")
	found := false
	for _, line := range lines {
		if line == word {
			found = true
		}
		if strings.Contains(line, word) && line != word {
			t.Fatalf("over-wide word not isolated: %q", line)
		}
	}
	if !found {
		t.Fatalf("over-wide word missing from output: %v", lines)
	}
}

func TestWrap_EmptyParagraphPreserved(t *testing.T) {
	m := testMeasurer()
	lines := Wrap(m, "first\n\nsecond", 400, 9, "F1")
	want := []string{"first", "", "second"}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestAlignOffset(t *testing.T) {
	m := testMeasurer()
	const cellW = 100.0
	text := "QTY"
	w := m.MeasureText(text, 9, "F1")

	if got := AlignOffset(m, text, cellW, 9, "F1", AlignLeft); got != cellPadding {
		t.Fatalf("left offset = %.2f, want %.2f", got, cellPadding)
	}
	want := (cellW - w) / 2
	if got := AlignOffset(m, text, cellW, 9, "F1", AlignCenter); got != want {
		t.Fatalf("center offset = %.2f, want %.2f", got, want)
	}
	// Text wider than the cell clamps to zero instead of going negative.
	wide := strings.Repeat("W", 60)
	if got := AlignOffset(m, wide, 10, 9, "F1", AlignCenter); got != 0 {
		t.Fatalf("clamped offset = %.2f, want 0", got)
	}
}
