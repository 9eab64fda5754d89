package render

import "strings"

// Align selects horizontal placement of text within a cell.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// cellPadding is the fixed inset applied to left-aligned cell text.
const cellPadding = 3.0

// Wrap greedily wraps text into lines no wider than maxWidth at the given
// font state. Input containing explicit newlines is split into paragraphs
// first and each paragraph wrapped independently; an empty paragraph is
// preserved as an empty line so vertical spacing survives. A single word
// wider than maxWidth is placed on its own line unmodified; there is no
// character-level breaking.
func Wrap(m Measurer, text string, maxWidth, fontSize float64, fontName string) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if m.MeasureText(candidate, fontSize, fontName) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}

// AlignOffset returns the x inset for text placed inside a cell of
// cellWidth. Centered text is offset so it sits symmetrically; left
// alignment applies the fixed cell padding.
func AlignOffset(m Measurer, text string, cellWidth, fontSize float64, fontName string, mode Align) float64 {
	if mode == AlignCenter {
		off := (cellWidth - m.MeasureText(text, fontSize, fontName)) / 2
		if off < 0 {
			off = 0
		}
		return off
	}
	return cellPadding
}
