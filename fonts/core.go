package fonts

import "github.com/eazisol/podoc/ir/semantic"

// Advance widths for the built-in Type1 fonts, in glyph space (1/1000 em),
// covering the printable ASCII range starting at code 32. Values come from
// the Adobe AFM files for the standard 14 fonts.

var helveticaWidths = []int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278,
	584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, 722, 278,
	500, 667, 556, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 278, 278, 278, 469, 556, 333, 556, 556, 500, 556, 556,
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, 556, 556, 333, 500,
	278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = []int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333,
	584, 584, 584, 611, 975, 722, 722, 722, 722, 667, 611, 778, 722, 278,
	556, 722, 611, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 333, 278, 333, 584, 556, 333, 556, 611, 556, 611, 556,
	333, 611, 611, 278, 278, 556, 278, 889, 611, 611, 611, 611, 389, 556,
	333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

func coreFont(baseFont string, widths []int) *semantic.Font {
	cw := make(map[int]int, len(widths))
	for i, w := range widths {
		cw[32+i] = w
	}
	return &semantic.Font{
		Subtype:  "Type1",
		BaseFont: baseFont,
		Encoding: "WinAnsiEncoding",
		Widths:   cw,
	}
}

// Helvetica returns the standard Helvetica core font with real AFM metrics.
func Helvetica() *semantic.Font { return coreFont("Helvetica", helveticaWidths) }

// HelveticaBold returns the standard Helvetica-Bold core font.
func HelveticaBold() *semantic.Font { return coreFont("Helvetica-Bold", helveticaBoldWidths) }
