package fonts

import (
	"bytes"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/eazisol/podoc/ir/semantic"
)

// ShapeAdvance measures text with an embedded TrueType font by running the
// shaper over it, returning the total advance in glyph space (1/1000 em).
// The bool is false when the font carries no embeddable font file, in which
// case the caller should fall back to width-table measurement.
func ShapeAdvance(font *semantic.Font, text string) (float64, bool) {
	if font == nil || font.Descriptor == nil || len(font.Descriptor.FontFile) == 0 {
		return 0, false
	}
	face, err := gofont.ParseTTF(bytes.NewReader(font.Descriptor.FontFile))
	if err != nil {
		return 0, false
	}

	runes := []rune(text)
	shaper := &shaping.HarfbuzzShaper{}
	// Shape at 1000 units per em so advances come out in glyph space.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    language.Latin,
		Language:  language.DefaultLanguage(),
	}
	output := shaper.Shape(input)

	total := 0.0
	for _, g := range output.Glyphs {
		total += float64(g.XAdvance) / 64.0
	}
	return total, true
}
