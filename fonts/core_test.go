package fonts

import "testing"

func TestHelvetica_CoversPrintableASCII(t *testing.T) {
	for _, font := range []struct {
		name   string
		widths map[int]int
	}{
		{"Helvetica", Helvetica().Widths},
		{"Helvetica-Bold", HelveticaBold().Widths},
	} {
		for code := 32; code <= 126; code++ {
			w, ok := font.widths[code]
			if !ok {
				t.Fatalf("%s missing width for code %d", font.name, code)
			}
			if w <= 0 || w > 1100 {
				t.Fatalf("%s width for code %d out of range: %d", font.name, code, w)
			}
		}
	}
}

func TestHelvetica_KnownMetrics(t *testing.T) {
	helv := Helvetica()
	if helv.Subtype != "Type1" || helv.BaseFont != "Helvetica" {
		t.Fatalf("unexpected font identity: %+v", helv)
	}
	// Spot checks against the AFM tables.
	if w := helv.Widths[int(' ')]; w != 278 {
		t.Fatalf("space width = %d, want 278", w)
	}
	if w := helv.Widths[int('W')]; w != 944 {
		t.Fatalf("W width = %d, want 944", w)
	}
	bold := HelveticaBold()
	if bold.BaseFont != "Helvetica-Bold" {
		t.Fatalf("bold base font = %q", bold.BaseFont)
	}
	if bold.Widths[int('a')] <= helv.Widths[int('a')] {
		t.Fatalf("bold lowercase a should be wider")
	}
}

func TestFontsAreIndependentInstances(t *testing.T) {
	a, b := Helvetica(), Helvetica()
	if a == b {
		t.Fatalf("each call should return a fresh font value")
	}
	a.Widths[32] = 1
	if b.Widths[32] == 1 {
		t.Fatalf("width tables must not be shared between instances")
	}
}
