package render

import (
	"context"
	"time"

	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/observability"
)

// FileResolver resolves an internally-hosted relative file path to a
// fully-qualified (possibly signed) URL.
type FileResolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// Fetcher retrieves the bytes behind a URL, applying whatever
// authentication the surrounding application requires.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Measurer reports the rendered width of text. The wrap algorithm depends
// only on this, so it is unit-testable without a PDF backend.
type Measurer interface {
	MeasureText(text string, fontSize float64, fontName string) float64
}

// Margins defines page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	PaperSize builder.PaperSize
	Margins   Margins

	BodyFont   string // builder font resource name
	BoldFont   string
	BodySize   float64
	LineHeight float64 // multiplier

	// Image pipeline bounds: decoded product images are downscaled to fit
	// these pixel dimensions and re-encoded as JPEG at Quality.
	ImageMaxWidth  int
	ImageMaxHeight int
	JPEGQuality    int

	// Drawn size cap for product images inside the table, in points.
	CellImageMax float64

	SignatureTimeout time.Duration

	InstructionText string

	Resolver FileResolver
	Fetcher  Fetcher
	Logger   observability.Logger
}

const defaultInstruction = "Please confirm receipt of this purchase order and advise expected " +
	"ship date. Quote the PO number on all correspondence, packing lists and invoices."

func (o Options) withDefaults() Options {
	if o.PaperSize.Width == 0 || o.PaperSize.Height == 0 {
		o.PaperSize = builder.A4
	}
	if o.Margins == (Margins{}) {
		o.Margins = Margins{Top: 40, Bottom: 40, Left: 40, Right: 40}
	}
	if o.BodyFont == "" {
		o.BodyFont = "F1"
	}
	if o.BoldFont == "" {
		o.BoldFont = "F2"
	}
	if o.BodySize == 0 {
		o.BodySize = 9
	}
	if o.LineHeight == 0 {
		o.LineHeight = 1.3
	}
	if o.ImageMaxWidth == 0 {
		o.ImageMaxWidth = 240
	}
	if o.ImageMaxHeight == 0 {
		o.ImageMaxHeight = 240
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = 72
	}
	if o.CellImageMax == 0 {
		o.CellImageMax = 34
	}
	if o.SignatureTimeout == 0 {
		o.SignatureTimeout = 6 * time.Second
	}
	if o.InstructionText == "" {
		o.InstructionText = defaultInstruction
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	return o
}
