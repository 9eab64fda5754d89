package writer

import (
	"github.com/eazisol/podoc/ir/raw"
	"github.com/eazisol/podoc/ir/semantic"
)

type PDFVersion string

const (
	PDF17 PDFVersion = "1.7"
)

type ContentFilter int

const (
	FilterNone ContentFilter = iota
	FilterFlate
)

type Config struct {
	Version       PDFVersion
	ContentFilter ContentFilter
	Deterministic bool
}

type Writer interface {
	Write(ctx Context, doc *semantic.Document, w WriterAt, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

type WriterBuilder struct{}

func (b *WriterBuilder) Build() Writer { return &impl{} }

type WriterAt interface {
	Write(p []byte) (n int, err error)
}

type Context interface{ Done() <-chan struct{} }
