package writer

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/eazisol/podoc/ir/raw"
	"github.com/eazisol/podoc/ir/semantic"
)

func sampleDoc() *semantic.Document {
	return &semantic.Document{
		Info: &semantic.DocumentInfo{Title: "Purchase Order 42"},
		Pages: []*semantic.Page{
			{
				MediaBox: semantic.Rectangle{URX: 595.28, URY: 841.89},
				Contents: []semantic.ContentStream{{
					Operations: []semantic.Operation{
						{Operator: "BT"},
						{Operator: "Tf", Operands: []semantic.Operand{
							semantic.NameOperand{Value: "F1"},
							semantic.NumberOperand{Value: 12},
						}},
						{Operator: "Tj", Operands: []semantic.Operand{
							semantic.StringOperand{Value: []byte("hello (world)")},
						}},
						{Operator: "ET"},
					},
				}},
			},
		},
	}
}

func TestWrite_StructureAndTrailer(t *testing.T) {
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	if err := w.Write(context.Background(), sampleDoc(), &buf, Config{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "%PDF-1.7\n") {
		t.Fatalf("missing header: %q", out[:16])
	}
	for _, want := range []string{
		"/Type /Catalog",
		"/Type /Pages",
		"/Type /Page>>",
		"/Title (Purchase Order 42)",
		"xref\n",
		"startxref\n",
		"%%EOF",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// Uncompressed content streams keep operator syntax visible.
	if !strings.Contains(out, `(hello \(world\)) Tj`) {
		t.Errorf("text operation not serialized with escaping")
	}
}

func TestWrite_FlateCompressesContent(t *testing.T) {
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	if err := w.Write(context.Background(), sampleDoc(), &buf, Config{ContentFilter: FilterFlate}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.Bytes()
	if !bytes.Contains(out, []byte("/Filter /FlateDecode")) {
		t.Fatalf("content stream not marked FlateDecode")
	}
	if bytes.Contains(out, []byte("hello")) {
		t.Fatalf("content left uncompressed")
	}

	// The stream must inflate back to the original operations.
	i := bytes.Index(out, []byte("stream\n"))
	j := bytes.Index(out, []byte("\nendstream"))
	if i < 0 || j < 0 || j <= i {
		t.Fatalf("no stream body found")
	}
	zr, err := zlib.NewReader(bytes.NewReader(out[i+len("stream\n") : j]))
	if err != nil {
		t.Fatalf("zlib: %v", err)
	}
	inflated, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Contains(inflated, []byte("hello")) {
		t.Fatalf("inflated content missing text: %q", inflated)
	}
}

func TestWrite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	if err := w.Write(ctx, sampleDoc(), &buf, Config{}); err == nil {
		t.Fatalf("cancelled write should fail")
	}
}

func TestWrite_NilDocument(t *testing.T) {
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	if err := w.Write(context.Background(), nil, &buf, Config{}); err == nil {
		t.Fatalf("nil document should fail")
	}
}

func TestWrite_BarePageGetsDefaultFont(t *testing.T) {
	doc := &semantic.Document{Pages: []*semantic.Page{{
		MediaBox: semantic.Rectangle{URX: 100, URY: 100},
	}}}
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	if err := w.Write(context.Background(), doc, &buf, Config{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/BaseFont /Helvetica")) {
		t.Fatalf("default font resource missing")
	}
}

func TestSerializeObject_Primitives(t *testing.T) {
	w := &impl{}
	ref := raw.ObjectRef{Num: 3, Gen: 0}

	dict := raw.Dict()
	dict.Set(raw.NameLiteral("B"), raw.NumberFloat(1.5))
	dict.Set(raw.NameLiteral("A"), raw.Bool(true))
	out, err := w.SerializeObject(ref, dict)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	// Keys emit in sorted order for deterministic output.
	want := "3 0 obj\n<</A true/B 1.5>>\nendobj\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestFmtFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{595.28, "595.28"},
		{2.0001, "2.0001"},
		{3.00001, "3"},
	}
	for _, c := range cases {
		if got := fmtFloat(c.in); got != c.want {
			t.Errorf("fmtFloat(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeString(t *testing.T) {
	got := string(escapeString([]byte("a(b)c\\d\ne")))
	want := `(a\(b\)c\\d\ne)`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
