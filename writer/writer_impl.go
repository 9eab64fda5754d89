package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"

	"github.com/eazisol/podoc/ir/raw"
	"github.com/eazisol/podoc/ir/semantic"
)

type impl struct{}

// objectGraph accumulates numbered indirect objects during serialization.
type objectGraph struct {
	objects map[raw.ObjectRef]raw.Object
	next    int
}

func newObjectGraph() *objectGraph {
	return &objectGraph{objects: make(map[raw.ObjectRef]raw.Object), next: 1}
}

func (g *objectGraph) reserve() raw.ObjectRef {
	ref := raw.ObjectRef{Num: g.next, Gen: 0}
	g.next++
	return ref
}

func (g *objectGraph) set(ref raw.ObjectRef, obj raw.Object) { g.objects[ref] = obj }

func (g *objectGraph) add(obj raw.Object) raw.ObjectRef {
	ref := g.reserve()
	g.set(ref, obj)
	return ref
}

func (w *impl) Write(ctx Context, doc *semantic.Document, out WriterAt, cfg Config) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("write cancelled")
	default:
	}

	g := newObjectGraph()
	catalogRef := g.reserve()
	pagesRef := g.reserve()

	fontRefs := make(map[*semantic.Font]raw.ObjectRef)
	imageRefs := make(map[string]raw.ObjectRef)

	pageRefs := make([]raw.ObjectRef, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		pageRefs = append(pageRefs, w.buildPage(g, p, pagesRef, cfg, fontRefs, imageRefs))
	}

	kids := raw.NewArray()
	for _, r := range pageRefs {
		kids.Append(raw.Ref(r.Num, r.Gen))
	}
	pagesDict := raw.Dict()
	pagesDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	pagesDict.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(len(pageRefs))))
	pagesDict.Set(raw.NameLiteral("Kids"), kids)
	g.set(pagesRef, pagesDict)

	catalogDict := raw.Dict()
	catalogDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Catalog"))
	catalogDict.Set(raw.NameLiteral("Pages"), raw.Ref(pagesRef.Num, pagesRef.Gen))
	if doc.Lang != "" {
		catalogDict.Set(raw.NameLiteral("Lang"), raw.Str([]byte(doc.Lang)))
	}
	g.set(catalogRef, catalogDict)

	var infoRef *raw.ObjectRef
	if doc.Info != nil {
		ref := g.add(infoDict(doc.Info))
		infoRef = &ref
	}

	return w.emit(g, out, cfg, catalogRef, infoRef)
}

func (w *impl) buildPage(g *objectGraph, p *semantic.Page, parent raw.ObjectRef, cfg Config, fontRefs map[*semantic.Font]raw.ObjectRef, imageRefs map[string]raw.ObjectRef) raw.ObjectRef {
	var contentData []byte
	for _, cs := range p.Contents {
		if len(cs.RawBytes) > 0 {
			contentData = append(contentData, cs.RawBytes...)
			continue
		}
		contentData = append(contentData, serializeOperations(cs.Operations)...)
	}
	contentDict := raw.Dict()
	if cfg.ContentFilter == FilterFlate {
		if compressed, err := flate(contentData); err == nil {
			contentDict.Set(raw.NameLiteral("Filter"), raw.NameLiteral("FlateDecode"))
			contentData = compressed
		}
	}
	contentDict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(contentData))))
	contentRef := g.add(raw.NewStream(contentDict, contentData))

	pageDict := raw.Dict()
	pageDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Page"))
	pageDict.Set(raw.NameLiteral("Parent"), raw.Ref(parent.Num, parent.Gen))
	pageDict.Set(raw.NameLiteral("MediaBox"), raw.NewArray(
		raw.NumberFloat(p.MediaBox.LLX),
		raw.NumberFloat(p.MediaBox.LLY),
		raw.NumberFloat(p.MediaBox.URX),
		raw.NumberFloat(p.MediaBox.URY),
	))
	if p.Rotate != 0 {
		pageDict.Set(raw.NameLiteral("Rotate"), raw.NumberInt(int64(p.Rotate)))
	}
	pageDict.Set(raw.NameLiteral("Resources"), w.buildResources(g, p.Resources, fontRefs, imageRefs))
	pageDict.Set(raw.NameLiteral("Contents"), raw.Ref(contentRef.Num, contentRef.Gen))
	return g.add(pageDict)
}

func (w *impl) buildResources(g *objectGraph, res *semantic.Resources, fontRefs map[*semantic.Font]raw.ObjectRef, imageRefs map[string]raw.ObjectRef) *raw.DictObj {
	resDict := raw.Dict()
	fontDict := raw.Dict()
	if res != nil {
		names := make([]string, 0, len(res.Fonts))
		for name := range res.Fonts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			font := res.Fonts[name]
			ref, ok := fontRefs[font]
			if !ok {
				ref = buildFont(g, font)
				fontRefs[font] = ref
			}
			fontDict.Set(raw.NameLiteral(name), raw.Ref(ref.Num, ref.Gen))
		}
	}
	if fontDict.Len() == 0 {
		// Always expose the default font so bare pages stay valid.
		helv := raw.Dict()
		helv.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
		helv.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Type1"))
		helv.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral("Helvetica"))
		ref := g.add(helv)
		fontDict.Set(raw.NameLiteral("F1"), raw.Ref(ref.Num, ref.Gen))
	}
	resDict.Set(raw.NameLiteral("Font"), fontDict)

	if res != nil && len(res.XObjects) > 0 {
		xobjDict := raw.Dict()
		names := make([]string, 0, len(res.XObjects))
		for name := range res.XObjects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			xobj := res.XObjects[name]
			ref, ok := imageRefs[name]
			if !ok {
				ref = buildImage(g, &xobj)
				imageRefs[name] = ref
			}
			xobjDict.Set(raw.NameLiteral(name), raw.Ref(ref.Num, ref.Gen))
		}
		resDict.Set(raw.NameLiteral("XObject"), xobjDict)
	}
	return resDict
}

func (w *impl) emit(g *objectGraph, out WriterAt, cfg Config, catalogRef raw.ObjectRef, infoRef *raw.ObjectRef) error {
	version := cfg.Version
	if version == "" {
		version = PDF17
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", version)

	ordered := make([]raw.ObjectRef, 0, len(g.objects))
	for ref := range g.objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	offsets := make(map[int]int64)
	for _, ref := range ordered {
		offsets[ref.Num] = int64(buf.Len())
		serialized, err := w.SerializeObject(ref, g.objects[ref])
		if err != nil {
			return err
		}
		buf.Write(serialized)
	}

	xrefOffset := buf.Len()
	maxObjNum := 0
	if len(ordered) > 0 {
		maxObjNum = ordered[len(ordered)-1].Num
	}
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObjNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObjNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	buf.WriteString("trailer\n<<")
	fmt.Fprintf(&buf, "/Size %d ", maxObjNum+1)
	fmt.Fprintf(&buf, "/Root %d 0 R", catalogRef.Num)
	if infoRef != nil {
		fmt.Fprintf(&buf, " /Info %d 0 R", infoRef.Num)
	}
	fmt.Fprintf(&buf, ">>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

func infoDict(info *semantic.DocumentInfo) *raw.DictObj {
	d := raw.Dict()
	if info.Title != "" {
		d.Set(raw.NameLiteral("Title"), raw.Str([]byte(info.Title)))
	}
	if info.Author != "" {
		d.Set(raw.NameLiteral("Author"), raw.Str([]byte(info.Author)))
	}
	if info.Subject != "" {
		d.Set(raw.NameLiteral("Subject"), raw.Str([]byte(info.Subject)))
	}
	if info.Creator != "" {
		d.Set(raw.NameLiteral("Creator"), raw.Str([]byte(info.Creator)))
	}
	if info.Producer != "" {
		d.Set(raw.NameLiteral("Producer"), raw.Str([]byte(info.Producer)))
	}
	return d
}

func flate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
