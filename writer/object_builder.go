package writer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/eazisol/podoc/ir/raw"
	"github.com/eazisol/podoc/ir/semantic"
)

// buildFont serializes a font resource into the object graph and returns
// its reference. Type1 core fonts become a single dictionary; Type0 fonts
// get descendant CIDFont, descriptor, embedded font file, and ToUnicode
// CMap objects.
func buildFont(g *objectGraph, font *semantic.Font) raw.ObjectRef {
	if font == nil || font.Subtype != "Type0" {
		d := raw.Dict()
		d.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
		subtype := "Type1"
		base := "Helvetica"
		if font != nil {
			if font.Subtype != "" {
				subtype = font.Subtype
			}
			if font.BaseFont != "" {
				base = font.BaseFont
			}
		}
		d.Set(raw.NameLiteral("Subtype"), raw.NameLiteral(subtype))
		d.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(base))
		if font != nil && font.Encoding != "" {
			d.Set(raw.NameLiteral("Encoding"), raw.NameLiteral(font.Encoding))
		}
		return g.add(d)
	}

	descendant := font.DescendantFont
	descriptorRef := buildFontDescriptor(g, descendant.Descriptor)

	cidDict := raw.Dict()
	cidDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
	cidDict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral(descendant.Subtype))
	cidDict.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(descendant.BaseFont))
	sysDict := raw.Dict()
	sysDict.Set(raw.NameLiteral("Registry"), raw.Str([]byte(descendant.CIDSystemInfo.Registry)))
	sysDict.Set(raw.NameLiteral("Ordering"), raw.Str([]byte(descendant.CIDSystemInfo.Ordering)))
	sysDict.Set(raw.NameLiteral("Supplement"), raw.NumberInt(int64(descendant.CIDSystemInfo.Supplement)))
	cidDict.Set(raw.NameLiteral("CIDSystemInfo"), sysDict)
	cidDict.Set(raw.NameLiteral("DW"), raw.NumberInt(int64(descendant.DW)))
	cidDict.Set(raw.NameLiteral("W"), widthsArray(descendant.W))
	cidDict.Set(raw.NameLiteral("CIDToGIDMap"), raw.NameLiteral("Identity"))
	cidDict.Set(raw.NameLiteral("FontDescriptor"), raw.Ref(descriptorRef.Num, descriptorRef.Gen))
	cidRef := g.add(cidDict)

	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
	d.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Type0"))
	d.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(font.BaseFont))
	d.Set(raw.NameLiteral("Encoding"), raw.NameLiteral(font.Encoding))
	d.Set(raw.NameLiteral("DescendantFonts"), raw.NewArray(raw.Ref(cidRef.Num, cidRef.Gen)))
	if len(font.ToUnicode) > 0 {
		cmap := toUnicodeCMap(font.ToUnicode)
		cmapDict := raw.Dict()
		cmapDict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(cmap))))
		cmapRef := g.add(raw.NewStream(cmapDict, cmap))
		d.Set(raw.NameLiteral("ToUnicode"), raw.Ref(cmapRef.Num, cmapRef.Gen))
	}
	return g.add(d)
}

func buildFontDescriptor(g *objectGraph, fd *semantic.FontDescriptor) raw.ObjectRef {
	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("FontDescriptor"))
	d.Set(raw.NameLiteral("FontName"), raw.NameLiteral(fd.FontName))
	d.Set(raw.NameLiteral("Flags"), raw.NumberInt(int64(fd.Flags)))
	d.Set(raw.NameLiteral("ItalicAngle"), raw.NumberFloat(fd.ItalicAngle))
	d.Set(raw.NameLiteral("Ascent"), raw.NumberFloat(fd.Ascent))
	d.Set(raw.NameLiteral("Descent"), raw.NumberFloat(fd.Descent))
	d.Set(raw.NameLiteral("CapHeight"), raw.NumberFloat(fd.CapHeight))
	d.Set(raw.NameLiteral("StemV"), raw.NumberInt(int64(fd.StemV)))
	d.Set(raw.NameLiteral("FontBBox"), raw.NewArray(
		raw.NumberFloat(fd.FontBBox[0]),
		raw.NumberFloat(fd.FontBBox[1]),
		raw.NumberFloat(fd.FontBBox[2]),
		raw.NumberFloat(fd.FontBBox[3]),
	))
	if len(fd.FontFile) > 0 {
		fileDict := raw.Dict()
		fileDict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(fd.FontFile))))
		fileDict.Set(raw.NameLiteral("Length1"), raw.NumberInt(int64(len(fd.FontFile))))
		fileRef := g.add(raw.NewStream(fileDict, fd.FontFile))
		key := fd.FontFileType
		if key == "" {
			key = "FontFile2"
		}
		d.Set(raw.NameLiteral(key), raw.Ref(fileRef.Num, fileRef.Gen))
	}
	return g.add(d)
}

func widthsArray(w map[int]int) *raw.ArrayObj {
	cids := make([]int, 0, len(w))
	for cid := range w {
		cids = append(cids, cid)
	}
	sort.Ints(cids)
	arr := raw.NewArray()
	for _, cid := range cids {
		arr.Append(raw.NumberInt(int64(cid)))
		arr.Append(raw.NewArray(raw.NumberInt(int64(w[cid]))))
	}
	return arr
}

// toUnicodeCMap emits a minimal CMap stream mapping CIDs back to Unicode.
func toUnicodeCMap(m map[int][]rune) []byte {
	cids := make([]int, 0, len(m))
	for cid := range m {
		cids = append(cids, cid)
	}
	sort.Ints(cids)

	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n")
	b.WriteString("12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo <</Registry (Adobe) /Ordering (UCS) /Supplement 0>> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for start := 0; start < len(cids); start += 100 {
		end := start + 100
		if end > len(cids) {
			end = len(cids)
		}
		fmt.Fprintf(&b, "%d beginbfchar\n", end-start)
		for _, cid := range cids[start:end] {
			fmt.Fprintf(&b, "<%04X> <", cid)
			for _, r := range m[cid] {
				fmt.Fprintf(&b, "%04X", r)
			}
			b.WriteString(">\n")
		}
		b.WriteString("endbfchar\n")
	}
	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.Bytes()
}

// buildImage serializes an image XObject, compressing raw samples with
// Flate and passing pre-encoded DCT data through untouched.
func buildImage(g *objectGraph, img *semantic.XObject) raw.ObjectRef {
	var smaskRef *raw.ObjectRef
	if img.SMask != nil {
		ref := buildImage(g, img.SMask)
		smaskRef = &ref
	}

	d := raw.Dict()
	d.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	d.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
	d.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(img.Width)))
	d.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(img.Height)))
	cs := "DeviceRGB"
	if img.ColorSpace != nil {
		if dev, ok := img.ColorSpace.(semantic.DeviceColorSpace); ok && dev.Name != "" {
			cs = dev.Name
		}
	}
	d.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral(cs))
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	d.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(int64(bpc)))
	if img.Interpolate {
		d.Set(raw.NameLiteral("Interpolate"), raw.Bool(true))
	}
	if smaskRef != nil {
		d.Set(raw.NameLiteral("SMask"), raw.Ref(smaskRef.Num, smaskRef.Gen))
	}

	data := img.Data
	switch img.Filter {
	case "DCTDecode":
		d.Set(raw.NameLiteral("Filter"), raw.NameLiteral("DCTDecode"))
	default:
		if compressed, err := flate(data); err == nil {
			d.Set(raw.NameLiteral("Filter"), raw.NameLiteral("FlateDecode"))
			data = compressed
		}
	}
	d.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(data))))
	return g.add(raw.NewStream(d, data))
}
