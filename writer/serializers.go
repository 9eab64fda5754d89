package writer

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/eazisol/podoc/ir/raw"
	"github.com/eazisol/podoc/ir/semantic"
)

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes(), nil
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + v.Value())
	case raw.NumberObj:
		if v.IsInteger() {
			return []byte(strconv.FormatInt(v.Int(), 10))
		}
		return []byte(fmtFloat(v.Float()))
	case raw.BoolObj:
		if v.Value() {
			return []byte("true")
		}
		return []byte("false")
	case raw.StringObj:
		return escapeString(v.Value())
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		var b bytes.Buffer
		b.WriteString("<<")
		keys := make([]string, 0, len(v.KV))
		for k := range v.KV {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("/" + k + " ")
			b.Write(serializePrimitive(v.KV[k]))
		}
		b.WriteString(">>")
		return b.Bytes()
	case *raw.StreamObj:
		var b bytes.Buffer
		b.Write(serializePrimitive(v.Dict))
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(fmt.Sprintf("%d %d R", v.Ref().Num, v.Ref().Gen))
	default:
		return []byte("null")
	}
}

// fmtFloat renders a float the way PDF consumers expect: plain decimal,
// no exponent, trailing zeros trimmed.
func fmtFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = trimTrailingZeros(s)
	return s
}

func trimTrailingZeros(s string) string {
	if !bytes.ContainsRune([]byte(s), '.') {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

// escapeString writes a literal PDF string, escaping delimiters.
func escapeString(data []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, c := range data {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

// serializeOperations flattens content-stream operations into operator
// syntax.
func serializeOperations(ops []semantic.Operation) []byte {
	var b bytes.Buffer
	for _, op := range ops {
		for _, operand := range op.Operands {
			writeOperand(&b, operand)
			b.WriteByte(' ')
		}
		b.WriteString(op.Operator)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func writeOperand(b *bytes.Buffer, operand semantic.Operand) {
	switch v := operand.(type) {
	case semantic.NumberOperand:
		b.WriteString(fmtFloat(v.Value))
	case semantic.NameOperand:
		b.WriteString("/" + v.Value)
	case semantic.StringOperand:
		b.Write(escapeString(v.Value))
	case semantic.ArrayOperand:
		b.WriteByte('[')
		for i, item := range v.Values {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeOperand(b, item)
		}
		b.WriteByte(']')
	}
}
