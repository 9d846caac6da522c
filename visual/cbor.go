package visual

import "github.com/fxamacker/cbor/v2"

var encMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}

// Interface returns v as plain Go values. Vectors become []float32 and
// maps map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindVector2:
		return append([]float32(nil), v.vec[:2]...)
	case KindVector3:
		return append([]float32(nil), v.vec[:3]...)
	case KindVector4:
		return append([]float32(nil), v.vec[:4]...)
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out[k] = m.values[k].Interface()
	}
	return out
}

// MarshalCBOR uses the core deterministic encoding, so map keys are sorted
// rather than kept in insertion order.
func (v Value) MarshalCBOR() ([]byte, error) {
	return encMode.Marshal(v.Interface())
}

func (m *Map) MarshalCBOR() ([]byte, error) {
	return encMode.Marshal(m.Interface())
}
