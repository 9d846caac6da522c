package visual

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the type tag of a Value. It doubles as the property type passed
// to the native side when registering a property.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVector2
	KindVector3
	KindVector4
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindBool:
		return "BOOLEAN"
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindVector2:
		return "VECTOR2"
	case KindVector3:
		return "VECTOR3"
	case KindVector4:
		return "VECTOR4"
	case KindArray:
		return "ARRAY"
	case KindMap:
		return "MAP"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Vector2 struct{ X, Y float32 }

type Vector3 struct{ X, Y, Z float32 }

type Vector4 struct{ X, Y, Z, W float32 }

// Value is a property value as understood by the native toolkit. The zero
// Value has KindNone.
type Value struct {
	kind Kind
	b    bool
	i    int
	f    float32
	s    string
	vec  [4]float32
	arr  []Value
	m    *Map
}

func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Int(i int) Value         { return Value{kind: KindInt, i: i} }
func Float(f float32) Value   { return Value{kind: KindFloat, f: f} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

func Vec2(x, y float32) Value {
	return Value{kind: KindVector2, vec: [4]float32{x, y}}
}

func Vec3(x, y, z float32) Value {
	return Value{kind: KindVector3, vec: [4]float32{x, y, z}}
}

func Vec4(x, y, z, w float32) Value {
	return Value{kind: KindVector4, vec: [4]float32{x, y, z, w}}
}

// ValueOf wraps a Go value. Integer and float widths are narrowed to the
// native int and float32.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int32:
		return Int(int(x)), nil
	case int64:
		return Int(int(x)), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(float32(x)), nil
	case string:
		return String(x), nil
	case Vector2:
		return Vec2(x.X, x.Y), nil
	case Vector3:
		return Vec3(x.X, x.Y, x.Z), nil
	case Vector4:
		return Vec4(x.X, x.Y, x.Z, x.W), nil
	case *Map:
		return MapValue(x), nil
	case []any:
		vs := make([]Value, len(x))
		for i, e := range x {
			v, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			vs[i] = v
		}
		return Array(vs...), nil
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(x) {
			v, err := ValueOf(x[k])
			if err != nil {
				return Value{}, err
			}
			m.Set(k, v)
		}
		return MapValue(m), nil
	default:
		return Value{}, fmt.Errorf("visual: value of type %T: %w", x, ErrInvalidArgument)
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) AsMap() (*Map, bool)      { return v.m, v.kind == KindMap }

func (v Value) AsVector2() (Vector2, bool) {
	return Vector2{v.vec[0], v.vec[1]}, v.kind == KindVector2
}

func (v Value) AsVector3() (Vector3, bool) {
	return Vector3{v.vec[0], v.vec[1], v.vec[2]}, v.kind == KindVector3
}

func (v Value) AsVector4() (Vector4, bool) {
	return Vector4{v.vec[0], v.vec[1], v.vec[2], v.vec[3]}, v.kind == KindVector4
}

// AsFloat also converts integers.
func (v Value) AsFloat() (float32, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float32(v.i), true
	default:
		return 0, false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNone:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindVector2:
		return json.Marshal(v.vec[:2])
	case KindVector3:
		return json.Marshal(v.vec[:3])
	case KindVector4:
		return json.Marshal(v.vec[:4])
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("visual: marshal %s: %w", v.kind, ErrInvalidArgument)
	}
}

// UnmarshalYAML maps scalars by tag, numeric sequences of length 2 to 4 to
// vectors, other sequences to arrays and mappings to maps.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	case yaml.ScalarNode:
		return v.unmarshalScalar(node)
	case yaml.SequenceNode:
		vs := make([]Value, len(node.Content))
		for i, n := range node.Content {
			if err := vs[i].UnmarshalYAML(n); err != nil {
				return err
			}
		}
		*v = sequence(vs)
		return nil
	case yaml.MappingNode:
		m := NewMap()
		if err := m.UnmarshalYAML(node); err != nil {
			return err
		}
		*v = MapValue(m)
		return nil
	default:
		return fmt.Errorf("visual: line %d: unexpected yaml node: %w", node.Line, ErrInvalidArgument)
	}
}

func (v *Value) unmarshalScalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		*v = Value{}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!int":
		var i int
		if err := node.Decode(&i); err != nil {
			return err
		}
		*v = Int(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Float(float32(f))
	default:
		*v = String(node.Value)
	}
	return nil
}

func sequence(vs []Value) Value {
	if len(vs) < 2 || len(vs) > 4 {
		return Array(vs...)
	}
	var vec [4]float32
	for i, e := range vs {
		f, ok := e.AsFloat()
		if !ok {
			return Array(vs...)
		}
		vec[i] = f
	}
	switch len(vs) {
	case 2:
		return Vec2(vec[0], vec[1])
	case 3:
		return Vec3(vec[0], vec[1], vec[2])
	default:
		return Vec4(vec[0], vec[1], vec[2], vec[3])
	}
}
