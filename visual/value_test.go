package visual

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValueJSON(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Value{}, "null"},
		{Bool(true), "true"},
		{Int(-3), "-3"},
		{Float(0.1), "0.1"},
		{String("hi"), `"hi"`},
		{Vec2(1, 2), "[1,2]"},
		{Vec3(1, 2, 3), "[1,2,3]"},
		{Vec4(0, 0.5, 1, 1), "[0,0.5,1,1]"},
		{Array(), "[]"},
		{Array(Int(1), String("x")), `[1,"x"]`},
		{MapValue(nil), "{}"},
		{MapValue(NewMap().Set("b", Int(1)).Set("a", Int(2))), `{"b":1,"a":2}`},
	}
	for _, tt := range tests {
		if got := mustJSON(t, tt.v); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(map[string]any{
		"z":    1.5,
		"a":    []any{true, int64(7)},
		"size": Vector2{3, 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mustJSON(t, v), `{"a":[true,7],"size":[3,4],"z":1.5}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if _, err := ValueOf(struct{}{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ValueOf(struct{}{}) error = %v", err)
	}
}

func TestValueAccessors(t *testing.T) {
	if f, ok := Int(4).AsFloat(); !ok || f != 4 {
		t.Errorf("Int(4).AsFloat() = %v, %v", f, ok)
	}
	if _, ok := String("4").AsInt(); ok {
		t.Error("String.AsInt() ok")
	}
	if v, ok := Vec3(1, 2, 3).AsVector3(); !ok || v != (Vector3{1, 2, 3}) {
		t.Errorf("AsVector3() = %v, %v", v, ok)
	}
	if _, ok := Vec3(1, 2, 3).AsVector4(); ok {
		t.Error("Vec3.AsVector4() ok")
	}
}

func TestMapSetKeepsPosition(t *testing.T) {
	m := NewMap().Set("a", Int(1)).Set("b", Int(2)).Set("a", Int(3))
	if got := mustJSON(t, m); got != `{"a":3,"b":2}` {
		t.Errorf("got %s", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestMapZeroValue(t *testing.T) {
	var nilMap *Map
	if _, ok := nilMap.Get("a"); ok {
		t.Error("Get on nil map found a key")
	}
	if keys := nilMap.Keys(); keys != nil {
		t.Errorf("Keys() on nil map = %v", keys)
	}

	var m Map
	if _, ok := m.Get("a"); ok {
		t.Error("Get on empty map found a key")
	}
	m.Set("a", Int(1)).Set("b", String("x"))
	if v, ok := m.Get("a"); !ok || v.Kind() != KindInt {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if got := mustJSON(t, &m); got != `{"a":1,"b":"x"}` {
		t.Errorf("got %s", got)
	}
}

func TestAnimatorYAML(t *testing.T) {
	src := `
alphaFunction: EASE_OUT
startTime: 100
endTime: 600
target: icon
property: MixColor
targetValue: [0.2, 0.4, 0.6]
`
	var a Animator
	if err := yaml.Unmarshal([]byte(src), &a); err != nil {
		t.Fatal(err)
	}
	want := `{"target":"icon","property":"mixColor","targetValue":[0.2,0.4,0.6],` +
		`"animator":{"alphaFunction":"EASE_OUT","timePeriod":{"duration":0.5,"delay":0.1}}}`
	if got := mustJSON(t, a.Compose()); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	if err := yaml.Unmarshal([]byte("alphaFunction: WOBBLE"), &a); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad alpha function error = %v", err)
	}
}

func TestValueYAML(t *testing.T) {
	tests := []struct{ src, want string }{
		{"true", "true"},
		{"3", "3"},
		{"2.5", "2.5"},
		{"hello", `"hello"`},
		{"~", "null"},
		{"[1, 2]", "[1,2]"},
		{"[1, 2, 3, 4, 5]", "[1,2,3,4,5]"},
		{"[1, x]", `[1,"x"]`},
		{"{b: 1, a: [1, 2, 3]}", `{"b":1,"a":[1,2,3]}`},
	}
	for _, tt := range tests {
		var v Value
		if err := yaml.Unmarshal([]byte(tt.src), &v); err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if got := mustJSON(t, v); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}
