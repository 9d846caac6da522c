package visual

import (
	"errors"
	"testing"

	"github.com/dialup-inc/camkit/native"
)

type fakeNative struct {
	next    uintptr
	created []string
	deleted []uintptr
	err     error
}

func (f *fakeNative) NewPropertyRegistration(typ uintptr, name string, index int, kind Kind, setter, getter native.ID) (uintptr, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	f.created = append(f.created, name)
	return f.next, nil
}

func (f *fakeNative) DeletePropertyRegistration(h uintptr) {
	f.deleted = append(f.deleted, h)
}

func TestRegister(t *testing.T) {
	nat := &fakeNative{}
	r := NewRegistrar(nat, 0x1000)

	values := map[uintptr]Value{}
	reg, err := r.Register("radius", PropertyIndexMin, KindFloat,
		func(obj uintptr, index int, v Value) { values[obj] = v },
		func(obj uintptr, index int) Value { return values[obj] },
	)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Handle() == 0 || reg.Name() != "radius" || reg.Kind() != KindFloat {
		t.Fatalf("unexpected registration %+v", reg)
	}

	if err := r.Set(reg.SetterID(), 7, reg.Index(), Float(2.5)); err != nil {
		t.Fatal(err)
	}
	v, err := r.Get(reg.GetterID(), 7, reg.Index())
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := v.AsFloat(); f != 2.5 {
		t.Errorf("Get() = %v", f)
	}

	if err := r.Set(reg.SetterID(), 7, reg.Index(), String("big")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(string) error = %v", err)
	}
	// Object 8 was never set, so the getter returns a KindNone value.
	if _, err := r.Get(reg.GetterID(), 8, reg.Index()); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Get(unset) error = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	nat := &fakeNative{}
	r := NewRegistrar(nat, 1)
	set := func(uintptr, int, Value) {}
	get := func(uintptr, int) Value { return Int(0) }

	tests := []struct {
		name  string
		index int
		set   Setter
		get   Getter
	}{
		{"", PropertyIndexMin, set, get},
		{"p", PropertyIndexMin - 1, set, get},
		{"p", PropertyIndexMax + 1, set, get},
		{"p", PropertyIndexMin, nil, get},
		{"p", PropertyIndexMin, set, nil},
	}
	for _, tt := range tests {
		_, err := r.Register(tt.name, tt.index, KindInt, tt.set, tt.get)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Register(%q, %d) error = %v", tt.name, tt.index, err)
		}
	}
	if len(nat.created) != 0 {
		t.Errorf("native called for invalid registrations: %v", nat.created)
	}

	if _, err := r.Register("p", PropertyIndexMax, KindInt, set, get); err != nil {
		t.Errorf("Register at upper bound: %v", err)
	}
}

func TestRegisterNativeFailure(t *testing.T) {
	boom := errors.New("boom")
	nat := &fakeNative{err: boom}
	r := NewRegistrar(nat, 1)

	_, err := r.Register("p", PropertyIndexMin, KindInt,
		func(uintptr, int, Value) {}, func(uintptr, int) Value { return Int(0) })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("callbacks leaked: %d", r.Len())
	}
}

func TestRegistrationClose(t *testing.T) {
	nat := &fakeNative{}
	r := NewRegistrar(nat, 1)

	reg, err := r.Register("p", PropertyIndexMin, KindBool,
		func(uintptr, int, Value) {}, func(uintptr, int) Value { return Bool(true) })
	if err != nil {
		t.Fatal(err)
	}
	h := reg.Handle()

	for i := 0; i < 3; i++ {
		if err := reg.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if len(nat.deleted) != 1 || nat.deleted[0] != h {
		t.Errorf("deleted = %v, want [%d]", nat.deleted, h)
	}
	if reg.Handle() != 0 {
		t.Error("handle still set after Close")
	}
	if err := r.Set(reg.SetterID(), 1, reg.Index(), Bool(false)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Set after Close error = %v", err)
	}
	if _, err := r.Get(reg.GetterID(), 1, reg.Index()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Close error = %v", err)
	}
}
