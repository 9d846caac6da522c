package visual

import (
	"fmt"
	"sync"

	"github.com/dialup-inc/camkit/native"
)

// Custom properties of a registered type must use indices in this range.
const (
	PropertyIndexMin = 10000000
	PropertyIndexMax = 19999999
)

type (
	Setter func(object uintptr, index int, v Value)
	Getter func(object uintptr, index int) Value
)

// Native is the toolkit's property registration API. Setter and getter are
// passed as callback ids; the toolkit calls back into Registrar.Set and
// Registrar.Get with them.
type Native interface {
	NewPropertyRegistration(typeRegistration uintptr, name string, index int, kind Kind, setter, getter native.ID) (uintptr, error)
	DeletePropertyRegistration(h uintptr)
}

type setterEntry struct {
	kind Kind
	fn   Setter
}

type getterEntry struct {
	kind Kind
	fn   Getter
}

// Registrar registers properties on one native type registration and
// routes the toolkit's callbacks to the Go setters and getters.
type Registrar struct {
	nat     Native
	typ     uintptr
	mu      sync.Mutex
	setters *native.Registry[setterEntry]
	getters *native.Registry[getterEntry]
}

func NewRegistrar(nat Native, typeRegistration uintptr) *Registrar {
	r := &Registrar{nat: nat, typ: typeRegistration}
	r.setters = native.NewRegistry[setterEntry](&r.mu)
	r.getters = native.NewRegistry[getterEntry](&r.mu)
	return r
}

func (r *Registrar) Register(name string, index int, kind Kind, set Setter, get Getter) (*PropertyRegistration, error) {
	switch {
	case name == "":
		return nil, fmt.Errorf("visual: register property: empty name: %w", ErrInvalidArgument)
	case index < PropertyIndexMin || index > PropertyIndexMax:
		return nil, fmt.Errorf("visual: register %s: index %d outside [%d, %d]: %w",
			name, index, PropertyIndexMin, PropertyIndexMax, ErrInvalidArgument)
	case set == nil || get == nil:
		return nil, fmt.Errorf("visual: register %s: nil setter or getter: %w", name, ErrInvalidArgument)
	}

	sid := r.setters.Register(setterEntry{kind, set})
	gid := r.getters.Register(getterEntry{kind, get})

	h, err := r.nat.NewPropertyRegistration(r.typ, name, index, kind, sid, gid)
	if err != nil {
		r.setters.Unregister(sid)
		r.getters.Unregister(gid)
		return nil, fmt.Errorf("visual: register %s: %w", name, err)
	}

	return &PropertyRegistration{
		name:   name,
		index:  index,
		kind:   kind,
		r:      r,
		setter: sid,
		getter: gid,
		handle: native.NewHandle(h, true, r.nat.DeletePropertyRegistration),
	}, nil
}

// Set dispatches a native setter callback.
func (r *Registrar) Set(setter native.ID, object uintptr, index int, v Value) error {
	e, ok := r.setters.Lookup(setter)
	if !ok {
		return fmt.Errorf("visual: setter %d: %w", setter, ErrNotFound)
	}
	if v.Kind() != e.kind {
		return fmt.Errorf("visual: setter %d: got %s, want %s: %w", setter, v.Kind(), e.kind, ErrTypeMismatch)
	}
	e.fn(object, index, v)
	return nil
}

// Get dispatches a native getter callback.
func (r *Registrar) Get(getter native.ID, object uintptr, index int) (Value, error) {
	e, ok := r.getters.Lookup(getter)
	if !ok {
		return Value{}, fmt.Errorf("visual: getter %d: %w", getter, ErrNotFound)
	}
	v := e.fn(object, index)
	if v.Kind() != e.kind {
		return Value{}, fmt.Errorf("visual: getter %d: got %s, want %s: %w", getter, v.Kind(), e.kind, ErrTypeMismatch)
	}
	return v, nil
}

// Len reports the number of live registrations.
func (r *Registrar) Len() int {
	return r.setters.Len()
}

// PropertyRegistration owns one native property registration.
type PropertyRegistration struct {
	name   string
	index  int
	kind   Kind
	r      *Registrar
	setter native.ID
	getter native.ID
	handle *native.Handle
	once   sync.Once
}

func (p *PropertyRegistration) Name() string { return p.name }
func (p *PropertyRegistration) Index() int   { return p.index }
func (p *PropertyRegistration) Kind() Kind   { return p.kind }

func (p *PropertyRegistration) SetterID() native.ID { return p.setter }
func (p *PropertyRegistration) GetterID() native.ID { return p.getter }

// Handle returns the native handle, or 0 once closed.
func (p *PropertyRegistration) Handle() uintptr { return p.handle.Ptr() }

// Close deletes the native registration and drops the callbacks. Calling
// it again is a no-op.
func (p *PropertyRegistration) Close() error {
	p.once.Do(func() {
		p.handle.Release()
		p.r.setters.Unregister(p.setter)
		p.r.getters.Unregister(p.getter)
	})
	return nil
}
