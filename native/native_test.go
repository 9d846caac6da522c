package native

import (
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry[string](nil)

	a := r.Register("a")
	b := r.Register("b")
	if a == b {
		t.Fatalf("Register returned duplicate id %d", a)
	}
	if a == 0 || b == 0 {
		t.Fatal("Register returned the zero id")
	}

	if v, ok := r.Lookup(a); !ok || v != "a" {
		t.Errorf("Lookup(a) = %q, %v, want a, true", v, ok)
	}

	if v, ok := r.Unregister(a); !ok || v != "a" {
		t.Errorf("Unregister(a) = %q, %v, want a, true", v, ok)
	}
	if _, ok := r.Lookup(a); ok {
		t.Error("Lookup after Unregister succeeded")
	}
	if _, ok := r.Unregister(a); ok {
		t.Error("second Unregister succeeded")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

type countingLocker struct {
	sync.Mutex
	locks int
}

func (l *countingLocker) Lock() {
	l.Mutex.Lock()
	l.locks++
}

func TestRegistryUsesInjectedLock(t *testing.T) {
	l := &countingLocker{}
	r := NewRegistry[int](l)

	id := r.Register(1)
	r.Lookup(id)
	r.Unregister(id)

	if l.locks != 3 {
		t.Errorf("locks = %d, want 3", l.locks)
	}
}

func TestHandleReleaseOnce(t *testing.T) {
	var destroyed []uintptr
	h := NewHandle(42, true, func(p uintptr) {
		destroyed = append(destroyed, p)
	})

	if !h.Valid() || h.Ptr() != 42 {
		t.Fatalf("Ptr() = %d, want 42", h.Ptr())
	}

	h.Release()
	h.Release()

	if len(destroyed) != 1 || destroyed[0] != 42 {
		t.Errorf("destroyed = %v, want [42]", destroyed)
	}
	if h.Valid() || h.Owned() {
		t.Error("handle still valid or owned after Release")
	}
}

func TestHandleBorrowed(t *testing.T) {
	called := false
	h := NewHandle(7, false, func(uintptr) { called = true })
	h.Release()

	if called {
		t.Error("borrowed handle was destroyed")
	}
	if h.Ptr() != 0 {
		t.Errorf("Ptr() = %d after Release, want 0", h.Ptr())
	}
}

func TestHandleNullOwned(t *testing.T) {
	called := false
	h := NewHandle(0, true, func(uintptr) { called = true })
	h.Release()

	if called {
		t.Error("destroy called for a null handle")
	}
}
