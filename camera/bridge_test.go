package camera

import (
	"errors"
	"sync"
	"testing"
)

func TestListenerSetOrder(t *testing.T) {
	var s listenerSet[int]
	var got []string

	s.add(func(int) { got = append(got, "a") })
	sub, _ := s.add(func(int) { got = append(got, "b") })
	s.add(func(int) { got = append(got, "c") })

	s.emit(1)
	sub.Remove()
	s.emit(2)

	want := []string{"a", "b", "c", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestListenerSetHooks(t *testing.T) {
	var attached, detached int
	s := listenerSet[int]{
		attach: func() error { attached++; return nil },
		detach: func() { detached++ },
	}

	subs := make([]*Subscription, 3)
	for i := range subs {
		sub, err := s.add(func(int) {})
		if err != nil {
			t.Fatal(err)
		}
		subs[i] = sub
	}
	for _, sub := range subs {
		sub.Remove()
		sub.Remove()
	}

	if attached != 1 || detached != 1 {
		t.Errorf("attached, detached = %d, %d, want 1, 1", attached, detached)
	}
}

func TestListenerSetAttachFailure(t *testing.T) {
	boom := errors.New("boom")
	s := listenerSet[int]{
		attach: func() error { return boom },
	}

	if _, err := s.add(func(int) {}); err != boom {
		t.Errorf("add() error = %v, want %v", err, boom)
	}
	if s.len() != 0 {
		t.Errorf("len() = %d after failed attach, want 0", s.len())
	}
}

func TestListenerSetConcurrent(t *testing.T) {
	var mu sync.Mutex
	var attached, detached int
	s := listenerSet[int]{
		attach: func() error {
			mu.Lock()
			attached++
			mu.Unlock()
			return nil
		},
		detach: func() {
			mu.Lock()
			detached++
			mu.Unlock()
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := s.add(func(int) {})
			if err != nil {
				t.Error(err)
				return
			}
			s.emit(0)
			sub.Remove()
		}()
	}
	wg.Wait()

	if attached == 0 || attached != detached {
		t.Errorf("attached, detached = %d, %d, want equal and non-zero", attached, detached)
	}
	if s.len() != 0 {
		t.Errorf("len() = %d, want 0", s.len())
	}
}

func TestListenerSetSelfRemove(t *testing.T) {
	var s listenerSet[int]
	calls := 0

	var sub *Subscription
	sub, _ = s.add(func(int) {
		calls++
		sub.Remove()
	})

	s.emit(1)
	s.emit(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestListenerSetPanicAborts(t *testing.T) {
	var s listenerSet[int]
	reached := false

	s.add(func(int) { panic("listener failed") })
	s.add(func(int) { reached = true })

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		s.emit(1)
	}()

	if reached {
		t.Error("listener after the panicking one ran")
	}
}
