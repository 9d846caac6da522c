package camera

import "sync"

// Subscription is returned when a listener is attached. Remove detaches it;
// calling Remove more than once is harmless.
type Subscription struct {
	once   sync.Once
	remove func()
}

func newSubscription(remove func()) *Subscription {
	return &Subscription{remove: remove}
}

func (s *Subscription) Remove() {
	if s == nil {
		return
	}
	s.once.Do(s.remove)
}

type listener[E any] struct {
	id uint64
	fn func(E)
}

// listenerSet fans one native callback out to any number of listeners.
//
// When attach and detach hooks are set, the native callback is registered
// on the 0->1 transition and unregistered on 1->0. Both transitions happen
// under mu so concurrent Add/Remove can't double register or leak the
// registration.
type listenerSet[E any] struct {
	mu        sync.Mutex
	next      uint64
	listeners []listener[E]

	attach func() error
	detach func()
}

func (s *listenerSet[E]) add(fn func(E)) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.listeners) == 0 && s.attach != nil {
		if err := s.attach(); err != nil {
			return nil, err
		}
	}

	s.next++
	id := s.next
	s.listeners = append(s.listeners, listener[E]{id: id, fn: fn})

	return newSubscription(func() { s.remove(id) }), nil
}

func (s *listenerSet[E]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id != id {
			continue
		}
		s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
		if len(s.listeners) == 0 && s.detach != nil {
			s.detach()
		}
		return
	}
}

// reset drops every listener without calling detach. Used on Close after
// the native side has already been torn down.
func (s *listenerSet[E]) reset() (hadListeners bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hadListeners = len(s.listeners) > 0
	s.listeners = nil
	return hadListeners
}

func (s *listenerSet[E]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listeners)
}

// emit calls listeners in the order they were added. The lock isn't held
// while listeners run, so a listener may remove itself. A panicking
// listener aborts the rest.
func (s *listenerSet[E]) emit(e E) {
	s.mu.Lock()
	ls := make([]listener[E], len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(e)
	}
}
