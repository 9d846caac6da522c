package camera

import (
	"log"
	"sync"

	"github.com/dialup-inc/camkit/native"
)

// DeviceWatcher delivers process-wide device state changes. Unlike the
// Camera events it isn't tied to a session handle: every listener gets its
// own driver registration, tracked by listener id so each can be removed on
// its own.
type DeviceWatcher struct {
	drv Driver

	// mu is held across each driver call and the token map update that
	// goes with it.
	mu     sync.Locker
	tokens *native.Registry[int]
}

// NewDeviceWatcher returns a watcher for drv. There should be one per
// driver; mu guards its registrations and may be nil.
func NewDeviceWatcher(drv Driver, mu sync.Locker) *DeviceWatcher {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &DeviceWatcher{
		drv:    drv,
		mu:     mu,
		tokens: native.NewRegistry[int](nil),
	}
}

func (w *DeviceWatcher) Watch(fn func(DeviceStateChangedEvent)) (*Subscription, error) {
	w.mu.Lock()
	token, code := w.drv.AddDeviceStateChangedCallback(fn)
	if err := check(code, "AddDeviceStateChangedCallback"); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	id := w.tokens.Register(token)
	w.mu.Unlock()

	return newSubscription(func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		token, ok := w.tokens.Unregister(id)
		if !ok {
			return
		}
		if err := check(w.drv.RemoveDeviceStateChangedCallback(token), "RemoveDeviceStateChangedCallback"); err != nil {
			log.Printf("[error] %v", err)
		}
	}), nil
}

// Len returns the number of active registrations.
func (w *DeviceWatcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.tokens.Len()
}
