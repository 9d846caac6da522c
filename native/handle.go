package native

import "sync"

// Handle owns one opaque native pointer. When owned, Release destroys it
// exactly once; a borrowed handle is only forgotten.
type Handle struct {
	mu      sync.Mutex
	ptr     uintptr
	owned   bool
	destroy func(uintptr)
}

func NewHandle(ptr uintptr, owned bool, destroy func(uintptr)) *Handle {
	return &Handle{
		ptr:     ptr,
		owned:   owned,
		destroy: destroy,
	}
}

// Ptr returns the native pointer, or 0 after Release.
func (h *Handle) Ptr() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.ptr
}

func (h *Handle) Owned() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.owned
}

func (h *Handle) Valid() bool {
	return h.Ptr() != 0
}

// Release is safe to call any number of times.
func (h *Handle) Release() {
	h.mu.Lock()
	ptr, owned := h.ptr, h.owned
	h.ptr = 0
	h.owned = false
	h.mu.Unlock()

	if owned && ptr != 0 && h.destroy != nil {
		h.destroy(ptr)
	}
}
