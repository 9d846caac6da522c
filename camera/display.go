package camera

import "sync"

// Display is a rendering surface a camera can draw its preview into. A
// Display is bound to at most one Camera at a time.
type Display struct {
	Type    DisplayType
	Surface uintptr

	mu    sync.Mutex
	owner *Camera
}

func NewDisplay(t DisplayType, surface uintptr) *Display {
	return &Display{Type: t, Surface: surface}
}

// Owner returns the camera the display is bound to, or nil.
func (d *Display) Owner() *Camera {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.owner
}

func (d *Display) setOwner(c *Camera) {
	d.mu.Lock()
	d.owner = c
	d.mu.Unlock()
}

func (c *Camera) Display() *Display {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.display
}

// SetDisplay binds d to the camera. Binding requires StateCreated and fails
// with ErrDisplayInUse if d belongs to another camera. A nil d detaches the
// current display and is allowed in any state.
func (c *Camera) SetDisplay(d *Display) error {
	const op = "SetDisplay"
	if d == nil {
		return c.detachDisplay(op)
	}

	c.mu.Lock()
	err := c.guardLocked(op, StateCreated)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if owner := d.Owner(); owner != nil && owner != c {
		return fail(op, ErrDisplayInUse)
	}

	if err := check(c.drv.SetDisplay(c.ptr(), d.Type, d.Surface), op); err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.display
	c.display = d
	c.mu.Unlock()

	if prev != nil && prev != d {
		prev.setOwner(nil)
	}
	d.setOwner(c)
	return nil
}

func (c *Camera) detachDisplay(op string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fail(op, ErrClosed)
	}
	prev := c.display
	c.mu.Unlock()

	if err := check(c.drv.SetDisplay(c.ptr(), DisplayNone, 0), op); err != nil {
		return err
	}

	c.mu.Lock()
	if c.display == prev {
		c.display = nil
	}
	c.mu.Unlock()

	if prev != nil {
		prev.setOwner(nil)
	}
	return nil
}
