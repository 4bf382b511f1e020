// Package control models a UI control that is disabled while its request is
// in flight. Acquire before sending, release in a deferred cleanup.
package control

import (
	"sync"

	"kb-chat/internal/common/errors"
)

type Control struct {
	name string
	mu   sync.Mutex
	busy bool
}

func New(name string) *Control {
	return &Control{name: name}
}

func (c *Control) Name() string {
	return c.name
}

// Acquire marks the control busy. It fails with CONTROL_BUSY rather than
// queueing a second request of the same kind.
func (c *Control) Acquire() (release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, errors.NewControlBusyError(c.name)
	}
	c.busy = true

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.busy = false
			c.mu.Unlock()
		})
	}, nil
}

// Busy reports whether a request holds the control.
func (c *Control) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}
