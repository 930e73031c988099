package utils

import (
	"context"
	"errors"
	"sync"

	"go.einride.tech/can"
)

// ErrClosed indicates the loopback bus or endpoint has been closed.
var ErrClosed = errors.New("loopback: closed")

// LoopbackBus is an in-memory CAN bus for tests and simulations.
// Multiple endpoints opened from the same bus can exchange frames.
type LoopbackBus struct {
	mu        sync.RWMutex
	closed    bool
	endpoints map[*LoopbackEndpoint]struct{}
}

func NewLoopbackBus() *LoopbackBus {
	return &LoopbackBus{endpoints: make(map[*LoopbackEndpoint]struct{})}
}

// Open creates a new endpoint attached to the bus.
func (b *LoopbackBus) Open() *LoopbackEndpoint {
	ep := &LoopbackEndpoint{
		bus:  b,
		ch:   make(chan can.Frame, 256),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ep.dead = true
		close(ep.done)
		return ep
	}
	b.endpoints[ep] = struct{}{}
	return ep
}

// Close closes the bus and detaches all endpoints.
func (b *LoopbackBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ep := range b.endpoints {
		ep.shutdown()
	}
	b.endpoints = nil
	return nil
}

// LoopbackEndpoint implements CANConn.
type LoopbackEndpoint struct {
	bus  *LoopbackBus
	ch   chan can.Frame
	mu   sync.Mutex
	dead bool
	done chan struct{}
}

// WriteFrame delivers the frame to every other endpoint on the bus. Slow
// endpoints whose buffer is full lose the frame, like a real receiver overrun.
func (e *LoopbackEndpoint) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.bus.mu.RLock()
	defer e.bus.mu.RUnlock()
	if e.bus.closed || e.isDead() {
		return ErrClosed
	}
	for ep := range e.bus.endpoints {
		if ep == e {
			continue
		}
		select {
		case ep.ch <- frame:
		default:
		}
	}
	return nil
}

func (e *LoopbackEndpoint) ReadFrame(ctx context.Context) (can.Frame, error) {
	select {
	case f := <-e.ch:
		return f, nil
	case <-e.done:
		return can.Frame{}, ErrClosed
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	}
}

// Close detaches the endpoint from its bus.
func (e *LoopbackEndpoint) Close() error {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()
	e.shutdown()
	if e.bus.endpoints != nil {
		delete(e.bus.endpoints, e)
	}
	return nil
}

func (e *LoopbackEndpoint) isDead() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dead
}

func (e *LoopbackEndpoint) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return
	}
	e.dead = true
	close(e.done)
}

var (
	_ CANConn = (*LoopbackEndpoint)(nil)
	_ CANConn = (*SocketCANConn)(nil)
)
