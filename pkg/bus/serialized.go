package bus

import (
	"context"
	"sync"
)

// Serialized allows only one transfer at a time on the wrapped Bus.
type Serialized struct {
	Bus
	lock sync.Mutex
}

// NewSerialized wraps b.
func NewSerialized(b Bus) *Serialized {
	return &Serialized{Bus: b}
}

// Write implements Bus.
func (s *Serialized) Write(ctx context.Context, addr Addr, p []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Bus.Write(ctx, addr, p)
}

// Read implements Bus.
func (s *Serialized) Read(ctx context.Context, addr Addr, n int) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Bus.Read(ctx, addr, n)
}
