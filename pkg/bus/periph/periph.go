// Package periph provides a bus.Bus on a host I2C controller using periph.io.
package periph

import (
	"context"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// Bus implements bus.Bus on an i2c.Bus.
type Bus struct {
	I2C i2c.Bus
}

// Open initializes host drivers and opens the named I2C bus.
// An empty name selects the first available bus.
func Open(name string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &Bus{I2C: b}, nil
}

// Write implements bus.Bus.
func (b *Bus) Write(ctx context.Context, addr bus.Addr, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.I2C.Tx(uint16(addr), p, nil)
}

// Read implements bus.Bus.
func (b *Bus) Read(ctx context.Context, addr bus.Addr, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	p := make([]byte, n)
	if err := b.I2C.Tx(uint16(addr), nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	if closer, ok := b.I2C.(i2c.BusCloser); ok {
		return closer.Close()
	}
	return nil
}
