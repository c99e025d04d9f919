// Package bus defines the byte-oriented transport used to reach the logger.
package bus

import (
	"context"
	"fmt"
	"strconv"
)

// Addr is a 7-bit device address on the bus.
type Addr byte

// Known device addresses.
const (
	AddrDefault   Addr = 0x2A
	AddrAlternate Addr = 0x29
)

// String implements fmt.Stringer.
func (a Addr) String() string {
	return fmt.Sprintf("0x%02X", byte(a))
}

// ParseAddr parses a 7-bit address, in decimal or 0x hexadecimal.
func ParseAddr(s string) (Addr, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if n > 0x7F {
		return 0, fmt.Errorf("invalid address %q: more than 7 bits", s)
	}
	return Addr(n), nil
}

// Set implements flag.Value.
func (a *Addr) Set(s string) error {
	addr, err := ParseAddr(s)
	if err == nil {
		*a = addr
	}
	return err
}

// Bus is a synchronous transfer primitive.
// Write sends all bytes of p to the device at addr.
// Read receives up to n bytes from the device at addr, a shorter
// or empty result is not an error and is interpreted by the caller.
type Bus interface {
	Write(ctx context.Context, addr Addr, p []byte) error
	Read(ctx context.Context, addr Addr, n int) ([]byte, error)
}

// Funcs adapts a pair of funcs to Bus.
type Funcs struct {
	WriteFunc func(ctx context.Context, addr Addr, p []byte) error
	ReadFunc  func(ctx context.Context, addr Addr, n int) ([]byte, error)
}

// Write implements Bus.
func (f Funcs) Write(ctx context.Context, addr Addr, p []byte) error {
	return f.WriteFunc(ctx, addr, p)
}

// Read implements Bus.
func (f Funcs) Read(ctx context.Context, addr Addr, n int) ([]byte, error) {
	return f.ReadFunc(ctx, addr, n)
}
