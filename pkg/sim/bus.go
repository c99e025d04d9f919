package sim

import (
	"context"
	"sort"
	"sync"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// Bus connects simulated devices by address.
type Bus struct {
	devices map[bus.Addr]*Device
	lock    sync.RWMutex
}

// NewBus creates a bus with the given devices attached.
func NewBus(devices ...*Device) *Bus {
	b := &Bus{devices: make(map[bus.Addr]*Device)}
	for _, d := range devices {
		b.Attach(d)
	}
	return b
}

// Attach connects a device, replacing any at the same address.
func (b *Bus) Attach(d *Device) *Bus {
	b.lock.Lock()
	b.devices[d.Addr] = d
	b.lock.Unlock()
	return b
}

// Device returns the device at addr.
func (b *Bus) Device(addr bus.Addr) *Device {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.devices[addr]
}

// Addrs returns the addresses of attached devices in ascending order.
func (b *Bus) Addrs() []bus.Addr {
	b.lock.RLock()
	addrs := make([]bus.Addr, 0, len(b.devices))
	for addr := range b.devices {
		addrs = append(addrs, addr)
	}
	b.lock.RUnlock()
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Write implements bus.Bus.
func (b *Bus) Write(ctx context.Context, addr bus.Addr, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := b.Device(addr)
	if d == nil {
		return ErrNoDevice
	}
	return d.Write(ctx, addr, p)
}

// Read implements bus.Bus.
func (b *Bus) Read(ctx context.Context, addr bus.Addr, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := b.Device(addr)
	if d == nil {
		return nil, ErrNoDevice
	}
	return d.Read(ctx, addr, n)
}

// NewDefault creates a bus with a device at the default address holding
// a few log files.
func NewDefault() *Bus {
	d := NewDevice(bus.AddrDefault).
		AddFile("LOG00001.TXT", []byte("boot\r\n")).
		AddFile("CONFIG.TXT", []byte("9600,26,3,0,1,1,0\r\n")).
		AddDir("LOGS")
	return NewBus(d)
}
