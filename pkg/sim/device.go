// Package sim simulates the SD-card logger peripheral on a bus.Bus,
// including the firmware quirks the protocol relies on.
package sim

import (
	"context"
	"encoding/binary"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
	"github.com/robotalks/openlog.go/pkg/openlog"
)

var (
	// ErrNoDevice indicates no device answers at the address.
	ErrNoDevice = errors.New("no device at address")
	// ErrBusHung indicates the bus stopped responding.
	ErrBusHung = errors.New("bus hung")
)

// Defaults of a simulated device.
const (
	DefaultID            byte = 0x2A
	DefaultFirmwareMajor byte = 3
	DefaultFirmwareMinor byte = 1
)

type responseMode int

const (
	respNone responseMode = iota
	respFixed
	respListing
	respFile
)

// Device simulates one logger. It implements bus.Bus answering only
// at its own address.
type Device struct {
	Addr          bus.Addr
	ID            byte
	FirmwareMajor byte
	FirmwareMinor byte
	CardPresent   bool

	// Syncs counts executed syncFile commands.
	Syncs int

	root    *Entry
	cwd     *Entry
	working *Entry
	hung    bool

	mode    responseMode
	fixed   []byte
	listing []string
	content []byte
	lock    sync.Mutex
}

// NewDevice creates a device with an empty card inserted.
func NewDevice(addr bus.Addr) *Device {
	d := &Device{
		Addr:          addr,
		ID:            DefaultID,
		FirmwareMajor: DefaultFirmwareMajor,
		FirmwareMinor: DefaultFirmwareMinor,
		CardPresent:   true,
		root:          newDir("", nil),
	}
	d.cwd = d.root
	return d
}

// Root returns the root directory of the card.
func (d *Device) Root() *Entry {
	return d.root
}

// AddFile creates or replaces a file, path is relative to the root and
// missing directories are created.
func (d *Device) AddFile(name string, data []byte) *Device {
	d.lock.Lock()
	defer d.lock.Unlock()
	dir := d.root.walk(path.Dir(name), true)
	base := path.Base(name)
	if f := dir.Lookup(base); f != nil {
		dir.remove(f)
	}
	dir.add(&Entry{Name: base, Data: append([]byte(nil), data...)})
	return d
}

// AddDir creates directories along the path.
func (d *Device) AddDir(name string) *Device {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.root.walk(name, true)
	return d
}

// File returns the content of a file, path is relative to the root.
func (d *Device) File(name string) ([]byte, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	f := d.root.walk(name, false)
	if f == nil || f.Dir {
		return nil, false
	}
	return append([]byte(nil), f.Data...), true
}

// Write implements bus.Bus.
func (d *Device) Write(ctx context.Context, addr bus.Addr, p []byte) error {
	if addr != d.Addr {
		return ErrNoDevice
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.hung {
		return ErrBusHung
	}
	if len(p) == 0 {
		return nil
	}
	op, text := openlog.Opcode(p[0]), string(p[1:])
	glog.V(4).Infof("sim %s: %d %q", d.Addr, op, text)
	switch op {
	case openlog.Opcode(openlog.RegID):
		d.respond(d.ID)
	case openlog.Opcode(openlog.RegStatus):
		var status byte
		if d.CardPresent {
			status |= openlog.StatusCardReady
		}
		d.respond(status)
	case openlog.Opcode(openlog.RegFirmwareMajor):
		d.respond(d.FirmwareMajor)
	case openlog.Opcode(openlog.RegFirmwareMinor):
		d.respond(d.FirmwareMinor)
	case openlog.Opcode(openlog.RegI2CAddress):
		d.respond(byte(d.Addr))
	case openlog.OpInitialize:
		if !d.CardPresent {
			d.hung = true
			return ErrBusHung
		}
		d.cwd = d.root
	case openlog.OpInterruptEnable, openlog.OpStartPosition:
	default:
		if d.CardPresent {
			d.fileCommand(op, text)
		} else {
			d.noCard(op)
		}
	}
	return nil
}

func (d *Device) fileCommand(op openlog.Opcode, text string) {
	switch op {
	case openlog.Opcode(openlog.CmdCreateFile):
		if d.cwd.Lookup(text) == nil {
			d.cwd.add(&Entry{Name: text})
		}
	case openlog.Opcode(openlog.CmdMakeDirectory):
		if d.cwd.Lookup(text) == nil {
			d.cwd.add(newDir(text, d.cwd))
		}
	case openlog.Opcode(openlog.CmdChangeDirectory):
		if strings.HasPrefix(text, openlog.ParentDirectory) {
			d.cwd = d.root
		} else if dir := d.cwd.Lookup(text); dir != nil && dir.Dir {
			d.cwd = dir
		}
	case openlog.Opcode(openlog.CmdReadFile):
		d.mode, d.content = respFile, nil
		if f := d.cwd.Lookup(text); f != nil && !f.Dir {
			d.content = append([]byte(nil), f.Data...)
		}
	case openlog.Opcode(openlog.CmdOpenFile):
		f := d.cwd.Lookup(text)
		if f == nil {
			f = d.cwd.add(&Entry{Name: text})
		}
		if !f.Dir {
			d.working = f
		}
	case openlog.Opcode(openlog.CmdWriteFile):
		if d.working != nil {
			d.working.Data = append(d.working.Data, text...)
		}
	case openlog.Opcode(openlog.CmdList):
		d.mode, d.listing = respListing, d.cwd.match(text)
	case openlog.Opcode(openlog.CmdSyncFile):
		if d.FirmwareMajor >= 3 {
			d.Syncs++
		}
	case openlog.Opcode(openlog.QueryFileSize):
		size := int32(-1)
		if f := d.cwd.Lookup(text); f != nil && !f.Dir {
			size = int32(len(f.Data))
		}
		d.respondInt32(size)
	case openlog.Opcode(openlog.QueryRemove):
		d.respondInt32(d.removeFiles(text))
	case openlog.Opcode(openlog.QueryRemoveRecursively):
		count := int32(-1)
		if e := d.cwd.Lookup(text); e != nil {
			count = int32(e.count())
			d.cwd.remove(e)
			if d.working != nil && d.isWithin(d.working, e) {
				d.working = nil
			}
		}
		d.respondInt32(count)
	}
}

func (d *Device) noCard(op openlog.Opcode) {
	switch op {
	case openlog.Opcode(openlog.CmdList):
		d.mode, d.listing = respListing, nil
	case openlog.Opcode(openlog.CmdReadFile):
		d.mode, d.content = respFile, nil
	case openlog.Opcode(openlog.QueryFileSize),
		openlog.Opcode(openlog.QueryRemove),
		openlog.Opcode(openlog.QueryRemoveRecursively):
		d.respondInt32(-1)
	}
}

func (d *Device) removeFiles(pattern string) int32 {
	files := d.cwd.matchFiles(pattern)
	if len(files) == 0 && !strings.ContainsAny(pattern, "*?[") {
		return -1
	}
	for _, f := range files {
		d.cwd.remove(f)
		if f == d.working {
			d.working = nil
		}
	}
	return int32(len(files))
}

func (d *Device) isWithin(e, dir *Entry) bool {
	for ; e != nil; e = e.parent {
		if e == dir {
			return true
		}
	}
	return false
}

func (d *Device) respond(p ...byte) {
	d.mode, d.fixed = respFixed, p
}

func (d *Device) respondInt32(v int32) {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, uint32(v))
	d.respond(p...)
}

// Read implements bus.Bus.
func (d *Device) Read(ctx context.Context, addr bus.Addr, n int) ([]byte, error) {
	if addr != d.Addr {
		return nil, ErrNoDevice
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.hung {
		return nil, ErrBusHung
	}
	if n <= 0 {
		return nil, nil
	}
	p := make([]byte, n)
	switch d.mode {
	case respFixed:
		copy(p, d.fixed)
		d.mode, d.fixed = respNone, nil
	case respListing:
		if len(d.listing) == 0 {
			fill(p, openlog.EndOfData)
			break
		}
		copy(p, d.listing[0])
		d.listing = d.listing[1:]
	case respFile:
		if len(d.content) == 0 {
			p[0] = openlog.EmptyFile
			fill(p[1:], openlog.EndOfData)
			break
		}
		k := copy(p, d.content)
		d.content = d.content[k:]
		fill(p[k:], openlog.EndOfData)
	}
	return p, nil
}

func fill(p []byte, b byte) {
	for i := range p {
		p[i] = b
	}
}
