package openlog

import (
	"context"
	"encoding/binary"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// ReadRegister reads a single byte register.
func (s *Session) ReadRegister(ctx context.Context, addr bus.Addr, reg Register) (byte, error) {
	if err := s.send(ctx, addr, EncodeCommand(reg, "")); err != nil {
		return 0, err
	}
	p, err := s.Bus.Read(ctx, addr, 1)
	if err != nil {
		return 0, err
	}
	if len(p) < 1 {
		return 0, &ShortResponseError{Command: reg, Want: 1}
	}
	return p[0], nil
}

// CheckReady reads the status register and sets StatusReady when a card
// is usable, StatusErrorNoCard otherwise.
// The peripheral's initialize command is never sent as it hangs the bus
// when the card is missing.
func (s *Session) CheckReady(ctx context.Context, addr bus.Addr) (bool, error) {
	status, err := s.ReadRegister(ctx, addr, RegStatus)
	if err != nil {
		return false, err
	}
	ready := status&StatusCardReady != 0
	if ready {
		s.status = StatusReady
	} else {
		s.status = StatusErrorNoCard
	}
	glog.V(2).Infof("%s status 0x%02X: %s", addr, status, s.status)
	return ready, nil
}

// FirmwareVersion reads the firmware major and minor version.
func (s *Session) FirmwareVersion(ctx context.Context, addr bus.Addr) (major, minor byte, err error) {
	if major, err = s.ReadRegister(ctx, addr, RegFirmwareMajor); err != nil {
		return
	}
	s.firmwareMajor, s.firmwareKnown = major, true
	minor, err = s.ReadRegister(ctx, addr, RegFirmwareMinor)
	return
}

// SendText sends a text command which has no response.
func (s *Session) SendText(ctx context.Context, addr bus.Addr, cmd TextCommand, text string) error {
	return s.send(ctx, addr, EncodeCommand(cmd, text))
}

// QueryInt32 sends a text command and reads its 4-byte big-endian answer.
func (s *Session) QueryInt32(ctx context.Context, addr bus.Addr, q Int32Query, name string) (int32, error) {
	if err := s.send(ctx, addr, EncodeCommand(q, name)); err != nil {
		return -1, err
	}
	p, err := s.Bus.Read(ctx, addr, 4)
	if err != nil {
		return -1, err
	}
	if len(p) < 4 {
		return -1, &ShortResponseError{Command: q, Want: 4, Got: len(p)}
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

// FileSize returns the size of a file, -1 if it does not exist.
func (s *Session) FileSize(ctx context.Context, addr bus.Addr, name string) (int32, error) {
	return s.QueryInt32(ctx, addr, QueryFileSize, name)
}

// Remove removes files matching name and returns how many, or -1.
func (s *Session) Remove(ctx context.Context, addr bus.Addr, name string) (int32, error) {
	return s.QueryInt32(ctx, addr, QueryRemove, name)
}

// RemoveRecursively removes a directory with its content and returns
// how many entries were removed, or -1.
func (s *Session) RemoveRecursively(ctx context.Context, addr bus.Addr, name string) (int32, error) {
	return s.QueryInt32(ctx, addr, QueryRemoveRecursively, name)
}

// ChangeDirectory enters a directory, ParentDirectory returns to the root.
func (s *Session) ChangeDirectory(ctx context.Context, addr bus.Addr, name string) error {
	return s.SendText(ctx, addr, CmdChangeDirectory, name)
}

// MakeDirectory creates a directory.
func (s *Session) MakeDirectory(ctx context.Context, addr bus.Addr, name string) error {
	return s.SendText(ctx, addr, CmdMakeDirectory, name)
}

// CreateFile creates an empty file.
func (s *Session) CreateFile(ctx context.Context, addr bus.Addr, name string) error {
	return s.SendText(ctx, addr, CmdCreateFile, name)
}
