package openlog

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// LineEnding is appended to text by WriteFile on request.
const LineEnding = "\r\n"

// 8.3 name limits.
const (
	MaxBaseName  = 8
	MaxExtension = 3
)

// CheckFileName83 returns why name is not a valid 8.3 file name, or nil.
func CheckFileName83(name string) error {
	parts := strings.Split(name, ".")
	switch {
	case len(parts) != 2:
		return fmt.Errorf("%q: exactly one '.' required", name)
	case len(parts[0]) == 0 || len(parts[0]) > MaxBaseName:
		return fmt.Errorf("%q: base name must have 1 to %d characters", name, MaxBaseName)
	case len(parts[1]) == 0 || len(parts[1]) > MaxExtension:
		return fmt.Errorf("%q: extension must have 1 to %d characters", name, MaxExtension)
	}
	return nil
}

// ValidFileName83 tells whether name is a valid 8.3 file name.
func ValidFileName83(name string) bool {
	return CheckFileName83(name) == nil
}

// SplitPayload cuts text into consecutive pieces of at most MaxPayload bytes.
// Empty text yields a single empty piece.
func SplitPayload(text string) []string {
	if len(text) <= MaxPayload {
		return []string{text}
	}
	pieces := make([]string, 0, (len(text)+MaxPayload-1)/MaxPayload)
	for len(text) > 0 {
		n := minInt(MaxPayload, len(text))
		pieces = append(pieces, text[:n])
		text = text[n:]
	}
	return pieces
}

// WriteFile appends text to a file, creating it if missing.
// An invalid 8.3 name rejects the write without any bus traffic.
// The result lists are not affected.
func (s *Session) WriteFile(ctx context.Context, addr bus.Addr, filename, text string, crlf bool) (Outcome, error) {
	if err := CheckFileName83(filename); err != nil {
		glog.V(2).Infof("%s write rejected: %v", addr, err)
		return Rejected, nil
	}
	if err := s.send(ctx, addr, EncodeCommand(CmdOpenFile, filename)); err != nil {
		return Performed, err
	}
	if crlf {
		text += LineEnding
	}
	for _, piece := range SplitPayload(text) {
		if err := s.send(ctx, addr, EncodeCommand(CmdWriteFile, piece)); err != nil {
			return Performed, err
		}
	}
	s.status = StatusWroteFile
	glog.V(2).Infof("%s write %q: %d bytes", addr, filename, len(text))
	return Performed, nil
}

// SyncFile flushes buffered writes to the card. Firmware before major
// version 3 has no sync command and the call is skipped.
func (s *Session) SyncFile(ctx context.Context, addr bus.Addr) (Outcome, error) {
	if !s.firmwareKnown {
		major, err := s.ReadRegister(ctx, addr, RegFirmwareMajor)
		if err != nil {
			return Skipped, err
		}
		s.firmwareMajor, s.firmwareKnown = major, true
	}
	if s.firmwareMajor < 3 {
		return Skipped, nil
	}
	if err := s.send(ctx, addr, EncodeCommand(CmdSyncFile, "")); err != nil {
		return Performed, err
	}
	return Performed, nil
}

// WriteLines writes lines of growing length, from empty up to maxLen
// characters of printable ASCII starting at '!', each terminated by
// LineEnding. It exercises payload splitting on the peripheral.
func (s *Session) WriteLines(ctx context.Context, addr bus.Addr, filename string, maxLen int) (Outcome, error) {
	var line []byte
	for n := 0; n <= maxLen; n++ {
		outcome, err := s.WriteFile(ctx, addr, filename, string(line), true)
		if err != nil || outcome != Performed {
			return outcome, err
		}
		line = append(line, byte('!'+n%94))
	}
	return Performed, nil
}
