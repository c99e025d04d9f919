package openlog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/openlog.go/pkg/bus"
)

// Status marks the last completed operation.
type Status int

// Statuses.
const (
	StatusInit Status = iota
	StatusErrorNoCard
	StatusReady
	StatusListedDirectory
	StatusReadFile
	StatusWroteFile
	StatusHelp
)

var statusNames = [...]string{"init", "error_no_card", "ready", "listed_directory", "read_file", "wrote_file", "help"}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// ListID selects one of the session's result lists.
type ListID int

// Lists.
const (
	ListSearchPatterns ListID = iota
	ListFileNames
	ListFileContent
)

var listNames = [...]string{"patterns", "names", "content"}

// String implements fmt.Stringer.
func (l ListID) String() string {
	if l >= 0 && int(l) < len(listNames) {
		return listNames[l]
	}
	return strconv.Itoa(int(l))
}

// ParseListID finds a list by name.
func ParseListID(s string) (ListID, bool) {
	for n, name := range listNames {
		if strings.EqualFold(name, s) {
			return ListID(n), true
		}
	}
	return 0, false
}

// Field selects an integer property of a list.
type Field int

// Fields.
const (
	FieldIndex Field = iota
	FieldLength
	FieldValueLength
)

// DefaultSearchPatterns seeds the search pattern list.
var DefaultSearchPatterns = []string{"*.*", "*.TXT", "*.LOG", "LOG*.TXT", "*", "*/"}

// DefaultWriteDelay gives the peripheral time to process a command.
const DefaultWriteDelay = 50 * time.Microsecond

type fragmentList struct {
	items  []string
	cursor int
}

func (l *fragmentList) replace(items []string) {
	l.items, l.cursor = items, 0
}

func (l *fragmentList) move(delta int) {
	if n := l.cursor + delta; n >= 0 && n < len(l.items) {
		l.cursor = n
	}
}

func (l *fragmentList) current() (string, bool) {
	if l.cursor < len(l.items) {
		return l.items[l.cursor], true
	}
	return "", false
}

// Session drives the protocol on a Bus and keeps the result state.
// A Session is not safe for concurrent use.
type Session struct {
	Bus        bus.Bus
	WriteDelay time.Duration

	status        Status
	lists         [3]fragmentList
	firmwareMajor byte
	firmwareKnown bool
}

// NewSession creates a Session in StatusInit.
func NewSession(b bus.Bus) *Session {
	s := &Session{Bus: b, WriteDelay: DefaultWriteDelay}
	s.lists[ListSearchPatterns].items = append([]string(nil), DefaultSearchPatterns...)
	return s
}

// Status returns the last operation marker.
func (s *Session) Status() Status {
	return s.status
}

// IsStatus checks the last operation marker.
func (s *Session) IsStatus(st Status) bool {
	return s.status == st
}

// ShowHelp marks the session as showing help to the user.
func (s *Session) ShowHelp() {
	s.status = StatusHelp
}

// MoveCursor moves the cursor of a list by delta, moves leaving the
// list are ignored.
func (s *Session) MoveCursor(id ListID, delta int) {
	if l := s.list(id); l != nil {
		l.move(delta)
	}
}

// CurrentValue returns the element under the cursor.
// For unknown lists the list id is returned.
func (s *Session) CurrentValue(id ListID) string {
	l := s.list(id)
	if l == nil {
		return strconv.Itoa(int(id))
	}
	val, _ := l.current()
	return val
}

// CurrentInt returns an integer property of a list, -1 if not available.
func (s *Session) CurrentInt(id ListID, field Field) int {
	l := s.list(id)
	if l == nil {
		return -1
	}
	switch field {
	case FieldIndex:
		return l.cursor
	case FieldLength:
		return len(l.items)
	case FieldValueLength:
		if val, ok := l.current(); ok {
			return len(val)
		}
	}
	return -1
}

// Fragments returns a copy of a list.
func (s *Session) Fragments(id ListID) []string {
	if l := s.list(id); l != nil {
		return append([]string(nil), l.items...)
	}
	return nil
}

// Content concatenates the fragments of the last file read.
func (s *Session) Content() string {
	return strings.Join(s.lists[ListFileContent].items, "")
}

func (s *Session) list(id ListID) *fragmentList {
	if id >= 0 && int(id) < len(s.lists) {
		return &s.lists[id]
	}
	return nil
}

func (s *Session) send(ctx context.Context, addr bus.Addr, f CommandFrame) error {
	if err := s.Bus.Write(ctx, addr, f.Bytes()); err != nil {
		return err
	}
	if s.WriteDelay > 0 {
		time.Sleep(s.WriteDelay)
	}
	return nil
}
