package openlog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported indicates a command the peripheral accepts but does
	// not implement usefully.
	ErrNotSupported = errors.New("not supported")
)

// ShortResponseError indicates the peripheral answered fewer bytes than
// the command requires.
type ShortResponseError struct {
	Command Command
	Want    int
	Got     int
}

// Error implements error.
func (e *ShortResponseError) Error() string {
	return fmt.Sprintf("%s: short response %d of %d bytes", e.Command, e.Got, e.Want)
}

// Outcome tells what an operation did on the bus.
type Outcome int

// Outcomes.
const (
	// Performed means the operation ran to completion.
	Performed Outcome = iota
	// Rejected means a precondition failed and nothing was sent.
	Rejected
	// Skipped means the operation does not apply to the peripheral.
	Skipped
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Performed:
		return "performed"
	case Rejected:
		return "rejected"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}
