package receipt

import (
	"errors"
	"fmt"
)

// ErrIncomplete is reported when the receipt ends before the grand total was found.
var ErrIncomplete = errors.New("receipt ended before the total")

// LineError is a recoverable problem with a single receipt line. The scan
// skips the line and carries on; the verification result tells the person
// correcting the receipt where to look.
type LineError struct {
	// Line is the reading-order index of the line, or -1 for the whole receipt.
	Line int `json:"line"`
	// Text is the recognized text of the line.
	Text string `json:"text"`
	// State is the scanner state the line was read in.
	State string `json:"state"`
	Err   error  `json:"-"`
}

func (e *LineError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("receipt (state %s): %v", e.State, e.Err)
	}
	return fmt.Sprintf("line %d (state %s) %q: %v", e.Line, e.State, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
