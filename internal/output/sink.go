// Package output routes rendered records to a live stream or to an
// in-memory buffer returned to the caller when the run completes.
//
// Buffered output grows with the total size of the rendered records; use
// the live mode for large inputs.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Mode selects where rendered text goes
type Mode string

const (
	// ModeLive writes every record immediately
	ModeLive Mode = "stdout"

	// ModeBuffered accumulates records for Collect
	ModeBuffered Mode = "buffer"
)

// ParseMode parses a destination mode name
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "stdout", "live":
		return ModeLive, nil
	case "buffer", "buffered", "return":
		return ModeBuffered, nil
	default:
		return "", fmt.Errorf("unknown output mode: %q", s)
	}
}

// Sink receives one rendered record at a time
type Sink struct {
	mode   Mode
	writer io.Writer
	buffer strings.Builder
}

// NewSinkTo creates a sink whose live mode writes to w
func NewSinkTo(mode Mode, w io.Writer) *Sink {
	return &Sink{mode: mode, writer: w}
}

// Mode returns the destination mode
func (s *Sink) Mode() Mode {
	return s.mode
}

// Emit outputs text followed by a newline
func (s *Sink) Emit(text string) error {
	if s.mode == ModeBuffered {
		s.buffer.WriteString(text)
		s.buffer.WriteByte('\n')
		return nil
	}

	if _, err := io.WriteString(s.writer, text+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Collect returns everything emitted in buffered mode. Live sinks retain
// nothing and return "", false.
func (s *Sink) Collect() (string, bool) {
	if s.mode != ModeBuffered {
		return "", false
	}
	return s.buffer.String(), true
}
