package isa

import (
	"errors"
	"fmt"
)

// ErrTooManyRecords is returned when a description defines more than
// MaxRecords instructions.
var ErrTooManyRecords = fmt.Errorf("more than %d instructions", MaxRecords)

// ParseError reports a malformed description.
type ParseError struct {
	File string
	Line int
	Text string // offending line, as written
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Msg, e.Text)
}

// CollisionError reports two instructions that both match the same opcode.
type CollisionError struct {
	Opcode   uint16
	Existing *Record
	Incoming *Record
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf(
		"opcode 0x%04x matches both %s (%s, line %d) and %s (%s, line %d)",
		e.Opcode,
		e.Existing.Pattern, e.Existing.Name, e.Existing.Line,
		e.Incoming.Pattern, e.Incoming.Name, e.Incoming.Line,
	)
}

// IsCollision reports whether err is, or wraps, a *CollisionError.
func IsCollision(err error) bool {
	var ce *CollisionError
	return errors.As(err, &ce)
}
