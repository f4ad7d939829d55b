// Package isa reads the textual description of an instruction set and turns
// it into a decode table: one entry per possible 16-bit opcode, naming the
// single instruction whose bit pattern matches it.
package isa

import (
	"strings"

	"github.com/apparentlymart/sh4-meta/dispatch"
)

const (
	// Width is the number of bits in an instruction word, and so the length
	// of every pattern.
	Width = 16

	// MaxRecords is the most instructions a single description may define.
	MaxRecords = 256
)

// Letters are the operand field names a pattern may use, in the order their
// fields are reported.
const Letters = "mnid"

// Record is one instruction from a description.
type Record struct {
	Name    string
	Pattern string
	Cycles  uint
	Flags   []string

	Execute     []string
	Disassemble []string // nil when the description gives none
	IR          []string // nil when the instruction can't be translated

	// Encoding has the bits that must be set in a matching opcode, and Mask
	// the bits that are significant for matching.
	Encoding, Mask bits16

	Fields []Field

	// Line is where the record's block starts in its description.
	Line int
}

// Matches reports whether the raw opcode v is an instance of the record.
func (r *Record) Matches(v uint16) bool {
	return bits16(v)&r.Mask == r.Encoding
}

// FlagSet is the record's flag tokens as dispatch flags. Tokens have already
// been checked during parsing, so unknown ones can't appear here.
func (r *Record) FlagSet() dispatch.Flags {
	var ret dispatch.Flags
	for _, token := range r.Flags {
		f, _ := dispatch.ParseFlag(token)
		ret |= f
	}
	return ret
}

// Implemented reports whether the record has real execute logic, rather than
// a stub that reports the instruction as unimplemented.
func (r *Record) Implemented() bool {
	if len(r.Execute) == 0 {
		return false
	}
	return !strings.Contains(strings.ToLower(r.Execute[0]), "unimplemented")
}

// TypeName is the Go identifier used for the record's opcode type in
// generated code.
func (r *Record) TypeName() string {
	return "Op" + r.Pattern
}

// newRecord derives the encoding, mask and fields for a pattern that has
// already been validated.
func newRecord(name, pattern string) *Record {
	return &Record{
		Name:     name,
		Pattern:  pattern,
		Encoding: makeMask(pattern, "1"),
		Mask:     makeMask(pattern, "01"),
		Fields:   ExtractFields(pattern),
	}
}
