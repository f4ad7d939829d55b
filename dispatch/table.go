// Package dispatch is the runtime half of the instruction decoder: a flat
// decode table from raw 16-bit opcode to instruction ordinal, and a dispatch
// table from ordinal to the routines that execute, disassemble and translate
// that instruction.
//
// The three type parameters name the receivers of those routines: C is the
// CPU an instruction executes on, D the debugger that disassembles it, and A
// the assembler that lowers it to IR. Generated code instantiates the tables
// with its own types; tests can use anything.
package dispatch

import (
	"errors"
	"fmt"
)

// DecodeSize is the number of entries in a decode table: one per possible
// 16-bit opcode.
const DecodeSize = 1 << 16

var (
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrNoTranslation      = errors.New("instruction has no IR translation")
)

// Opcode is one entry of a dispatch table. Translate is nil for instructions
// that cannot be lowered to IR; Execute is nil only for the sentinel entry.
type Opcode[C, D, A any] struct {
	Execute     func(cpu C, opcode uint16)
	Disassemble func(dbg D, opcode uint16, pc uint32) string
	Translate   func(asm A, opcode uint16, pc uint32, flags uint32) bool
	Flags       Flags
	Cycles      uint
}

// Table pairs a decode table with the dispatch table it indexes. A Table
// is never modified after construction, so it may be shared between any
// number of goroutines.
type Table[C, D, A any] struct {
	decode  *[DecodeSize]uint16
	opcodes []Opcode[C, D, A]
	guard   func(opcode uint16, op *Opcode[C, D, A]) error
}

// New checks that decode only names entries of opcodes and that entry zero
// is the sentinel for undecodable opcodes, then returns the combined table.
// Neither argument may be modified afterwards.
func New[C, D, A any](decode *[DecodeSize]uint16, opcodes []Opcode[C, D, A]) (*Table[C, D, A], error) {
	if decode == nil {
		return nil, errors.New("dispatch: nil decode table")
	}
	if len(opcodes) == 0 {
		return nil, errors.New("dispatch: dispatch table has no sentinel entry")
	}
	if opcodes[0].Execute != nil || opcodes[0].Translate != nil {
		return nil, errors.New("dispatch: sentinel entry must not execute or translate")
	}
	for i := 1; i < len(opcodes); i++ {
		if opcodes[i].Execute == nil {
			return nil, fmt.Errorf("dispatch: entry %d has no execute routine", i)
		}
	}
	for raw, ordinal := range decode {
		if int(ordinal) >= len(opcodes) {
			return nil, fmt.Errorf("dispatch: opcode 0x%04x decodes to %d, but there are only %d entries", raw, ordinal, len(opcodes))
		}
	}
	return &Table[C, D, A]{
		decode:  decode,
		opcodes: opcodes,
	}, nil
}

// WithGuard returns a copy of the table that calls guard before running an
// instruction through ExecuteDelaySlot. A non-nil error from guard stops the
// instruction from executing. Without a guard, delay slots are not checked.
func (t *Table[C, D, A]) WithGuard(guard func(opcode uint16, op *Opcode[C, D, A]) error) *Table[C, D, A] {
	ret := *t
	ret.guard = guard
	return &ret
}

// Len is the number of instructions in the table, not counting the sentinel.
func (t *Table[C, D, A]) Len() int {
	return len(t.opcodes) - 1
}

// Lookup decodes a raw opcode. The ordinal is zero for opcodes that match
// no instruction, in which case the sentinel entry is returned.
func (t *Table[C, D, A]) Lookup(opcode uint16) (uint16, *Opcode[C, D, A]) {
	ordinal := t.decode[opcode]
	return ordinal, &t.opcodes[ordinal]
}

// Entry returns the dispatch entry for an ordinal, or nil if out of range.
func (t *Table[C, D, A]) Entry(ordinal uint16) *Opcode[C, D, A] {
	if int(ordinal) >= len(t.opcodes) {
		return nil
	}
	return &t.opcodes[ordinal]
}

func (t *Table[C, D, A]) Execute(cpu C, opcode uint16) error {
	ordinal, op := t.Lookup(opcode)
	if ordinal == 0 {
		return fmt.Errorf("%w: 0x%04x", ErrIllegalInstruction, opcode)
	}
	op.Execute(cpu, opcode)
	return nil
}

// ExecuteDelaySlot is Execute for an instruction in the delay slot of a
// branch.
func (t *Table[C, D, A]) ExecuteDelaySlot(cpu C, opcode uint16) error {
	ordinal, op := t.Lookup(opcode)
	if ordinal == 0 {
		return fmt.Errorf("%w: 0x%04x", ErrIllegalInstruction, opcode)
	}
	if t.guard != nil {
		if err := t.guard(opcode, op); err != nil {
			return err
		}
	}
	op.Execute(cpu, opcode)
	return nil
}

// Disassemble renders an opcode for humans. Instructions that always run
// through the interpreter are tagged so they stand out in block listings.
func (t *Table[C, D, A]) Disassemble(dbg D, opcode uint16, pc uint32) string {
	_, op := t.Lookup(opcode)
	if op.Disassemble == nil {
		return "????"
	}
	ret := op.Disassemble(dbg, opcode, pc)
	if op.Flags.Has(DisableJIT) {
		ret += " [DISABLE_JIT]"
	}
	return ret
}

// CanTranslate reports whether an opcode has an IR translation that the JIT
// is allowed to use.
func (t *Table[C, D, A]) CanTranslate(opcode uint16) bool {
	_, op := t.Lookup(opcode)
	return op.Translate != nil && !op.Flags.Has(DisableJIT)
}

// CanTranslateWithSlot reports whether a branch and the instruction in its
// delay slot can both be translated. The pair is lowered as one piece, so
// if either lacks a usable translation both must run through the
// interpreter.
func (t *Table[C, D, A]) CanTranslateWithSlot(branch, slot uint16) bool {
	return t.CanTranslate(branch) && t.CanTranslate(slot)
}

// Translate lowers one instruction to IR. The boolean is the translation
// routine's own result.
func (t *Table[C, D, A]) Translate(asm A, opcode uint16, pc uint32, flags uint32) (bool, error) {
	if !t.CanTranslate(opcode) {
		return false, fmt.Errorf("%w: 0x%04x", ErrNoTranslation, opcode)
	}
	_, op := t.Lookup(opcode)
	return op.Translate(asm, opcode, pc, flags), nil
}
