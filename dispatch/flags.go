package dispatch

import (
	"fmt"
	"strings"
)

// Flags are the behavioral attributes of an instruction that the dispatch
// runtime and the JIT front end consult.
type Flags uint32

const (
	NoFlags Flags = 0

	IllegalInDelaySlot Flags = 1 << 0 // cannot be in delay slot following branch
	Privileged         Flags = 1 << 1 // supervisor mode only
	Branch             Flags = 1 << 2 // may change PC
	Call               Flags = 1 << 3 // may change PC and SPC
	DelaySlot          Flags = 1 << 4 // branch that has a delay slot
	Conditional        Flags = 1 << 5 // conditional branch (requires Branch)
	Memory             Flags = 1 << 6 // accesses memory

	// DisableJIT marks an instruction that cannot be translated directly and
	// must be run through an interpreter upcall. It also acts as a barrier
	// against reordering across the instruction.
	DisableJIT Flags = 1 << 7

	UsesFPU Flags = 1 << 8  // FPU instruction
	FPUFR   Flags = 1 << 9  // behavior depends on FPSCR.FR
	FPUSZ   Flags = 1 << 10 // behavior depends on FPSCR.SZ
	FPUPR   Flags = 1 << 11 // behavior depends on FPSCR.PR

	// Barrier marks an instruction that changes CPU mode such that a
	// translated block must end after it.
	Barrier Flags = 1 << 12

	Return Flags = 1 << 13 // returns from a subroutine
)

type flagName struct {
	flag  Flags
	token string // spelling in instruction descriptions
	ident string // Go identifier in this package
}

var flagNames = []flagName{
	{IllegalInDelaySlot, "ILLEGAL_IN_DELAY_SLOT", "IllegalInDelaySlot"},
	{Privileged, "PRIVILEGED", "Privileged"},
	{Branch, "BRANCH", "Branch"},
	{Call, "CALL", "Call"},
	{DelaySlot, "DELAY_SLOT", "DelaySlot"},
	{Conditional, "CONDITIONAL", "Conditional"},
	{Memory, "MEMORY", "Memory"},
	{DisableJIT, "DISABLE_JIT", "DisableJIT"},
	{UsesFPU, "USES_FPU", "UsesFPU"},
	{FPUFR, "FPU_FR", "FPUFR"},
	{FPUSZ, "FPU_SZ", "FPUSZ"},
	{FPUPR, "FPU_PR", "FPUPR"},
	{Barrier, "BARRIER", "Barrier"},
	{Return, "RETURN", "Return"},
}

// ParseFlag returns the flag named by a description token such as
// "DELAY_SLOT". NO_FLAGS parses as NoFlags. The second result is false for
// tokens that name no flag.
func ParseFlag(token string) (Flags, bool) {
	if token == "NO_FLAGS" {
		return NoFlags, true
	}
	for _, fn := range flagNames {
		if fn.token == token {
			return fn.flag, true
		}
	}
	return NoFlags, false
}

func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// String renders the flags using description tokens, e.g.
// "BRANCH|DELAY_SLOT".
func (f Flags) String() string {
	return f.join("|", "NO_FLAGS", "0x%x", func(fn flagName) string { return fn.token })
}

// GoString renders the flags as a Go expression over this package's
// constants, which is how the code generator spells them.
func (f Flags) GoString() string {
	return f.join(" | ", "dispatch.NoFlags", "dispatch.Flags(0x%x)", func(fn flagName) string { return "dispatch." + fn.ident })
}

func (f Flags) join(sep, none, unnamed string, name func(flagName) string) string {
	if f == NoFlags {
		return none
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag == 0 {
			continue
		}
		parts = append(parts, name(fn))
		f &^= fn.flag
	}
	if f != 0 {
		parts = append(parts, fmt.Sprintf(unnamed, uint32(f)))
	}
	return strings.Join(parts, sep)
}
