package dispatch

// MaxBlockInstructions caps ScanBlock when the caller gives no limit.
const MaxBlockInstructions = 2048

// StopReason says why ScanBlock ended a block.
type StopReason int

const (
	StopSizeLimit StopReason = iota
	StopInvalidOpcode
	StopBranch
	StopBarrier
	StopEndOfRange
)

func (r StopReason) String() string {
	switch r {
	case StopSizeLimit:
		return "size limit"
	case StopInvalidOpcode:
		return "invalid opcode"
	case StopBranch:
		return "branch"
	case StopBarrier:
		return "barrier"
	case StopEndOfRange:
		return "end of range"
	default:
		return "unknown"
	}
}

// Instruction is one decoded instruction within a block.
type Instruction struct {
	Address uint32
	Raw     uint16
	Ordinal uint16
}

// Block is a straight-line run of instructions that a JIT can compile as
// one unit.
type Block struct {
	Start        uint32
	Instructions []Instruction
	Stop         StopReason

	// GuardFlags collects the FPSCR-dependent flags of the block, which a
	// compiled block must be specialized on.
	GuardFlags Flags

	// Cycles is the sum of the estimated cycles of every instruction.
	Cycles uint
}

// ScanBlock decodes instructions from start, two bytes apiece, until it
// reaches an undecodable opcode, an unconditional branch, a barrier, the
// exclusive end address, or limit instructions. An end of zero means no
// upper bound and a limit of zero or less means MaxBlockInstructions. A
// block that finishes exactly at end reports StopEndOfRange even when its
// last instruction is a branch or barrier.
//
// A branch with a delay slot always brings its slot instruction into the
// block with it, and the slot's flags count towards the branch's.
func (t *Table[C, D, A]) ScanBlock(fetch func(addr uint32) uint16, start, end uint32, limit int) Block {
	if limit <= 0 {
		limit = MaxBlockInstructions
	}
	inRange := func(addr uint32) bool {
		return end == 0 || addr < end
	}

	b := Block{Start: start, Stop: StopSizeLimit}
	addr := start
	for inRange(addr) && len(b.Instructions) < limit {
		raw := fetch(addr)
		ordinal, op := t.Lookup(raw)
		flags := op.Flags

		// Invalid opcodes may sit behind conditions that never hold, so
		// this isn't an error; the block just can't go any further.
		if ordinal == 0 {
			b.Stop = StopInvalidOpcode
			return b
		}

		b.Instructions = append(b.Instructions, Instruction{Address: addr, Raw: raw, Ordinal: ordinal})
		b.Cycles += op.Cycles
		addr += 2

		if op.Flags.Has(DelaySlot) {
			slotRaw := fetch(addr)
			slotOrdinal, slot := t.Lookup(slotRaw)
			b.Instructions = append(b.Instructions, Instruction{Address: addr, Raw: slotRaw, Ordinal: slotOrdinal})
			b.Cycles += slot.Cycles
			flags |= slot.Flags
			addr += 2
		}

		b.GuardFlags |= flags & (FPUSZ | FPUPR)

		if op.Flags.Has(Branch) && !op.Flags.Has(Conditional) {
			b.Stop = StopBranch
			break
		}
		if flags.Has(Barrier) {
			b.Stop = StopBarrier
			break
		}
	}

	// Running into the next block takes precedence over how the last
	// instruction ended this one.
	if end != 0 && addr == end {
		b.Stop = StopEndOfRange
	} else if b.Stop == StopSizeLimit && !inRange(addr) {
		b.Stop = StopEndOfRange
	}
	return b
}

// Translatable reports, for each instruction of b, whether a JIT may use its
// IR translation instead of an interpreter upcall. A branch and its delay
// slot always share one answer, from CanTranslateWithSlot.
func (t *Table[C, D, A]) Translatable(b Block) []bool {
	ret := make([]bool, len(b.Instructions))
	for i := 0; i < len(b.Instructions); i++ {
		inst := b.Instructions[i]
		_, op := t.Lookup(inst.Raw)
		if !op.Flags.Has(DelaySlot) {
			ret[i] = t.CanTranslate(inst.Raw)
			continue
		}
		if i+1 == len(b.Instructions) {
			// A block built by ScanBlock never separates the two.
			break
		}
		ok := t.CanTranslateWithSlot(inst.Raw, b.Instructions[i+1].Raw)
		ret[i], ret[i+1] = ok, ok
		i++
	}
	return ret
}
