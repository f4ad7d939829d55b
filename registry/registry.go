// Package registry builds dispatch tables at run time from Go values rather
// than generated source. Each instruction pattern of a description is bound
// to a handler, and the handler's optional capabilities decide what the
// dispatch entry can do.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apparentlymart/sh4-meta/dispatch"
	"github.com/apparentlymart/sh4-meta/isa"
)

// Handler executes one instruction on a CPU of type C. It is the only
// capability every instruction must have.
type Handler[C any] interface {
	Execute(cpu C, opcode uint16)
}

// Disassembler is implemented by handlers that can render their
// instruction. Without it, the instruction disassembles as its pattern.
type Disassembler[D any] interface {
	Disassemble(dbg D, opcode uint16, pc uint32) string
}

// Translator is implemented by handlers that can lower their instruction to
// IR. Instructions without it are not translatable.
type Translator[A any] interface {
	Translate(asm A, opcode uint16, pc uint32, flags uint32) bool
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc[C any] func(cpu C, opcode uint16)

func (f HandlerFunc[C]) Execute(cpu C, opcode uint16) {
	f(cpu, opcode)
}

// Registry maps instruction patterns to handlers.
type Registry[C, D, A any] struct {
	handlers map[string]Handler[C]
}

func New[C, D, A any]() *Registry[C, D, A] {
	return &Registry[C, D, A]{
		handlers: make(map[string]Handler[C]),
	}
}

// Register binds a handler to the instruction with the given pattern.
func (r *Registry[C, D, A]) Register(pattern string, h Handler[C]) error {
	if h == nil {
		return fmt.Errorf("nil handler for %s", pattern)
	}
	if _, exists := r.handlers[pattern]; exists {
		return fmt.Errorf("a handler for %s is already registered", pattern)
	}
	r.handlers[pattern] = h
	return nil
}

// Bind produces the dispatch table for a decode table, with one entry per
// record in ordinal order after the sentinel. Every record needs a handler,
// and every handler needs a record.
func (r *Registry[C, D, A]) Bind(table *isa.Table) (*dispatch.Table[C, D, A], error) {
	records := table.Records()
	opcodes := make([]dispatch.Opcode[C, D, A], 0, len(records)+1)
	opcodes = append(opcodes, dispatch.Opcode[C, D, A]{
		Disassemble: func(D, uint16, uint32) string { return "????" },
	})

	var missing []string
	used := make(map[string]bool, len(records))
	for _, rec := range records {
		h, ok := r.handlers[rec.Pattern]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", rec.Pattern, rec.Name))
			continue
		}
		used[rec.Pattern] = true

		op := dispatch.Opcode[C, D, A]{
			Execute: h.Execute,
			Flags:   rec.FlagSet(),
			Cycles:  rec.Cycles,
		}
		if d, ok := h.(Disassembler[D]); ok {
			op.Disassemble = d.Disassemble
		} else {
			pattern := rec.Pattern
			op.Disassemble = func(D, uint16, uint32) string { return pattern }
		}
		if t, ok := h.(Translator[A]); ok {
			op.Translate = t.Translate
		}
		opcodes = append(opcodes, op)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no handler registered for %s", strings.Join(missing, ", "))
	}

	var unused []string
	for pattern := range r.handlers {
		if !used[pattern] {
			unused = append(unused, pattern)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return nil, fmt.Errorf("handlers registered for patterns not in the table: %s", strings.Join(unused, ", "))
	}

	decode := table.Decode()
	return dispatch.New(&decode, opcodes)
}
