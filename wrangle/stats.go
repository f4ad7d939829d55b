package main

import (
	"fmt"
	"io"

	"github.com/apparentlymart/sh4-meta/isa"
)

type summary struct {
	Total       int
	Implemented int
	WithDisasm  int
	WithIR      int
}

func summarize(records []*isa.Record) summary {
	s := summary{Total: len(records)}
	for _, rec := range records {
		if rec.Implemented() {
			s.Implemented++
		}
		if rec.Disassemble != nil {
			s.WithDisasm++
		}
		if rec.IR != nil {
			s.WithIR++
		}
	}
	return s
}

func (s summary) Stubs() int {
	return s.Total - s.Implemented
}

func writeSummary(w io.Writer, s summary) {
	fmt.Fprintf(w, "Total Opcodes: %d\n", s.Total)
	fmt.Fprintf(w, "    Implemented: %d (%d stubs)\n", s.Implemented, s.Stubs())
	fmt.Fprintf(w, "    With Disasm: %d\n", s.WithDisasm)
	fmt.Fprintf(w, "    With IR:     %d\n", s.WithIR)
}

// decodeCoverage counts how many raw opcodes each ordinal claims, and how
// many decode to nothing at all.
func decodeCoverage(decode [1 << isa.Width]uint16, records int) (claimed []int, unclaimed int) {
	claimed = make([]int, records+1)
	for _, ordinal := range decode {
		claimed[ordinal]++
	}
	return claimed[1:], claimed[0]
}
