package main

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"path/filepath"
	"strings"

	"github.com/apparentlymart/sh4-meta/isa"
)

const dispatchImportPath = "github.com/apparentlymart/sh4-meta/dispatch"

// decodeLineWidth is how many decode table entries go on each line.
const decodeLineWidth = 128

// generateGo renders the Go source for a decode table: one opcode type and
// set of methods per instruction, then the dispatch and decode tables.
func generateGo(cfg *config, table *isa.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := &buf

	fmt.Fprintf(w, "// Code generated by wrangle from %s. DO NOT EDIT.\n\n", filepath.Base(cfg.Input))
	fmt.Fprintf(w, "package %s\n\n", cfg.Package)
	generateGoImports(w, cfg.Imports)

	records := table.Records()
	for _, rec := range records {
		generateGoOpcode(w, cfg, rec)
	}
	generateGoOpcodeTable(w, cfg, records)
	generateGoDecodeTable(w, table.Decode())

	fmt.Fprintf(w, "// NewTable pairs the decode table with the dispatch table.\n")
	fmt.Fprintf(w, "func NewTable() (*dispatch.Table[%s], error) {\n", typeArgs(cfg))
	fmt.Fprintf(w, "\treturn dispatch.New(&decodeTable, opcodeTable)\n")
	fmt.Fprintf(w, "}\n")

	if !cfg.Format {
		return buf.Bytes(), nil
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code is not valid Go: %w", err)
	}
	return formatted, nil
}

func generateGoImports(w io.Writer, extra []string) {
	var std, other []string
	seen := map[string]bool{dispatchImportPath: true}
	for _, path := range extra {
		if seen[path] {
			continue
		}
		seen[path] = true
		// Standard library paths have no dot in their first element.
		first, _, _ := strings.Cut(path, "/")
		if strings.Contains(first, ".") {
			other = append(other, path)
		} else {
			std = append(std, path)
		}
	}
	other = append(other, dispatchImportPath)

	fmt.Fprintf(w, "import (\n")
	for _, path := range std {
		fmt.Fprintf(w, "\t%q\n", path)
	}
	if len(std) > 0 {
		fmt.Fprintf(w, "\n")
	}
	for _, path := range other {
		fmt.Fprintf(w, "\t%q\n", path)
	}
	fmt.Fprintf(w, ")\n\n")
}

func generateGoOpcode(w io.Writer, cfg *config, rec *isa.Record) {
	typ := rec.TypeName()

	fmt.Fprintf(w, "// %s is %s.\n", typ, rec.Name)
	fmt.Fprintf(w, "type %s uint16\n\n", typ)
	fmt.Fprintf(w, "func (%s) Cycles() uint { return %d }\n", typ, rec.Cycles)
	fmt.Fprintf(w, "func (%s) Encoding() uint16 { return 0b%016b }\n", typ, uint16(rec.Encoding))
	fmt.Fprintf(w, "func (%s) Mask() uint16 { return 0b%016b }\n", typ, uint16(rec.Mask))
	for _, f := range rec.Fields {
		name := strings.ToUpper(string(f.Letter))
		fmt.Fprintf(w, "func (%s) %sBits() uint { return %d }\n", typ, name, f.Bits)
		fmt.Fprintf(w, "func (op %s) %s() uint16 { return (uint16(op) & 0b%016b) >> %d }\n", typ, name, uint16(f.Mask), f.Offset)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "func (cpu %s) execute%s(opcode uint16) {\n", cfg.CPU, typ)
	generateGoBody(w, typ, rec.Execute)
	fmt.Fprintf(w, "}\n\n")

	fmt.Fprintf(w, "func (dbg %s) disassemble%s(opcode uint16, pc uint32) string {\n", cfg.Debugger, typ)
	if rec.Disassemble != nil {
		generateGoBody(w, typ, rec.Disassemble)
	} else {
		fmt.Fprintf(w, "\treturn %q\n", rec.Pattern)
	}
	fmt.Fprintf(w, "}\n\n")

	if rec.IR != nil {
		fmt.Fprintf(w, "func (asm %s) translate%s(opcode uint16, pc uint32, flags uint32) bool {\n", cfg.Assembler, typ)
		generateGoBody(w, typ, rec.IR)
		fmt.Fprintf(w, "}\n\n")
	}
}

// generateGoBody writes a method body from description lines, which see the
// decoded opcode as "op".
func generateGoBody(w io.Writer, typ string, lines []string) {
	fmt.Fprintf(w, "\top := %s(opcode)\n", typ)
	fmt.Fprintf(w, "\t_ = op\n")
	for _, line := range lines {
		fmt.Fprintf(w, "\t%s\n", line)
	}
}

func generateGoOpcodeTable(w io.Writer, cfg *config, records []*isa.Record) {
	fmt.Fprintf(w, "// opcodeTable is indexed by the ordinals in decodeTable. Entry zero\n")
	fmt.Fprintf(w, "// stands for every opcode that decodes to no instruction.\n")
	fmt.Fprintf(w, "var opcodeTable = []dispatch.Opcode[%s]{\n", typeArgs(cfg))
	fmt.Fprintf(w, "\t{Disassemble: func(%s, uint16, uint32) string { return \"????\" }},\n", cfg.Debugger)
	for _, rec := range records {
		typ := rec.TypeName()
		fmt.Fprintf(w, "\t{Execute: (%s).execute%s, ", cfg.CPU, typ)
		fmt.Fprintf(w, "Disassemble: (%s).disassemble%s, ", cfg.Debugger, typ)
		if rec.IR != nil {
			fmt.Fprintf(w, "Translate: (%s).translate%s, ", cfg.Assembler, typ)
		}
		fmt.Fprintf(w, "Flags: %#v, Cycles: %d},\n", rec.FlagSet(), rec.Cycles)
	}
	fmt.Fprintf(w, "}\n\n")
}

func generateGoDecodeTable(w io.Writer, decode [1 << isa.Width]uint16) {
	fmt.Fprintf(w, "// decodeTable maps each raw opcode to its ordinal in opcodeTable.\n")
	fmt.Fprintf(w, "var decodeTable = [dispatch.DecodeSize]uint16{\n")
	for i, ordinal := range decode {
		if i%decodeLineWidth == 0 {
			fmt.Fprintf(w, "\t")
		}
		fmt.Fprintf(w, "%d,", ordinal)
		if i%decodeLineWidth == decodeLineWidth-1 {
			fmt.Fprintf(w, "\n")
		} else {
			fmt.Fprintf(w, " ")
		}
	}
	fmt.Fprintf(w, "}\n\n")
}

func typeArgs(cfg *config) string {
	return cfg.CPU + ", " + cfg.Debugger + ", " + cfg.Assembler
}
