package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/apparentlymart/sh4-meta/isa"
)

// writeReport renders one row per instruction: its ordinal, how many raw
// opcodes decode to it, and which optional bodies it has.
func writeReport(w io.Writer, table *isa.Table) {
	claimed, unclaimed := decodeCoverage(table.Decode(), table.Len())

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Ordinal", "Name", "Pattern", "Cycles", "Flags", "Opcodes", "Disasm", "IR"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetAutoWrapText(false)
	for i, rec := range table.Records() {
		name := rec.Name
		if !rec.Implemented() {
			name += " (stub)"
		}
		tw.Append([]string{
			strconv.Itoa(i + 1),
			name,
			rec.Pattern,
			strconv.FormatUint(uint64(rec.Cycles), 10),
			rec.FlagSet().String(),
			strconv.Itoa(claimed[i]),
			yesNo(rec.Disassemble != nil),
			yesNo(rec.IR != nil),
		})
	}
	tw.SetFooter([]string{"", "", "", "", "unclaimed", strconv.Itoa(unclaimed), "", ""})
	tw.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
