package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type testCPU struct {
	ran []uint16
}

type testDebugger struct{}

type testAssembler struct {
	translated []uint16
}

type testOpcode = Opcode[*testCPU, *testDebugger, *testAssembler]

const (
	opNOP   = 0x0009
	opRTS   = 0x000b
	opSLEEP = 0x001b
	opMOV   = 0x6123
)

func run(cpu *testCPU, opcode uint16) {
	cpu.ran = append(cpu.ran, opcode)
}

func named(name string) func(*testDebugger, uint16, uint32) string {
	return func(_ *testDebugger, opcode uint16, pc uint32) string {
		return fmt.Sprintf("%s@%08x", name, pc)
	}
}

func translate(asm *testAssembler, opcode uint16, pc uint32, flags uint32) bool {
	asm.translated = append(asm.translated, opcode)
	return true
}

// newTestTable decodes NOP, RTS, SLEEP and every MOV Rm,Rn.
func newTestTable(t *testing.T) *Table[*testCPU, *testDebugger, *testAssembler] {
	t.Helper()
	var decode [DecodeSize]uint16
	decode[opNOP] = 1
	decode[opRTS] = 2
	decode[opSLEEP] = 3
	for v := 0; v < DecodeSize; v++ {
		if v&0xf00f == 0x6003 {
			decode[v] = 4
		}
	}
	opcodes := []testOpcode{
		{Disassemble: func(*testDebugger, uint16, uint32) string { return "????" }},
		{Execute: run, Disassemble: named("nop"), Translate: translate, Cycles: 1},
		{Execute: run, Disassemble: named("rts"), Flags: Branch | DelaySlot | IllegalInDelaySlot, Cycles: 2},
		{Execute: run, Disassemble: named("sleep"), Translate: translate, Flags: DisableJIT | Barrier, Cycles: 4},
		{Execute: run, Disassemble: named("mov"), Translate: translate, Cycles: 1},
	}
	table, err := New(&decode, opcodes)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return table
}

func TestNew_Validation(t *testing.T) {
	var decode [DecodeSize]uint16
	good := []testOpcode{{}, {Execute: run}}

	tests := []struct {
		name    string
		decode  *[DecodeSize]uint16
		opcodes []testOpcode
		msg     string
	}{
		{"nil decode", nil, good, "nil decode table"},
		{"no sentinel", &decode, nil, "no sentinel"},
		{"executable sentinel", &decode, []testOpcode{{Execute: run}}, "sentinel"},
		{"translatable sentinel", &decode, []testOpcode{{Translate: translate}}, "sentinel"},
		{"entry without execute", &decode, []testOpcode{{}, {}}, "entry 1 has no execute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.decode, tt.opcodes)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in %q", tt.msg, err.Error())
			}
		})
	}

	var bad [DecodeSize]uint16
	bad[0x1234] = 2
	_, err := New(&bad, good)
	if err == nil || !strings.Contains(err.Error(), "0x1234") {
		t.Errorf("expected out-of-range error naming 0x1234, got %v", err)
	}
}

func TestTable_Lookup(t *testing.T) {
	table := newTestTable(t)
	if table.Len() != 4 {
		t.Errorf("expected 4 instructions, got %d", table.Len())
	}
	if ordinal, op := table.Lookup(opMOV); ordinal != 4 || op.Cycles != 1 {
		t.Errorf("MOV: expected ordinal 4, got %d", ordinal)
	}
	if ordinal, op := table.Lookup(0xffff); ordinal != 0 || op.Execute != nil {
		t.Errorf("0xffff: expected the sentinel, got %d", ordinal)
	}
	if table.Entry(2).Flags != Branch|DelaySlot|IllegalInDelaySlot {
		t.Errorf("unexpected flags for entry 2: %v", table.Entry(2).Flags)
	}
	if table.Entry(5) != nil {
		t.Error("expected nil for an out-of-range ordinal")
	}
}

func TestTable_Execute(t *testing.T) {
	table := newTestTable(t)
	cpu := &testCPU{}
	for _, opcode := range []uint16{opNOP, opMOV, opRTS} {
		if err := table.Execute(cpu, opcode); err != nil {
			t.Fatalf("0x%04x: %v", opcode, err)
		}
	}
	if len(cpu.ran) != 3 || cpu.ran[1] != opMOV {
		t.Errorf("unexpected execution trace %04x", cpu.ran)
	}

	err := table.Execute(cpu, 0xffff)
	if !errors.Is(err, ErrIllegalInstruction) {
		t.Fatalf("expected ErrIllegalInstruction, got %v", err)
	}
	if !strings.Contains(err.Error(), "0xffff") {
		t.Errorf("expected opcode in %q", err.Error())
	}
	if len(cpu.ran) != 3 {
		t.Error("illegal opcode must not run anything")
	}
}

func TestTable_ExecuteDelaySlot(t *testing.T) {
	table := newTestTable(t)

	// Without a guard the check is inert.
	cpu := &testCPU{}
	if err := table.ExecuteDelaySlot(cpu, opRTS); err != nil {
		t.Fatalf("unguarded delay slot: %v", err)
	}
	if len(cpu.ran) != 1 {
		t.Fatal("expected RTS to run")
	}

	errSlot := errors.New("slot illegal instruction")
	guarded := table.WithGuard(func(opcode uint16, op *testOpcode) error {
		if op.Flags.Has(IllegalInDelaySlot) {
			return errSlot
		}
		return nil
	})
	cpu = &testCPU{}
	if err := guarded.ExecuteDelaySlot(cpu, opRTS); !errors.Is(err, errSlot) {
		t.Fatalf("expected guard error, got %v", err)
	}
	if err := guarded.ExecuteDelaySlot(cpu, opMOV); err != nil {
		t.Fatalf("MOV in delay slot: %v", err)
	}
	if err := guarded.Execute(cpu, opRTS); err != nil {
		t.Fatalf("guard must not apply outside delay slots: %v", err)
	}
	if err := guarded.ExecuteDelaySlot(cpu, 0xffff); !errors.Is(err, ErrIllegalInstruction) {
		t.Fatalf("expected ErrIllegalInstruction, got %v", err)
	}
	if len(cpu.ran) != 2 {
		t.Errorf("expected MOV and RTS to run, got %04x", cpu.ran)
	}

	// The original table is unaffected.
	if err := table.ExecuteDelaySlot(&testCPU{}, opRTS); err != nil {
		t.Errorf("WithGuard changed the original table: %v", err)
	}
}

func TestTable_Disassemble(t *testing.T) {
	table := newTestTable(t)
	dbg := &testDebugger{}
	tests := []struct {
		opcode uint16
		want   string
	}{
		{opNOP, "nop@8c000000"},
		{opMOV, "mov@8c000000"},
		{opSLEEP, "sleep@8c000000 [DISABLE_JIT]"},
		{0xffff, "????"},
	}
	for _, tt := range tests {
		if got := table.Disassemble(dbg, tt.opcode, 0x8c000000); got != tt.want {
			t.Errorf("0x%04x: expected %q, got %q", tt.opcode, tt.want, got)
		}
	}
}

func TestTable_Translate(t *testing.T) {
	table := newTestTable(t)
	asm := &testAssembler{}

	if !table.CanTranslate(opNOP) {
		t.Error("NOP should be translatable")
	}
	if table.CanTranslate(opRTS) {
		t.Error("RTS has no translation")
	}
	if table.CanTranslate(opSLEEP) {
		t.Error("SLEEP is DISABLE_JIT")
	}
	if table.CanTranslate(0xffff) {
		t.Error("the sentinel has no translation")
	}

	ok, err := table.Translate(asm, opMOV, 0, 0)
	if err != nil || !ok {
		t.Fatalf("MOV: expected translation, got %v, %v", ok, err)
	}
	for _, opcode := range []uint16{opRTS, opSLEEP, 0xffff} {
		if _, err := table.Translate(asm, opcode, 0, 0); !errors.Is(err, ErrNoTranslation) {
			t.Errorf("0x%04x: expected ErrNoTranslation, got %v", opcode, err)
		}
	}
	if len(asm.translated) != 1 || asm.translated[0] != opMOV {
		t.Errorf("unexpected translations %04x", asm.translated)
	}
}

func TestTable_ConcurrentReaders(t *testing.T) {
	table := newTestTable(t)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cpu := &testCPU{}
			dbg := &testDebugger{}
			for v := 0; v < DecodeSize; v += 7 {
				table.Lookup(uint16(v))
				table.Disassemble(dbg, uint16(v), 0)
				_ = table.Execute(cpu, uint16(v))
			}
		}()
	}
	wg.Wait()
}
