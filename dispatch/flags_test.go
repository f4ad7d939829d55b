package dispatch

import (
	"testing"
)

func TestParseFlag(t *testing.T) {
	for _, fn := range flagNames {
		got, ok := ParseFlag(fn.token)
		if !ok || got != fn.flag {
			t.Errorf("%s: expected %#x, got %#x (ok=%v)", fn.token, uint32(fn.flag), uint32(got), ok)
		}
	}
	if f, ok := ParseFlag("NO_FLAGS"); !ok || f != NoFlags {
		t.Errorf("NO_FLAGS: expected NoFlags, got %v (ok=%v)", f, ok)
	}
	if _, ok := ParseFlag("branch"); ok {
		t.Error("flag tokens are case sensitive")
	}
}

func TestFlags_Distinct(t *testing.T) {
	var all Flags
	for _, fn := range flagNames {
		if all&fn.flag != 0 {
			t.Errorf("%s reuses a bit", fn.token)
		}
		all |= fn.flag
	}
}

func TestFlags_String(t *testing.T) {
	tests := []struct {
		flags Flags
		str   string
		gostr string
	}{
		{NoFlags, "NO_FLAGS", "dispatch.NoFlags"},
		{Branch, "BRANCH", "dispatch.Branch"},
		{DelaySlot | Branch, "BRANCH|DELAY_SLOT", "dispatch.Branch | dispatch.DelaySlot"},
		{FPUSZ | UsesFPU, "USES_FPU|FPU_SZ", "dispatch.UsesFPU | dispatch.FPUSZ"},
		{Return | 1<<20, "RETURN|0x100000", "dispatch.Return | dispatch.Flags(0x100000)"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.str {
			t.Errorf("String: expected %q, got %q", tt.str, got)
		}
		if got := tt.flags.GoString(); got != tt.gostr {
			t.Errorf("GoString: expected %q, got %q", tt.gostr, got)
		}
	}
}

func TestFlags_Has(t *testing.T) {
	f := Branch | Conditional
	if !f.Has(Branch) || !f.Has(Branch|Conditional) {
		t.Error("expected Branch and Branch|Conditional")
	}
	if f.Has(Branch | DelaySlot) {
		t.Error("Has must require every bit")
	}
}
