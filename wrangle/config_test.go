package main

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-o", "ops.go", "-import", "fmt", "-import", "math/bits", "-no-format", "-v", "descs/sh4-ops.isa"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	want := &config{
		Input:     "descs/sh4-ops.isa",
		Output:    "ops.go",
		Package:   "sh4_ops",
		CPU:       "*SH4",
		Debugger:  "*Debugger",
		Assembler: "*Assembler",
		Imports:   []string{"fmt", "math/bits"},
		Verbose:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("wrong config (-want +got):\n%s", diff)
	}
}

func TestParseFlags_Template(t *testing.T) {
	cfg, err := parseFlags([]string{"-template", "patterns.txt"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if cfg.Template != "patterns.txt" || cfg.Input != "" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		args []string
		msg  string
	}{
		{nil, "expected exactly one description file"},
		{[]string{"a.isa", "b.isa"}, "expected exactly one description file"},
		{[]string{"-package", "my-pkg", "a.isa"}, "not a Go identifier"},
		{[]string{"-cpu", "**SH4", "a.isa"}, "-cpu"},
		{[]string{"-template", "p.txt", "a.isa"}, "takes no description"},
		{[]string{"-bogus", "a.isa"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in %q", tt.msg, err.Error())
			}
		})
	}
}

func TestPackageNameFor(t *testing.T) {
	for in, want := range map[string]string{
		"sh4.isa":             "sh4",
		"/tmp/sh4-ops.isa":    "sh4_ops",
		"4k.isa":              "_4k",
		"descs/SH4 Extra.isa": "sh4_extra",
	} {
		if got := packageNameFor(in); got != want {
			t.Errorf("%s: expected %q, got %q", in, want, got)
		}
	}
}
