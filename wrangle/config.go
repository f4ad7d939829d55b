package main

import (
	"errors"
	"flag"
	"fmt"
	"go/token"
	"io"
	"strings"
)

type config struct {
	Input  string
	Output string // empty for stdout

	// Package, CPU, Debugger and Assembler shape the generated code: the
	// package clause and the receiver types of the execute, disassemble
	// and translate methods.
	Package   string
	CPU       string
	Debugger  string
	Assembler string
	Imports   []string

	Format  bool
	Dump    bool
	Report  bool
	Verbose bool

	// Template, when set, names a "pattern|mnemonic" list to turn into a
	// skeleton description instead of generating code.
	Template string
}

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	var noFormat bool
	var imports stringList

	fs := flag.NewFlagSet("wrangle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Output, "o", "", "write generated code to this file instead of stdout")
	fs.StringVar(&cfg.Package, "package", "", "package name of the generated code (default from the description filename)")
	fs.StringVar(&cfg.CPU, "cpu", "*SH4", "receiver type of execute methods")
	fs.StringVar(&cfg.Debugger, "debugger", "*Debugger", "receiver type of disassemble methods")
	fs.StringVar(&cfg.Assembler, "assembler", "*Assembler", "receiver type of IR translation methods")
	fs.Var(&imports, "import", "extra import path for the generated code (repeatable)")
	fs.BoolVar(&noFormat, "no-format", false, "don't gofmt the generated code")
	fs.BoolVar(&cfg.Dump, "dump", false, "dump the parsed instructions to stderr")
	fs.BoolVar(&cfg.Report, "report", false, "print a per-instruction decode coverage table to stderr")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose logging")
	fs.StringVar(&cfg.Template, "template", "", "write a skeleton description for a pattern|mnemonic list")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  wrangle [options] description.isa\n  wrangle -template patterns.txt\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Format = !noFormat
	cfg.Imports = imports

	if cfg.Template != "" {
		if fs.NArg() != 0 {
			return nil, errors.New("-template takes no description argument")
		}
		return cfg, nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one description file")
	}
	cfg.Input = fs.Arg(0)
	if cfg.Package == "" {
		cfg.Package = packageNameFor(cfg.Input)
	}

	if !token.IsIdentifier(cfg.Package) {
		return nil, fmt.Errorf("-package %q is not a Go identifier", cfg.Package)
	}
	for name, typ := range map[string]string{"cpu": cfg.CPU, "debugger": cfg.Debugger, "assembler": cfg.Assembler} {
		if !token.IsIdentifier(strings.TrimPrefix(typ, "*")) {
			return nil, fmt.Errorf("-%s %q is not a type name", name, typ)
		}
	}
	return cfg, nil
}
