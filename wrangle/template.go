package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apparentlymart/sh4-meta/isa"
)

type stub struct {
	Pattern  string
	Mnemonic string
}

// readStubs reads "pattern|mnemonic" lines. Runs of whitespace collapse to
// one space; blank lines and lines starting with # are skipped.
func readStubs(r io.Reader, filename string) ([]stub, error) {
	var stubs []stub
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.Join(strings.Fields(sc.Text()), " ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pattern, mnemonic, ok := strings.Cut(line, "|")
		if !ok {
			return nil, &isa.ParseError{File: filename, Line: lineNum, Text: line, Msg: "expected pattern|mnemonic"}
		}
		pattern = strings.TrimSpace(pattern)
		mnemonic = strings.TrimSpace(mnemonic)
		if err := isa.ValidatePattern(pattern); err != nil {
			return nil, &isa.ParseError{File: filename, Line: lineNum, Text: line, Msg: err.Error()}
		}
		if mnemonic == "" {
			mnemonic = pattern
		}
		stubs = append(stubs, stub{Pattern: pattern, Mnemonic: mnemonic})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return stubs, nil
}

// generateTemplate writes a description skeleton with one unimplemented
// block per stub.
func generateTemplate(w io.Writer, stubs []stub) {
	for i, s := range stubs {
		if i > 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "%s:\n", s.Mnemonic)
		fmt.Fprintf(w, "  FORMAT: %s\n", s.Pattern)
		fmt.Fprintf(w, "  CYCLES: 1\n")
		fmt.Fprintf(w, "  FLAGS: NO_FLAGS\n")
		fmt.Fprintf(w, "  EXECUTE:\n")
		msg := fmt.Sprintf("unimplemented opcode '%s' (%s)", s.Mnemonic, s.Pattern)
		fmt.Fprintf(w, "    panic(%q)\n", msg)
	}
}

func runTemplate(cfg *config) ([]byte, error) {
	f, err := os.Open(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Template, err)
	}
	defer f.Close()

	stubs, err := readStubs(f, cfg.Template)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	generateTemplate(&buf, stubs)
	return buf.Bytes(), nil
}
