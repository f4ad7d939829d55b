package isa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apparentlymart/sh4-meta/dispatch"
)

// Load reads the instruction records from a description file.
func Load(filename string) ([]*Record, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Parse(r, filename)
}

// rawBlock is one top-level block of a description before its keys have
// been checked.
type rawBlock struct {
	name  string
	line  int
	text  string
	keys  map[string]*rawValue
	order []string
}

type rawValue struct {
	scalar string
	lines  []string
	multi  bool
	line   int
	text   string
}

// Parse reads instruction records from a description. Records come back in
// the order they are written, which decides their ordinals.
//
// Indentation is in steps of two spaces. A line at depth zero names an
// instruction and ends with a colon. Lines at depth one are "KEY: value"
// pairs, and a key with an empty value opens a block that collects every
// following line at depth two or more, minus its first four spaces. Blank
// lines and lines starting with '#' are skipped wherever they appear.
func Parse(r io.Reader, filename string) ([]*Record, error) {
	var blocks []*rawBlock
	var current *rawBlock
	var active *rawValue

	lineNum := 0
	fail := func(msg string, text string) error {
		return &ParseError{File: filename, Line: lineNum, Text: text, Msg: msg}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")
		clean := strings.TrimLeft(line, " ")
		if clean == "" || clean[0] == '#' {
			continue
		}
		level := (len(line) - len(clean)) / 2

		switch {
		case level == 0:
			if !strings.HasSuffix(clean, ":") {
				return nil, fail("instruction name must end with ':'", line)
			}
			current = &rawBlock{
				name: strings.TrimSpace(strings.TrimSuffix(clean, ":")),
				line: lineNum,
				text: line,
				keys: make(map[string]*rawValue),
			}
			blocks = append(blocks, current)
			active = nil

		case level == 1:
			if current == nil {
				return nil, fail("key outside of an instruction block", line)
			}
			key, value, ok := strings.Cut(clean, ":")
			if !ok {
				return nil, fail("missing ':' after key", line)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if _, exists := current.keys[key]; exists {
				return nil, fail(fmt.Sprintf("duplicate key %s", key), line)
			}

			v := &rawValue{line: lineNum, text: line}
			if value == "" {
				v.multi = true
				v.lines = []string{}
				active = v
			} else {
				v.scalar = value
				active = nil
			}
			current.keys[key] = v
			current.order = append(current.order, key)

		default:
			if active == nil {
				return nil, fail("continuation line with no open block", line)
			}
			active.lines = append(active.lines, strings.TrimRight(line[4:], " \t"))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	ret := make([]*Record, 0, len(blocks))
	seen := make(map[string]*Record, len(blocks))
	for _, b := range blocks {
		rec, err := makeRecord(filename, b)
		if err != nil {
			return nil, err
		}
		if prev, exists := seen[rec.Pattern]; exists {
			return nil, &ParseError{
				File: filename,
				Line: b.line,
				Text: b.text,
				Msg:  fmt.Sprintf("pattern %s is already used by %s at line %d", rec.Pattern, prev.Name, prev.Line),
			}
		}
		seen[rec.Pattern] = rec
		ret = append(ret, rec)
	}
	return ret, nil
}

func makeRecord(filename string, b *rawBlock) (*Record, error) {
	blockErr := func(msg string) error {
		return &ParseError{File: filename, Line: b.line, Text: b.text, Msg: msg}
	}
	valueErr := func(v *rawValue, msg string) error {
		return &ParseError{File: filename, Line: v.line, Text: v.text, Msg: msg}
	}

	for _, key := range b.order {
		switch key {
		case "FORMAT", "CYCLES", "FLAGS", "EXECUTE", "DISASSEMBLE", "IR":
		default:
			return nil, valueErr(b.keys[key], fmt.Sprintf("unknown key %s", key))
		}
	}

	format, ok := b.keys["FORMAT"]
	if !ok {
		return nil, blockErr("missing FORMAT")
	}
	if format.multi {
		return nil, valueErr(format, "FORMAT must be on the same line as its key")
	}
	pattern := format.scalar
	if msg := checkPattern(pattern); msg != "" {
		return nil, valueErr(format, msg)
	}

	rec := newRecord(b.name, pattern)
	rec.Line = b.line

	cycles, ok := b.keys["CYCLES"]
	if !ok {
		return nil, blockErr("missing CYCLES")
	}
	n, err := strconv.ParseUint(cycles.scalar, 10, 32)
	if cycles.multi || err != nil {
		return nil, valueErr(cycles, "CYCLES must be a non-negative integer")
	}
	rec.Cycles = uint(n)

	flags, ok := b.keys["FLAGS"]
	if !ok {
		return nil, blockErr("missing FLAGS")
	}
	rawFlags := flags.scalar
	if flags.multi {
		rawFlags = strings.Join(flags.lines, " ")
	}
	rec.Flags = []string{}
	for _, token := range strings.Fields(rawFlags) {
		if _, ok := dispatch.ParseFlag(token); !ok {
			return nil, valueErr(flags, fmt.Sprintf("unknown flag %s", token))
		}
		rec.Flags = append(rec.Flags, token)
	}

	execute, ok := b.keys["EXECUTE"]
	if !ok {
		return nil, blockErr("missing EXECUTE")
	}
	if !execute.multi {
		return nil, valueErr(execute, "EXECUTE must be an indented block")
	}
	rec.Execute = execute.lines

	if v, ok := b.keys["DISASSEMBLE"]; ok {
		if !v.multi {
			return nil, valueErr(v, "DISASSEMBLE must be an indented block")
		}
		rec.Disassemble = v.lines
	}
	if v, ok := b.keys["IR"]; ok {
		if !v.multi {
			return nil, valueErr(v, "IR must be an indented block")
		}
		rec.IR = v.lines
	}

	return rec, nil
}

// ValidatePattern reports whether pattern is a usable instruction format:
// Width characters drawn from 0, 1 and the field letters, with each field
// occupying one contiguous run.
func ValidatePattern(pattern string) error {
	if msg := checkPattern(pattern); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// checkPattern returns a description of what's wrong with pattern, or an
// empty string if it's usable.
func checkPattern(pattern string) string {
	if len(pattern) != Width {
		return fmt.Sprintf("pattern must be %d characters, not %d", Width, len(pattern))
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '0' && c != '1' && strings.IndexByte(Letters, c) < 0 {
			return fmt.Sprintf("pattern character %q is neither a bit nor one of the fields %q", c, Letters)
		}
	}
	for i := 0; i < len(Letters); i++ {
		if !contiguous(pattern, Letters[i]) {
			return fmt.Sprintf("field %c is split across the pattern", Letters[i])
		}
	}
	return ""
}
