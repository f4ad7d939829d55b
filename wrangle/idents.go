package main

import (
	"path/filepath"
	"strings"
	"unicode"
)

// packageNameFor derives a package name from a description filename, so
// that "sh4.isa" generates package sh4.
func packageNameFor(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return makeIdentUnderscores(base)
}

func makeIdentUnderscores(inp string) string {
	var b strings.Builder
	for i, r := range inp {
		switch {
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case unicode.IsLetter(r):
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
