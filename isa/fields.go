package isa

import (
	"fmt"
	"math/bits"
	"strings"
)

// Field says how to pull one operand out of a raw opcode: mask it, then
// shift right by Offset to get a value in [0, 1<<Bits).
type Field struct {
	Letter byte
	Mask   bits16
	Offset uint
	Bits   uint
}

func (f Field) Extract(v uint16) uint16 {
	return (v & uint16(f.Mask)) >> f.Offset
}

// Inject is the inverse of Extract: it returns v with the field's bits
// replaced by value. Bits of value that don't fit in the field are dropped.
func (f Field) Inject(v uint16, value uint16) uint16 {
	return v&^uint16(f.Mask) | (value<<f.Offset)&uint16(f.Mask)
}

func (f Field) String() string {
	return fmt.Sprintf("%c: (op & %s) >> %d", f.Letter, f.Mask, f.Offset)
}

// ExtractFields returns a descriptor for each of Letters that occurs in the
// pattern, in the order of Letters rather than the order of the pattern.
func ExtractFields(pattern string) []Field {
	var ret []Field
	for i := 0; i < len(Letters); i++ {
		letter := Letters[i]
		if strings.IndexByte(pattern, letter) < 0 {
			continue
		}
		ret = append(ret, fieldFor(pattern, letter))
	}
	return ret
}

func fieldFor(pattern string, letter byte) Field {
	mask := makeMask(pattern, string(letter))
	if mask == 0 {
		panic(fmt.Sprintf("isa: field %q does not occur in pattern %s", letter, pattern))
	}
	return Field{
		Letter: letter,
		Mask:   mask,
		Offset: fieldOffset(pattern, letter),
		Bits:   uint(bits.OnesCount16(uint16(mask))),
	}
}

// fieldOffset is the shift that moves the field's lowest bit to bit zero:
// the distance from the letter's last occurrence to the end of the word.
// It is zero for a letter that doesn't occur at all.
func fieldOffset(pattern string, letter byte) uint {
	last := strings.LastIndexByte(pattern, letter)
	if last < 0 {
		return 0
	}
	return uint(Width - 1 - last)
}

// contiguous reports whether every occurrence of letter in pattern is part
// of one unbroken run, which Extract needs to produce a dense value.
func contiguous(pattern string, letter byte) bool {
	first := strings.IndexByte(pattern, letter)
	if first < 0 {
		return true
	}
	last := strings.LastIndexByte(pattern, letter)
	return strings.Count(pattern[first:last+1], string(letter)) == last-first+1
}
