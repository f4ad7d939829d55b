package isa

import (
	"fmt"
	"strings"
)

type bits16 uint16

func (v bits16) String() string {
	return fmt.Sprintf("0b%016b", uint16(v))
}

// makeMask returns a word with a bit set for every position of pattern
// holding one of the characters in charset. The first character of the
// pattern is the most significant bit.
func makeMask(pattern string, charset string) bits16 {
	var ret bits16
	for i := 0; i < len(pattern); i++ {
		ret <<= 1
		if strings.IndexByte(charset, pattern[i]) >= 0 {
			ret |= 1
		}
	}
	return ret
}
