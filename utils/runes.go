package utils

import (
	"unicode/utf8"
)

// MakeRuneByteSlices decodes txt and returns its runes along with the byte
// offset at which each rune starts.
func MakeRuneByteSlices(txt string) ([]rune, []int) {
	runesCount := utf8.RuneCountInString(txt)
	runes := make([]rune, runesCount)
	offsets := make([]int, runesCount)

	bytesOffset := 0
	for i := 0; i < runesCount; i++ {
		ch, chSize := utf8.DecodeRuneInString(txt[bytesOffset:])
		runes[i] = ch
		offsets[i] = bytesOffset
		bytesOffset += chSize
	}
	return runes, offsets
}
