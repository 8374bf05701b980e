// Package textpos translates between editor coordinates (1-based lines,
// 1-based UTF-8 byte columns) and parser coordinates (0-based UTF-16 code
// unit offsets, 1-based lines with 0-based UTF-16 columns).
package textpos

import (
	"unicode/utf16"
	"unicode/utf8"
)

// runeUnits returns the number of UTF-16 code units needed for r.
func runeUnits(r rune) int {
	if utf16.IsSurrogate(r) || r < 0x10000 {
		return 1
	}
	return 2
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// ByteIndexToCharIndex converts a 0-based byte index within line into a
// 0-based UTF-16 index. It walks the line one code point at a time and stops
// at the first character boundary at or after byteIndex. Indexes past the
// end of the line return the line's UTF-16 length.
func ByteIndexToCharIndex(line string, byteIndex int) int {
	bytes, chars := 0, 0
	for bytes < len(line) && bytes < byteIndex {
		r, size := utf8.DecodeRuneInString(line[bytes:])
		bytes += size
		chars += runeUnits(r)
	}
	return chars
}

// CharIndexToByteIndex converts a 0-based UTF-16 index within line into a
// 0-based byte index. An index that splits a surrogate pair resolves to the
// start of the following character.
func CharIndexToByteIndex(line string, charIndex int) int {
	bytes, chars := 0, 0
	for bytes < len(line) && chars < charIndex {
		r, size := utf8.DecodeRuneInString(line[bytes:])
		bytes += size
		chars += runeUnits(r)
	}
	return bytes
}
