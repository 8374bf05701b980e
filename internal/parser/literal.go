package parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unescapeString decodes JavaScript string and template escapes. ok is false
// when an escape is malformed; the partially decoded text is still returned.
func unescapeString(raw string) (string, bool) {
	if !strings.Contains(raw, `\`) && !strings.Contains(raw, "\r") {
		return raw, true
	}
	var b strings.Builder
	b.Grow(len(raw))
	ok := true
	var pendingHigh rune = -1

	flushHigh := func() {
		if pendingHigh >= 0 {
			b.WriteRune(utf8.RuneError)
			pendingHigh = -1
		}
	}
	writeUnit := func(r rune) {
		if utf16.IsSurrogate(r) {
			if r < 0xDC00 {
				flushHigh()
				pendingHigh = r
				return
			}
			if pendingHigh >= 0 {
				b.WriteRune(utf16.DecodeRune(pendingHigh, r))
				pendingHigh = -1
				return
			}
			b.WriteRune(utf8.RuneError)
			return
		}
		flushHigh()
		b.WriteRune(r)
	}

	for i := 0; i < len(raw); {
		ch := raw[i]
		if ch == '\r' {
			// Line terminators in templates are normalized to \n.
			flushHigh()
			b.WriteByte('\n')
			i++
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
			continue
		}
		if ch != '\\' || i+1 >= len(raw) {
			flushHigh()
			r, size := utf8.DecodeRuneInString(raw[i:])
			b.WriteRune(r)
			i += size
			continue
		}
		i++
		esc := raw[i]
		i++
		switch esc {
		case 'n':
			writeUnit('\n')
		case 't':
			writeUnit('\t')
		case 'r':
			writeUnit('\r')
		case 'b':
			writeUnit('\b')
		case 'f':
			writeUnit('\f')
		case 'v':
			writeUnit('\v')
		case '0':
			if i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
				ok = false
			}
			writeUnit(0)
		case '\r':
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 > len(raw) {
				ok = false
				continue
			}
			v, err := strconv.ParseUint(raw[i:i+2], 16, 8)
			if err != nil {
				ok = false
				continue
			}
			writeUnit(rune(v))
			i += 2
		case 'u':
			if i < len(raw) && raw[i] == '{' {
				end := strings.IndexByte(raw[i:], '}')
				if end < 0 {
					ok = false
					continue
				}
				v, err := strconv.ParseUint(raw[i+1:i+end], 16, 32)
				if err != nil || v > unicode10FFFF {
					ok = false
					i += end + 1
					continue
				}
				writeUnit(rune(v))
				i += end + 1
				continue
			}
			if i+4 > len(raw) {
				ok = false
				continue
			}
			v, err := strconv.ParseUint(raw[i:i+4], 16, 16)
			if err != nil {
				ok = false
				continue
			}
			writeUnit(rune(v))
			i += 4
		default:
			if esc >= '1' && esc <= '9' {
				ok = false
			}
			i--
			r, size := utf8.DecodeRuneInString(raw[i:])
			writeUnit(r)
			i += size
		}
	}
	flushHigh()
	return b.String(), ok
}

const unicode10FFFF = 0x10FFFF

// parseNumber evaluates a JavaScript numeric literal.
func parseNumber(raw string) float64 {
	s := strings.ReplaceAll(raw, "_", "")
	if len(s) > 1 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseInteger(s[2:], base)
		}
		if isLegacyOctal(s) {
			return parseInteger(s[1:], 8)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func parseInteger(digits string, base int) float64 {
	if v, err := strconv.ParseUint(digits, base, 64); err == nil {
		return float64(v)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

func isLegacyOctal(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}
