// Package code turns free-form user input into lookup codes.
package code

import (
	"strings"
	"unicode"
)

// Normalize concatenates every run of decimal digits in raw, left to right.
// Digits from any script (Arabic-Indic, fullwidth, ...) are written as their
// ASCII value, so "３４" and "34" name the same code. Leading zeros are kept;
// "" means raw held no digit at all.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if d, ok := digitValue(r); ok {
			b.WriteByte('0' + d)
		}
	}
	return b.String()
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
// Bound codes are stored as typed, so only the form Normalize produces is accepted.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIIDigit(s[i]) {
			return false
		}
	}
	return true
}

func isASCIIDigit(c byte) bool { return c >= '0' && c <= '9' }

// digitValue returns the value of a Unicode decimal digit (category Nd).
// Nd ranges are made of whole zero-to-nine blocks, so the offset from the
// range start modulo ten is the digit value.
func digitValue(r rune) (byte, bool) {
	if r < 0x80 {
		if isASCIIDigit(byte(r)) {
			return byte(r - '0'), true
		}
		return 0, false
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi && rg.Stride == 1 {
			return byte((r - lo) % 10), true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi && rg.Stride == 1 {
			return byte((r - lo) % 10), true
		}
	}
	return 0, false
}
