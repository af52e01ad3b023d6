package esp

import (
	"strings"
	"unicode/utf8"
)

// lossyText converts raw line bytes to a string, replacing each maximal
// invalid UTF-8 subpart with one utf8.RuneError. A truncated sequence such
// as "\xe2\x82" counts as one subpart; each stray byte counts as its own.
func lossyText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	var sb strings.Builder
	sb.Grow(len(raw) + 2*utf8.UTFMax)
	for len(raw) > 0 {
		r, n := utf8.DecodeRune(raw)
		if r != utf8.RuneError || n > 1 {
			sb.Write(raw[:n])
			raw = raw[n:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		raw = raw[invalidPrefixLen(raw):]
	}
	return sb.String()
}

// invalidPrefixLen returns the length of the invalid subpart at the start of
// raw: a lead byte plus the continuation bytes that could still have
// completed it.
func invalidPrefixLen(raw []byte) int {
	lead := raw[0]
	lo, hi := byte(0x80), byte(0xbf)
	var tail int
	switch {
	case lead >= 0xc2 && lead <= 0xdf:
		tail = 1
	case lead == 0xe0:
		tail, lo = 2, 0xa0
	case lead == 0xed:
		tail, hi = 2, 0x9f
	case lead >= 0xe1 && lead <= 0xef:
		tail = 2
	case lead == 0xf0:
		tail, lo = 3, 0x90
	case lead == 0xf4:
		tail, hi = 3, 0x8f
	case lead >= 0xf1 && lead <= 0xf3:
		tail = 3
	default:
		return 1
	}
	n := 1
	for ; n <= tail && n < len(raw); n++ {
		b := raw[n]
		if n > 1 {
			lo, hi = 0x80, 0xbf
		}
		if b < lo || b > hi {
			break
		}
	}
	return n
}
