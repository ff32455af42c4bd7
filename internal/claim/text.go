package claim

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// validText rejects input that encoding/json would silently rewrite to U+FFFD:
// invalid UTF-8 bytes and \u escapes naming an unpaired UTF-16 surrogate.
// Each layer is checked on its own bytes, so escapes that only become live once a
// string-encoded document is decoded are caught when that document is parsed.
func validText(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New("invalid UTF-8")
	}

	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			continue
		}
		if i+1 >= len(data) {
			return nil // truncated escape; the decoder reports it
		}
		if data[i+1] != 'u' {
			i++ // skip the escaped byte, which may itself be a backslash
			continue
		}

		r, ok := hex4(data, i+2)
		if !ok {
			return nil // malformed escape; the decoder reports it
		}
		switch {
		case r >= 0xDC00 && r <= 0xDFFF:
			return fmt.Errorf("unpaired surrogate escape \\u%04x at offset %d", r, i)
		case r >= 0xD800 && r <= 0xDBFF:
			j := i + 6
			lo, ok := rune(0), false
			if j+1 < len(data) && data[j] == '\\' && data[j+1] == 'u' {
				lo, ok = hex4(data, j+2)
			}
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return fmt.Errorf("unpaired surrogate escape \\u%04x at offset %d", r, i)
			}
			i = j + 5
		default:
			i += 5
		}
	}
	return nil
}

// hex4 reads four hex digits starting at data[at]
func hex4(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[at : at+4] {
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}
