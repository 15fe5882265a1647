// Package utf7 implements the modified UTF-7 encoding IMAP uses for mailbox
// names (RFC 3501 section 5.1.3, itself a restriction of RFC 2152): "&" is
// the shift character instead of "+", "," replaces "/" in the base64
// alphabet, and there is no padding.
package utf7

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf16"
)

var alphabet = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,",
).WithPadding(base64.NoPadding)

// Encode converts a UTF-8 mailbox name to modified UTF-7.
func Encode(s string) (string, error) {
	var out strings.Builder
	out.Grow(len(s))

	var pending []byte
	flush := func() {
		if len(pending) == 0 {
			return
		}
		out.WriteByte('&')
		out.WriteString(alphabet.EncodeToString(pending))
		out.WriteByte('-')
		pending = pending[:0]
	}

	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			flush()
			if r == '&' {
				out.WriteString("&-")
			} else {
				out.WriteByte(byte(r))
			}
			continue
		}
		if r > 0x10ffff {
			return "", fmt.Errorf("utf7: rune %U out of range", r)
		}
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			pending = append(pending, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
		} else {
			pending = append(pending, byte(r>>8), byte(r))
		}
	}
	flush()

	return out.String(), nil
}

// Decode converts a modified UTF-7 mailbox name to UTF-8.
func Decode(s string) (string, error) {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '&' {
			out.WriteByte(s[i])
			i++
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("utf7: unterminated shift sequence")
		}
		if s[i] == '-' {
			out.WriteByte('&')
			i++
			continue
		}

		end := strings.IndexByte(s[i:], '-')
		if end < 0 {
			return "", fmt.Errorf("utf7: missing closing '-'")
		}
		chunk := s[i : i+end]
		i += end + 1

		raw, err := alphabet.DecodeString(chunk)
		if err != nil {
			return "", fmt.Errorf("utf7: invalid base64 run %q: %w", chunk, err)
		}
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("utf7: odd-length UTF-16 run")
		}

		units := make([]uint16, len(raw)/2)
		for j := range units {
			units[j] = uint16(raw[2*j])<<8 | uint16(raw[2*j+1])
		}
		for _, r := range utf16.Decode(units) {
			out.WriteRune(r)
		}
	}

	return out.String(), nil
}
