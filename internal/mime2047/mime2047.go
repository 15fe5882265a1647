// Package mime2047 decodes RFC 2047 encoded-words ("=?charset?q?...?=") in
// header-like text, for ENVELOPE/BODYSTRUCTURE string fields a server sent
// without negotiating UTF8=ACCEPT.
package mime2047

import (
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

var decoder = mime.WordDecoder{CharsetReader: charsetReader}

// DecodeText decodes every encoded-word in s, per RFC 2047. Text with no
// encoded words, or an encoded word whose charset this decoder can't find,
// is returned unchanged.
func DecodeText(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}
	decoded, err := decoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "us-ascii", "utf-8":
		return input, nil
	}
	enc, _ := ianaindex.MIME.Encoding(charset)
	if enc == nil {
		enc, _ = ianaindex.IANA.Encoding(charset)
	}
	if enc == nil {
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}
