package imap

import "io"

// LiteralReader streams the bytes of an IMAP literal ({n}\r\n<n bytes>)
// without requiring the caller to buffer it. Size reports the literal's
// declared octet count, known before any bytes are read.
//
// The client engine reads a FETCH literal fully into memory before handing
// it over, so a LiteralReader in a FetchAttr stays readable after the read
// loop has moved on to later responses.
type LiteralReader interface {
	io.Reader
	Size() int64
}

// literalReader is the concrete LiteralReader returned by NewLiteralReader.
// It stops after the declared size, so r is never read past it.
type literalReader struct {
	r    io.Reader
	size int64
	left int64
}

func newLiteralReader(r io.Reader, size int64) *literalReader {
	return &literalReader{r: r, size: size, left: size}
}

// NewLiteralReader wraps r as a LiteralReader declaring size octets; the
// client engine uses it for FETCH section payloads.
func NewLiteralReader(r io.Reader, size int64) LiteralReader {
	return newLiteralReader(r, size)
}

// DrainLiteral discards any bytes a caller left unread in l. Safe to call on
// an already fully-read literal.
func DrainLiteral(l LiteralReader) error {
	_, err := io.Copy(io.Discard, l)
	return err
}

func (l *literalReader) Size() int64 { return l.size }

func (l *literalReader) Read(p []byte) (int, error) {
	if l.left <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.left {
		p = p[:l.left]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	return n, err
}

// drain discards any bytes the caller left unread.
func (l *literalReader) drain() error {
	if l.left <= 0 {
		return nil
	}
	n, err := io.Copy(io.Discard, l)
	l.left -= n
	return err
}
