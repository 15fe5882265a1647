package imapwire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/anvik-dev/imapwire/internal/utf7"
)

// Encoder writes IMAP command grammar. Most methods report errors lazily,
// surfaced the next time CRLF is called, so call sites can chain writes
// without checking an error after every token.
type Encoder struct {
	// LiteralMinus enables non-synchronizing literals for payloads up to
	// 4096 octets. Requires LITERAL- (or LITERAL+, which subsumes it).
	LiteralMinus bool
	// LiteralPlus enables non-synchronizing literals for all payloads.
	// Requires LITERAL+.
	LiteralPlus bool
	// NewContinuationRequest creates a continuation request to wait on
	// before writing a synchronizing literal's payload.
	NewContinuationRequest func() *ContinuationRequest

	w       *bufio.Writer
	side    ConnSide
	err     error
	literal bool
}

func NewEncoder(w *bufio.Writer, side ConnSide) *Encoder {
	return &Encoder{w: w, side: side}
}

func (enc *Encoder) Err() error { return enc.err }

func (enc *Encoder) setErr(err error) {
	if enc.err == nil {
		enc.err = err
	}
}

func (enc *Encoder) writeString(s string) *Encoder {
	if enc.err != nil {
		return enc
	}
	if enc.literal {
		enc.setErr(fmt.Errorf("imapwire: cannot encode while a literal is open"))
		return enc
	}
	if _, err := enc.w.WriteString(s); err != nil {
		enc.setErr(err)
	}
	return enc
}

// CRLF writes the terminating "\r\n" and flushes the underlying writer.
func (enc *Encoder) CRLF() error {
	enc.writeString("\r\n")
	if enc.err != nil {
		return enc.err
	}
	return enc.w.Flush()
}

func (enc *Encoder) Atom(s string) *Encoder { return enc.writeString(s) }

func (enc *Encoder) SP() *Encoder { return enc.writeString(" ") }

func (enc *Encoder) Special(ch byte) *Encoder { return enc.writeString(string(ch)) }

func (enc *Encoder) NIL() *Encoder { return enc.Atom("NIL") }

func (enc *Encoder) Text(s string) *Encoder { return enc.writeString(s) }

func (enc *Encoder) Quoted(s string) *Encoder {
	var sb strings.Builder
	sb.Grow(2 + len(s))
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(ch)
	}
	sb.WriteByte('"')
	return enc.writeString(sb.String())
}

// String encodes s as a quoted-string when possible, falling back to a
// literal when it contains bytes quoted-string can't carry or is too long.
func (enc *Encoder) String(s string) *Encoder {
	if !validQuoted(s) {
		enc.stringLiteral(s)
		return enc
	}
	return enc.Quoted(s)
}

func validQuoted(s string) bool {
	if len(s) > 4096 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == 0 || ch == '\r' || ch == '\n':
			return false
		case ch > unicode.MaxASCII:
			return false
		}
	}
	return true
}

func (enc *Encoder) stringLiteral(s string) {
	var sync *ContinuationRequest
	if enc.side == ConnSideClient && (!enc.LiteralMinus || len(s) > 4096) && !enc.LiteralPlus {
		if enc.NewContinuationRequest != nil {
			sync = enc.NewContinuationRequest()
		}
		if sync == nil {
			enc.setErr(fmt.Errorf("imapwire: cannot send synchronizing literal"))
			return
		}
	}
	wc := enc.Literal(int64(len(s)), sync)
	_, writeErr := io.WriteString(wc, s)
	closeErr := wc.Close()
	if writeErr != nil {
		enc.setErr(writeErr)
	} else if closeErr != nil {
		enc.setErr(closeErr)
	}
}

// NString encodes an nstring: NIL if s is nil, otherwise String(*s) (which
// may be the empty string).
func (enc *Encoder) NString(s *string) *Encoder {
	if s == nil {
		return enc.NIL()
	}
	return enc.String(*s)
}

// Mailbox encodes a mailbox name, applying modified UTF-7 encoding unless
// the name is the case-insensitive INBOX special-case.
func (enc *Encoder) Mailbox(name string) *Encoder {
	if strings.EqualFold(name, "INBOX") {
		return enc.Atom("INBOX")
	}
	encoded, err := utf7.Encode(name)
	if err != nil {
		enc.setErr(err)
		return enc
	}
	return enc.String(encoded)
}

func (enc *Encoder) Number(v uint32) *Encoder {
	return enc.writeString(strconv.FormatUint(uint64(v), 10))
}

func (enc *Encoder) Number64(v int64) *Encoder {
	return enc.writeString(strconv.FormatInt(v, 10))
}

func (enc *Encoder) ModSeq(v uint64) *Encoder {
	return enc.writeString(strconv.FormatUint(v, 10))
}

// NumSet writes the given non-empty sequence-set/uid-set string verbatim
// (the caller renders imap.SeqSet/imap.UidSet to a string beforehand).
func (enc *Encoder) NumSet(s string) *Encoder {
	if s == "" {
		enc.setErr(fmt.Errorf("imapwire: cannot encode empty sequence set"))
		return enc
	}
	return enc.writeString(s)
}

// Flag writes a flag atom; flag-keyword and flag-extension share one
// grammar production (an atom, optionally "\"-prefixed).
func (enc *Encoder) Flag(flag string) *Encoder {
	if !isValidFlagAtom(flag) {
		enc.setErr(fmt.Errorf("imapwire: invalid flag %q", flag))
		return enc
	}
	return enc.writeString(flag)
}

func isValidFlagAtom(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' {
			if i != 0 {
				return false
			}
			continue
		}
		if !IsAtomChar(ch) {
			return false
		}
	}
	return true
}

// List writes a parenthesized list of n items, invoking f(i) to write each.
func (enc *Encoder) List(n int, f func(i int)) *Encoder {
	enc.Special('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			enc.SP()
		}
		f(i)
	}
	enc.Special(')')
	return enc
}

func (enc *Encoder) BeginList() *ListEncoder {
	enc.Special('(')
	return &ListEncoder{enc: enc}
}

type ListEncoder struct {
	enc *Encoder
	n   int
}

func (le *ListEncoder) Item() *Encoder {
	if le.n > 0 {
		le.enc.SP()
	}
	le.n++
	return le.enc
}

func (le *ListEncoder) End() {
	le.enc.Special(')')
	le.enc = nil
}

// Literal writes a literal header and returns a writer the caller must
// write exactly size bytes to before calling Close.
//
// If sync is non-nil, Literal blocks until the server's "+" continuation
// arrives (or the request is cancelled) before returning, and omits the
// LITERAL+/- "+"/"-" suffix since the literal is synchronizing.
func (enc *Encoder) Literal(size int64, sync *ContinuationRequest) io.WriteCloser {
	if sync != nil && enc.side == ConnSideServer {
		panic("imapwire: sync must be nil on a server-side Encoder.Literal")
	}

	enc.writeString("{")
	enc.Number64(size)
	if sync == nil && enc.side == ConnSideClient {
		if enc.LiteralPlus {
			enc.writeString("+")
		} else if enc.LiteralMinus && size <= 4096 {
			enc.writeString("-")
		}
	}
	enc.writeString("}")

	if sync == nil {
		enc.writeString("\r\n")
	} else {
		if err := enc.CRLF(); err != nil {
			return errorWriter{err}
		}
		if _, err := sync.Wait(); err != nil {
			enc.setErr(err)
			return errorWriter{err}
		}
	}

	enc.literal = true
	return &literalWriter{enc: enc, n: size}
}

type errorWriter struct{ err error }

func (ew errorWriter) Write([]byte) (int, error) { return 0, ew.err }
func (ew errorWriter) Close() error               { return ew.err }

type literalWriter struct {
	enc *Encoder
	n   int64
}

func (lw *literalWriter) Write(b []byte) (int, error) {
	if lw.n-int64(len(b)) < 0 {
		return 0, fmt.Errorf("imapwire: wrote too many bytes in literal")
	}
	n, err := lw.enc.w.Write(b)
	lw.n -= int64(n)
	return n, err
}

func (lw *literalWriter) Close() error {
	lw.enc.literal = false
	if lw.n != 0 {
		return fmt.Errorf("imapwire: wrote too few bytes in literal (%v remaining)", lw.n)
	}
	return nil
}
