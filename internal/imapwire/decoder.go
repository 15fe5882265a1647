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

// LiteralReader is the minimal interface Decoder hands back for a literal's
// payload; it has the same method set as imap.LiteralReader.
type LiteralReader interface {
	io.Reader
	Size() int64
}

// Decoder reads IMAP grammar tokens off a buffered connection. Most methods
// report success as a bool rather than an error; callers wrap the first
// mandatory token of a production in Expect so a single Err() check at the
// end of a response line surfaces one coherent parse error.
type Decoder struct {
	r   *bufio.Reader
	err error

	// lit, when non-nil, is an in-progress literal the caller must fully
	// consume (or the Decoder will drain it) before further tokens can be
	// read off r.
	lit *limitedLiteral
}

func NewDecoder(r *bufio.Reader) *Decoder {
	return &Decoder{r: r}
}

func (dec *Decoder) Err() error { return dec.err }

func (dec *Decoder) returnErr(err error) bool {
	if err == nil {
		return true
	}
	if dec.err == nil {
		dec.err = err
	}
	return false
}

func (dec *Decoder) mustUnreadByte() {
	if err := dec.r.UnreadByte(); err != nil {
		panic(fmt.Errorf("imapwire: failed to unread byte: %v", err))
	}
}

func (dec *Decoder) readByte() (byte, bool) {
	if dec.lit != nil {
		dec.drainLiteral()
	}
	b, err := dec.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return b, dec.returnErr(err)
	}
	return b, true
}

func (dec *Decoder) acceptByte(want byte) bool {
	got, ok := dec.readByte()
	if !ok {
		return false
	} else if got != want {
		dec.mustUnreadByte()
		return false
	}
	return true
}

// EOF reports whether the connection has no more bytes to offer right now.
func (dec *Decoder) EOF() bool {
	_, err := dec.r.ReadByte()
	if err == io.EOF {
		return true
	} else if err != nil {
		return dec.returnErr(err)
	}
	dec.mustUnreadByte()
	return false
}

// Expect records a parse error naming what was wanted if ok is false,
// including a peek at the offending byte when one is buffered.
func (dec *Decoder) Expect(ok bool, name string) bool {
	if !ok {
		err := fmt.Errorf("expected %v", name)
		if dec.r.Buffered() > 0 {
			b, _ := dec.r.Peek(1)
			err = fmt.Errorf("%v, got %q", err, string(b))
		}
		return dec.returnErr(err)
	}
	return true
}

func (dec *Decoder) SP() bool { return dec.acceptByte(' ') }

func (dec *Decoder) ExpectSP() bool { return dec.Expect(dec.SP(), "SP") }

func (dec *Decoder) CRLF() bool { return dec.acceptByte('\r') && dec.acceptByte('\n') }

func (dec *Decoder) ExpectCRLF() bool { return dec.Expect(dec.CRLF(), "CRLF") }

func (dec *Decoder) Special(b byte) bool { return dec.acceptByte(b) }

func (dec *Decoder) ExpectSpecial(b byte) bool {
	return dec.Expect(dec.Special(b), fmt.Sprintf("%q", string(b)))
}

// IsAtomChar reports whether b may appear unescaped in an atom.
func IsAtomChar(b byte) bool {
	switch b {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	default:
		return !unicode.IsControl(rune(b))
	}
}

func (dec *Decoder) Atom(ptr *string) bool {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		}
		if !IsAtomChar(b) {
			dec.mustUnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return false
	}
	*ptr = sb.String()
	return true
}

func (dec *Decoder) ExpectAtom(ptr *string) bool { return dec.Expect(dec.Atom(ptr), "atom") }

// Quoted parses a quoted-string, consuming the surrounding double quotes.
func (dec *Decoder) Quoted(ptr *string) bool {
	if !dec.acceptByte('"') {
		return false
	}
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			return false
		}
		switch b {
		case '"':
			*ptr = sb.String()
			return true
		case '\\':
			b, ok = dec.readByte()
			if !ok {
				return false
			}
			sb.WriteByte(b)
		case '\r', '\n':
			return dec.returnErr(fmt.Errorf("imapwire: CR/LF not allowed in quoted string"))
		default:
			sb.WriteByte(b)
		}
	}
}

func (dec *Decoder) ExpectQuoted(ptr *string) bool { return dec.Expect(dec.Quoted(ptr), "quoted") }

// Literal parses a literal header ("{" number "}" CRLF) and returns a reader
// for exactly that many octets. nonSync reports whether the literal was
// non-synchronizing (a trailing "+" or "-"); the caller is responsible for sending
// a "+" continuation reply before the server/peer writes the payload when
// acting as the receiving side of a synchronizing literal.
func (dec *Decoder) Literal() (lit LiteralReader, nonSync bool, ok bool) {
	if !dec.acceptByte('{') {
		return nil, false, false
	}
	size, ok := dec.Number64()
	if !ok {
		dec.returnErr(fmt.Errorf("imapwire: expected literal size"))
		return nil, false, false
	}
	if dec.acceptByte('+') || dec.acceptByte('-') {
		nonSync = true
	}
	if !dec.ExpectSpecial('}') || !dec.ExpectCRLF() {
		return nil, false, false
	}
	l := &limitedLiteral{dec: dec, size: size, left: size}
	dec.lit = l
	return l, nonSync, true
}

// limitedLiteral streams exactly size bytes from the decoder's underlying
// reader, refusing reads once exhausted so the read loop doesn't run past
// the literal into the next token.
type limitedLiteral struct {
	dec  *Decoder
	size int64
	left int64
}

func (l *limitedLiteral) Size() int64 { return l.size }

func (l *limitedLiteral) Read(p []byte) (int, error) {
	if l.left <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.left {
		p = p[:l.left]
	}
	n, err := l.dec.r.Read(p)
	l.left -= int64(n)
	if l.left <= 0 {
		l.dec.lit = nil
	}
	return n, err
}

// drainLiteral discards any bytes a caller didn't read from the last
// literal before further decoding can proceed.
func (dec *Decoder) drainLiteral() {
	l := dec.lit
	dec.lit = nil
	if l.left <= 0 {
		return
	}
	n, err := io.CopyN(io.Discard, l.dec.r, l.left)
	l.left -= n
	if err != nil {
		dec.returnErr(err)
	}
}

// String parses either a quoted-string or a literal, returning the decoded
// literal's bytes buffered into a string. Use Literal directly to stream a
// large payload instead of buffering it.
func (dec *Decoder) String(ptr *string) bool {
	if dec.Quoted(ptr) {
		return true
	}
	lit, _, ok := dec.Literal()
	if !ok {
		return false
	}
	b, err := io.ReadAll(lit)
	if err != nil {
		return dec.returnErr(err)
	}
	*ptr = string(b)
	return true
}

func (dec *Decoder) ExpectString(ptr *string) bool { return dec.Expect(dec.String(ptr), "string") }

// NString parses an nstring: either NIL (ptr left nil) or a string (ptr set
// to a non-nil pointer, possibly to "").
func (dec *Decoder) NString(ptr **string) bool {
	if dec.nil_() {
		*ptr = nil
		return true
	}
	var s string
	if !dec.String(&s) {
		return false
	}
	*ptr = &s
	return true
}

func (dec *Decoder) ExpectNString(ptr **string) bool {
	return dec.Expect(dec.NString(ptr), "nstring")
}

func (dec *Decoder) nil_() bool { return dec.NIL() }

// NIL consumes a NIL atom if the next token is one, reporting whether it
// matched. Used to distinguish NIL from a parenthesized list or string where
// the grammar allows either.
func (dec *Decoder) NIL() bool {
	if !dec.peekAtomEqualFold("NIL") {
		return false
	}
	var s string
	dec.Atom(&s)
	return true
}

// PeekSpecial reports whether the next unread byte is b, without consuming
// it or recording a parse error either way.
func (dec *Decoder) PeekSpecial(b byte) bool {
	peeked, err := dec.r.Peek(1)
	if err != nil {
		return false
	}
	return peeked[0] == b
}

func (dec *Decoder) peekAtomEqualFold(want string) bool {
	peeked, err := dec.r.Peek(len(want))
	if err != nil {
		return false
	}
	return strings.EqualFold(string(peeked), want)
}

// AString parses an astring: an atom or a string.
func (dec *Decoder) AString(ptr *string) bool {
	if dec.String(ptr) {
		return true
	}
	return dec.Atom(ptr)
}

func (dec *Decoder) ExpectAString(ptr *string) bool {
	return dec.Expect(dec.AString(ptr), "astring")
}

// Text parses text up to (but not including) CRLF.
func (dec *Decoder) Text(ptr *string) bool {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			return false
		} else if b == '\r' || b == '\n' {
			dec.mustUnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return false
	}
	*ptr = sb.String()
	return true
}

func (dec *Decoder) ExpectText(ptr *string) bool { return dec.Expect(dec.Text(ptr), "text") }

// Skip discards bytes up to (but not including) the first occurrence of
// untilCh.
func (dec *Decoder) Skip(untilCh byte) {
	for {
		b, ok := dec.readByte()
		if !ok {
			return
		} else if b == untilCh {
			dec.mustUnreadByte()
			return
		}
	}
}

// DiscardValue consumes and discards one grammar value (atom, string,
// literal, or parenthesized list), without interpreting it. Used to skip
// fetch-att responses the caller didn't ask to decode.
func (dec *Decoder) DiscardValue() bool {
	b, ok := dec.readByte()
	if !ok {
		return false
	}
	switch b {
	case '(':
		for {
			if dec.Special(')') {
				return true
			}
			if !dec.DiscardValue() {
				return false
			}
			if !dec.SP() {
				return dec.Special(')')
			}
		}
	case '"':
		dec.mustUnreadByte()
		var s string
		return dec.Quoted(&s)
	case '{':
		dec.mustUnreadByte()
		lit, _, ok := dec.Literal()
		if !ok {
			return false
		}
		_, err := io.Copy(io.Discard, lit)
		return dec.returnErr(err)
	default:
		dec.mustUnreadByte()
		var s string
		return dec.Atom(&s)
	}
}

func (dec *Decoder) Number() (uint32, bool) {
	v, ok := dec.Number64()
	if !ok || v > 1<<32-1 {
		return 0, false
	}
	return uint32(v), true
}

func (dec *Decoder) ExpectNumber(ptr *uint32) bool {
	v, ok := dec.Number()
	*ptr = v
	return dec.Expect(ok, "number")
}

func (dec *Decoder) Number64() (int64, bool) {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		} else if b < '0' || b > '9' {
			dec.mustUnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return 0, dec.returnErr(err)
	}
	return v, true
}

func (dec *Decoder) ExpectNumber64(ptr *int64) bool {
	v, ok := dec.Number64()
	*ptr = v
	return dec.Expect(ok, "number64")
}

func (dec *Decoder) ModSeq() (uint64, bool) {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		} else if b < '0' || b > '9' {
			dec.mustUnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(sb.String(), 10, 64)
	if err != nil {
		return 0, dec.returnErr(err)
	}
	return v, true
}

func (dec *Decoder) ExpectModSeq(ptr *uint64) bool {
	v, ok := dec.ModSeq()
	*ptr = v
	return dec.Expect(ok, "mod-sequence-value")
}

// List parses a parenthesized list, calling f once per element; List itself
// consumes the separating SP between elements.
func (dec *Decoder) List(f func() bool) bool {
	if !dec.Special('(') {
		return false
	}
	first := true
	for !dec.Special(')') {
		if !first && !dec.ExpectSP() {
			return false
		}
		first = false
		if !f() {
			return false
		}
	}
	return true
}

func (dec *Decoder) ExpectList(f func() bool) bool { return dec.Expect(dec.List(f), "list") }

// NumSet parses a sequence-set grammar token into its raw range form; the
// caller converts it into imap.SeqSet or imap.UidSet.
func (dec *Decoder) NumSet(ptr *string) bool {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			break
		}
		switch {
		case b >= '0' && b <= '9', b == ':', b == ',', b == '*':
			sb.WriteByte(b)
		default:
			dec.mustUnreadByte()
			goto done
		}
	}
done:
	if sb.Len() == 0 {
		return false
	}
	*ptr = sb.String()
	return true
}

func (dec *Decoder) ExpectNumSet(ptr *string) bool { return dec.Expect(dec.NumSet(ptr), "sequence-set") }

// Mailbox parses an astring mailbox name and decodes it from modified
// UTF-7; any case-insensitive spelling of INBOX is returned as "INBOX".
func (dec *Decoder) Mailbox(ptr *string) bool {
	var raw string
	if !dec.AString(&raw) {
		return false
	}
	if strings.EqualFold(raw, "INBOX") {
		*ptr = "INBOX"
		return true
	}
	decoded, err := utf7.Decode(raw)
	if err != nil {
		return dec.returnErr(err)
	}
	*ptr = decoded
	return true
}

func (dec *Decoder) ExpectMailbox(ptr *string) bool { return dec.Expect(dec.Mailbox(ptr), "mailbox") }

// TextUntil reads text up to (but not including) the next occurrence of
// stop, without consuming it. Used for resp-text-code's trailing free text,
// which (unlike Text) ends at "]" rather than CRLF.
func (dec *Decoder) TextUntil(stop byte) (string, bool) {
	var sb strings.Builder
	for {
		b, ok := dec.readByte()
		if !ok {
			return "", false
		}
		if b == stop {
			dec.mustUnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return "", false
	}
	return sb.String(), true
}
