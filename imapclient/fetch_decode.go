package imapclient

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

// readMsgAtt decodes a single msg-att element of a FETCH response. keep is
// false for an attribute this client doesn't model (its value is discarded,
// and the caller should not append attr to the message's attribute list).
func readMsgAtt(dec *imapwire.Decoder) (attr imap.FetchAttr, keep bool, err error) {
	var name string
	if !dec.ExpectAtom(&name) {
		return attr, false, fmt.Errorf("in msg-att: %w", dec.Err())
	}

	switch {
	case name == "FLAGS":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		flags, ferr := readFlagList(dec)
		if ferr != nil {
			return attr, false, ferr
		}
		attr.Kind = imap.FetchAttrFlags
		attr.Flags = flags
		return attr, true, nil

	case name == "ENVELOPE":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		env, eerr := readEnvelope(dec)
		if eerr != nil {
			return attr, false, eerr
		}
		attr.Kind = imap.FetchAttrEnvelope
		attr.Envelope = env
		return attr, true, nil

	case name == "INTERNALDATE":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var s string
		if !dec.ExpectQuoted(&s) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrInternalDate
		attr.InternalDate = s
		return attr, true, nil

	case name == "RFC822.SIZE":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var n uint32
		if !dec.ExpectNumber(&n) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrRFC822Size
		attr.RFC822Size = n
		return attr, true, nil

	case name == "BODY", name == "BODYSTRUCTURE":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		bs, berr := readBodyStructure(dec)
		if berr != nil {
			return attr, false, berr
		}
		if name == "BODY" {
			attr.Kind = imap.FetchAttrBody
		} else {
			attr.Kind = imap.FetchAttrBodyStructure
		}
		attr.BodyStructure = bs
		return attr, true, nil

	case name == "UID":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var n uint32
		if !dec.ExpectNumber(&n) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrUID
		attr.UID = imap.UID(n)
		return attr, true, nil

	case name == "MODSEQ":
		if !dec.ExpectSP() || !dec.ExpectSpecial('(') {
			return attr, false, dec.Err()
		}
		var ms uint64
		if !dec.ExpectModSeq(&ms) || !dec.ExpectSpecial(')') {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrModSeq
		attr.ModSeq = imap.ModSeq(ms)
		return attr, true, nil

	case name == "X-GM-MSGID":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var n uint64
		if !dec.ExpectModSeq(&n) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrGmMsgID
		attr.GmMsgID = n
		return attr, true, nil

	case name == "X-GM-THRID":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var n uint64
		if !dec.ExpectModSeq(&n) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrGmThrID
		attr.GmThrID = n
		return attr, true, nil

	case name == "X-GM-LABELS":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var labels []string
		ok := dec.ExpectList(func() bool {
			var s string
			if !dec.ExpectAString(&s) {
				return false
			}
			labels = append(labels, s)
			return true
		})
		if !ok {
			return attr, false, fmt.Errorf("in X-GM-LABELS: %w", dec.Err())
		}
		attr.Kind = imap.FetchAttrGmLabels
		attr.GmLabels = labels
		return attr, true, nil

	case name == "RFC822", name == "RFC822.HEADER", name == "RFC822.TEXT":
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		lit, verr := readSectionValue(dec)
		if verr != nil {
			return attr, false, verr
		}
		switch name {
		case "RFC822":
			attr.Kind = imap.FetchAttrRFC822
		case "RFC822.HEADER":
			attr.Kind = imap.FetchAttrRFC822Header
			attr.Section = imap.Section{Specifier: imap.PartSpecifierHeader}
		case "RFC822.TEXT":
			attr.Kind = imap.FetchAttrRFC822Text
			attr.Section = imap.Section{Specifier: imap.PartSpecifierText}
		}
		attr.Literal = lit
		return attr, true, nil

	case strings.HasPrefix(name, "BINARY.SIZE["):
		raw := strings.TrimPrefix(name, "BINARY.SIZE[")
		sec, _, serr := parseSectionSpec(raw)
		if serr != nil {
			return attr, false, serr
		}
		if !dec.ExpectSpecial(']') || !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		var n uint32
		if !dec.ExpectNumber(&n) {
			return attr, false, dec.Err()
		}
		attr.Kind = imap.FetchAttrBinarySize
		attr.Section = sec
		attr.BinarySize = n
		return attr, true, nil

	case strings.HasPrefix(name, "BINARY["):
		raw := strings.TrimPrefix(name, "BINARY[")
		sec, _, serr := parseSectionSpec(raw)
		if serr != nil {
			return attr, false, serr
		}
		if !dec.ExpectSpecial(']') {
			return attr, false, dec.Err()
		}
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		lit, verr := readSectionValue(dec)
		if verr != nil {
			return attr, false, verr
		}
		attr.Kind = imap.FetchAttrBinarySection
		attr.Section = sec
		attr.Literal = lit
		return attr, true, nil

	case strings.HasPrefix(name, "BODY["):
		raw := strings.TrimPrefix(name, "BODY[")
		sec, fieldsNot, serr := parseSectionSpec(raw)
		if serr != nil {
			return attr, false, serr
		}
		if sec.Specifier == imap.PartSpecifierHeader && dec.SP() {
			fields, herr := readHeaderList(dec)
			if herr != nil {
				return attr, false, herr
			}
			if fieldsNot {
				sec.HeaderFieldsNot = fields
			} else {
				sec.HeaderFields = fields
			}
		}
		if !dec.ExpectSpecial(']') {
			return attr, false, dec.Err()
		}
		partial, perr := readSectionPartial(dec)
		if perr != nil {
			return attr, false, perr
		}
		if !dec.ExpectSP() {
			return attr, false, dec.Err()
		}
		lit, verr := readSectionValue(dec)
		if verr != nil {
			return attr, false, verr
		}
		attr.Kind = imap.FetchAttrBodySection
		attr.Section = sec
		if partial != nil {
			attr.Partial = &partial.Offset
		}
		attr.Literal = lit
		return attr, true, nil

	default:
		if dec.SP() {
			if !dec.DiscardValue() {
				return attr, false, fmt.Errorf("discarding unsupported msg-att %q: %w", name, dec.Err())
			}
		}
		return attr, false, nil
	}
}

// parseSectionSpec parses the digits-and-specifier text between "BODY["/
// "BINARY[" and its closing "]" (not including either bracket). fieldsNot
// reports whether the specifier was HEADER.FIELDS.NOT rather than
// HEADER.FIELDS, so the caller knows which Section field the following
// header-list belongs in.
func parseSectionSpec(raw string) (sec imap.Section, fieldsNot bool, err error) {
	if raw == "" {
		return sec, false, nil
	}
	parts := strings.Split(raw, ".")
	i := 0
	for i < len(parts) {
		n, cerr := strconv.Atoi(parts[i])
		if cerr != nil {
			break
		}
		sec.Part = append(sec.Part, n)
		i++
	}
	if i < len(parts) {
		switch strings.ToUpper(parts[i]) {
		case "HEADER":
			sec.Specifier = imap.PartSpecifierHeader
			i++
			if i < len(parts) && strings.ToUpper(parts[i]) == "FIELDS" {
				i++
				if i < len(parts) && strings.ToUpper(parts[i]) == "NOT" {
					fieldsNot = true
					i++
				}
			}
		case "TEXT":
			sec.Specifier = imap.PartSpecifierText
			i++
		case "MIME":
			sec.Specifier = imap.PartSpecifierMIME
			i++
		default:
			return sec, false, fmt.Errorf("imapclient: unknown section specifier %q", parts[i])
		}
	}
	if i != len(parts) {
		return sec, false, fmt.Errorf("imapclient: trailing section spec %q", strings.Join(parts[i:], "."))
	}
	return sec, fieldsNot, nil
}

func readHeaderList(dec *imapwire.Decoder) ([]string, error) {
	var fields []string
	ok := dec.ExpectList(func() bool {
		var s string
		if !dec.ExpectAString(&s) {
			return false
		}
		fields = append(fields, s)
		return true
	})
	if !ok {
		return nil, fmt.Errorf("in header-list: %w", dec.Err())
	}
	return fields, nil
}

// readSectionPartial parses a FETCH response's optional "<origin-octet>"
// suffix (the server-echoed start offset of a partial fetch; unlike the
// request side there is no accompanying length).
func readSectionPartial(dec *imapwire.Decoder) (*imap.SectionPartial, error) {
	if !dec.Special('<') {
		return nil, nil
	}
	var n int64
	if !dec.ExpectNumber64(&n) || !dec.ExpectSpecial('>') {
		return nil, dec.Err()
	}
	return &imap.SectionPartial{Offset: n}, nil
}

// readSectionValue decodes a body/binary-section payload: NIL, a quoted
// string, or a literal. A literal is read fully into memory here, since the
// read loop goes on parsing the rest of the response right after.
func readSectionValue(dec *imapwire.Decoder) (imap.LiteralReader, error) {
	if dec.NIL() {
		return nil, nil
	}
	if dec.PeekSpecial('"') {
		var s string
		if !dec.ExpectQuoted(&s) {
			return nil, dec.Err()
		}
		return imap.NewLiteralReader(strings.NewReader(s), int64(len(s))), nil
	}
	lit, _, ok := dec.Literal()
	if !ok {
		return nil, fmt.Errorf("in section value: %w", dec.Err())
	}
	b, err := io.ReadAll(lit)
	if err != nil {
		return nil, fmt.Errorf("in section value: %w", err)
	}
	return imap.NewLiteralReader(strings.NewReader(string(b)), lit.Size()), nil
}
