package imap

import (
	"strconv"
	"strings"
)

// PartSpecifier selects which piece of a MIME part a BODY[] section names.
type PartSpecifier string

const (
	PartSpecifierNone   PartSpecifier = ""
	PartSpecifierHeader PartSpecifier = "HEADER"
	PartSpecifierText   PartSpecifier = "TEXT"
	PartSpecifierMIME   PartSpecifier = "MIME"
)

// SectionPartial describes the <offset.size> suffix of a BODY[]<> request.
type SectionPartial struct {
	Offset, Size int64
}

// Section addresses a MIME part (or a slice of one) for BODY[section] /
// BODY.PEEK[section] fetch items and responses.
//
// Part is the 1-based part-path; an empty Part with PartSpecifierNone means
// the entire message (BODY[]).
type Section struct {
	Part []int

	Specifier PartSpecifier
	// HeaderFields and HeaderFieldsNot are mutually exclusive and only
	// meaningful when Specifier == PartSpecifierHeader.
	HeaderFields    []string
	HeaderFieldsNot []string

	Partial *SectionPartial
	Peek    bool
}

// String renders the section-spec portion (without the enclosing BODY[...]
// atom), e.g. 1.2.HEADER.FIELDS ("SUBJECT" "DATE").
func (s Section) String() string {
	var b strings.Builder
	parts := make([]string, len(s.Part))
	for i, p := range s.Part {
		parts[i] = strconv.Itoa(p)
	}
	b.WriteString(strings.Join(parts, "."))

	if s.Specifier != PartSpecifierNone {
		if len(s.Part) > 0 {
			b.WriteByte('.')
		}
		b.WriteString(string(s.Specifier))

		var headers []string
		switch {
		case len(s.HeaderFields) > 0:
			headers = s.HeaderFields
			b.WriteString(".FIELDS")
		case len(s.HeaderFieldsNot) > 0:
			headers = s.HeaderFieldsNot
			b.WriteString(".FIELDS.NOT")
		}
		if headers != nil {
			b.WriteString(" (")
			for i, h := range headers {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteByte('"')
				b.WriteString(h)
				b.WriteByte('"')
			}
			b.WriteByte(')')
		}
	}
	return b.String()
}
