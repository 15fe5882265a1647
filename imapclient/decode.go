package imapclient

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
	"github.com/anvik-dev/imapwire/internal/mime2047"
)

func readCapabilities(dec *imapwire.Decoder) (imap.CapSet, error) {
	caps := imap.NewCapSet()
	for dec.SP() {
		var name string
		if !dec.ExpectAtom(&name) {
			return caps, fmt.Errorf("in capability-data: %w", dec.Err())
		}
		caps[imap.Capability(name)] = struct{}{}
	}
	return caps, nil
}

func readFlag(dec *imapwire.Decoder) (string, bool) {
	isSystem := dec.Special('\\')
	var name string
	if !dec.ExpectAtom(&name) {
		return "", false
	}
	if isSystem {
		name = "\\" + name
	}
	return name, true
}

func readFlagList(dec *imapwire.Decoder) ([]imap.Flag, error) {
	var flags []imap.Flag
	ok := dec.ExpectList(func() bool {
		name, ok := readFlag(dec)
		if !ok {
			return false
		}
		flags = append(flags, imap.Flag(name))
		return true
	})
	if !ok {
		return nil, fmt.Errorf("in flag-list: %w", dec.Err())
	}
	return flags, nil
}

func readMailboxFlagList(dec *imapwire.Decoder) ([]imap.MailboxFlag, error) {
	var flags []imap.MailboxFlag
	ok := dec.ExpectList(func() bool {
		name, ok := readFlag(dec)
		if !ok {
			return false
		}
		flags = append(flags, imap.MailboxFlag(name))
		return true
	})
	if !ok {
		return nil, fmt.Errorf("in mbx-list-flags: %w", dec.Err())
	}
	return flags, nil
}

func readEnvelope(dec *imapwire.Decoder) (*imap.Envelope, error) {
	var env imap.Envelope

	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}
	if !dec.ExpectNString(&env.Date) || !dec.ExpectSP() || !dec.ExpectNString(&env.Subject) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if env.Subject != nil {
		decoded := mime2047.DecodeText(*env.Subject)
		env.Subject = &decoded
	}

	lists := []*[]imap.Address{&env.From, &env.Sender, &env.ReplyTo, &env.To, &env.Cc, &env.Bcc}
	for i, out := range lists {
		l, err := readAddressList(dec)
		if err != nil {
			return nil, fmt.Errorf("in envelope address list %d: %w", i, err)
		}
		*out = l
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
	}

	if !dec.ExpectNString(&env.InReplyTo) || !dec.ExpectSP() || !dec.ExpectNString(&env.MessageID) {
		return nil, dec.Err()
	}
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return &env, nil
}

func readAddressList(dec *imapwire.Decoder) ([]imap.Address, error) {
	if dec.NIL() {
		return nil, nil
	}
	var l []imap.Address
	var innerErr error
	ok := dec.ExpectList(func() bool {
		addr, err := readAddress(dec)
		if err != nil {
			innerErr = err
			return false
		}
		l = append(l, *addr)
		return true
	})
	if !ok {
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, dec.Err()
	}
	return l, nil
}

func readAddress(dec *imapwire.Decoder) (*imap.Address, error) {
	var addr imap.Address
	ok := dec.ExpectSpecial('(') &&
		dec.ExpectNString(&addr.Name) && dec.ExpectSP() &&
		dec.ExpectNString(&addr.Adl) && dec.ExpectSP() &&
		dec.ExpectNString(&addr.Mailbox) && dec.ExpectSP() &&
		dec.ExpectNString(&addr.Host) && dec.ExpectSpecial(')')
	if !ok {
		return nil, fmt.Errorf("in address: %w", dec.Err())
	}
	if addr.Name != nil {
		decoded := mime2047.DecodeText(*addr.Name)
		addr.Name = &decoded
	}
	return &addr, nil
}

func readBodyStructure(dec *imapwire.Decoder) (imap.BodyStructure, error) {
	if !dec.ExpectSpecial('(') {
		return nil, dec.Err()
	}

	var (
		mediaType string
		bs        imap.BodyStructure
		err       error
	)
	if dec.String(&mediaType) {
		bs, err = readBodyType1part(dec, mediaType)
	} else {
		bs, err = readBodyTypeMpart(dec)
	}
	if err != nil {
		return nil, err
	}
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return bs, nil
}

func readBodyType1part(dec *imapwire.Decoder, typ string) (imap.BodyStructure, error) {
	var subtype string
	if !dec.ExpectSP() || !dec.ExpectString(&subtype) || !dec.ExpectSP() {
		return nil, dec.Err()
	}

	fields, err := readBodyFields(dec)
	if err != nil {
		return nil, fmt.Errorf("in body-fields: %w", err)
	}

	isMessage := equalFold(typ, "message") && (equalFold(subtype, "rfc822") || equalFold(subtype, "global"))
	isText := equalFold(typ, "text")

	switch {
	case isMessage:
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		env, err := readEnvelope(dec)
		if err != nil {
			return nil, fmt.Errorf("in envelope: %w", err)
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		body, err := readBodyStructure(dec)
		if err != nil {
			return nil, err
		}
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		var lines uint32
		if !dec.ExpectNumber(&lines) {
			return nil, dec.Err()
		}
		msg := &imap.BodyMessage{Fields: fields, Envelope: env, Body: body, Lines: lines}
		if dec.SP() {
			msg.Extension, err = readBodyExt1part(dec)
			if err != nil {
				return nil, fmt.Errorf("in body-ext-1part: %w", err)
			}
		}
		return msg, nil
	case isText:
		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		var lines uint32
		if !dec.ExpectNumber(&lines) {
			return nil, dec.Err()
		}
		txt := &imap.BodyText{Subtype: subtype, Fields: fields, Lines: lines}
		if dec.SP() {
			txt.Extension, err = readBodyExt1part(dec)
			if err != nil {
				return nil, fmt.Errorf("in body-ext-1part: %w", err)
			}
		}
		return txt, nil
	default:
		basic := &imap.BodyBasic{Type: typ, Subtype: subtype, Fields: fields}
		if dec.SP() {
			basic.Extension, err = readBodyExt1part(dec)
			if err != nil {
				return nil, fmt.Errorf("in body-ext-1part: %w", err)
			}
		}
		return basic, nil
	}
}

func readBodyTypeMpart(dec *imapwire.Decoder) (imap.BodyStructure, error) {
	var mp imap.BodyMultipart
	for {
		child, err := readBodyStructure(dec)
		if err != nil {
			return nil, err
		}
		mp.Children = append(mp.Children, child)

		if !dec.ExpectSP() {
			return nil, dec.Err()
		}
		if dec.String(&mp.Subtype) {
			break
		}
	}
	if dec.SP() {
		ext, err := readBodyExtMpart(dec)
		if err != nil {
			return nil, fmt.Errorf("in body-ext-mpart: %w", err)
		}
		mp.Extension = ext
	}
	return &mp, nil
}

func readBodyFields(dec *imapwire.Decoder) (imap.BodyFields, error) {
	var f imap.BodyFields
	params, err := readBodyFldParam(dec)
	if err != nil {
		return f, err
	}
	f.Params = params
	if !dec.ExpectSP() || !dec.ExpectNString(&f.ID) || !dec.ExpectSP() || !dec.ExpectNString(&f.Desc) || !dec.ExpectSP() || !dec.ExpectString(&f.Encoding) || !dec.ExpectSP() {
		return f, dec.Err()
	}
	if !dec.ExpectNumber(&f.Octets) {
		return f, dec.Err()
	}
	if f.Desc != nil {
		decoded := mime2047.DecodeText(*f.Desc)
		f.Desc = &decoded
	}
	decodeParamText(f.Params, "name")
	return f, nil
}

// decodeParamText RFC 2047-decodes the value of the named body-fld-param
// (case-insensitive), in place.
func decodeParamText(params []imap.BodyParam, name string) {
	for i := range params {
		if strings.EqualFold(params[i].Key, name) {
			params[i].Value = mime2047.DecodeText(params[i].Value)
		}
	}
}

func readBodyFldParam(dec *imapwire.Decoder) ([]imap.BodyParam, error) {
	if dec.NIL() {
		return nil, nil
	}
	var params []imap.BodyParam
	var key string
	haveKey := false
	ok := dec.ExpectList(func() bool {
		var s string
		if !dec.ExpectString(&s) {
			return false
		}
		if !haveKey {
			key = s
			haveKey = true
			return true
		}
		params = append(params, imap.BodyParam{Key: key, Value: s})
		haveKey = false
		return true
	})
	if !ok {
		return nil, dec.Err()
	}
	if haveKey {
		return nil, fmt.Errorf("in body-fld-param: key without value")
	}
	return params, nil
}

func readBodyExt1part(dec *imapwire.Decoder) (*imap.BodyExtension1Part, error) {
	var ext imap.BodyExtension1Part
	if !dec.ExpectNString(&ext.MD5) {
		return nil, dec.Err()
	}
	if !dec.SP() {
		return &ext, nil
	}
	disp, err := readBodyFldDsp(dec)
	if err != nil {
		return nil, err
	}
	ext.Disposition = disp
	if !dec.SP() {
		return &ext, nil
	}
	lang, err := readBodyFldLang(dec)
	if err != nil {
		return nil, err
	}
	ext.Language = lang
	if !dec.SP() {
		return &ext, nil
	}
	if !dec.ExpectNString(&ext.Location) {
		return nil, dec.Err()
	}
	return &ext, nil
}

func readBodyExtMpart(dec *imapwire.Decoder) (*imap.BodyExtensionMPart, error) {
	var ext imap.BodyExtensionMPart
	params, err := readBodyFldParam(dec)
	if err != nil {
		return nil, err
	}
	ext.Params = params
	if !dec.SP() {
		return &ext, nil
	}
	disp, err := readBodyFldDsp(dec)
	if err != nil {
		return nil, err
	}
	ext.Disposition = disp
	if !dec.SP() {
		return &ext, nil
	}
	lang, err := readBodyFldLang(dec)
	if err != nil {
		return nil, err
	}
	ext.Language = lang
	if !dec.SP() {
		return &ext, nil
	}
	if !dec.ExpectNString(&ext.Location) {
		return nil, dec.Err()
	}
	return &ext, nil
}

func readBodyFldDsp(dec *imapwire.Decoder) (*imap.BodyDisposition, error) {
	if dec.NIL() {
		return nil, nil
	}
	var disp imap.BodyDisposition
	if !dec.ExpectSpecial('(') || !dec.ExpectString(&disp.Value) || !dec.ExpectSP() {
		return nil, dec.Err()
	}
	params, err := readBodyFldParam(dec)
	if err != nil {
		return nil, err
	}
	decodeParamText(params, "filename")
	disp.Params = params
	if !dec.ExpectSpecial(')') {
		return nil, dec.Err()
	}
	return &disp, nil
}

func readBodyFldLang(dec *imapwire.Decoder) ([]string, error) {
	if dec.PeekSpecial('(') {
		var l []string
		ok := dec.ExpectList(func() bool {
			var s string
			if !dec.ExpectString(&s) {
				return false
			}
			l = append(l, s)
			return true
		})
		if !ok {
			return nil, dec.Err()
		}
		return l, nil
	}
	var s *string
	if !dec.ExpectNString(&s) {
		return nil, dec.Err()
	}
	if s == nil {
		return nil, nil
	}
	return []string{*s}, nil
}

func readListData(dec *imapwire.Decoder) (*imap.ListData, error) {
	var data imap.ListData
	flags, err := readMailboxFlagList(dec)
	if err != nil {
		return nil, fmt.Errorf("in mbx-list-flags: %w", err)
	}
	data.Flags = flags

	if !dec.ExpectSP() {
		return nil, dec.Err()
	}

	var delimStr string
	if dec.Quoted(&delimStr) {
		delim, size := utf8.DecodeRuneInString(delimStr)
		if delim == utf8.RuneError || size != len(delimStr) {
			return nil, fmt.Errorf("in list-mailbox: delimiter must be a single rune")
		}
		data.Delim = delim
		data.HasDelim = true
	} else if !dec.NIL() {
		return nil, dec.Err()
	}

	if !dec.ExpectSP() {
		return nil, dec.Err()
	}
	if !dec.ExpectMailbox(&data.Mailbox) {
		return nil, dec.Err()
	}
	return &data, nil
}

func readStatusAttVal(dec *imapwire.Decoder, data *imap.StatusData) error {
	var name string
	if !dec.ExpectAtom(&name) || !dec.ExpectSP() {
		return dec.Err()
	}

	switch imap.StatusItem(name) {
	case imap.StatusItemNumMessages:
		var num uint32
		if !dec.ExpectNumber(&num) {
			return dec.Err()
		}
		data.NumMessages = &num
	case imap.StatusItemUIDNext:
		if !dec.ExpectNumber(&data.UIDNext) {
			return dec.Err()
		}
	case imap.StatusItemUIDValidity:
		if !dec.ExpectNumber(&data.UIDValidity) {
			return dec.Err()
		}
	case imap.StatusItemNumUnseen:
		var num uint32
		if !dec.ExpectNumber(&num) {
			return dec.Err()
		}
		data.NumUnseen = &num
	case imap.StatusItemHighestModSeq:
		var ms uint64
		if !dec.ExpectModSeq(&ms) {
			return dec.Err()
		}
		data.HighestModSeq = &ms
	default:
		if !dec.DiscardValue() {
			return dec.Err()
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
