package imapclient

import (
	"fmt"
	"strings"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

func parseStatusKind(s string) (imap.StatusKind, error) {
	switch strings.ToUpper(s) {
	case "OK":
		return imap.StatusOK, nil
	case "NO":
		return imap.StatusNo, nil
	case "BAD":
		return imap.StatusBad, nil
	case "BYE":
		return imap.StatusBye, nil
	case "PREAUTH":
		return imap.StatusPreauth, nil
	default:
		return 0, fmt.Errorf("imapclient: unknown response status %q", s)
	}
}

func untaggedKindForState(state imap.StatusKind) imap.UntaggedKind {
	switch state {
	case imap.StatusBye:
		return imap.UntaggedBye
	case imap.StatusPreauth:
		return imap.UntaggedPreauth
	default:
		return imap.UntaggedState
	}
}

func capsToSlice(caps imap.CapSet) []imap.Capability {
	out := make([]imap.Capability, 0, len(caps))
	for c := range caps {
		out = append(out, c)
	}
	return out
}

// readRespText parses a resp-text production: an optional "[...]" code
// followed by free-form human-readable text.
func readRespText(dec *imapwire.Decoder) (imap.ResponseCode, string, error) {
	code, hadCode, err := readResponseCode(dec)
	if err != nil {
		return code, "", err
	}
	if hadCode && !dec.ExpectSP() {
		return code, "", dec.Err()
	}
	var text string
	dec.Text(&text)
	return code, text, nil
}

// readResponseCode parses an optional "[" resp-text-code "]", leaving the
// decoder positioned just after the closing bracket (not consuming the SP
// that precedes the following text). hadCode is false, with no error, when
// there was no bracketed code at all.
func readResponseCode(dec *imapwire.Decoder) (code imap.ResponseCode, hadCode bool, err error) {
	if !dec.Special('[') {
		return code, false, nil
	}

	var name string
	if !dec.ExpectAtom(&name) {
		return code, true, dec.Err()
	}

	switch strings.ToUpper(name) {
	case "ALERT":
		code.Kind = imap.CodeAlert
	case "BADCHARSET":
		code.Kind = imap.CodeBadCharset
		if dec.SP() {
			if !dec.ExpectSpecial('(') {
				return code, true, dec.Err()
			}
			for {
				var cs string
				if !dec.ExpectString(&cs) {
					return code, true, dec.Err()
				}
				code.Charsets = append(code.Charsets, cs)
				if !dec.SP() {
					break
				}
			}
			if !dec.ExpectSpecial(')') {
				return code, true, dec.Err()
			}
		}
	case "CAPABILITY":
		code.Kind = imap.CodeCapability
		caps, cerr := readCapabilities(dec)
		if cerr != nil {
			return code, true, cerr
		}
		code.Capabilities = capsToSlice(caps)
	case "PARSE":
		code.Kind = imap.CodeParse
	case "PERMANENTFLAGS":
		code.Kind = imap.CodePermanentFlags
		if !dec.ExpectSP() {
			return code, true, dec.Err()
		}
		flags, ferr := readFlagList(dec)
		if ferr != nil {
			return code, true, ferr
		}
		code.PermanentFlags = flags
	case "READ-ONLY":
		code.Kind = imap.CodeReadOnly
	case "READ-WRITE":
		code.Kind = imap.CodeReadWrite
	case "TRYCREATE":
		code.Kind = imap.CodeTryCreate
	case "UIDNEXT":
		code.Kind = imap.CodeUidNext
		if !dec.ExpectSP() || !dec.ExpectNumber(&code.Num) {
			return code, true, dec.Err()
		}
	case "UIDVALIDITY":
		code.Kind = imap.CodeUidValidity
		if !dec.ExpectSP() || !dec.ExpectNumber(&code.Num) {
			return code, true, dec.Err()
		}
	case "UNSEEN":
		code.Kind = imap.CodeUnseen
		if !dec.ExpectSP() || !dec.ExpectNumber(&code.Num) {
			return code, true, dec.Err()
		}
	case "CLOSED":
		code.Kind = imap.CodeClosed
	case "HIGHESTMODSEQ":
		code.Kind = imap.CodeHighestModSeq
		if !dec.ExpectSP() || !dec.ExpectModSeq(&code.ModSeq) {
			return code, true, dec.Err()
		}
	case "NOMODSEQ":
		code.Kind = imap.CodeNoModSeq
	case "MODIFIED":
		code.Kind = imap.CodeModified
		if !dec.ExpectSP() {
			return code, true, dec.Err()
		}
		var raw string
		if !dec.ExpectNumSet(&raw) {
			return code, true, dec.Err()
		}
		set, serr := imap.ParseUidSet(raw)
		if serr != nil {
			return code, true, serr
		}
		code.ModifiedSet = set
	case "APPENDUID":
		code.Kind = imap.CodeAppendUid
		var uid uint32
		if !dec.ExpectSP() || !dec.ExpectNumber(&code.AppendUidValidity) || !dec.ExpectSP() || !dec.ExpectNumber(&uid) {
			return code, true, dec.Err()
		}
		code.AppendUid = imap.UID(uid)
	case "COPYUID":
		code.Kind = imap.CodeCopyUid
		if !dec.ExpectSP() || !dec.ExpectNumber(&code.CopyUidValidity) || !dec.ExpectSP() {
			return code, true, dec.Err()
		}
		var srcRaw, dstRaw string
		if !dec.ExpectNumSet(&srcRaw) || !dec.ExpectSP() || !dec.ExpectNumSet(&dstRaw) {
			return code, true, dec.Err()
		}
		src, serr := imap.ParseUidSet(srcRaw)
		if serr != nil {
			return code, true, serr
		}
		dst, derr := imap.ParseUidSet(dstRaw)
		if derr != nil {
			return code, true, derr
		}
		code.CopySourceSet = src
		code.CopyDestSet = dst
	case "UIDNOTSTICKY":
		code.Kind = imap.CodeUidNotSticky
	case "COMPRESSIONACTIVE":
		code.Kind = imap.CodeCompressionActive
	case "USEATTR":
		code.Kind = imap.CodeUseAttr
	default:
		code.Kind = imap.CodeOther
		code.OtherAtom = name
		if dec.SP() {
			text, _ := dec.TextUntil(']')
			if text != "" {
				code.OtherText = &text
			}
		}
	}

	if !dec.ExpectSpecial(']') {
		return code, true, dec.Err()
	}
	return code, true, nil
}
