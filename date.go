package imap

import (
	"strings"
	"time"
)

// Date and time layouts used on the wire.
const (
	// date, as used in SEARCH keys and STATUS-less contexts.
	DateLayout = "2-Jan-2006"
	// date-time, as used in INTERNALDATE.
	DateTimeLayout = "2-Jan-2006 15:04:05 -0700"
	// RFC 5322 date-time, as used in envelope Date headers.
	EnvelopeDateTimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"
)

// Permutations of RFC 5322 section 3.3's date-time grammar seen in the wild:
// obsolete two-digit years, missing weekday, missing seconds, comment-style
// zones. Servers echo whatever the originating MUA wrote into the Date:
// header verbatim, so envelope date parsing has to tolerate all of them.
var envelopeDateTimeLayouts = [...]string{
	EnvelopeDateTimeLayout,
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700 (MST)",
	"2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04 MST",
	"2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04:05 MST",
	"2 Jan 06 15:04 -0700",
	"02 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	"02 Jan 2006 15:04 -0700",
	"02 Jan 06 15:04:05 -0700",
	"02 Jan 06 15:04 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04 -0700",
	"Mon, 02 Jan 06 15:04:05 -0700",
}

// ParseEnvelopeDate parses an envelope Date field, trying every layout
// permutation a real Date: header is likely to carry.
func ParseEnvelopeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range envelopeDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, newParseError("envelope date " + s + " does not match any known layout")
}

// ParseDateTime parses an INTERNALDATE-style date-time.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, newParseError("date-time " + s + " does not match layout")
	}
	return t, nil
}

// ParseDate parses a bare SEARCH-key date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, newParseError("date " + s + " does not match layout")
	}
	return t, nil
}

// FormatDateTime renders t as an INTERNALDATE literal body (without the
// surrounding quotes).
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FormatSearchDate renders t's date component as a SEARCH-key date.
func FormatSearchDate(t time.Time) string {
	return t.Format(DateLayout)
}
