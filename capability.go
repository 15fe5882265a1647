package imap

import "strings"

// Capability is an IMAP capability name. Unknown capabilities decode as a
// plain Capability holding the server's token, so the parser never rejects a
// server's CAPABILITY list.
type Capability string

// Registered capabilities relevant to this client. See
// https://www.iana.org/assignments/imap-capabilities/.
const (
	CapIMAP4rev1 Capability = "IMAP4rev1"

	CapStartTLS      Capability = "STARTTLS"
	CapLoginDisabled Capability = "LOGINDISABLED"

	CapSASLIR  Capability = "SASL-IR"
	CapAuthPrefix = "AUTH="

	CapIdle      Capability = "IDLE"
	CapNamespace Capability = "NAMESPACE"
	CapID        Capability = "ID"
	CapEnable    Capability = "ENABLE"
	CapUIDPlus   Capability = "UIDPLUS"
	CapESearch   Capability = "ESEARCH"
	CapCondStore Capability = "CONDSTORE"
	CapQResync   Capability = "QRESYNC"
	CapMove      Capability = "MOVE"
	CapUnselect  Capability = "UNSELECT"

	CapLiteralPlus  Capability = "LITERAL+"
	CapLiteralMinus Capability = "LITERAL-"

	CapUTF8Accept Capability = "UTF8=ACCEPT"

	CapCompressDeflate Capability = "COMPRESS=DEFLATE"

	CapXList Capability = "XLIST"

	// Gmail extensions.
	CapXGMExt1 Capability = "X-GM-EXT-1"
)

// AuthCap returns the capability name advertising support for a SASL
// mechanism, e.g. AuthCap("PLAIN") == "AUTH=PLAIN".
func AuthCap(mechanism string) Capability {
	return Capability(CapAuthPrefix + mechanism)
}

// OtherCapability wraps an unrecognized capability token for forward
// compatibility.
func OtherCapability(name string) Capability {
	return Capability(name)
}

// CapSet is the set of capabilities most recently advertised by the server.
type CapSet map[Capability]struct{}

// NewCapSet builds a CapSet from a list of capability tokens.
func NewCapSet(names ...string) CapSet {
	set := make(CapSet, len(names))
	for _, name := range names {
		set[Capability(name)] = struct{}{}
	}
	return set
}

// Has reports whether the capability is advertised. LITERAL+ implies
// LITERAL-, since a server supporting non-synchronizing literals for every
// size trivially supports them for short payloads too.
func (set CapSet) Has(c Capability) bool {
	if _, ok := set[c]; ok {
		return true
	}
	if c == CapLiteralMinus {
		_, ok := set[CapLiteralPlus]
		return ok
	}
	return false
}

// AuthMechanisms returns the SASL mechanism names advertised via AUTH=.
func (set CapSet) AuthMechanisms() []string {
	var l []string
	for c := range set {
		if name, ok := strings.CutPrefix(string(c), CapAuthPrefix); ok {
			l = append(l, name)
		}
	}
	return l
}
