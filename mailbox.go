package imap

import "strings"

// CanonicalMailboxName folds name to "INBOX" if it is a case-insensitive
// match for the special INBOX mailbox; every other name is returned as-is.
func CanonicalMailboxName(name string) string {
	if strings.EqualFold(name, InboxName) {
		return InboxName
	}
	return name
}

// ListData is the mailbox data returned by a LIST, LSUB, or XLIST response.
type ListData struct {
	Flags   []MailboxFlag
	Delim   rune // zero if NIL
	HasDelim bool
	Mailbox string
}

// StatusItem is a data item requested by a STATUS command.
type StatusItem string

const (
	StatusItemNumMessages   StatusItem = "MESSAGES"
	StatusItemUIDNext       StatusItem = "UIDNEXT"
	StatusItemUIDValidity   StatusItem = "UIDVALIDITY"
	StatusItemNumUnseen     StatusItem = "UNSEEN"
	StatusItemHighestModSeq StatusItem = "HIGHESTMODSEQ"
)

// StatusData is the data returned by a STATUS command. Mailbox is always
// populated; the rest reflect whichever StatusItems were requested.
type StatusData struct {
	Mailbox string

	NumMessages     *uint32
	UIDNext         uint32
	UIDValidity     uint32
	NumUnseen       *uint32
	HighestModSeq   *uint64
}

// MailboxAccess describes whether a selected mailbox permits modification.
type MailboxAccess int

const (
	MailboxAccessReadWrite MailboxAccess = iota
	MailboxAccessReadOnly
)

// SelectedMailbox is the engine's view of the currently selected mailbox, as
// accumulated from a SELECT/EXAMINE response and subsequent untagged
// updates.
type SelectedMailbox struct {
	Name string

	UidValidity   uint32
	UidNext       uint32
	HighestModSeq uint64

	NumMessages int64
	NumRecent   uint32

	Flags          []Flag
	PermanentFlags []Flag

	Access MailboxAccess
}

// Clone returns a deep copy of m, or nil if m is nil.
func (m *SelectedMailbox) Clone() *SelectedMailbox {
	if m == nil {
		return nil
	}
	c := *m
	c.Flags = append([]Flag(nil), m.Flags...)
	c.PermanentFlags = append([]Flag(nil), m.PermanentFlags...)
	return &c
}
