package imap

// Address is a single address component of an envelope's from/sender/
// reply-to/to/cc/bcc lists. A NIL component decodes as nil (absent); an
// empty quoted string decodes as a non-nil pointer to "".
type Address struct {
	Name    *string
	Adl     *string
	Mailbox *string
	Host    *string
}

// Addr renders the e-mail address as "mailbox@host", or "" if either part
// is absent (which also covers RFC 2822 group start/end markers).
func (a *Address) Addr() string {
	if a.Mailbox == nil || a.Host == nil || *a.Mailbox == "" || *a.Host == "" {
		return ""
	}
	return *a.Mailbox + "@" + *a.Host
}

// IsGroupStart reports whether a marks the start of an RFC 2822 address
// group: host is absent and mailbox carries the group display name.
func (a *Address) IsGroupStart() bool {
	return a.Host == nil && a.Mailbox != nil
}

// IsGroupEnd reports whether a marks the end of an RFC 2822 address group.
func (a *Address) IsGroupEnd() bool {
	return a.Host == nil && a.Mailbox == nil
}

// Envelope is the envelope structure of a message, as returned by FETCH
// ENVELOPE. NIL address lists decode to the empty (nil) slice rather than a
// list containing a single NIL address.
type Envelope struct {
	Date    *string
	Subject *string

	From    []Address
	Sender  []Address
	ReplyTo []Address
	To      []Address
	Cc      []Address
	Bcc     []Address

	InReplyTo *string
	MessageID *string
}
