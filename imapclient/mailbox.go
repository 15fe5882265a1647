package imapclient

import "github.com/anvik-dev/imapwire"

// CreateOptions configures a CREATE command.
type CreateOptions struct {
	// SpecialUse lists the special-use attributes (e.g. \Drafts, \Sent) the
	// new mailbox should be created with. Requires the CREATE-SPECIAL-USE
	// extension.
	SpecialUse []imap.MailboxFlag
}

// Create sends a CREATE command.
//
// A nil options pointer is equivalent to a zero CreateOptions value.
func (c *Client) Create(mailbox string, options *CreateOptions) *Command {
	cmd := &Command{}
	enc := c.beginCommand("CREATE", cmd)
	enc.SP().Mailbox(mailbox)
	if options != nil && len(options.SpecialUse) > 0 {
		enc.SP().Special('(').Atom("USE").SP().List(len(options.SpecialUse), func(i int) {
			enc.Atom(string(options.SpecialUse[i]))
		}).Special(')')
	}
	enc.end()
	return cmd
}

// Delete sends a DELETE command.
func (c *Client) Delete(mailbox string) *Command {
	cmd := &Command{}
	enc := c.beginCommand("DELETE", cmd)
	enc.SP().Mailbox(mailbox)
	enc.end()
	return cmd
}

// Rename sends a RENAME command.
func (c *Client) Rename(mailbox, newName string) *Command {
	cmd := &Command{}
	enc := c.beginCommand("RENAME", cmd)
	enc.SP().Mailbox(mailbox).SP().Mailbox(newName)
	enc.end()
	return cmd
}

// Subscribe sends a SUBSCRIBE command.
func (c *Client) Subscribe(mailbox string) *Command {
	cmd := &Command{}
	enc := c.beginCommand("SUBSCRIBE", cmd)
	enc.SP().Mailbox(mailbox)
	enc.end()
	return cmd
}

// Unsubscribe sends an UNSUBSCRIBE command.
func (c *Client) Unsubscribe(mailbox string) *Command {
	cmd := &Command{}
	enc := c.beginCommand("UNSUBSCRIBE", cmd)
	enc.SP().Mailbox(mailbox)
	enc.end()
	return cmd
}
