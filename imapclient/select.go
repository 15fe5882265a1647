package imapclient

import "github.com/anvik-dev/imapwire"

// SelectOptions configures a SELECT or EXAMINE command.
type SelectOptions struct {
	// ReadOnly requests EXAMINE instead of SELECT.
	ReadOnly bool
	// CondStore requests the CONDSTORE extension parameter, enabling
	// mod-sequence tracking for the mailbox.
	CondStore bool
}

// Select sends a SELECT or EXAMINE command.
//
// A nil options pointer is equivalent to a zero SelectOptions value.
func (c *Client) Select(mailbox string, options *SelectOptions) *SelectCommand {
	name := "SELECT"
	readOnly := options != nil && options.ReadOnly
	if readOnly {
		name = "EXAMINE"
	}

	cmd := &SelectCommand{client: c, data: imap.SelectedMailbox{Name: mailbox}}
	if err := c.requireAuthenticated(); err != nil {
		cmd.Command = Command{err: err}
		return cmd
	}

	enc := c.beginCommand(name, cmd)
	enc.SP().Mailbox(mailbox)
	if options != nil && options.CondStore {
		enc.SP().Special('(').Atom("CONDSTORE").Special(')')
	}
	enc.end()

	if readOnly {
		cmd.data.Access = imap.MailboxAccessReadOnly
	} else {
		cmd.data.Access = imap.MailboxAccessReadWrite
	}

	c.mutex.Lock()
	c.mailbox = cmd.data.Clone()
	c.mutex.Unlock()

	return cmd
}

// Unselect sends an UNSELECT command, leaving the selected mailbox without
// expunging it.
//
// This requires the UNSELECT extension.
func (c *Client) Unselect() *UnselectCommand {
	cmd := &UnselectCommand{client: c}
	c.beginCommand("UNSELECT", cmd).end()
	return cmd
}

// UnselectAndExpunge sends a CLOSE command, which implicitly performs a
// silent EXPUNGE before unselecting the mailbox.
func (c *Client) UnselectAndExpunge() *UnselectCommand {
	cmd := &UnselectCommand{client: c}
	c.beginCommand("CLOSE", cmd).end()
	return cmd
}

// SelectCommand is a SELECT or EXAMINE command.
type SelectCommand struct {
	Command
	client *Client
	data   imap.SelectedMailbox
}

func (cmd *SelectCommand) Wait() (*imap.SelectedMailbox, error) {
	err := cmd.Command.Wait()
	if err != nil {
		cmd.client.setState(ConnStateAuthenticated)
		return nil, err
	}
	cmd.client.setState(ConnStateSelected)
	cmd.client.mutex.Lock()
	cmd.client.mailbox = cmd.data.Clone()
	cmd.client.mutex.Unlock()
	return cmd.data.Clone(), nil
}

func (cmd *SelectCommand) collectUntagged(resp imap.UntaggedResponse) {
	switch resp.Kind {
	case imap.UntaggedFlags:
		cmd.data.Flags = resp.Flags
	case imap.UntaggedExists:
		cmd.data.NumMessages = int64(resp.Num)
	case imap.UntaggedRecent:
		cmd.data.NumRecent = resp.Num
	case imap.UntaggedState:
		if resp.State == imap.StatusOK {
			cmd.collectOK(resp.Code, resp.Text)
		}
	}
}

func (cmd *SelectCommand) collectOK(code imap.ResponseCode, text string) {
	switch code.Kind {
	case imap.CodeUidNext:
		cmd.data.UidNext = code.Num
	case imap.CodeUidValidity:
		cmd.data.UidValidity = code.Num
	case imap.CodeHighestModSeq:
		cmd.data.HighestModSeq = code.ModSeq
	case imap.CodePermanentFlags:
		cmd.data.PermanentFlags = code.PermanentFlags
	case imap.CodeReadOnly:
		cmd.data.Access = imap.MailboxAccessReadOnly
	case imap.CodeReadWrite:
		cmd.data.Access = imap.MailboxAccessReadWrite
	}
}

type UnselectCommand struct {
	Command
	client *Client
}

func (cmd *UnselectCommand) Wait() error {
	err := cmd.Command.Wait()
	if err == nil {
		cmd.client.setState(ConnStateAuthenticated)
	}
	return err
}
