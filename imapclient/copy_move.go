package imapclient

import "github.com/anvik-dev/imapwire"

func (c *Client) copy(uid bool, numSet imap.NumSet, mailbox string) *CopyCommand {
	cmd := &CopyCommand{}
	enc := c.beginCommand(uidCmdName("COPY", uid), cmd)
	enc.SP().NumSet(numSet.String()).SP().Mailbox(mailbox)
	enc.end()
	return cmd
}

// Copy sends a COPY command.
func (c *Client) Copy(seqSet imap.SeqSet, mailbox string) *CopyCommand {
	return c.copy(false, seqSet, mailbox)
}

// UIDCopy sends a UID COPY command.
func (c *Client) UIDCopy(uidSet imap.UidSet, mailbox string) *CopyCommand {
	return c.copy(true, uidSet, mailbox)
}

// CopyCommand is a COPY command.
type CopyCommand struct {
	Command
	data imap.CopyData
}

func (cmd *CopyCommand) Wait() (*imap.CopyData, error) {
	err := cmd.Command.Wait()
	return &cmd.data, err
}

func (cmd *CopyCommand) collectOK(code imap.ResponseCode, text string) {
	if code.Kind != imap.CodeCopyUid {
		return
	}
	cmd.data = imap.CopyData{
		UidValidity: code.CopyUidValidity,
		SourceUids:  code.CopySourceSet,
		DestUids:    code.CopyDestSet,
	}
}

func (c *Client) move(uid bool, numSet imap.NumSet, mailbox string) *ExpungeCommand {
	cmd := &ExpungeCommand{seqNums: make(chan uint32, 128)}
	enc := c.beginCommand(uidCmdName("MOVE", uid), cmd)
	enc.SP().NumSet(numSet.String()).SP().Mailbox(mailbox)
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}

// Move sends a MOVE command.
//
// This requires the MOVE extension. The server implicitly expunges the
// moved messages, reporting each with an untagged EXPUNGE; Collect the
// returned ExpungeCommand to drain them.
func (c *Client) Move(seqSet imap.SeqSet, mailbox string) *ExpungeCommand {
	return c.move(false, seqSet, mailbox)
}

// UIDMove sends a UID MOVE command.
func (c *Client) UIDMove(uidSet imap.UidSet, mailbox string) *ExpungeCommand {
	return c.move(true, uidSet, mailbox)
}
