package imapclient

import "github.com/anvik-dev/imapwire"

// List sends a LIST command.
//
// The caller must fully consume the ListCommand, either by calling Next
// until it returns nil, or by calling Collect.
func (c *Client) List(ref, pattern string) *ListCommand {
	cmd := &ListCommand{mailboxes: make(chan *imap.ListData, 64)}
	enc := c.beginCommand("LIST", cmd)
	enc.SP().Mailbox(ref).SP().String(pattern)
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}

// Lsub sends an LSUB command, listing the subscribed mailboxes.
func (c *Client) Lsub(ref, pattern string) *ListCommand {
	cmd := &ListCommand{mailboxes: make(chan *imap.ListData, 64)}
	enc := c.beginCommand("LSUB", cmd)
	enc.SP().Mailbox(ref).SP().String(pattern)
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}

func (cmd *ListCommand) closeWhenDone() {
	cmd.Command.Wait()
	close(cmd.mailboxes)
}

// ListCommand is a LIST or LSUB command.
type ListCommand struct {
	Command
	mailboxes chan *imap.ListData
}

// Next advances to the next mailbox, returning nil once there are no more or
// the command has failed.
func (cmd *ListCommand) Next() *imap.ListData {
	return <-cmd.mailboxes
}

// Close drains any remaining mailboxes and returns the command's completion
// error.
func (cmd *ListCommand) Close() error {
	for cmd.Next() != nil {
	}
	return cmd.Command.Wait()
}

// Collect accumulates every mailbox and then closes the command.
func (cmd *ListCommand) Collect() ([]*imap.ListData, error) {
	var l []*imap.ListData
	for {
		data := cmd.Next()
		if data == nil {
			break
		}
		l = append(l, data)
	}
	return l, cmd.Command.Wait()
}

func (cmd *ListCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedList && resp.Kind != imap.UntaggedLsub {
		return
	}
	data := resp.List
	cmd.mailboxes <- &data
}
