package imapclient

import "github.com/anvik-dev/imapwire"

// Check sends a CHECK command, requesting the server perform a checkpoint of
// the selected mailbox (flushing any pending internal state to disk).
//
// CHECK carries no guaranteed semantics beyond this housekeeping hint; most
// servers treat it as a no-op.
func (c *Client) Check() *Command {
	cmd := &Command{}
	if err := c.requireSelected(); err != nil {
		*cmd = Command{err: err}
		return cmd
	}
	c.beginCommand("CHECK", cmd).end()
	return cmd
}

// Expunge sends an EXPUNGE command.
//
// The caller must fully consume the ExpungeCommand, either by calling Next
// until it returns 0, or by calling Collect.
func (c *Client) Expunge() *ExpungeCommand {
	cmd := &ExpungeCommand{seqNums: make(chan uint32, 128)}
	if err := c.requireSelected(); err != nil {
		cmd.Command = Command{err: err}
		close(cmd.seqNums)
		return cmd
	}
	c.beginCommand("EXPUNGE", cmd).end()
	go cmd.closeWhenDone()
	return cmd
}

// UIDExpunge sends a UID EXPUNGE command.
//
// This requires the UIDPLUS extension.
func (c *Client) UIDExpunge(uids imap.UidSet) *ExpungeCommand {
	cmd := &ExpungeCommand{seqNums: make(chan uint32, 128)}
	enc := c.beginCommand("UID EXPUNGE", cmd)
	enc.SP().NumSet(uids.String())
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}

// ExpungeCommand is an EXPUNGE or UID EXPUNGE command.
type ExpungeCommand struct {
	Command
	seqNums chan uint32
}

// Next advances to the next expunged message sequence number, returning 0
// once there are no more or the command has failed.
func (cmd *ExpungeCommand) Next() uint32 {
	return <-cmd.seqNums
}

// Close drains any remaining results and returns the command's completion
// error.
func (cmd *ExpungeCommand) Close() error {
	for cmd.Next() != 0 {
	}
	return cmd.Command.Wait()
}

// Collect accumulates every expunged sequence number and then closes the
// command.
func (cmd *ExpungeCommand) Collect() ([]uint32, error) {
	var l []uint32
	for {
		seqNum := cmd.Next()
		if seqNum == 0 {
			break
		}
		l = append(l, seqNum)
	}
	return l, cmd.Command.Wait()
}

func (cmd *ExpungeCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedExpunge {
		return
	}
	cmd.seqNums <- resp.Num
}

func (cmd *ExpungeCommand) closeWhenDone() {
	cmd.Command.Wait()
	close(cmd.seqNums)
}
