package imapclient

import "github.com/anvik-dev/imapwire"

// StatusOptions selects which STATUS data items to request.
type StatusOptions struct {
	NumMessages   bool
	UIDNext       bool
	UIDValidity   bool
	NumUnseen     bool
	HighestModSeq bool
}

func (o *StatusOptions) items() []string {
	if o == nil {
		return nil
	}
	m := []struct {
		name string
		want bool
	}{
		{"MESSAGES", o.NumMessages},
		{"UIDNEXT", o.UIDNext},
		{"UIDVALIDITY", o.UIDValidity},
		{"UNSEEN", o.NumUnseen},
		{"HIGHESTMODSEQ", o.HighestModSeq},
	}
	var l []string
	for _, it := range m {
		if it.want {
			l = append(l, it.name)
		}
	}
	return l
}

// Status sends a STATUS command.
func (c *Client) Status(mailbox string, options *StatusOptions) *StatusCommand {
	cmd := &StatusCommand{mailbox: mailbox}
	enc := c.beginCommand("STATUS", cmd)
	enc.SP().Mailbox(mailbox).SP()
	items := options.items()
	enc.List(len(items), func(i int) {
		enc.Atom(items[i])
	})
	enc.end()
	return cmd
}

// StatusCommand is a STATUS command.
type StatusCommand struct {
	Command
	mailbox string
	data    imap.StatusData
}

func (cmd *StatusCommand) Wait() (*imap.StatusData, error) {
	err := cmd.Command.Wait()
	return &cmd.data, err
}

func (cmd *StatusCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedStatus || resp.Status.Mailbox != cmd.mailbox {
		return
	}
	cmd.data = resp.Status
}
