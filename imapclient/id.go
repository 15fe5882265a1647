package imapclient

import "github.com/anvik-dev/imapwire"

// Id sends an ID command (RFC 2971).
//
// keysAndValues must have an even length, alternating field names and
// values; an empty list sends ID NIL.
func (c *Client) Id(keysAndValues ...string) *IdCommand {
	if len(keysAndValues)%2 != 0 {
		panic("imapclient: Id requires an even number of keys and values")
	}

	cmd := &IdCommand{}
	enc := c.beginCommand("ID", cmd)
	enc.SP()
	if len(keysAndValues) == 0 {
		enc.NIL()
	} else {
		enc.Special('(')
		for i, s := range keysAndValues {
			if i > 0 {
				enc.SP()
			}
			enc.Quoted(s)
		}
		enc.Special(')')
	}
	enc.end()
	return cmd
}

// IdCommand is an ID command.
type IdCommand struct {
	Command
	data map[string]string
}

func (cmd *IdCommand) Wait() (map[string]string, error) {
	err := cmd.Command.Wait()
	return cmd.data, err
}

func (cmd *IdCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedID {
		return
	}
	cmd.data = resp.ID
}
