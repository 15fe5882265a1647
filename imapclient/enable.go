package imapclient

import "github.com/anvik-dev/imapwire"

// Enable sends an ENABLE command.
//
// This requires the ENABLE extension.
func (c *Client) Enable(caps ...imap.Capability) *EnableCommand {
	cmd := &EnableCommand{}
	enc := c.beginCommand("ENABLE", cmd)
	for _, cap := range caps {
		enc.SP().Atom(string(cap))
	}
	enc.end()
	return cmd
}

// EnableCommand is an ENABLE command.
type EnableCommand struct {
	Command
	enabled []imap.Capability
}

func (cmd *EnableCommand) Wait() ([]imap.Capability, error) {
	err := cmd.Command.Wait()
	return cmd.enabled, err
}

func (cmd *EnableCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedEnabled {
		return
	}
	cmd.enabled = resp.Enabled
}
