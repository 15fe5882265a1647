package imapclient

import "github.com/anvik-dev/imapwire"

// Capability sends a CAPABILITY command.
func (c *Client) Capability() *CapabilityCommand {
	cmd := &CapabilityCommand{}
	c.beginCommand("CAPABILITY", cmd).end()
	return cmd
}

// CapabilityCommand is a CAPABILITY command.
type CapabilityCommand struct {
	Command
	caps imap.CapSet
}

func (cmd *CapabilityCommand) Wait() (imap.CapSet, error) {
	err := cmd.Command.Wait()
	return cmd.caps, err
}

func (cmd *CapabilityCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedCapability {
		return
	}
	caps := imap.NewCapSet()
	for _, c := range resp.Capabilities {
		caps[c] = struct{}{}
	}
	cmd.caps = caps
}
