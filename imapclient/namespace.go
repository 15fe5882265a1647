package imapclient

import "github.com/anvik-dev/imapwire"

// Namespace sends a NAMESPACE command (RFC 2342).
func (c *Client) Namespace() *NamespaceCommand {
	cmd := &NamespaceCommand{}
	c.beginCommand("NAMESPACE", cmd).end()
	return cmd
}

// NamespaceCommand is a NAMESPACE command.
type NamespaceCommand struct {
	Command
	data imap.NamespaceData
}

func (cmd *NamespaceCommand) Wait() (*imap.NamespaceData, error) {
	err := cmd.Command.Wait()
	return &cmd.data, err
}

func (cmd *NamespaceCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedNamespace {
		return
	}
	cmd.data = resp.Namespace
}
