package imapclient

import "crypto/tls"

// StartTLS sends a STARTTLS command and blocks until the connection's
// transport has been swapped for a TLS client; the TLS handshake itself runs
// on the first read or write over it. The caller must not have sent any other command concurrently:
// per RFC 3501 section 6.2.1, once STARTTLS is issued the client must not
// issue further commands until negotiation finishes.
func (c *Client) StartTLS(config *tls.Config) error {
	if config == nil {
		config = c.options.TLSConfig
	}
	cmd := &startTLSCommand{tlsConfig: config, upgradeDone: make(chan struct{})}
	enc := c.beginCommand("STARTTLS", cmd)
	enc.end()

	if err := cmd.Command.Wait(); err != nil {
		return err
	}
	<-cmd.upgradeDone
	return nil
}

type startTLSCommand struct {
	Command
	tlsConfig   *tls.Config
	upgradeDone chan struct{}
}

// upgrade runs on the read loop, after the tagged completion's CRLF has
// been consumed, so no cleartext bytes beyond it are ever fed to the TLS
// handshake.
func (cmd *startTLSCommand) upgrade(c *Client) {
	c.upgradeStartTLS(cmd.tlsConfig)
	close(cmd.upgradeDone)
}
