package imapclient

import (
	"bufio"
	"compress/flate"

	"github.com/anvik-dev/imapwire/internal/deflate"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

// Compress sends a COMPRESS command, enabling DEFLATE compression (RFC 4978)
// on the connection once the server confirms it.
//
// This requires the COMPRESS=DEFLATE extension.
func (c *Client) Compress() *CompressCommand {
	cmd := &CompressCommand{client: c, upgradeDone: make(chan struct{})}
	enc := c.beginCommand("COMPRESS", cmd)
	enc.SP().Atom("DEFLATE")
	enc.end()
	return cmd
}

// CompressCommand is a COMPRESS command.
type CompressCommand struct {
	Command
	client      *Client
	upgradeDone chan struct{}
	upgradeErr  error
}

func (cmd *CompressCommand) Wait() error {
	if err := cmd.Command.Wait(); err != nil {
		return err
	}
	<-cmd.upgradeDone
	return cmd.upgradeErr
}

// upgrade runs on the read loop, after the tagged completion's CRLF has
// been consumed, so no unread cleartext frame is ever fed to the DEFLATE
// reader.
func (cmd *CompressCommand) upgrade(c *Client) {
	cmd.upgradeErr = c.enableDeflate()
	close(cmd.upgradeDone)
}

func (c *Client) enableDeflate() error {
	conn, err := deflate.NewConn(c.conn, flate.DefaultCompression)
	if err != nil {
		return newIoError(err)
	}

	rw := c.options.wrapReadWriter(conn)
	c.br.Reset(rw)
	c.bw = bufio.NewWriter(rw)
	c.enc = imapwire.NewEncoder(c.bw, imapwire.ConnSideClient)
	return nil
}
