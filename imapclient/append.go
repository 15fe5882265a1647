package imapclient

import (
	"io"

	"github.com/anvik-dev/imapwire"
)

// AppendOptions configures an APPEND command.
type AppendOptions struct {
	Flags []imap.Flag
	Time  string // RFC 3501 date-time, empty to omit
}

// Append sends an APPEND command.
//
// The caller must write exactly size bytes of message content and then call
// Close.
//
// A nil options pointer is equivalent to a zero AppendOptions value.
func (c *Client) Append(mailbox string, size int64, options *AppendOptions) *AppendCommand {
	cmd := &AppendCommand{}
	enc := c.beginCommand("APPEND", cmd)
	enc.SP().Mailbox(mailbox)
	if options != nil && len(options.Flags) > 0 {
		enc.SP().Special('(').List(len(options.Flags), func(i int) {
			enc.Flag(string(options.Flags[i]))
		}).Special(')')
	}
	if options != nil && options.Time != "" {
		enc.SP().Quoted(options.Time)
	}
	enc.SP()
	cmd.wc = enc.Literal(size)
	cmd.enc = enc
	return cmd
}

// AppendCommand is an APPEND command.
//
// Callers must write the message contents, then call Close.
type AppendCommand struct {
	Command
	enc  *commandEncoder
	wc   io.WriteCloser
	data imap.ResponseCode
}

func (cmd *AppendCommand) Write(b []byte) (int, error) {
	return cmd.wc.Write(b)
}

func (cmd *AppendCommand) Close() error {
	err := cmd.wc.Close()
	if cmd.enc != nil {
		cmd.enc.end()
		cmd.enc = nil
	}
	return err
}

// Wait blocks until the command completes, returning the APPENDUID
// resp-text-code if the server and mailbox support UIDPLUS.
func (cmd *AppendCommand) Wait() (*imap.ResponseCode, error) {
	err := cmd.Command.Wait()
	if err != nil {
		return nil, err
	}
	return &cmd.data, nil
}

func (cmd *AppendCommand) collectOK(code imap.ResponseCode, text string) {
	if code.Kind == imap.CodeAppendUid {
		cmd.data = code
	}
}
