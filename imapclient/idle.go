package imapclient

import "fmt"

// Idle sends an IDLE command.
//
// Unlike other commands, this method blocks until the server acknowledges it
// with a continuation request. On success, the IDLE command is running and
// no other command can be sent until IdleCommand.Close is called.
//
// This requires the IDLE extension.
func (c *Client) Idle() (*IdleCommand, error) {
	if err := c.requireAuthenticated(); err != nil {
		return nil, err
	}

	cmd := &IdleCommand{}
	contReq := c.registerContReq(cmd)
	cmd.enc = c.beginCommand("IDLE", cmd)
	cmd.enc.flush()

	_, err := contReq.Wait()
	if err != nil {
		c.encMutex.Unlock()
		cmd.enc = nil
		return nil, err
	}
	return cmd, nil
}

// IdleCommand is a running IDLE command.
//
// While it's running, the server may deliver unilateral data (EXISTS,
// EXPUNGE, FETCH, ...) via Options.UnilateralDataHandler. Close must be
// called to stop it.
type IdleCommand struct {
	Command
	enc *commandEncoder
}

// Close sends "DONE" to stop the IDLE command.
//
// This blocks until the terminator is written, but doesn't wait for the
// server's tagged completion; use Wait for that.
func (cmd *IdleCommand) Close() error {
	if cmd.enc == nil {
		return fmt.Errorf("imapclient: IdleCommand closed twice")
	}
	client := cmd.enc.client
	_, err := client.bw.WriteString("DONE\r\n")
	if err == nil {
		err = client.bw.Flush()
	}
	cmd.enc.client.encMutex.Unlock()
	cmd.enc = nil
	return err
}

// Wait blocks until the IDLE command's tagged completion arrives.
//
// Wait must only be called after Close.
func (cmd *IdleCommand) Wait() error {
	if cmd.enc != nil {
		return fmt.Errorf("imapclient: IdleCommand.Close must be called before Wait")
	}
	return cmd.Command.Wait()
}
