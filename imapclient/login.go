package imapclient

// Login sends a LOGIN command.
//
// Prefer Authenticate when the server advertises a SASL mechanism: LOGIN
// sends the password in the clear over an otherwise unencrypted connection.
func (c *Client) Login(username, password string) *LoginCommand {
	cmd := &LoginCommand{client: c}
	enc := c.beginCommand("LOGIN", cmd)
	enc.SP().String(username).SP().String(password)
	enc.end()
	return cmd
}

// LoginCommand is a LOGIN command.
type LoginCommand struct {
	Command
	client *Client
}

// Wait blocks until the command completes, moving the connection to the
// Authenticated state on success.
func (cmd *LoginCommand) Wait() error {
	err := cmd.Command.Wait()
	if err == nil {
		cmd.client.setState(ConnStateAuthenticated)
	}
	return err
}

// Logout sends a LOGOUT command.
func (c *Client) Logout() *LogoutCommand {
	cmd := &LogoutCommand{client: c}
	c.beginCommand("LOGOUT", cmd).end()
	return cmd
}

// LogoutCommand is a LOGOUT command.
type LogoutCommand struct {
	Command
	client *Client
}

// Wait blocks until the command completes, moving the connection to the
// Logout state regardless of outcome: the server may have already sent BYE,
// and either way the caller is expected to close the connection next.
func (cmd *LogoutCommand) Wait() error {
	err := cmd.Command.Wait()
	cmd.client.setState(ConnStateLogout)
	return err
}
