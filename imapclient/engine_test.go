package imapclient_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvik-dev/imapwire/imapclient"
)

// pipeServer wraps the server half of a net.Pipe so a test can write
// canned IMAP responses and read the client's requests line by line, the
// way conn_test.go drives a raw net.Conn in the teacher package.
type pipeServer struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func newPipeServer(t *testing.T) (*imapclient.Client, *pipeServer) {
	clientConn, serverConn := net.Pipe()
	srv := &pipeServer{t: t, conn: serverConn, r: bufio.NewReader(serverConn)}
	t.Cleanup(func() { serverConn.Close() })

	c := imapclient.New(clientConn, nil)
	t.Cleanup(func() { clientConn.Close() })
	return c, srv
}

func (s *pipeServer) send(t *testing.T, line string) {
	if _, err := s.conn.Write([]byte(line + "\r\n")); err != nil {
		t.Fatalf("writing to pipe: %v", err)
	}
}

// readLine reads one client-sent line (without its trailing CRLF).
func (s *pipeServer) readLine(t *testing.T) string {
	s.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := s.r.ReadString('\n')
	require.NoError(t, err)
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

func TestClientOkGreetingStaysNotAuthenticated(t *testing.T) {
	c, srv := newPipeServer(t)
	srv.send(t, "* OK IMAP4rev1 Service Ready")

	require.Eventually(t, func() bool {
		return c.State() == imapclient.ConnStateNotAuthenticated
	}, time.Second, time.Millisecond)
}

func TestClientPreauthGreetingMovesToAuthenticated(t *testing.T) {
	c, srv := newPipeServer(t)
	srv.send(t, "* PREAUTH IMAP4rev1 Service logged in as admin")

	require.Eventually(t, func() bool {
		return c.State() == imapclient.ConnStateAuthenticated
	}, time.Second, time.Millisecond)
}

func TestClientLoginMovesToAuthenticated(t *testing.T) {
	c, srv := newPipeServer(t)
	srv.send(t, "* OK IMAP4rev1 Service Ready")
	require.Eventually(t, func() bool {
		return c.State() == imapclient.ConnStateNotAuthenticated
	}, time.Second, time.Millisecond)

	cmd := c.Login("alice", "secret")

	tag := srv.readLine(t)
	assert.Equal(t, `A1 LOGIN "alice" "secret"`, tag)
	srv.send(t, "A1 OK LOGIN completed")

	require.NoError(t, cmd.Wait())
	assert.Equal(t, imapclient.ConnStateAuthenticated, c.State())
}

func TestClientLogoutAfterByeMovesToLogout(t *testing.T) {
	c, srv := newPipeServer(t)
	srv.send(t, "* OK IMAP4rev1 Service Ready")
	require.Eventually(t, func() bool {
		return c.State() == imapclient.ConnStateNotAuthenticated
	}, time.Second, time.Millisecond)

	cmd := c.Logout()

	assert.Equal(t, "A1 LOGOUT", srv.readLine(t))
	srv.send(t, "* BYE logging out")
	srv.send(t, "A1 OK LOGOUT completed")

	require.NoError(t, cmd.Wait())
	assert.Equal(t, imapclient.ConnStateLogout, c.State())
}

func TestClientCheckBeforeSelectFailsWithSessionState(t *testing.T) {
	c, srv := newPipeServer(t)
	srv.send(t, "* OK IMAP4rev1 Service Ready")
	require.Eventually(t, func() bool {
		return c.State() == imapclient.ConnStateNotAuthenticated
	}, time.Second, time.Millisecond)

	err := c.Check().Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected selected")
	assert.Contains(t, err.Error(), "connection is not authenticated")
}
