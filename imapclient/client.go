// Package imapclient implements the IMAP4rev1 connection engine: a
// single-threaded command/response state machine layered over a streaming
// decoder, exposing one method per command and a typed completion value per
// response.
package imapclient

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

// ConnState is the connection state machine's current state, per RFC 3501
// section 3.
type ConnState int

const (
	ConnStateNotAuthenticated ConnState = iota
	ConnStateAuthenticated
	ConnStateSelected
	ConnStateLogout
)

func (s ConnState) String() string {
	switch s {
	case ConnStateNotAuthenticated:
		return "not authenticated"
	case ConnStateAuthenticated:
		return "authenticated"
	case ConnStateSelected:
		return "selected"
	case ConnStateLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Options configures a Client.
type Options struct {
	// DebugWriter, if set, receives a copy of every byte read from and
	// written to the connection.
	DebugWriter io.Writer
	// Logger receives structured diagnostics about the connection
	// lifecycle. Defaults to a slog-backed logger writing to stderr at
	// warn level; use imap.NopLogger() to silence it.
	Logger imap.Logger

	// TLSConfig is used by DialTLS and by StartTLS's upgrade.
	TLSConfig *tls.Config

	// UnilateralDataHandler, if set, is invoked (from the read goroutine)
	// for every untagged response that isn't consumed by a pending
	// command: EXISTS/EXPUNGE/FETCH updates during IDLE, unsolicited
	// FLAGS changes, etc.
	UnilateralDataHandler UnilateralDataHandler
}

// UnilateralDataHandler receives untagged responses the engine couldn't
// attribute to any pending command.
type UnilateralDataHandler struct {
	Exists   func(numMessages uint32)
	Expunge  func(seqNum uint32)
	Fetch    func(seqNum uint32, attrs []imap.FetchAttr)
	Flags    func(flags []imap.Flag)
	Mailbox  func(data *imap.SelectedMailbox)
	Vanished func(uids imap.UidSet, earlier bool)
}

func (o *Options) wrapReadWriter(rw io.ReadWriter) io.ReadWriter {
	if o.DebugWriter == nil {
		return rw
	}
	return struct {
		io.Reader
		io.Writer
	}{
		Reader: io.TeeReader(rw, o.DebugWriter),
		Writer: io.MultiWriter(rw, o.DebugWriter),
	}
}

// Client is a single IMAP connection's command/response engine. Command
// methods return immediately after the command is written to the wire; the
// caller drives completion by reading from the returned command's channel
// or calling its Wait method.
type Client struct {
	conn    net.Conn
	options Options
	logger  imap.Logger

	br *bufio.Reader
	bw *bufio.Writer
	dec *imapwire.Decoder

	encMutex sync.Mutex
	enc      *imapwire.Encoder

	mutex       sync.Mutex
	state       ConnState
	cmdTag      uint64
	pendingCmds []command
	contReqs    []continuationRequest
	caps        imap.CapSet
	mailbox     *imap.SelectedMailbox

	closeOnce sync.Once
	closeErr  error
}

// New wraps an already-connected net.Conn (after any TLS handshake the
// caller wants to perform up front) in a Client and starts its read loop.
//
// A nil options pointer is equivalent to a zero Options value.
func New(conn net.Conn, options *Options) *Client {
	if options == nil {
		options = &Options{}
	}

	rw := options.wrapReadWriter(conn)
	br := bufio.NewReader(rw)
	bw := bufio.NewWriter(rw)

	logger := options.Logger
	if logger == nil {
		logger = defaultClientLogger()
	}

	c := &Client{
		conn:    conn,
		options: *options,
		logger:  logger,
		br:      br,
		bw:      bw,
		dec:     imapwire.NewDecoder(br),
		enc:     imapwire.NewEncoder(bw, imapwire.ConnSideClient),
		state:   ConnStateNotAuthenticated,
		caps:    imap.NewCapSet(),
	}
	go c.readLoop()
	return c
}

// DialTLS connects to address with an implicit TLS handshake, then wraps
// the connection in a Client.
func DialTLS(address string, options *Options) (*Client, error) {
	var tlsConfig *tls.Config
	if options != nil {
		tlsConfig = options.TLSConfig
	}
	conn, err := tls.Dial("tcp", address, tlsConfig)
	if err != nil {
		return nil, newIoError(err)
	}
	return New(conn, options), nil
}

// Dial connects to address in cleartext. Callers that need STARTTLS should
// call Client.StartTLS immediately afterward.
func Dial(address string, options *Options) (*Client, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, newIoError(err)
	}
	return New(conn, options), nil
}

// State returns the connection's current state.
func (c *Client) State() ConnState {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

func (c *Client) setState(s ConnState) {
	c.mutex.Lock()
	c.state = s
	if s != ConnStateSelected {
		c.mailbox = nil
	}
	c.mutex.Unlock()
}

// requireAuthenticated returns a SessionState error unless the connection
// has logged in (commands valid in either Authenticated or Selected state).
func (c *Client) requireAuthenticated() error {
	switch s := c.State(); s {
	case ConnStateAuthenticated, ConnStateSelected:
		return nil
	default:
		return imap.SessionState(ConnStateAuthenticated.String(), s.String())
	}
}

// requireSelected returns a SessionState error unless a mailbox is
// currently selected.
func (c *Client) requireSelected() error {
	if s := c.State(); s != ConnStateSelected {
		return imap.SessionState(ConnStateSelected.String(), s.String())
	}
	return nil
}

// Mailbox returns a snapshot of the currently selected mailbox, or nil if
// no mailbox is selected. While a SELECT or EXAMINE is in flight it returns
// the mailbox being selected.
func (c *Client) Mailbox() *imap.SelectedMailbox {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.mailbox.Clone()
}

// Caps returns the capabilities last announced by the server.
func (c *Client) Caps() imap.CapSet {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	caps := imap.NewCapSet()
	for cap := range c.caps {
		caps[cap] = struct{}{}
	}
	return caps
}

// Close closes the underlying connection immediately, without sending
// LOGOUT. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func newIoError(err error) *imap.Error  { return &imap.Error{Kind: imap.ErrorIo, Err: err} }
func newTlsError(err error) *imap.Error { return &imap.Error{Kind: imap.ErrorTls, Err: err} }

func defaultClientLogger() imap.Logger {
	return imap.DefaultLogger()
}

// beginCommand writes "<tag> <name>" and returns an encoder positioned to
// write the rest of the command. The caller must eventually call end.
func (c *Client) beginCommand(name string, cmd command) *commandEncoder {
	c.encMutex.Lock() // unlocked by commandEncoder.end

	c.mutex.Lock()
	c.cmdTag++
	tag := fmt.Sprintf("A%d", c.cmdTag)
	c.pendingCmds = append(c.pendingCmds, cmd)
	c.mutex.Unlock()

	base := cmd.base()
	*base = Command{tag: tag, done: make(chan error, 1)}

	enc := &commandEncoder{Encoder: c.enc, client: c, cmd: base}
	enc.Atom(tag).SP().Atom(name)
	return enc
}

// uidCmdName prefixes name with "UID " when uid is set, e.g. for
// UID FETCH/UID STORE/UID COPY/UID MOVE.
func uidCmdName(name string, uid bool) string {
	if uid {
		return "UID " + name
	}
	return name
}

func (c *Client) deletePendingCmdByTag(tag string) command {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, cmd := range c.pendingCmds {
		if cmd.base().tag == tag {
			c.pendingCmds = append(c.pendingCmds[:i], c.pendingCmds[i+1:]...)
			return cmd
		}
	}
	return nil
}

func (c *Client) findPendingCmdByType(match func(command) bool) command {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, cmd := range c.pendingCmds {
		if match(cmd) {
			return cmd
		}
	}
	return nil
}

func (c *Client) registerContReq(cmd command) *imapwire.ContinuationRequest {
	req := imapwire.NewContinuationRequest()
	c.mutex.Lock()
	c.contReqs = append(c.contReqs, continuationRequest{req: req, cmd: cmd.base()})
	c.mutex.Unlock()
	return req
}

func (c *Client) unregisterContReq(req *imapwire.ContinuationRequest) {
	c.mutex.Lock()
	for i := range c.contReqs {
		if c.contReqs[i].req == req {
			c.contReqs = append(c.contReqs[:i], c.contReqs[i+1:]...)
			break
		}
	}
	c.mutex.Unlock()
}

// readLoop continuously decodes server frames and dispatches them, until
// EOF or an unrecoverable parse error.
func (c *Client) readLoop() {
	defer func() {
		c.mutex.Lock()
		pending := c.pendingCmds
		c.pendingCmds = nil
		contReqs := c.contReqs
		c.contReqs = nil
		c.mutex.Unlock()

		for _, cr := range contReqs {
			cr.req.Cancel(&imap.Error{Kind: imap.ErrorBye, Text: "connection closed"})
		}
		for _, cmd := range pending {
			cmd.base().done <- &imap.Error{Kind: imap.ErrorBye, Text: "connection closed"}
		}
	}()

	for {
		if c.dec.EOF() {
			return
		}
		if err := c.readResponse(); err != nil {
			c.logger.Error("imap: read loop stopped", "err", err)
			return
		}
	}
}

func (c *Client) readResponse() error {
	if c.dec.Special('+') {
		return c.readContinueReq()
	}

	var tag, typ string
	if !c.dec.Expect(c.dec.Special('*') || c.dec.Atom(&tag), "'*' or atom") {
		return fmt.Errorf("reading response tag: %w", c.dec.Err())
	}
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	if !c.dec.ExpectAtom(&typ) {
		return fmt.Errorf("reading response type: %w", c.dec.Err())
	}

	var upgrader connUpgrader
	var err error
	if tag != "" {
		upgrader, err = c.readResponseTagged(tag, typ)
	} else {
		err = c.readResponseData(typ)
	}
	if err != nil {
		return err
	}

	if !c.dec.ExpectCRLF() {
		return c.dec.Err()
	}

	if upgrader != nil {
		upgrader.upgrade(c)
	}
	return nil
}

func (c *Client) readContinueReq() error {
	var text string
	if c.dec.SP() {
		if !c.dec.ExpectText(&text) {
			return c.dec.Err()
		}
	}
	if !c.dec.ExpectCRLF() {
		return c.dec.Err()
	}

	c.mutex.Lock()
	var req *imapwire.ContinuationRequest
	if len(c.contReqs) > 0 {
		req = c.contReqs[0].req
		c.contReqs = c.contReqs[1:]
	}
	c.mutex.Unlock()

	if req == nil {
		return fmt.Errorf("imapclient: unmatched continuation request")
	}
	req.Done(text)
	return nil
}

type startTLSConn struct {
	net.Conn
	r io.Reader
}

func (conn startTLSConn) Read(b []byte) (int, error) { return conn.r.Read(b) }

func (c *Client) upgradeStartTLS(tlsConfig *tls.Config) {
	var buf bytes.Buffer
	if n := c.br.Buffered(); n > 0 {
		io.CopyN(&buf, c.br, int64(n))
	}

	var cleartext net.Conn = c.conn
	if buf.Len() > 0 {
		cleartext = startTLSConn{c.conn, io.MultiReader(&buf, c.conn)}
	}

	tlsConn := tls.Client(cleartext, tlsConfig)
	rw := c.options.wrapReadWriter(tlsConn)

	c.br.Reset(rw)
	c.bw = bufio.NewWriter(rw)
	c.enc = imapwire.NewEncoder(c.bw, imapwire.ConnSideClient)
}

// continuationRequest is a pending "+"-handshake a command is waiting on.
type continuationRequest struct {
	req *imapwire.ContinuationRequest
	cmd *Command
}

// command is satisfied by every per-command type so the engine can route
// completions and continuation requests generically.
type command interface {
	base() *Command
}

// connUpgrader is implemented by commands that swap the connection's
// transport once their own tagged completion arrives, from the read loop
// itself rather than from Wait's caller (STARTTLS, COMPRESS).
type connUpgrader interface {
	upgrade(c *Client)
}

// Command is the shared completion machinery embedded in every specific
// command type: a tag, a result channel, and the error recorded on
// completion.
type Command struct {
	tag  string
	done chan error
	err  error
}

func (cmd *Command) base() *Command { return cmd }

// Wait blocks until the command completes and returns its completion
// error, if any. Wait may be called more than once.
func (cmd *Command) Wait() error {
	if cmd.err == nil {
		if err, ok := <-cmd.done; ok {
			cmd.err = err
		}
	}
	return cmd.err
}

type cmd = Command

// commandEncoder drives imapwire.Encoder while holding the connection's
// write lock for the duration of one command.
type commandEncoder struct {
	*imapwire.Encoder
	client *Client
	cmd    *Command
}

func (ce *commandEncoder) end() {
	ce.flush()
	ce.client.encMutex.Unlock()
}

// flush terminates the command line without releasing the write lock, for
// multi-step commands (AUTHENTICATE, IDLE) that hold encMutex across further
// writes driven outside the Encoder. The caller must eventually unlock
// encMutex itself.
func (ce *commandEncoder) flush() {
	if err := ce.Encoder.CRLF(); err != nil {
		ce.cmd.err = newIoError(err)
	}
	ce.Encoder = nil
}

// Literal starts a literal payload. The returned writer expects exactly
// size bytes before Close.
func (ce *commandEncoder) Literal(size int64) io.WriteCloser {
	var sync *imapwire.ContinuationRequest
	if !ce.Encoder.LiteralMinus && !ce.Encoder.LiteralPlus {
		sync = ce.client.registerContReq(ce.cmd)
	} else if ce.Encoder.LiteralMinus && size > 4096 {
		sync = ce.client.registerContReq(ce.cmd)
	}
	return ce.Encoder.Literal(size, sync)
}
