package imapclient

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDecoder wraps s in a Decoder. For the readXUntagged methods s starts
// right after the response's keyword, so it begins with the SP those methods
// consume first; for lower-level readers s starts at the token they parse.
func newTestDecoder(s string) *imapwire.Decoder {
	return imapwire.NewDecoder(bufio.NewReader(strings.NewReader(s)))
}

func TestReadMsgAttFlagsAndUID(t *testing.T) {
	dec := newTestDecoder(`FLAGS (\Seen) UID 4827313`)

	attr, keep, err := readMsgAtt(dec)
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, imap.FetchAttrFlags, attr.Kind)
	assert.Equal(t, []imap.Flag{imap.FlagSeen}, attr.Flags)

	require.True(t, dec.ExpectSP())
	attr, keep, err = readMsgAtt(dec)
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, imap.FetchAttrUID, attr.Kind)
	assert.Equal(t, imap.UID(4827313), attr.UID)
}

func TestReadMsgAttRFC822Header(t *testing.T) {
	dec := newTestDecoder("RFC822.HEADER {11}\r\nSubject: hi\r\n")

	attr, keep, err := readMsgAtt(dec)
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, imap.FetchAttrRFC822Header, attr.Kind)
	assert.Equal(t, imap.PartSpecifierHeader, attr.Section.Specifier)

	require.NotNil(t, attr.Literal)
	assert.EqualValues(t, 11, attr.Literal.Size())
	var buf bytes.Buffer
	_, err = buf.ReadFrom(attr.Literal)
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi", buf.String())
}

func TestReadMsgAttRFC822(t *testing.T) {
	dec := newTestDecoder("RFC822 {5}\r\nhello")

	attr, keep, err := readMsgAtt(dec)
	require.NoError(t, err)
	require.True(t, keep)
	assert.Equal(t, imap.FetchAttrRFC822, attr.Kind)
	assert.Equal(t, imap.Section{}, attr.Section)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(attr.Literal)
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestReadMsgAttUnknownIsDiscarded(t *testing.T) {
	dec := newTestDecoder("X-SOMETHING-FUTURE 42")

	_, keep, err := readMsgAtt(dec)
	require.NoError(t, err)
	assert.False(t, keep)
	assert.True(t, dec.EOF())
}

func TestReadListUntaggedNoselect(t *testing.T) {
	c := &Client{dec: newTestDecoder(` (\Noselect) "/" foo`)}

	err := c.readListUntagged(false)
	require.NoError(t, err)
}

func TestReadListDataNoselect(t *testing.T) {
	dec := newTestDecoder(`(\Noselect) "/" foo`)

	data, err := readListData(dec)
	require.NoError(t, err)
	assert.Equal(t, []imap.MailboxFlag{imap.MailboxFlagNoselect}, data.Flags)
	assert.Equal(t, '/', data.Delim)
	assert.True(t, data.HasDelim)
	assert.Equal(t, "foo", data.Mailbox)
}

func TestReadResponseCodeUidValidityIsUnsigned(t *testing.T) {
	dec := newTestDecoder(`[UIDVALIDITY 3857529045] UIDs valid`)

	code, hadCode, err := readResponseCode(dec)
	require.NoError(t, err)
	require.True(t, hadCode)
	assert.Equal(t, imap.CodeUidValidity, code.Kind)

	// 3857529045 overflows int32 (max 2147483647); it must survive as the
	// unsigned value the server sent, not wrap into a negative number.
	assert.EqualValues(t, 3857529045, code.Num)
	assert.Greater(t, code.Num, uint32(1<<31))
}

func TestReadStatusUntaggedOkWithUidValidity(t *testing.T) {
	c := &Client{dec: newTestDecoder(` [UIDVALIDITY 3857529045] UIDs valid`)}

	err := c.readStatusUntagged("OK")
	require.NoError(t, err)
	assert.Equal(t, ConnStateNotAuthenticated, c.State())
}

func TestReadStatusUntaggedPreauthMovesToAuthenticated(t *testing.T) {
	c := &Client{dec: newTestDecoder(` [CAPABILITY IMAP4rev1] already authenticated`)}

	err := c.readStatusUntagged("PREAUTH")
	require.NoError(t, err)
	assert.Equal(t, ConnStateAuthenticated, c.State())
}

func TestReadStatusUntaggedByeMovesToLogout(t *testing.T) {
	c := &Client{dec: newTestDecoder(` logging out`)}

	err := c.readStatusUntagged("BYE")
	require.NoError(t, err)
	assert.Equal(t, ConnStateLogout, c.State())
}

func TestReadVanishedEarlier(t *testing.T) {
	c := &Client{dec: newTestDecoder(` (EARLIER) 41,43:116,118,120:211`)}

	var got imap.UidSet
	c.options.UnilateralDataHandler.Vanished = func(uids imap.UidSet, earlier bool) {
		got = uids
		assert.True(t, earlier)
	}

	err := c.readVanishedUntagged()
	require.NoError(t, err)

	want := imap.UidSet{
		{Lo: 41, Hi: 41},
		{Lo: 43, Hi: 116},
		{Lo: 118, Hi: 118},
		{Lo: 120, Hi: 211},
	}
	assert.Equal(t, want, got)
}

func TestReadVanishedWithoutEarlier(t *testing.T) {
	c := &Client{dec: newTestDecoder(` 1:5`)}

	var earlierSeen bool
	c.options.UnilateralDataHandler.Vanished = func(uids imap.UidSet, earlier bool) {
		earlierSeen = earlier
	}

	require.NoError(t, c.readVanishedUntagged())
	assert.False(t, earlierSeen)
}

func TestReadStatusDataUntagged(t *testing.T) {
	c := &Client{dec: newTestDecoder(` blurdybloop (MESSAGES 231 UIDNEXT 44292)`)}

	var got imap.StatusData
	cmd := &statusCaptureCmd{}
	c.pendingCmds = []command{cmd}

	err := c.readStatusDataUntagged()
	require.NoError(t, err)
	got = cmd.data

	assert.Equal(t, "blurdybloop", got.Mailbox)
	require.NotNil(t, got.NumMessages)
	assert.EqualValues(t, 231, *got.NumMessages)
	assert.EqualValues(t, 44292, got.UIDNext)
}

// statusCaptureCmd is a minimal untaggedSink used to observe a dispatched
// STATUS response without going through the real StatusCommand.
type statusCaptureCmd struct {
	Command
	data imap.StatusData
}

func (cmd *statusCaptureCmd) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind == imap.UntaggedStatus {
		cmd.data = resp.Status
	}
}

func TestReadSearchUntaggedEmpty(t *testing.T) {
	c := &Client{dec: newTestDecoder("\r\n")}

	cmd := &SearchCommand{}
	c.pendingCmds = []command{cmd}

	require.NoError(t, c.readSearchUntagged())
	// cmd never went through beginCommand, so cmd.done is nil and Wait
	// would block forever; collectUntagged already ran synchronously from
	// dispatchUntagged, so the data field can be read directly.
	nums, ok := cmd.data.All.Nums()
	require.True(t, ok)
	assert.Empty(t, nums)
}

func TestReadSearchUntaggedWithModSeq(t *testing.T) {
	c := &Client{dec: newTestDecoder(` 2 10 (MODSEQ 917162500)`)}

	cmd := &SearchCommand{}
	c.pendingCmds = []command{cmd}

	require.NoError(t, c.readSearchUntagged())
	assert.Equal(t, []uint32{2, 10}, cmd.data.AllNums())
	require.NotNil(t, cmd.data.ModSeq)
	assert.EqualValues(t, 917162500, *cmd.data.ModSeq)
}

func TestReadEnvelopeDecodesRFC2047Subject(t *testing.T) {
	dec := newTestDecoder(`(NIL "=?utf-8?q?hi=5Fthere?=" NIL NIL NIL NIL NIL NIL NIL NIL)`)

	env, err := readEnvelope(dec)
	require.NoError(t, err)
	require.NotNil(t, env.Subject)
	assert.Equal(t, "hi_there", *env.Subject)
}

func TestReadEnvelopeNilVsEmptySubject(t *testing.T) {
	dec := newTestDecoder(`(NIL "" NIL NIL NIL NIL NIL NIL NIL NIL)`)

	env, err := readEnvelope(dec)
	require.NoError(t, err)
	require.NotNil(t, env.Subject)
	assert.Equal(t, "", *env.Subject)
	assert.Nil(t, env.Date)
}

func TestReadAddressDecodesRFC2047Name(t *testing.T) {
	dec := newTestDecoder(`("=?iso-8859-1?q?Andr=E9?=" NIL "andre" "example.org")`)

	addr, err := readAddress(dec)
	require.NoError(t, err)
	require.NotNil(t, addr.Name)
	assert.Equal(t, "André", *addr.Name)
	assert.Equal(t, "andre@example.org", addr.Addr())
}

func TestWriteSearchKeyModSeq(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	enc := imapwire.NewEncoder(bw, imapwire.ConnSideClient)

	writeSearchKey(enc, imap.SearchModSeq{ModSeq: imap.ModSeq(917162500)})
	require.NoError(t, bw.Flush())
	assert.Equal(t, "(MODSEQ 917162500)", buf.String())
}

func TestMailboxCanonicalizesInbox(t *testing.T) {
	dec := newTestDecoder(`inbox`)
	var name string
	require.True(t, dec.ExpectMailbox(&name))
	assert.Equal(t, "INBOX", name)
}
