package imapclient

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

// untaggedSink is implemented by per-command types that need to see every
// untagged response while they're pending (SELECT's FLAGS/EXISTS, SEARCH's
// result list, and so on). The client still applies its own connection-wide
// bookkeeping (caps, mailbox state) regardless of whether a sink claims the
// response.
type untaggedSink interface {
	collectUntagged(imap.UntaggedResponse)
}

// okCodeSink is implemented by per-command types that need the resp-text-code
// carried by their own tagged OK completion (SELECT's UIDNEXT/PERMANENTFLAGS,
// APPEND's APPENDUID, COPY's COPYUID).
type okCodeSink interface {
	collectOK(code imap.ResponseCode, text string)
}

// dispatchUntagged routes resp to every pending command that wants it,
// reporting whether at least one did.
func (c *Client) dispatchUntagged(resp imap.UntaggedResponse) bool {
	c.mutex.Lock()
	pending := append([]command(nil), c.pendingCmds...)
	c.mutex.Unlock()

	handled := false
	for _, cmd := range pending {
		if sink, ok := cmd.(untaggedSink); ok {
			sink.collectUntagged(resp)
			handled = true
		}
	}
	return handled
}

func (c *Client) readResponseTagged(tag, typ string) (connUpgrader, error) {
	state, err := parseStatusKind(typ)
	if err != nil {
		return nil, fmt.Errorf("reading tagged status: %w", err)
	}
	if !c.dec.ExpectSP() {
		return nil, c.dec.Err()
	}
	code, text, err := readRespText(c.dec)
	if err != nil {
		return nil, fmt.Errorf("reading resp-text: %w", err)
	}

	cmdFound := c.deletePendingCmdByTag(tag)

	c.mutex.Lock()
	var stale []*imapwire.ContinuationRequest
	if cmdFound != nil {
		base := cmdFound.base()
		kept := c.contReqs[:0]
		for _, cr := range c.contReqs {
			if cr.cmd == base {
				stale = append(stale, cr.req)
			} else {
				kept = append(kept, cr)
			}
		}
		c.contReqs = kept
	}
	c.mutex.Unlock()
	for _, req := range stale {
		req.Cancel(fmt.Errorf("imapclient: command %q completed before its continuation request", tag))
	}

	var completionErr error
	switch state {
	case imap.StatusOK:
		completionErr = nil
		if cmdFound != nil {
			if sink, ok := cmdFound.(okCodeSink); ok {
				sink.collectOK(code, text)
			}
		}
	case imap.StatusNo, imap.StatusBad:
		completionErr = newCompletionError(tag, state, code, text)
	case imap.StatusBye, imap.StatusPreauth:
		completionErr = newByeError(code, text)
	}

	if cmdFound == nil {
		if completionErr != nil {
			c.logger.Warn("imap: unmatched tagged completion", "tag", tag, "err", completionErr)
		}
		return nil, nil
	}

	var upgrader connUpgrader
	if u, ok := cmdFound.(connUpgrader); ok && completionErr == nil {
		upgrader = u
	}

	base := cmdFound.base()
	base.err = completionErr
	base.done <- completionErr
	close(base.done)

	return upgrader, nil
}

func newCompletionError(tag string, state imap.StatusKind, code imap.ResponseCode, text string) *imap.Error {
	return &imap.Error{Kind: imap.ErrorBadCompletion, Tag: tag, State: state, Code: code, Text: text}
}

func newByeError(code imap.ResponseCode, text string) *imap.Error {
	return &imap.Error{Kind: imap.ErrorBye, Code: code, Text: text}
}

func (c *Client) readResponseData(typ string) error {
	if n, err := strconv.ParseUint(typ, 10, 32); err == nil {
		num := uint32(n)
		var kw string
		if !c.dec.ExpectSP() || !c.dec.ExpectAtom(&kw) {
			return c.dec.Err()
		}
		switch strings.ToUpper(kw) {
		case "EXISTS":
			c.handleExists(num)
			return nil
		case "RECENT":
			c.handleRecent(num)
			return nil
		case "EXPUNGE":
			c.handleExpunge(num)
			return nil
		case "FETCH":
			return c.readFetchUntagged(num)
		default:
			return fmt.Errorf("imapclient: unknown numbered untagged response %q", kw)
		}
	}

	switch strings.ToUpper(typ) {
	case "OK", "NO", "BAD", "BYE", "PREAUTH":
		return c.readStatusUntagged(typ)
	case "CAPABILITY":
		return c.readCapabilityUntagged()
	case "ENABLED":
		return c.readEnabledUntagged()
	case "FLAGS":
		return c.readFlagsUntagged()
	case "LIST":
		return c.readListUntagged(false)
	case "LSUB":
		return c.readListUntagged(true)
	case "STATUS":
		return c.readStatusDataUntagged()
	case "SEARCH":
		return c.readSearchUntagged()
	case "ESEARCH":
		return c.readESearchUntagged()
	case "NAMESPACE":
		return c.readNamespaceUntagged()
	case "ID":
		return c.readIDUntagged()
	case "VANISHED":
		return c.readVanishedUntagged()
	default:
		if c.dec.SP() {
			c.dec.DiscardValue()
		}
		return nil
	}
}

func (c *Client) readStatusUntagged(typ string) error {
	state, err := parseStatusKind(typ)
	if err != nil {
		return err
	}
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	code, text, err := readRespText(c.dec)
	if err != nil {
		return err
	}

	c.dispatchUntagged(imap.UntaggedResponse{Kind: untaggedKindForState(state), State: state, Code: code, Text: text})

	switch state {
	case imap.StatusBye:
		c.setState(ConnStateLogout)
	case imap.StatusPreauth:
		c.setState(ConnStateAuthenticated)
	}
	return nil
}

func (c *Client) readCapabilityUntagged() error {
	caps, err := readCapabilities(c.dec)
	if err != nil {
		return err
	}
	c.mutex.Lock()
	c.caps = caps
	c.mutex.Unlock()
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedCapability, Capabilities: capsToSlice(caps)})
	return nil
}

func (c *Client) readEnabledUntagged() error {
	var enabled []imap.Capability
	for c.dec.SP() {
		var name string
		if !c.dec.ExpectAtom(&name) {
			return c.dec.Err()
		}
		enabled = append(enabled, imap.Capability(name))
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedEnabled, Enabled: enabled})
	return nil
}

func (c *Client) readFlagsUntagged() error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	flags, err := readFlagList(c.dec)
	if err != nil {
		return err
	}
	c.mutex.Lock()
	if c.mailbox != nil {
		c.mailbox.Flags = flags
	}
	c.mutex.Unlock()
	if !c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedFlags, Flags: flags}) {
		if h := c.options.UnilateralDataHandler.Flags; h != nil {
			h(flags)
		}
	}
	return nil
}

func (c *Client) readListUntagged(lsub bool) error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	data, err := readListData(c.dec)
	if err != nil {
		return err
	}
	kind := imap.UntaggedList
	if lsub {
		kind = imap.UntaggedLsub
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: kind, List: *data})
	return nil
}

func (c *Client) readStatusDataUntagged() error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	var data imap.StatusData
	if !c.dec.ExpectMailbox(&data.Mailbox) || !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	var attErr error
	ok := c.dec.ExpectList(func() bool {
		if err := readStatusAttVal(c.dec, &data); err != nil {
			attErr = err
			return false
		}
		return true
	})
	if !ok {
		if attErr != nil {
			return fmt.Errorf("in status-att-list: %w", attErr)
		}
		return fmt.Errorf("in status-att-list: %w", c.dec.Err())
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedStatus, Status: data})
	return nil
}

func (c *Client) readSearchUntagged() error {
	var ids []uint32
	for c.dec.SP() {
		if c.dec.PeekSpecial('(') {
			break
		}
		var n uint32
		if !c.dec.ExpectNumber(&n) {
			return c.dec.Err()
		}
		ids = append(ids, n)
	}
	var modSeq *uint64
	if c.dec.PeekSpecial('(') {
		if !c.dec.ExpectSpecial('(') {
			return c.dec.Err()
		}
		var kw string
		if !c.dec.ExpectAtom(&kw) || !c.dec.ExpectSP() {
			return c.dec.Err()
		}
		var ms uint64
		if !c.dec.ExpectModSeq(&ms) || !c.dec.ExpectSpecial(')') {
			return c.dec.Err()
		}
		modSeq = &ms
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedSearch, SearchIds: ids, SearchModSeq: modSeq})
	return nil
}

func (c *Client) readESearchUntagged() error {
	var data imap.ESearchData

	for c.dec.SP() {
		if c.dec.PeekSpecial('(') {
			if !c.dec.ExpectSpecial('(') {
				return c.dec.Err()
			}
			var kw string
			if !c.dec.ExpectAtom(&kw) || !c.dec.ExpectSP() {
				return c.dec.Err()
			}
			if !c.dec.ExpectString(&data.Tag) {
				return c.dec.Err()
			}
			if !c.dec.ExpectSpecial(')') {
				return c.dec.Err()
			}
			continue
		}

		var name string
		if !c.dec.ExpectAtom(&name) {
			return c.dec.Err()
		}
		if strings.ToUpper(name) == "UID" {
			data.Uid = true
			continue
		}
		if !c.dec.ExpectSP() {
			return c.dec.Err()
		}
		switch strings.ToUpper(name) {
		case "MIN":
			if !c.dec.ExpectNumber(&data.Min) {
				return c.dec.Err()
			}
		case "MAX":
			if !c.dec.ExpectNumber(&data.Max) {
				return c.dec.Err()
			}
		case "COUNT":
			var n uint32
			if !c.dec.ExpectNumber(&n) {
				return c.dec.Err()
			}
			data.Count = &n
		case "ALL":
			var raw string
			if !c.dec.ExpectNumSet(&raw) {
				return c.dec.Err()
			}
			set, err := imap.ParseSeqSet(raw)
			if err != nil {
				return err
			}
			data.All = set
		default:
			if !c.dec.DiscardValue() {
				return c.dec.Err()
			}
		}
	}

	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedESearch, ESearch: data})
	return nil
}

func (c *Client) readNamespaceUntagged() error {
	var data imap.NamespaceData
	slots := []*[]imap.NamespaceDescriptor{&data.Personal, &data.Other, &data.Shared}
	for _, slot := range slots {
		if !c.dec.ExpectSP() {
			return c.dec.Err()
		}
		descs, err := readNamespaceDescs(c.dec)
		if err != nil {
			return err
		}
		*slot = descs
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedNamespace, Namespace: data})
	return nil
}

func readNamespaceDescs(dec *imapwire.Decoder) ([]imap.NamespaceDescriptor, error) {
	if dec.NIL() {
		return nil, nil
	}
	var descs []imap.NamespaceDescriptor
	ok := dec.ExpectList(func() bool {
		var d imap.NamespaceDescriptor
		if !dec.ExpectSpecial('(') || !dec.ExpectString(&d.Prefix) || !dec.ExpectSP() {
			return false
		}
		var delim string
		if dec.Quoted(&delim) {
			r, size := utf8.DecodeRuneInString(delim)
			if r == utf8.RuneError || size != len(delim) {
				return false
			}
			d.Delim = r
			d.HasDelim = true
		} else if !dec.NIL() {
			return false
		}
		for dec.SP() {
			var extName string
			if !dec.ExpectAtom(&extName) || !dec.ExpectSP() {
				return false
			}
			ok := dec.ExpectList(func() bool {
				var s string
				return dec.ExpectString(&s)
			})
			if !ok {
				return false
			}
		}
		if !dec.ExpectSpecial(')') {
			return false
		}
		descs = append(descs, d)
		return true
	})
	if !ok {
		return nil, dec.Err()
	}
	return descs, nil
}

func (c *Client) readIDUntagged() error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	id := map[string]string{}
	if !c.dec.NIL() {
		ok := c.dec.ExpectList(func() bool {
			var key string
			if !c.dec.ExpectString(&key) || !c.dec.ExpectSP() {
				return false
			}
			var val *string
			if !c.dec.ExpectNString(&val) {
				return false
			}
			if val != nil {
				id[key] = *val
			}
			return true
		})
		if !ok {
			return fmt.Errorf("in id-params-list: %w", c.dec.Err())
		}
	}
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedID, ID: id})
	return nil
}

func (c *Client) readVanishedUntagged() error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	earlier := false
	if c.dec.PeekSpecial('(') {
		if !c.dec.ExpectSpecial('(') {
			return c.dec.Err()
		}
		var kw string
		if !c.dec.ExpectAtom(&kw) {
			return c.dec.Err()
		}
		earlier = strings.ToUpper(kw) == "EARLIER"
		if !c.dec.ExpectSpecial(')') || !c.dec.ExpectSP() {
			return c.dec.Err()
		}
	}
	var raw string
	if !c.dec.ExpectNumSet(&raw) {
		return c.dec.Err()
	}
	set, err := imap.ParseUidSet(raw)
	if err != nil {
		return err
	}

	kind := imap.UntaggedVanished
	if earlier {
		kind = imap.UntaggedVanishedEarlier
	}
	if !c.dispatchUntagged(imap.UntaggedResponse{Kind: kind, Vanished: set}) {
		if h := c.options.UnilateralDataHandler.Vanished; h != nil {
			h(set, earlier)
		}
	}
	return nil
}

func (c *Client) readFetchUntagged(seqNum uint32) error {
	if !c.dec.ExpectSP() {
		return c.dec.Err()
	}
	var attrs []imap.FetchAttr
	var innerErr error
	ok := c.dec.ExpectList(func() bool {
		attr, keep, err := readMsgAtt(c.dec)
		if err != nil {
			innerErr = err
			return false
		}
		if keep {
			attrs = append(attrs, attr)
		}
		return true
	})
	if !ok {
		if innerErr != nil {
			return fmt.Errorf("in msg-att: %w", innerErr)
		}
		return fmt.Errorf("in msg-att: %w", c.dec.Err())
	}

	if !c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedFetch, Num: seqNum, FetchAttrs: attrs}) {
		if h := c.options.UnilateralDataHandler.Fetch; h != nil {
			h(seqNum, attrs)
		}
	}
	return nil
}

func (c *Client) handleExists(n uint32) {
	c.mutex.Lock()
	if c.mailbox != nil {
		c.mailbox.NumMessages = int64(n)
	}
	c.mutex.Unlock()
	if !c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedExists, Num: n}) {
		if h := c.options.UnilateralDataHandler.Exists; h != nil {
			h(n)
		}
	}
}

func (c *Client) handleRecent(n uint32) {
	c.mutex.Lock()
	if c.mailbox != nil {
		c.mailbox.NumRecent = n
	}
	c.mutex.Unlock()
	c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedRecent, Num: n})
}

func (c *Client) handleExpunge(n uint32) {
	c.mutex.Lock()
	if c.mailbox != nil && c.mailbox.NumMessages > 0 {
		c.mailbox.NumMessages--
	}
	c.mutex.Unlock()
	if !c.dispatchUntagged(imap.UntaggedResponse{Kind: imap.UntaggedExpunge, Num: n}) {
		if h := c.options.UnilateralDataHandler.Expunge; h != nil {
			h(n)
		}
	}
}
