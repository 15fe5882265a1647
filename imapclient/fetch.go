package imapclient

import (
	"strconv"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

func (c *Client) fetch(uid bool, numSet imap.NumSet, items []imap.FetchItem) *FetchCommand {
	cmd := &FetchCommand{msgs: make(chan *FetchMessageData, 128)}
	if err := c.requireSelected(); err != nil {
		cmd.Command = Command{err: err}
		close(cmd.msgs)
		return cmd
	}

	enc := c.beginCommand(uidCmdName("FETCH", uid), cmd)
	enc.SP().NumSet(numSet.String()).SP().List(len(items), func(i int) {
		writeFetchItem(enc.Encoder, items[i])
	})
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}

// Fetch sends a FETCH command.
//
// The caller must fully consume the FetchCommand, either by calling Next
// until it returns nil, or by calling Collect.
func (c *Client) Fetch(seqSet imap.SeqSet, items []imap.FetchItem) *FetchCommand {
	return c.fetch(false, seqSet, items)
}

// UIDFetch sends a UID FETCH command.
func (c *Client) UIDFetch(uidSet imap.UidSet, items []imap.FetchItem) *FetchCommand {
	return c.fetch(true, uidSet, items)
}

// FetchMessageData groups every attribute a single FETCH response carried
// for one message.
type FetchMessageData struct {
	SeqNum uint32
	Attrs  []imap.FetchAttr
}

// FetchCommand is a FETCH or UID FETCH command.
type FetchCommand struct {
	Command
	msgs chan *FetchMessageData
}

// Next advances to the next message's data, returning nil once there are no
// more or the command has failed.
func (cmd *FetchCommand) Next() *FetchMessageData {
	return <-cmd.msgs
}

// Close drains any remaining messages and returns the command's completion
// error.
//
// Collect drains the messages the same way, so a caller that used Collect
// need not call Close.
func (cmd *FetchCommand) Close() error {
	for cmd.Next() != nil {
	}
	return cmd.Command.Wait()
}

// Collect accumulates every message's data and then closes the command.
//
// Literal payloads (FetchAttrBodySection, etc.) are held in memory whether
// messages are read with Collect or with Next.
func (cmd *FetchCommand) Collect() ([]*FetchMessageData, error) {
	var l []*FetchMessageData
	for {
		msg := cmd.Next()
		if msg == nil {
			break
		}
		l = append(l, msg)
	}
	return l, cmd.Command.Wait()
}

func (cmd *FetchCommand) collectUntagged(resp imap.UntaggedResponse) {
	if resp.Kind != imap.UntaggedFetch {
		return
	}
	cmd.msgs <- &FetchMessageData{SeqNum: resp.Num, Attrs: resp.FetchAttrs}
}

func (cmd *FetchCommand) closeWhenDone() {
	cmd.Command.Wait()
	close(cmd.msgs)
}

func writeFetchItem(enc *imapwire.Encoder, item imap.FetchItem) {
	switch item.Kind {
	case imap.FetchItemFlags:
		enc.Atom("FLAGS")
	case imap.FetchItemEnvelope:
		enc.Atom("ENVELOPE")
	case imap.FetchItemInternalDate:
		enc.Atom("INTERNALDATE")
	case imap.FetchItemRFC822Size:
		enc.Atom("RFC822.SIZE")
	case imap.FetchItemBody:
		enc.Atom("BODY")
	case imap.FetchItemBodyStructure:
		enc.Atom("BODYSTRUCTURE")
	case imap.FetchItemUID:
		enc.Atom("UID")
	case imap.FetchItemModSeq:
		enc.Atom("MODSEQ")
	case imap.FetchItemRFC822:
		enc.Atom("RFC822")
	case imap.FetchItemRFC822Header:
		enc.Atom("RFC822.HEADER")
	case imap.FetchItemRFC822Text:
		enc.Atom("RFC822.TEXT")
	case imap.FetchItemBodySection:
		writeSectionItem(enc, "BODY", item)
	case imap.FetchItemBinarySection:
		writeSectionItem(enc, "BINARY", item)
	case imap.FetchItemBinarySize:
		enc.Atom("BINARY.SIZE").Special('[').Text(item.Section.String()).Special(']')
	}
}

func writeSectionItem(enc *imapwire.Encoder, name string, item imap.FetchItem) {
	enc.Atom(name)
	if item.Peek {
		enc.Atom(".PEEK")
	}
	enc.Special('[').Text(item.Section.String()).Special(']')
	if item.Partial != nil {
		enc.Special('<').Text(strconv.FormatInt(item.Partial.Offset, 10))
		enc.Special('.').Text(strconv.FormatInt(item.Partial.Size, 10))
		enc.Special('>')
	}
}
