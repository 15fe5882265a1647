package imapclient

import "github.com/anvik-dev/imapwire"

// Store sends a STORE command.
//
// Unless store.Silent is set, the server returns the updated flags as
// ordinary FETCH responses, available through the returned FetchCommand.
//
// A nil options pointer is equivalent to a zero StoreOptions value.
func (c *Client) Store(numSet imap.NumSet, store *imap.StoreFlags, options *imap.StoreOptions) *FetchCommand {
	return c.store(false, numSet, store, options)
}

// UIDStore sends a UID STORE command.
func (c *Client) UIDStore(uidSet imap.UidSet, store *imap.StoreFlags, options *imap.StoreOptions) *FetchCommand {
	return c.store(true, uidSet, store, options)
}

func (c *Client) store(uid bool, numSet imap.NumSet, store *imap.StoreFlags, options *imap.StoreOptions) *FetchCommand {
	cmd := &FetchCommand{msgs: make(chan *FetchMessageData, 128)}
	if err := c.requireSelected(); err != nil {
		cmd.Command = Command{err: err}
		close(cmd.msgs)
		return cmd
	}

	enc := c.beginCommand(uidCmdName("STORE", uid), cmd)
	enc.SP().NumSet(numSet.String()).SP()
	if options != nil && options.UnchangedSince != 0 {
		enc.Special('(').Atom("UNCHANGEDSINCE").SP().ModSeq(uint64(options.UnchangedSince)).Special(')').SP()
	}
	switch store.Op {
	case imap.StoreFlagsAdd:
		enc.Special('+')
	case imap.StoreFlagsDel:
		enc.Special('-')
	}
	enc.Atom("FLAGS")
	if store.Silent {
		enc.Atom(".SILENT")
	}
	enc.SP().List(len(store.Flags), func(i int) {
		enc.Flag(string(store.Flags[i]))
	})
	enc.end()
	go cmd.closeWhenDone()
	return cmd
}
