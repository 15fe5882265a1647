package imapclient

import (
	"fmt"
	"strings"

	"github.com/anvik-dev/imapwire"
	"github.com/anvik-dev/imapwire/internal/imapwire"
)

func (c *Client) search(uid bool, key imap.SearchKey, options *imap.SearchOptions) *SearchCommand {
	cmd := &SearchCommand{}
	enc := c.beginCommand(uidCmdName("SEARCH", uid), cmd)
	if options != nil && len(options.Return) > 0 {
		enc.SP().Atom("RETURN").SP().List(len(options.Return), func(i int) {
			enc.Atom(string(options.Return[i]))
		})
	}
	enc.SP()
	if options != nil && options.Charset != "" {
		enc.Atom("CHARSET").SP().Atom(options.Charset).SP()
	}
	writeSearchKey(enc.Encoder, key)
	enc.end()
	return cmd
}

// Search sends a SEARCH command.
//
// A nil options pointer is equivalent to a zero SearchOptions value.
func (c *Client) Search(key imap.SearchKey, options *imap.SearchOptions) *SearchCommand {
	return c.search(false, key, options)
}

// UIDSearch sends a UID SEARCH command.
func (c *Client) UIDSearch(key imap.SearchKey, options *imap.SearchOptions) *SearchCommand {
	return c.search(true, key, options)
}

// SearchCommand is a SEARCH or UID SEARCH command.
type SearchCommand struct {
	Command
	data imap.SearchData
}

func (cmd *SearchCommand) Wait() (*imap.SearchData, error) {
	err := cmd.Command.Wait()
	return &cmd.data, err
}

func (cmd *SearchCommand) collectUntagged(resp imap.UntaggedResponse) {
	switch resp.Kind {
	case imap.UntaggedSearch:
		for _, id := range resp.SearchIds {
			cmd.data.All.AddNum(id)
		}
		cmd.data.ModSeq = (*imap.ModSeq)(resp.SearchModSeq)
	case imap.UntaggedESearch:
		cmd.data.All = resp.ESearch.All
	}
}

// writeSearchKey encodes key as a parenthesized search-key list. It is
// always safe to wrap in parens: a paren-group is itself a valid
// single search-key, so this works equally at the top level and when
// nested under NOT/OR.
func writeSearchKey(enc *imapwire.Encoder, key imap.SearchKey) {
	and, ok := key.(imap.SearchAnd)
	if !ok {
		and = imap.SearchAnd{Children: []imap.SearchKey{key}}
	}
	if len(and.Children) == 0 {
		and.Children = []imap.SearchKey{imap.SearchAll{}}
	}

	enc.Special('(')
	for i, child := range and.Children {
		if i > 0 {
			enc.SP()
		}
		writeSearchKeyLeaf(enc, child)
	}
	enc.Special(')')
}

func writeSearchKeyLeaf(enc *imapwire.Encoder, key imap.SearchKey) {
	switch k := key.(type) {
	case imap.SearchAnd:
		writeSearchKey(enc, k)
	case imap.SearchOr:
		enc.Atom("OR").SP()
		writeSearchKey(enc, k.Left)
		enc.SP()
		writeSearchKey(enc, k.Right)
	case imap.SearchNot:
		enc.Atom("NOT").SP()
		writeSearchKey(enc, k.Child)

	case imap.SearchAll:
		enc.Atom("ALL")
	case imap.SearchAnswered:
		enc.Atom("ANSWERED")
	case imap.SearchDeleted:
		enc.Atom("DELETED")
	case imap.SearchDraft:
		enc.Atom("DRAFT")
	case imap.SearchFlagged:
		enc.Atom("FLAGGED")
	case imap.SearchNew:
		enc.Atom("NEW")
	case imap.SearchOld:
		enc.Atom("OLD")
	case imap.SearchRecent:
		enc.Atom("RECENT")
	case imap.SearchSeen:
		enc.Atom("SEEN")
	case imap.SearchUnanswered:
		enc.Atom("UNANSWERED")
	case imap.SearchUndeleted:
		enc.Atom("UNDELETED")
	case imap.SearchUndraft:
		enc.Atom("UNDRAFT")
	case imap.SearchUnflagged:
		enc.Atom("UNFLAGGED")
	case imap.SearchUnseen:
		enc.Atom("UNSEEN")

	case imap.SearchBcc:
		enc.Atom("BCC").SP().String(k.Value)
	case imap.SearchBody:
		enc.Atom("BODY").SP().String(k.Value)
	case imap.SearchCc:
		enc.Atom("CC").SP().String(k.Value)
	case imap.SearchFrom:
		enc.Atom("FROM").SP().String(k.Value)
	case imap.SearchSubject:
		enc.Atom("SUBJECT").SP().String(k.Value)
	case imap.SearchText:
		enc.Atom("TEXT").SP().String(k.Value)
	case imap.SearchTo:
		enc.Atom("TO").SP().String(k.Value)

	case imap.SearchKeyword:
		enc.Atom("KEYWORD").SP().Flag(k.Flag)
	case imap.SearchUnkeyword:
		enc.Atom("UNKEYWORD").SP().Flag(k.Flag)

	case imap.SearchHeader:
		if name := strings.ToUpper(k.Key); name == "BCC" || name == "CC" || name == "FROM" || name == "SUBJECT" || name == "TO" {
			enc.Atom(name).SP().String(k.Value)
		} else {
			enc.Atom("HEADER").SP().String(k.Key).SP().String(k.Value)
		}

	case imap.SearchBefore:
		enc.Atom("BEFORE").SP().String(imap.FormatSearchDate(k.Date))
	case imap.SearchOn:
		enc.Atom("ON").SP().String(imap.FormatSearchDate(k.Date))
	case imap.SearchSince:
		enc.Atom("SINCE").SP().String(imap.FormatSearchDate(k.Date))
	case imap.SearchSentBefore:
		enc.Atom("SENTBEFORE").SP().String(imap.FormatSearchDate(k.Date))
	case imap.SearchSentOn:
		enc.Atom("SENTON").SP().String(imap.FormatSearchDate(k.Date))
	case imap.SearchSentSince:
		enc.Atom("SENTSINCE").SP().String(imap.FormatSearchDate(k.Date))

	case imap.SearchLarger:
		enc.Atom("LARGER").SP().Number64(k.Octets)
	case imap.SearchSmaller:
		enc.Atom("SMALLER").SP().Number64(k.Octets)

	case imap.SearchSeqSet:
		enc.NumSet(k.Set.String())
	case imap.SearchUidSet:
		enc.Atom("UID").SP().NumSet(k.Set.String())

	case imap.SearchModSeq:
		enc.Atom("MODSEQ").SP().ModSeq(uint64(k.ModSeq))

	default:
		panic(fmt.Errorf("imapclient: unknown search key type %T", key))
	}
}
