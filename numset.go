package imap

import "github.com/anvik-dev/imapwire/internal/imapnum"

// NumSet is the common interface implemented by SeqSet and UidSet.
type NumSet interface {
	String() string
	Dynamic() bool
}

var (
	_ NumSet = SeqSet(nil)
	_ NumSet = UidSet(nil)
)

// UidRange is an inclusive range of message UIDs. The literal token "*"
// decodes to ^uint32(0).
type UidRange struct {
	Lo, Hi UID
}

// UidSet is an ordered sequence of inclusive UID ranges, as used by UID
// FETCH/STORE/COPY/SEARCH and by VANISHED.
type UidSet []UidRange

// ParseUidSet parses a uid-set wire token such as "41,43:116,118,120:211".
func ParseUidSet(s string) (UidSet, error) {
	raw, err := imapnum.ParseSet(s)
	if err != nil {
		return nil, err
	}
	return uidSetFromRaw(raw), nil
}

// UidSetNum builds a UidSet containing exactly the given UIDs.
func UidSetNum(uids ...UID) UidSet {
	var s UidSet
	s.AddNum(uids...)
	return s
}

func (s UidSet) raw() imapnum.Set {
	raw := make(imapnum.Set, len(s))
	for i, r := range s {
		raw[i] = imapnum.Range{Lo: uint32(r.Lo), Hi: uint32(r.Hi)}
	}
	return raw
}

func uidSetFromRaw(raw imapnum.Set) UidSet {
	s := make(UidSet, len(raw))
	for i, r := range raw {
		s[i] = UidRange{Lo: UID(r.Lo), Hi: UID(r.Hi)}
	}
	return s
}

func (s UidSet) String() string { return s.raw().String() }

// Dynamic reports whether the set contains a "*" or "n:*" range.
func (s UidSet) Dynamic() bool { return s.raw().Dynamic() }

// Contains reports whether uid belongs to the set.
func (s UidSet) Contains(uid UID) bool { return s.raw().Contains(uint32(uid)) }

// Nums expands the set into individual UIDs; ok is false for an unbounded set.
func (s UidSet) Nums() ([]UID, bool) {
	nums, ok := s.raw().Nums()
	if !ok {
		return nil, false
	}
	uids := make([]UID, len(nums))
	for i, n := range nums {
		uids[i] = UID(n)
	}
	return uids, true
}

// AddNum inserts UIDs into the set. UID(imapnum.Star) represents "*".
func (s *UidSet) AddNum(uids ...UID) {
	raw := s.raw()
	nums := make([]uint32, len(uids))
	for i, u := range uids {
		nums[i] = uint32(u)
	}
	raw.AddNum(nums...)
	*s = uidSetFromRaw(raw)
}

// AddRange inserts an inclusive range into the set.
func (s *UidSet) AddRange(lo, hi UID) {
	raw := s.raw()
	raw.AddRange(uint32(lo), uint32(hi))
	*s = uidSetFromRaw(raw)
}

// AddSet merges other into s.
func (s *UidSet) AddSet(other UidSet) {
	raw := s.raw()
	raw.AddSet(other.raw())
	*s = uidSetFromRaw(raw)
}

// SeqRange is an inclusive range of message sequence numbers.
type SeqRange struct {
	Lo, Hi uint32
}

// SeqSet is an ordered sequence of inclusive sequence-number ranges.
type SeqSet []SeqRange

// ParseSeqSet parses a sequence-set wire token.
func ParseSeqSet(s string) (SeqSet, error) {
	raw, err := imapnum.ParseSet(s)
	if err != nil {
		return nil, err
	}
	return seqSetFromRaw(raw), nil
}

// SeqSetNum builds a SeqSet containing exactly the given sequence numbers.
func SeqSetNum(nums ...uint32) SeqSet {
	var s SeqSet
	s.AddNum(nums...)
	return s
}

func (s SeqSet) raw() imapnum.Set {
	raw := make(imapnum.Set, len(s))
	for i, r := range s {
		raw[i] = imapnum.Range{Lo: r.Lo, Hi: r.Hi}
	}
	return raw
}

func seqSetFromRaw(raw imapnum.Set) SeqSet {
	s := make(SeqSet, len(raw))
	for i, r := range raw {
		s[i] = SeqRange{Lo: r.Lo, Hi: r.Hi}
	}
	return s
}

func (s SeqSet) String() string     { return s.raw().String() }
func (s SeqSet) Dynamic() bool      { return s.raw().Dynamic() }
func (s SeqSet) Contains(n uint32) bool { return s.raw().Contains(n) }

func (s SeqSet) Nums() ([]uint32, bool) { return s.raw().Nums() }

func (s *SeqSet) AddNum(nums ...uint32) {
	raw := s.raw()
	raw.AddNum(nums...)
	*s = seqSetFromRaw(raw)
}

func (s *SeqSet) AddRange(lo, hi uint32) {
	raw := s.raw()
	raw.AddRange(lo, hi)
	*s = seqSetFromRaw(raw)
}

func (s *SeqSet) AddSet(other SeqSet) {
	raw := s.raw()
	raw.AddSet(other.raw())
	*s = seqSetFromRaw(raw)
}

// Star is the UID/sequence-number sentinel for the wire token "*".
const Star UID = UID(imapnum.Star)
