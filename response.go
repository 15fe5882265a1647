package imap

// ResponseCodeKind identifies which resp-text-code variant a ResponseCode
// carries. Unknown codes decode as Other.
type ResponseCodeKind int

const (
	CodeNone ResponseCodeKind = iota
	CodeAlert
	CodeBadCharset
	CodeCapability
	CodeParse
	CodePermanentFlags
	CodeReadOnly
	CodeReadWrite
	CodeTryCreate
	CodeUidNext
	CodeUidValidity
	CodeUnseen
	CodeClosed
	CodeHighestModSeq
	CodeNoModSeq
	CodeModified
	CodeAppendUid
	CodeCopyUid
	CodeUidNotSticky
	CodeCompressionActive
	CodeUseAttr
	CodeOther
)

// ResponseCode is the parsed form of an optional "[...]" resp-text-code.
// Only the fields relevant to Kind are populated.
type ResponseCode struct {
	Kind ResponseCodeKind

	// CodeBadCharset
	Charsets []string
	// CodeCapability
	Capabilities []Capability
	// CodePermanentFlags
	PermanentFlags []Flag
	// CodeUidNext, CodeUidValidity, CodeUnseen
	Num uint32
	// CodeHighestModSeq
	ModSeq uint64
	// CodeModified
	ModifiedSet UidSet
	// CodeAppendUid
	AppendUidValidity uint32
	AppendUid         UID
	// CodeCopyUid
	CopyUidValidity uint32
	CopySourceSet   UidSet
	CopyDestSet     UidSet
	// CodeOther
	OtherAtom string
	OtherText *string
}

// Frame is a single decoded server frame: exactly one of Tagged, Untagged,
// or Cont is non-nil-equivalent, discriminated by Kind.
type Frame struct {
	Kind FrameKind

	// FrameTagged
	Tag   string
	State StatusKind
	Code  ResponseCode
	Text  string

	// FrameUntagged
	Untagged UntaggedResponse

	// FrameCont
	ContText string
}

// FrameKind discriminates a Frame.
type FrameKind int

const (
	FrameTagged FrameKind = iota
	FrameUntagged
	FrameCont
)

// StatusKind is the OK/NO/BAD/BYE/PREAUTH status of a response.
type StatusKind int

const (
	StatusOK StatusKind = iota
	StatusNo
	StatusBad
	StatusBye
	StatusPreauth
)

// UntaggedKind discriminates an UntaggedResponse.
type UntaggedKind int

const (
	UntaggedState UntaggedKind = iota
	UntaggedBye
	UntaggedPreauth
	UntaggedCapability
	UntaggedEnabled
	UntaggedFlags
	UntaggedList
	UntaggedLsub
	UntaggedSearch
	UntaggedESearch
	UntaggedStatus
	UntaggedExists
	UntaggedRecent
	UntaggedExpunge
	UntaggedFetch
	UntaggedVanished
	UntaggedVanishedEarlier
	UntaggedNamespace
	UntaggedID
)

// UntaggedResponse is the sum type of every "*"-prefixed server response.
// Only the fields relevant to Kind are populated.
type UntaggedResponse struct {
	Kind UntaggedKind

	// UntaggedState, UntaggedBye, UntaggedPreauth
	State StatusKind
	Code  ResponseCode
	Text  string

	// UntaggedCapability
	Capabilities []Capability
	// UntaggedEnabled
	Enabled []Capability
	// UntaggedFlags
	Flags []Flag
	// UntaggedList, UntaggedLsub
	List ListData
	// UntaggedSearch
	SearchIds    []uint32
	SearchModSeq *uint64
	// UntaggedESearch
	ESearch ESearchData
	// UntaggedStatus
	Status StatusData
	// UntaggedExists, UntaggedRecent, UntaggedExpunge, UntaggedFetch
	Num uint32
	// UntaggedFetch
	FetchAttrs []FetchAttr
	// UntaggedVanished, UntaggedVanishedEarlier
	Vanished UidSet
	// UntaggedNamespace
	Namespace NamespaceData
	// UntaggedID
	ID map[string]string
}

// ESearchData is the parsed form of an ESEARCH (RFC 4731) response.
type ESearchData struct {
	Tag   string
	Uid   bool
	Min   uint32
	Max   uint32
	All   SeqSet
	Count *uint32
}

// NamespaceDescriptor is one entry of a NAMESPACE response (personal,
// other-users, or shared).
type NamespaceDescriptor struct {
	Prefix    string
	Delim     rune
	HasDelim  bool
}

// NamespaceData is the parsed form of a NAMESPACE response.
type NamespaceData struct {
	Personal []NamespaceDescriptor
	Other    []NamespaceDescriptor
	Shared   []NamespaceDescriptor
}
