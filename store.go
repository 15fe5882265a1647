package imap

// StoreFlagsOp identifies the FLAGS/+FLAGS/-FLAGS variant of a STORE
// command.
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota
	StoreFlagsAdd
	StoreFlagsDel
)

// StoreFlags describes the flag update a STORE command applies.
type StoreFlags struct {
	Op     StoreFlagsOp
	Silent bool
	Flags  []Flag
}

// StoreOptions configures a STORE command.
type StoreOptions struct {
	// UnchangedSince, if non-zero, makes the update conditional on the
	// message's mod-sequence not having changed since this value
	// (CONDSTORE's UNCHANGEDSINCE).
	UnchangedSince ModSeq
}

// CopyData is the data returned by a successful COPY command whose server
// supports UIDPLUS (the COPYUID resp-text-code).
type CopyData struct {
	UidValidity uint32
	SourceUids  UidSet
	DestUids    UidSet
}
