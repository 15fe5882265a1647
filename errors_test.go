package imap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvik-dev/imapwire"
)

func TestSessionStateErrorMessage(t *testing.T) {
	err := imap.SessionState("selected", "authenticated")
	assert.Equal(t, "imap: session state: expected selected, connection is authenticated", err.Error())
	assert.Equal(t, "selected", err.Expected)
	assert.Equal(t, "authenticated", err.Actual)
	assert.Equal(t, imap.ErrorSessionState, err.Kind)
}

func TestErrorIsMatchesByKindOnly(t *testing.T) {
	err := imap.SessionState("selected", "authenticated")
	assert.True(t, errors.Is(err, &imap.Error{Kind: imap.ErrorSessionState}))
	assert.False(t, errors.Is(err, &imap.Error{Kind: imap.ErrorBye}))
}

func TestAsErrorUnwraps(t *testing.T) {
	err := imap.SessionState("selected", "authenticated")

	got, ok := imap.AsError(err)
	require.True(t, ok)
	assert.Equal(t, imap.ErrorSessionState, got.Kind)
}

func TestBadCompletionErrorMessageIncludesText(t *testing.T) {
	err := &imap.Error{Kind: imap.ErrorBadCompletion, Tag: "A1", Text: "Mailbox doesn't exist"}
	assert.Equal(t, "imap: bad completion: Mailbox doesn't exist", err.Error())
}
