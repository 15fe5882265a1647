package imapwire

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDecoder(s string) *Decoder {
	return NewDecoder(bufio.NewReader(strings.NewReader(s)))
}

func TestDecoderLiteralStreamsExactSize(t *testing.T) {
	dec := newTestDecoder("{5}\r\nhelloXYZ")

	lit, nonSync, ok := dec.Literal()
	require.True(t, ok)
	assert.False(t, nonSync)
	assert.EqualValues(t, 5, lit.Size())

	b, err := io.ReadAll(lit)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	var rest string
	require.True(t, dec.ExpectAtom(&rest))
	assert.Equal(t, "XYZ", rest)
}

func TestDecoderLiteralNonSync(t *testing.T) {
	dec := newTestDecoder("{3+}\r\nabc")

	lit, nonSync, ok := dec.Literal()
	require.True(t, ok)
	assert.True(t, nonSync)
	b, err := io.ReadAll(lit)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}

func TestDecoderNStringDistinguishesNilFromEmpty(t *testing.T) {
	dec := newTestDecoder(`NIL ""`)

	var nilPtr *string
	require.True(t, dec.ExpectNString(&nilPtr))
	assert.Nil(t, nilPtr)

	require.True(t, dec.ExpectSP())

	var emptyPtr *string
	require.True(t, dec.ExpectNString(&emptyPtr))
	require.NotNil(t, emptyPtr)
	assert.Equal(t, "", *emptyPtr)
}

func TestDecoderModSeqMaxUint64(t *testing.T) {
	dec := newTestDecoder(`18446744073709551615`)

	var ms uint64
	require.True(t, dec.ExpectModSeq(&ms))
	assert.Equal(t, uint64(18446744073709551615), ms)
}

func TestDecoderNumSetVanishedRanges(t *testing.T) {
	dec := newTestDecoder(`41,43:116,118,120:211`)

	var s string
	require.True(t, dec.ExpectNumSet(&s))
	assert.Equal(t, "41,43:116,118,120:211", s)
}

func TestDecoderQuotedWithEscapes(t *testing.T) {
	dec := newTestDecoder(`"quote: \" backslash: \\"`)

	var s string
	require.True(t, dec.ExpectQuoted(&s))
	assert.Equal(t, `quote: " backslash: \`, s)
}

func TestDecoderMailboxDecodesUTF7AndCanonicalizesInbox(t *testing.T) {
	dec := newTestDecoder("Inbox")
	var name string
	require.True(t, dec.ExpectMailbox(&name))
	assert.Equal(t, "INBOX", name)

	dec = newTestDecoder("Other")
	require.True(t, dec.ExpectMailbox(&name))
	assert.Equal(t, "Other", name)
}

func TestDecoderListEmpty(t *testing.T) {
	dec := newTestDecoder(`()`)

	var items []string
	ok := dec.ExpectList(func() bool {
		var s string
		if !dec.ExpectAtom(&s) {
			return false
		}
		items = append(items, s)
		return true
	})
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestDecoderEOF(t *testing.T) {
	dec := newTestDecoder(``)
	assert.True(t, dec.EOF())

	dec = newTestDecoder(`x`)
	assert.False(t, dec.EOF())
}
