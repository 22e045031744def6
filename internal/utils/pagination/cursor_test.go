package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := Cursor{LikerID: 42, CreatedUnix: 1700000000000}

	token, err := Encode(c)
	require.NoError(t, err)

	got, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestDecode_EmptyTokenIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, c)
}

func TestDecode_InvalidToken(t *testing.T) {
	_, err := Decode("not-base64!!")
	assert.Error(t, err)

	// valid base64, invalid JSON
	_, err = Decode("bm90LWpzb24=")
	assert.Error(t, err)
}
