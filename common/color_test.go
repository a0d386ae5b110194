package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	for _, v := range []uint32{0x000000, 0x222222, 0xff0000, 0x080808, 0xaaaaaa, 0xffffff} {
		assert.Equal(t, v, Hex(uint64(v)).Uint32())
	}
}

func TestHexDiscardsHighBits(t *testing.T) {
	assert.Equal(t, Hex(0x080808), Hex(0x080808080808))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"#ff0000", 0xff0000},
		{"222222", 0x222222},
		{"0xAAAAAA", 0xaaaaaa},
		{" #080808 ", 0x080808},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.Uint32(), tt.in)
	}

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestColorText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#444444")))
	assert.Equal(t, "#444444", c.String())

	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#444444", string(text))
}
