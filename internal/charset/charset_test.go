package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		charset string
		text    string
		prefix  []byte
	}{
		{UTF8, "héllo\n", nil},
		{UTF8BOM, "héllo\n", []byte{0xEF, 0xBB, 0xBF}},
		{Latin1, "héllo\n", nil},
		{UTF16BE, "héllo\n", []byte{0xFE, 0xFF}},
		{UTF16LE, "héllo\n", []byte{0xFF, 0xFE}},
	}

	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			data, err := Encode(tt.charset, tt.text)
			require.NoError(t, err)
			if tt.prefix != nil {
				assert.Equal(t, tt.prefix, data[:len(tt.prefix)])
			}
			assert.Equal(t, tt.charset, Detect(data))

			text, err := Decode(tt.charset, data)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestLatin1Bytes(t *testing.T) {
	data, err := Encode(Latin1, "é")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE9}, data)
}

func TestDecodeUTF8StripsBOM(t *testing.T) {
	text, err := Decode(UTF8, []byte("\xEF\xBB\xBFabc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", text)

	_, err = Decode(UTF8, []byte{0xE9})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEncodeUTF8BOMDoesNotDoubleBOM(t *testing.T) {
	data, err := Encode(UTF8BOM, "\uFEFFabc")
	require.NoError(t, err)
	assert.Equal(t, []byte("\xEF\xBB\xBFabc"), data)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"UTF-8", UTF8},
		{"utf8", UTF8},
		{"utf8bom", UTF8BOM},
		{"iso88591", Latin1},
		{" Latin1 ", Latin1},
		{"utf16le", UTF16LE},
		{"utf-16be", UTF16BE},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Normalize("ebcdic")
	assert.ErrorIs(t, err, ErrUnknownCharset)
	_, err = Decode("ebcdic", nil)
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestHostName(t *testing.T) {
	got, err := HostName("utf-16le")
	require.NoError(t, err)
	assert.Equal(t, "utf16le", got)

	got, err = HostName("latin1")
	require.NoError(t, err)
	assert.Equal(t, "iso88591", got)
}
