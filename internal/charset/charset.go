// Package charset decodes file bytes into text and back for the charset
// style property and the host's files.encoding setting.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset names as spelled in style files.
const (
	UTF8    = "utf-8"
	UTF8BOM = "utf-8-bom"
	Latin1  = "latin1"
	UTF16BE = "utf-16be"
	UTF16LE = "utf-16le"
)

// ErrUnknownCharset is returned for an unsupported charset name.
var ErrUnknownCharset = errors.New("unknown charset")

// ErrInvalidUTF8 is returned when bytes claimed to be UTF-8 are not.
var ErrInvalidUTF8 = errors.New("invalid utf-8")

var bom = []byte{0xEF, 0xBB, 0xBF}

// hostNames maps host files.encoding values to charset names.
var hostNames = map[string]string{
	"utf8":     UTF8,
	"utf8bom":  UTF8BOM,
	"utf16le":  UTF16LE,
	"utf16be":  UTF16BE,
	"iso88591": Latin1,
}

// Normalize returns the canonical charset name for a style or host name.
func Normalize(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if host, ok := hostNames[n]; ok {
		return host, nil
	}
	switch n {
	case UTF8, UTF8BOM, Latin1, UTF16BE, UTF16LE:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
}

// HostName returns the host files.encoding spelling of a charset.
func HostName(name string) (string, error) {
	cs, err := Normalize(name)
	if err != nil {
		return "", err
	}
	for host, c := range hostNames {
		if c == cs {
			return host, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Decode converts data in the named charset to a UTF-8 string.
// A BOM matching the charset is stripped.
func Decode(name string, data []byte) (string, error) {
	cs, err := Normalize(name)
	if err != nil {
		return "", err
	}

	switch cs {
	case UTF8, UTF8BOM:
		data = bytes.TrimPrefix(data, bom)
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		return string(data), nil
	default:
		out, err := codec(cs).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding %s: %w", cs, err)
		}
		return string(out), nil
	}
}

// Encode converts text to bytes in the named charset. utf-8-bom and the
// utf-16 charsets are written with a BOM.
func Encode(name string, text string) ([]byte, error) {
	cs, err := Normalize(name)
	if err != nil {
		return nil, err
	}

	switch cs {
	case UTF8:
		return []byte(text), nil
	case UTF8BOM:
		return append(append([]byte{}, bom...), strings.TrimPrefix(text, "\uFEFF")...), nil
	default:
		out, err := codec(cs).NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", cs, err)
		}
		return out, nil
	}
}

// Detect guesses the charset of data from its BOM. Data without a BOM is
// reported as utf-8 if valid, latin1 otherwise.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bom):
		return UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return UTF16BE
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return UTF16LE
	case utf8.Valid(data):
		return UTF8
	default:
		return Latin1
	}
}

func codec(cs string) encoding.Encoding {
	switch cs {
	case Latin1:
		return charmap.ISO8859_1
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	}
}
