package mapi

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/robert-malhotra/go-msg/internal/codepage"
)

// DefaultCodepage is used for PT_STRING8 values when an object carries no
// code page property.
const DefaultCodepage = codepage.Default

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUnicode decodes a PT_UNICODE value.
func DecodeUnicode(b []byte) string {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

// DecodeString8 decodes a PT_STRING8 value with the given encoding.
func DecodeString8(b []byte, enc encoding.Encoding) string {
	if enc == nil {
		enc = charmap.Windows1252
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// TrimNul removes trailing NUL characters.
func TrimNul(s string) string {
	return strings.TrimRight(s, "\x00")
}
