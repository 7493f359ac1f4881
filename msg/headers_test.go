package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderBlock(t *testing.T) {
	block := "Received: from a by b;\r\n\tMon, 1 Jan 2024 00:00:00 +0000\r\n" +
		"Subject: Folded\r\n subject\r\n" +
		"X-Mailer: Outlook\r\n"

	fields, err := ParseHeaderBlock(block)
	require.NoError(t, err)
	assert.Equal(t, []HeaderField{
		{"Received", "from a by b; Mon, 1 Jan 2024 00:00:00 +0000"},
		{"Subject", "Folded subject"},
		{"X-Mailer", "Outlook"},
	}, normalizeSpace(fields))
}

func TestParseHeaderBlockMalformed(t *testing.T) {
	block := "Subject: ok\r\nthis line is not a field\r\nX-Spam: no\r\n  continued\r\n"

	fields, err := ParseHeaderBlock(block)
	require.NoError(t, err)
	assert.Equal(t, []HeaderField{
		{"Subject", "ok"},
		{"X-Spam", "no  continued"},
	}, fields)
}

func TestParseHeaderBlockEmpty(t *testing.T) {
	fields, err := ParseHeaderBlock("\r\n \r\n")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

// normalizeSpace collapses the whitespace left where lines were joined.
func normalizeSpace(fields []HeaderField) []HeaderField {
	out := make([]HeaderField, len(fields))
	for i, f := range fields {
		out[i] = HeaderField{Key: f.Key, Value: collapse(f.Value)}
	}
	return out
}

func collapse(s string) string {
	var b []byte
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			space = true
			continue
		}
		if space && len(b) > 0 {
			b = append(b, ' ')
		}
		space = false
		b = append(b, c)
	}
	return string(b)
}
