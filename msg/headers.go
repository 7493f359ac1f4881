package msg

import (
	"bufio"
	"strings"

	"github.com/emersion/go-message/textproto"
)

// HeaderField is one unfolded header field.
type HeaderField struct {
	Key   string
	Value string
}

// HeaderParser unfolds a raw transport header block into ordered fields.
type HeaderParser func(block string) ([]HeaderField, error)

// ParseHeaderBlock unfolds a PR_TRANSPORT_MESSAGE_HEADERS block.
// Continuation lines are joined to the field they continue. Blocks the
// strict MIME reader rejects are unfolded line by line instead, skipping
// lines that are not fields.
func ParseHeaderBlock(block string) ([]HeaderField, error) {
	block = strings.TrimLeft(block, "\r\n")
	if strings.TrimSpace(block) == "" {
		return nil, nil
	}
	if fields, err := readHeader(block); err == nil {
		return fields, nil
	}
	return unfoldLines(block), nil
}

func readHeader(block string) ([]HeaderField, error) {
	// The reader needs the blank line that ends a header.
	block = strings.TrimRight(block, "\r\n") + "\r\n\r\n"
	h, err := textproto.ReadHeader(bufio.NewReader(strings.NewReader(block)))
	if err != nil {
		return nil, err
	}
	var fields []HeaderField
	for f := h.Fields(); f.Next(); {
		fields = append(fields, HeaderField{Key: f.Key(), Value: unfold(f.Value())})
	}
	return fields, nil
}

func unfoldLines(block string) []HeaderField {
	var fields []HeaderField
	for _, line := range strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n") {
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if n := len(fields); n > 0 {
				fields[n-1].Value += line
			}
			continue
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		fields = append(fields, HeaderField{Key: key, Value: line[i+1:]})
	}
	for i := range fields {
		fields[i].Value = unfold(fields[i].Value)
	}
	return fields
}

func unfold(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "")
	v = strings.ReplaceAll(v, "\n", "")
	return strings.TrimSpace(v)
}
