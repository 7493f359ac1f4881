package mapi

import (
	"fmt"
	"strings"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

const nameIDEntrySize = 8

/*
Name Id Entry Layout:
Offset  Size  Description
0       4     Numeric name, or string offset when the kind bit is set
4       2     Bit 0: kind (1 = string name); bits 1-15: GUID index
6       2     Property index; the property id is 0x8000 + index
*/

// NameIDTable maps numeric property names to the ids their values are
// stored under.
type NameIDTable struct {
	ids map[uint32]ID
}

// LoadNameIDTable reads the entry stream of a "__nameid_version1.0"
// storage. A storage without an entry stream yields an empty table.
func LoadNameIDTable(s Storage) (*NameIDTable, error) {
	for _, name := range s.Children() {
		if !strings.EqualFold(name, nameIDEntryStream) || s.IsStorage(name) {
			continue
		}
		data, err := s.ReadStream(name)
		if err != nil {
			return nil, fmt.Errorf("reading name id entries: %w", err)
		}
		return NewNameIDTable(data), nil
	}
	return NewNameIDTable(nil), nil
}

// NewNameIDTable builds a table from raw entry stream bytes.
func NewNameIDTable(data []byte) *NameIDTable {
	t := &NameIDTable{ids: make(map[uint32]ID)}
	t.parse(data)
	return t
}

func (t *NameIDTable) parse(data []byte) {
	for i := 0; i+nameIDEntrySize <= len(data); i += nameIDEntrySize {
		if data[i+4]&1 != 0 {
			continue
		}
		name := binpkg.Uint32(data, i)
		if _, dup := t.ids[name]; dup {
			continue
		}
		t.ids[name] = ID(0x8000 + uint32(binpkg.Uint16(data, i+6)))
	}
}

// Lookup returns the id assigned to a numeric property name.
func (t *NameIDTable) Lookup(name uint32) (ID, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.ids[name]
	return id, ok
}
