package mapi

import (
	"encoding/binary"
	"testing"
)

func nameIDEntry(name uint32, kind uint16, index uint16) []byte {
	e := make([]byte, 8)
	binary.LittleEndian.PutUint32(e[0:], name)
	binary.LittleEndian.PutUint16(e[4:], kind)
	binary.LittleEndian.PutUint16(e[6:], index)
	return e
}

func TestNameIDLookup(t *testing.T) {
	var data []byte
	data = append(data, nameIDEntry(0x820D, 1<<1, 0)...)
	data = append(data, nameIDEntry(0x8208, 1<<1, 3)...)
	table := NewNameIDTable(data)

	id, ok := table.Lookup(0x8208)
	if !ok {
		t.Fatal("0x8208 not found")
	}
	if id.String() != "8003" {
		t.Errorf("Lookup(0x8208) = %s, want 8003", id)
	}

	id, ok = table.Lookup(0x820D)
	if !ok || id != 0x8000 {
		t.Errorf("Lookup(0x820D) = %s, %v", id, ok)
	}

	if _, ok := table.Lookup(0x8213); ok {
		t.Error("unexpected match for 0x8213")
	}
}

func TestNameIDSkipsStringNames(t *testing.T) {
	// A string-named entry whose offset field happens to equal 0x8208.
	data := nameIDEntry(0x8208, 1<<1|1, 5)
	data = append(data, 0xFF, 0xFF) // trailing partial entry
	table := NewNameIDTable(data)

	if _, ok := table.Lookup(0x8208); ok {
		t.Error("string-named entry should not resolve")
	}
}

func TestNameIDNilTable(t *testing.T) {
	var table *NameIDTable
	if _, ok := table.Lookup(0x8208); ok {
		t.Error("nil table should not resolve")
	}
}

func TestIDString(t *testing.T) {
	if got := ID(0x1a).String(); got != "001A" {
		t.Errorf("ID.String = %q, want 001A", got)
	}
	if !ID(0x8000).IsNamed() || ID(0x7FFF).IsNamed() {
		t.Error("IsNamed boundary wrong")
	}
	if got := StreamName(TagSubject, TypeUnicode); got != "__substg1.0_0037001F" {
		t.Errorf("StreamName = %q", got)
	}
	if TypeUnicode.String() != "PT_UNICODE" || Type(0x1234).String() != "0x1234" {
		t.Error("Type.String wrong")
	}
}
