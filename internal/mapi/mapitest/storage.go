// Package mapitest provides an in-memory MAPI storage for tests.
package mapitest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// ErrNotFound is returned for missing children.
var ErrNotFound = errors.New("mapitest: entry not found")

// Storage is an in-memory storage. Children are listed in insertion order.
type Storage struct {
	order   []string
	streams map[string][]byte
	subs    map[string]*Storage
}

// New returns an empty storage.
func New() *Storage {
	return &Storage{
		streams: make(map[string][]byte),
		subs:    make(map[string]*Storage),
	}
}

// Stream adds a stream and returns s.
func (s *Storage) Stream(name string, data []byte) *Storage {
	if _, ok := s.streams[name]; !ok {
		s.order = append(s.order, name)
	}
	s.streams[name] = data
	return s
}

// Sub adds a child storage and returns it.
func (s *Storage) Sub(name string) *Storage {
	if sub, ok := s.subs[name]; ok {
		return sub
	}
	sub := New()
	s.order = append(s.order, name)
	s.subs[name] = sub
	return sub
}

// Children implements mapi.Storage.
func (s *Storage) Children() []string {
	return append([]string(nil), s.order...)
}

// IsStorage implements mapi.Storage.
func (s *Storage) IsStorage(name string) bool {
	_, ok := s.subs[name]
	return ok
}

// ReadStream implements mapi.Storage.
func (s *Storage) ReadStream(name string) ([]byte, error) {
	data, ok := s.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// OpenStorage implements mapi.Storage.
func (s *Storage) OpenStorage(name string) (mapi.Storage, error) {
	sub, ok := s.subs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return sub, nil
}

// Unicode adds a PT_UNICODE property stream with a terminating NUL.
func (s *Storage) Unicode(id mapi.ID, v string) *Storage {
	return s.Stream(mapi.StreamName(id, mapi.TypeUnicode), UTF16(v+"\x00"))
}

// String8 adds a PT_STRING8 property stream.
func (s *Storage) String8(id mapi.ID, v []byte) *Storage {
	return s.Stream(mapi.StreamName(id, mapi.TypeString8), v)
}

// Binary adds a PT_BINARY property stream.
func (s *Storage) Binary(id mapi.ID, v []byte) *Storage {
	return s.Stream(mapi.StreamName(id, mapi.TypeBinary), v)
}

// Object adds a PT_OBJECT property storage and returns it.
func (s *Storage) Object(id mapi.ID) *Storage {
	return s.Sub(mapi.StreamName(id, mapi.TypeObject))
}

// MultiUnicode adds a PT_MV_UNICODE property: a length stream plus one
// suffixed stream per value.
func (s *Storage) MultiUnicode(id mapi.ID, vs ...string) *Storage {
	base := mapi.StreamName(id, mapi.TypeMultiUnicode)
	lengths := make([]byte, 0, 4*len(vs))
	for i, v := range vs {
		data := UTF16(v + "\x00")
		lengths = binary.LittleEndian.AppendUint32(lengths, uint32(len(data)))
		s.Stream(fmt.Sprintf("%s-%08X", base, i), data)
	}
	return s.Stream(base, lengths)
}

// Props adds a property table stream holding recs after a header of
// headerSize zero bytes.
func (s *Storage) Props(headerSize int, recs ...Record) *Storage {
	buf := make([]byte, headerSize, headerSize+16*len(recs))
	for _, r := range recs {
		var rec [16]byte
		binary.LittleEndian.PutUint16(rec[0:], uint16(r.Type))
		binary.LittleEndian.PutUint16(rec[2:], uint16(r.ID))
		binary.LittleEndian.PutUint32(rec[4:], 0x6)
		binary.LittleEndian.PutUint64(rec[8:], r.Value)
		buf = append(buf, rec[:]...)
	}
	return s.Stream(mapi.PropertiesStream, buf)
}

// NameIDs adds a "__nameid_version1.0" storage mapping each numeric name
// to 0x8000 + its property index.
func (s *Storage) NameIDs(names map[uint32]uint16) *Storage {
	var data []byte
	for name, index := range names {
		var e [8]byte
		binary.LittleEndian.PutUint32(e[0:], name)
		binary.LittleEndian.PutUint16(e[4:], 1<<1)
		binary.LittleEndian.PutUint16(e[6:], index)
		data = append(data, e[:]...)
	}
	s.Sub(mapi.NameIDStorage).Binary(0x0003, data)
	return s
}

// Record is a property table entry.
type Record struct {
	Type  mapi.Type
	ID    mapi.ID
	Value uint64
}

// Int32 returns a PT_LONG record.
func Int32(id mapi.ID, v int32) Record {
	return Record{Type: mapi.TypeInt32, ID: id, Value: uint64(uint32(v))}
}

// Int16 returns a PT_I2 record.
func Int16(id mapi.ID, v int16) Record {
	return Record{Type: mapi.TypeInt16, ID: id, Value: uint64(uint16(v))}
}

// Bool returns a PT_BOOLEAN record.
func Bool(id mapi.ID, v bool) Record {
	r := Record{Type: mapi.TypeBoolean, ID: id}
	if v {
		r.Value = 1
	}
	return r
}

// Double returns a PT_DOUBLE record.
func Double(id mapi.ID, v float64) Record {
	return Record{Type: mapi.TypeFloat64, ID: id, Value: math.Float64bits(v)}
}

// SysTime returns a PT_SYSTIME record.
func SysTime(id mapi.ID, t time.Time) Record {
	return Record{Type: mapi.TypeSysTime, ID: id, Value: uint64(FileTime(t))}
}

// FileTime converts t to FILETIME ticks.
func FileTime(t time.Time) int64 {
	return t.Unix()*10000000 + int64(t.Nanosecond()/100) + 116444736000000000
}

// UTF16 encodes s as UTF-16LE.
func UTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}
