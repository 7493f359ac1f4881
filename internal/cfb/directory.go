package cfb

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

// Directory entry object types.
const (
	TypeUnknown uint8 = 0
	TypeStorage uint8 = 1
	TypeStream  uint8 = 2
	TypeRoot    uint8 = 5
)

const dirEntrySize = 128

// filetimeEpochDelta is the number of 100ns ticks between 1601-01-01 and 1970-01-01.
const filetimeEpochDelta = 116444736000000000

/*
Directory Entry Layout:
Offset  Size  Description
0       64    Entry name, UTF-16LE, NUL terminated
64      2     Name length in bytes including the terminator
66      1     Object type
67      1     Color flag (red-black tree)
68      4     Left sibling id
72      4     Right sibling id
76      4     Child id
80      16    CLSID
96      4     State bits
100     8     Creation time (FILETIME)
108     8     Modified time (FILETIME)
116     4     Starting sector
120     8     Stream size (low 32 bits only for version 3)
*/

// Entry is a parsed directory entry.
type Entry struct {
	Name     string
	Type     uint8
	Left     uint32
	Right    uint32
	Child    uint32
	Start    uint32
	Size     uint64
	Created  time.Time
	Modified time.Time
}

// IsStorage reports whether the entry is a storage or the root storage.
func (e *Entry) IsStorage() bool {
	return e.Type == TypeStorage || e.Type == TypeRoot
}

// IsStream reports whether the entry is a stream.
func (e *Entry) IsStream() bool {
	return e.Type == TypeStream
}

func parseEntry(buf []byte, version uint16) (Entry, error) {
	r := binpkg.NewReader(bytes.NewReader(buf))
	raw, err := r.ReadBytes(64)
	if err != nil {
		return Entry{}, err
	}
	nameLen, err := r.ReadUint16()
	if err != nil {
		return Entry{}, err
	}
	if nameLen > 64 {
		nameLen = 64
	}
	units := make([]uint16, 0, nameLen/2)
	for i := 0; i+1 < int(nameLen); i += 2 {
		u := binpkg.Uint16(raw, i)
		if u == 0 {
			break
		}
		units = append(units, u)
	}

	e := Entry{Name: string(utf16.Decode(units))}
	if e.Type, err = r.ReadUint8(); err != nil {
		return Entry{}, err
	}
	r.Skip(1) // color
	for _, v := range []*uint32{&e.Left, &e.Right, &e.Child} {
		if *v, err = r.ReadUint32(); err != nil {
			return Entry{}, err
		}
	}
	r.Skip(20) // CLSID, state bits
	var times [2]uint64
	for i := range times {
		if times[i], err = r.ReadUint64(); err != nil {
			return Entry{}, err
		}
	}
	e.Created, e.Modified = filetime(times[0]), filetime(times[1])
	if e.Start, err = r.ReadUint32(); err != nil {
		return Entry{}, err
	}
	if e.Size, err = r.ReadUint64(); err != nil {
		return Entry{}, err
	}
	if version == 3 {
		e.Size &= 0xFFFFFFFF
	}
	return e, nil
}

func filetime(ticks uint64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	d := int64(ticks) - filetimeEpochDelta
	sec, rem := d/10000000, d%10000000
	if rem < 0 {
		rem += 10000000
		sec--
	}
	return time.Unix(sec, rem*100).UTC()
}

// loadDirectory reads every directory entry.
func (f *File) loadDirectory() error {
	ids, err := followChain(f.fat, f.header.FirstDirSector)
	if err != nil {
		return fmt.Errorf("directory chain: %w", err)
	}
	entries := make([]Entry, 0, len(ids)*f.header.SectorSize()/dirEntrySize)
	for _, id := range ids {
		buf, err := f.readSector(id)
		if err != nil {
			return fmt.Errorf("reading directory sector %d: %w", id, err)
		}
		for off := 0; off+dirEntrySize <= len(buf); off += dirEntrySize {
			e, err := parseEntry(buf[off:off+dirEntrySize], f.header.MajorVersion)
			if err != nil {
				return fmt.Errorf("parsing directory entry: %w", err)
			}
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 || entries[0].Type != TypeRoot {
		return fmt.Errorf("%w: missing root entry", ErrCorrupt)
	}
	f.entries = entries
	return nil
}

// children walks the sibling tree under a storage in order.
func (f *File) children(id uint32) ([]uint32, error) {
	var (
		out   []uint32
		stack []uint32
		seen  = make(map[uint32]bool)
	)
	cur := f.entries[id].Child
	for cur != NoStream || len(stack) > 0 {
		for cur != NoStream {
			if cur >= uint32(len(f.entries)) {
				return nil, fmt.Errorf("%w: sibling id %d out of range", ErrCorrupt, cur)
			}
			if seen[cur] {
				return nil, fmt.Errorf("%w: directory tree cycle at %d", ErrCorrupt, cur)
			}
			seen[cur] = true
			stack = append(stack, cur)
			cur = f.entries[cur].Left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.entries[cur].Type != TypeUnknown {
			out = append(out, cur)
		}
		cur = f.entries[cur].Right
	}
	return out, nil
}

// nameKey folds a name for lookup. Compound file names compare
// case-insensitively.
func nameKey(name string) string {
	return strings.ToUpper(name)
}
