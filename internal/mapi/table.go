package mapi

import (
	"bytes"
	"math"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

const recordSize = 16

/*
Property Record Layout:
Offset  Size  Description
0       2     Property type
2       2     Property id
4       4     Flags (mandatory/readable/writable)
8       8     Value, or size and reserved for variable-length types
*/

// record is one fixed-size entry of the property table.
type record struct {
	typ   Type
	id    ID
	value [8]byte
}

// parseTable reads the records that follow a header of headerSize bytes.
// A trailing partial record is ignored. The first record for an id wins.
func parseTable(data []byte, headerSize int) map[ID]record {
	table := make(map[ID]record)
	r := binpkg.NewReader(bytes.NewReader(data)).At(int64(headerSize))
	for r.Pos()+recordSize <= int64(len(data)) {
		typ, err := r.ReadUint16()
		if err != nil {
			break
		}
		id, err := r.ReadUint16()
		if err != nil {
			break
		}
		r.Skip(4) // flags
		value, err := r.ReadBytes(8)
		if err != nil {
			break
		}
		rec := record{typ: Type(typ), id: ID(id)}
		copy(rec.value[:], value)
		if _, dup := table[rec.id]; !dup {
			table[rec.id] = rec
		}
	}
	return table
}

// decode converts an inline record value. Only fixed-width scalars may
// appear here; PT_NULL and PT_ERROR report the property as absent.
func (r record) decode() (Property, bool, error) {
	p := Property{ID: r.id, Type: r.typ}
	v := r.value[:]
	switch r.typ {
	case TypeInt16:
		p.Int = int64(int16(binpkg.Uint16(v, 0)))
	case TypeInt32:
		p.Int = int64(int32(binpkg.Uint32(v, 0)))
	case TypeInt64:
		p.Int = int64(binpkg.Uint64(v, 0))
	case TypeFloat32:
		p.Float = float64(math.Float32frombits(binpkg.Uint32(v, 0)))
	case TypeFloat64:
		p.Float = math.Float64frombits(binpkg.Uint64(v, 0))
	case TypeBoolean:
		p.Bool = v[0] != 0
	case TypeSysTime:
		p.Time = FileTime(int64(binpkg.Uint64(v, 0)))
	case TypeAppTime:
		p.Time = AppTime(math.Float64frombits(binpkg.Uint64(v, 0)))
	case TypeNull, TypeError:
		return Property{}, false, nil
	default:
		return Property{}, false, unsupported(r.id, r.typ, "property table")
	}
	return p, true, nil
}
