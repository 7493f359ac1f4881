package mapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/robert-malhotra/go-msg/internal/codepage"
)

// Property is a decoded property value. Which field is set depends on Type.
type Property struct {
	ID   ID
	Type Type

	Int     int64     // PT_I2, PT_LONG, PT_I8
	Float   float64   // PT_R4, PT_DOUBLE
	Bool    bool      // PT_BOOLEAN
	Time    time.Time // PT_SYSTIME, PT_APPTIME
	String  string    // PT_STRING8, PT_UNICODE
	Strings []string  // PT_MV_STRING8, PT_MV_UNICODE
	Bytes   []byte    // PT_BINARY
	Object  Storage   // PT_OBJECT
}

// entry is a dedicated property stream or storage.
type entry struct {
	name string
	typ  Type
}

// valueEntry is one value of a multi-valued property.
type valueEntry struct {
	name  string
	index uint64
}

// Object indexes the properties of one storage.
type Object struct {
	storage    Storage
	headerSize int

	entries map[ID]entry
	values  map[ID][]valueEntry
	table   map[ID]record

	codepage    int
	hasCodepage bool
	enc         encoding.Encoding
}

// Load indexes the dedicated entries and the property table of s. The table
// records start at headerSize.
//
// PT_STRING8 values are decoded with the object's own code page
// (PR_INTERNET_CPID, then PR_MESSAGE_CODEPAGE) when it has one.
func Load(s Storage, headerSize int) (*Object, error) {
	o := &Object{
		storage:    s,
		headerSize: headerSize,
		entries:    make(map[ID]entry),
		values:     make(map[ID][]valueEntry),
	}

	for _, name := range s.Children() {
		if strings.EqualFold(name, PropertiesStream) {
			if !s.IsStorage(name) {
				data, err := s.ReadStream(name)
				if err != nil {
					return nil, fmt.Errorf("reading property table: %w", err)
				}
				o.table = parseTable(data, headerSize)
			}
			continue
		}
		o.index(name)
	}
	if o.table == nil {
		o.table = make(map[ID]record)
	}
	for id := range o.values {
		vs := o.values[id]
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].index < vs[j].index })
	}

	o.UseCodepage(DefaultCodepage)
	o.hasCodepage = false
	for _, tag := range []ID{TagInternetCodepage, TagMessageCodepage} {
		cp, ok, err := o.Int(tag)
		if err != nil {
			return nil, err
		}
		if ok && cp > 0 {
			o.UseCodepage(int(cp))
			break
		}
	}
	return o, nil
}

// index records a "__substg1.0_" entry name.
func (o *Object) index(name string) {
	if len(name) < len(SubstgPrefix)+8 || !strings.EqualFold(name[:len(SubstgPrefix)], SubstgPrefix) {
		return
	}
	tag := name[len(SubstgPrefix) : len(SubstgPrefix)+8]
	v, err := strconv.ParseUint(tag, 16, 32)
	if err != nil {
		return
	}
	id, typ := ID(v>>16), Type(v&0xFFFF)

	rest := name[len(SubstgPrefix)+8:]
	if rest != "" {
		if rest[0] != '-' {
			return
		}
		n, err := strconv.ParseUint(rest[1:], 16, 32)
		if err != nil {
			return
		}
		o.values[id] = append(o.values[id], valueEntry{name: name, index: n})
	}
	if _, ok := o.entries[id]; !ok {
		o.entries[id] = entry{name: name, typ: typ}
	}
}

// UseCodepage sets the code page for PT_STRING8 values.
func (o *Object) UseCodepage(cp int) {
	o.codepage = cp
	o.hasCodepage = true
	o.enc = codepage.Encoding(cp)
}

// Codepage returns the code page in use and whether it came from the
// object's own properties or an explicit UseCodepage call.
func (o *Object) Codepage() (int, bool) {
	return o.codepage, o.hasCodepage
}

// Storage returns the storage the object was loaded from.
func (o *Object) Storage() Storage {
	return o.storage
}

// HeaderSize returns the property table header size.
func (o *Object) HeaderSize() int {
	return o.headerSize
}

// Get decodes property id. A dedicated entry takes precedence over the
// property table. ok is false when neither holds the property.
func (o *Object) Get(id ID) (p Property, ok bool, err error) {
	if e, found := o.entries[id]; found {
		p, ok, err = o.decodeEntry(id, e)
		if err != nil || ok {
			return p, ok, err
		}
	}
	if r, found := o.table[id]; found {
		return r.decode()
	}
	return Property{}, false, nil
}

func (o *Object) decodeEntry(id ID, e entry) (Property, bool, error) {
	p := Property{ID: id, Type: e.typ}
	switch e.typ {
	case TypeUnspecified:
		return Property{}, false, nil
	case TypeString8, TypeUnicode, TypeBinary:
		data, err := o.storage.ReadStream(e.name)
		if err != nil {
			return Property{}, false, fmt.Errorf("reading property %s: %w", id, err)
		}
		switch e.typ {
		case TypeString8:
			p.String = DecodeString8(data, o.enc)
		case TypeUnicode:
			p.String = DecodeUnicode(data)
		default:
			p.Bytes = data
		}
	case TypeObject:
		s, err := o.storage.OpenStorage(e.name)
		if err != nil {
			return Property{}, false, fmt.Errorf("opening property %s: %w", id, err)
		}
		p.Object = s
	case TypeMultiString8, TypeMultiUnicode:
		vs := o.values[id]
		p.Strings = make([]string, 0, len(vs))
		for _, v := range vs {
			data, err := o.storage.ReadStream(v.name)
			if err != nil {
				return Property{}, false, fmt.Errorf("reading property %s value %d: %w", id, v.index, err)
			}
			var s string
			if e.typ == TypeMultiString8 {
				s = DecodeString8(data, o.enc)
			} else {
				s = DecodeUnicode(data)
			}
			p.Strings = append(p.Strings, strings.TrimSuffix(s, "\x00"))
		}
	default:
		return Property{}, false, unsupported(id, e.typ, e.name)
	}
	return p, true, nil
}

func unsupported(id ID, t Type, where string) error {
	return fmt.Errorf("%w: %s (property %s in %s)", ErrUnsupportedPropertyType, t, id, where)
}

// String returns a string property. Single strings are returned verbatim,
// including any terminating NULs.
func (o *Object) String(id ID) (string, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok {
		return "", false, err
	}
	switch p.Type {
	case TypeString8, TypeUnicode:
		return p.String, true, nil
	}
	return "", false, nil
}

// Strings returns a multi-valued string property.
func (o *Object) Strings(id ID) ([]string, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok || !p.Type.IsMultiValue() {
		return nil, false, err
	}
	return p.Strings, true, nil
}

// Int returns an integer property of any width.
func (o *Object) Int(id ID) (int64, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok {
		return 0, false, err
	}
	switch p.Type {
	case TypeInt16, TypeInt32, TypeInt64:
		return p.Int, true, nil
	}
	return 0, false, nil
}

// Float returns a floating point property.
func (o *Object) Float(id ID) (float64, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok {
		return 0, false, err
	}
	switch p.Type {
	case TypeFloat32, TypeFloat64:
		return p.Float, true, nil
	}
	return 0, false, nil
}

// Bool returns a boolean property.
func (o *Object) Bool(id ID) (bool, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok || p.Type != TypeBoolean {
		return false, false, err
	}
	return p.Bool, true, nil
}

// Time returns a PT_SYSTIME or PT_APPTIME property.
func (o *Object) Time(id ID) (time.Time, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	switch p.Type {
	case TypeSysTime, TypeAppTime:
		return p.Time, true, nil
	}
	return time.Time{}, false, nil
}

// Bytes returns a binary property.
func (o *Object) Bytes(id ID) ([]byte, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok || p.Type != TypeBinary {
		return nil, false, err
	}
	return p.Bytes, true, nil
}

// Sub returns the storage behind a PT_OBJECT property.
func (o *Object) Sub(id ID) (Storage, bool, error) {
	p, ok, err := o.Get(id)
	if err != nil || !ok || p.Type != TypeObject {
		return nil, false, err
	}
	return p.Object, true, nil
}
