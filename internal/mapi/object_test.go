package mapi_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-msg/internal/mapi"
	"github.com/robert-malhotra/go-msg/internal/mapi/mapitest"
)

func TestGetTableScalars(t *testing.T) {
	sent := time.Date(2021, time.March, 4, 10, 30, 0, 0, time.UTC)
	s := mapitest.New().Props(mapi.HeaderTop,
		mapitest.Int16(0x1001, -2),
		mapitest.Int32(0x1002, 123456),
		mapitest.Double(0x1003, 2.5),
		mapitest.Bool(0x1004, true),
		mapitest.SysTime(0x1005, sent),
		mapitest.Record{Type: mapi.TypeAppTime, ID: 0x1006, Value: math.Float64bits(2.25)},
		mapitest.Record{Type: mapi.TypeFloat32, ID: 0x1007, Value: uint64(math.Float32bits(1.5))},
		mapitest.Record{Type: mapi.TypeInt64, ID: 0x1008, Value: 1 << 40},
	)
	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	i16, ok, err := obj.Int(0x1001)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-2), i16)

	i32, ok, err := obj.Int(0x1002)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(123456), i32)

	f, ok, err := obj.Float(0x1003)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	b, ok, err := obj.Bool(0x1004)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	ts, ok, err := obj.Time(0x1005)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sent.Equal(ts), "got %v", ts)

	at, ok, err := obj.Time(0x1006)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(1900, time.January, 1, 6, 0, 0, 0, time.UTC), at)

	f32, ok, err := obj.Float(0x1007)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, f32)

	i64, ok, err := obj.Int(0x1008)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1<<40), i64)
}

func TestGetRespectsHeaderSize(t *testing.T) {
	s := mapitest.New().Props(mapi.HeaderChild, mapitest.Int32(0x0C15, 2))

	obj, err := mapi.Load(s, mapi.HeaderChild)
	require.NoError(t, err)
	v, ok, err := obj.Int(0x0C15)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)

	// Read with the top-level header size, the record is swallowed by the header.
	obj, err = mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)
	_, ok, err = obj.Int(0x0C15)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetNotFound(t *testing.T) {
	obj, err := mapi.Load(mapitest.New().Unicode(mapi.TagSubject, "x"), mapi.HeaderTop)
	require.NoError(t, err)

	p, ok, err := obj.Get(0x1234)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, mapi.Property{}, p)
}

func TestGetDedicatedEntries(t *testing.T) {
	s := mapitest.New().
		Unicode(mapi.TagSubject, "Grüße").
		String8(mapi.TagSenderName, []byte{'J', 0xF6, 'r', 'g'}).
		Binary(mapi.TagRTFCompressed, []byte{1, 2, 3})
	child := s.Object(mapi.TagAttachData)
	child.Stream("CONTENTS", []byte("ole"))

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	subject, ok, err := obj.String(mapi.TagSubject)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Grüße\x00", subject)

	sender, ok, err := obj.String(mapi.TagSenderName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Jörg", sender)

	data, ok, err := obj.Bytes(mapi.TagRTFCompressed)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, data)

	sub, ok, err := obj.Sub(mapi.TagAttachData)
	require.NoError(t, err)
	require.True(t, ok)
	contents, err := sub.ReadStream("CONTENTS")
	require.NoError(t, err)
	assert.Equal(t, []byte("ole"), contents)
}

func TestDedicatedEntryWinsOverTable(t *testing.T) {
	s := mapitest.New().
		Unicode(0x1000, "from stream").
		Props(mapi.HeaderTop, mapitest.Int32(0x1000, 7))

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	p, ok, err := obj.Get(0x1000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mapi.TypeUnicode, p.Type)
	assert.Equal(t, "from stream\x00", p.String)
}

func TestUnspecifiedEntryFallsBackToTable(t *testing.T) {
	s := mapitest.New().
		Stream(mapi.StreamName(0x0E07, mapi.TypeUnspecified), nil).
		Props(mapi.HeaderTop, mapitest.Int32(0x0E07, 9))

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	v, ok, err := obj.Int(0x0E07)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), v)
}

func TestMultiValueStrings(t *testing.T) {
	s := mapitest.New()
	base := mapi.StreamName(0x8005, mapi.TypeMultiUnicode)
	// Added out of order; values come back in suffix order.
	s.Stream(base+"-00000002", mapitest.UTF16("three\x00"))
	s.Stream(base+"-00000000", mapitest.UTF16("one\x00"))
	s.Stream(base+"-00000001", mapitest.UTF16("two\x00"))
	s.Stream(base, []byte{})

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	vs, ok, err := obj.Strings(0x8005)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"one", "two", "three"}, vs)
}

func TestMultiValueString8StripsOneNul(t *testing.T) {
	s := mapitest.New()
	base := mapi.StreamName(0x8006, mapi.TypeMultiString8)
	s.Stream(base+"-00000000", []byte("a\x00\x00"))
	s.Stream(base+"-00000001", []byte("b"))

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	vs, ok, err := obj.Strings(0x8006)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a\x00", "b"}, vs)
}

func TestMultiUnicodeHelper(t *testing.T) {
	s := mapitest.New().MultiUnicode(0x8010, "x", "y")

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	vs, ok, err := obj.Strings(0x8010)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, vs)
}

func TestUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		s    *mapitest.Storage
		id   mapi.ID
	}{
		{
			name: "dedicated entry",
			s:    mapitest.New().Stream(mapi.StreamName(0x0FFF, mapi.TypeCLSID), make([]byte, 16)),
			id:   0x0FFF,
		},
		{
			name: "table record",
			s: mapitest.New().Props(mapi.HeaderTop,
				mapitest.Record{Type: mapi.TypeBinary, ID: 0x0FF9, Value: 20}),
			id: 0x0FF9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := mapi.Load(tt.s, mapi.HeaderTop)
			require.NoError(t, err)

			_, ok, err := obj.Get(tt.id)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, mapi.ErrUnsupportedPropertyType), "got %v", err)
		})
	}
}

func TestErrorAndNullRecordsAreAbsent(t *testing.T) {
	s := mapitest.New().Props(mapi.HeaderTop,
		mapitest.Record{Type: mapi.TypeError, ID: 0x0E08, Value: 0x8004010F},
		mapitest.Record{Type: mapi.TypeNull, ID: 0x0E09},
	)
	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	for _, id := range []mapi.ID{0x0E08, 0x0E09} {
		_, ok, err := obj.Get(id)
		require.NoError(t, err)
		assert.False(t, ok, "id %s", id)
	}
}

func TestTypeMismatchIsAbsent(t *testing.T) {
	obj, err := mapi.Load(mapitest.New().Unicode(mapi.TagSubject, "s"), mapi.HeaderTop)
	require.NoError(t, err)

	_, ok, err := obj.Int(mapi.TagSubject)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodepageFromObject(t *testing.T) {
	s := mapitest.New().
		String8(mapi.TagSubject, []byte{0xC0, 0xC1}).
		Props(mapi.HeaderTop, mapitest.Int32(mapi.TagInternetCodepage, 1251))

	obj, err := mapi.Load(s, mapi.HeaderTop)
	require.NoError(t, err)

	cp, own := obj.Codepage()
	assert.Equal(t, 1251, cp)
	assert.True(t, own)

	subject, _, err := obj.String(mapi.TagSubject)
	require.NoError(t, err)
	assert.Equal(t, "АБ", subject)
}

func TestCodepageDefault(t *testing.T) {
	obj, err := mapi.Load(mapitest.New(), mapi.HeaderTop)
	require.NoError(t, err)

	cp, own := obj.Codepage()
	assert.Equal(t, mapi.DefaultCodepage, cp)
	assert.False(t, own)

	obj.UseCodepage(65001)
	cp, own = obj.Codepage()
	assert.Equal(t, 65001, cp)
	assert.True(t, own)
}
