package mapi

import (
	"math"
	"testing"
	"time"

	"github.com/robert-malhotra/go-msg/internal/codepage"
)

func TestFileTime(t *testing.T) {
	tests := []struct {
		ticks int64
		want  time.Time
	}{
		{fileTimeEpochDelta, time.Unix(0, 0).UTC()},
		{0, time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{132000000000000000, time.Date(2019, time.April, 17, 18, 40, 0, 0, time.UTC)},
		{fileTimeEpochDelta + 15, time.Unix(0, 1500).UTC()},
	}
	for _, tt := range tests {
		if got := FileTime(tt.ticks); !got.Equal(tt.want) {
			t.Errorf("FileTime(%d) = %v, want %v", tt.ticks, got, tt.want)
		}
	}
}

func TestAppTime(t *testing.T) {
	tests := []struct {
		days float64
		want time.Time
	}{
		{0, time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{1.5, time.Date(1899, time.December, 31, 12, 0, 0, 0, time.UTC)},
		{-1.25, time.Date(1899, time.December, 29, 6, 0, 0, 0, time.UTC)},
		{44197, time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := AppTime(tt.days); !got.Equal(tt.want) {
			t.Errorf("AppTime(%v) = %v, want %v", tt.days, got, tt.want)
		}
	}
	if !AppTime(math.NaN()).IsZero() {
		t.Error("NaN should map to zero time")
	}
}

func TestParseTableIgnoresPartialRecord(t *testing.T) {
	data := make([]byte, HeaderChild+16+10)
	data[HeaderChild] = byte(TypeInt32)
	data[HeaderChild+2] = 0x15
	data[HeaderChild+3] = 0x0C
	data[HeaderChild+8] = 4

	table := parseTable(data, HeaderChild)
	if len(table) != 1 {
		t.Fatalf("len(table) = %d, want 1", len(table))
	}
	p, ok, err := table[0x0C15].decode()
	if err != nil || !ok {
		t.Fatalf("decode: %v %v", ok, err)
	}
	if p.Int != 4 {
		t.Errorf("value = %d, want 4", p.Int)
	}
}

func TestDecodeStrings(t *testing.T) {
	if got := DecodeUnicode([]byte{'h', 0, 'i', 0, 0, 0}); got != "hi\x00" {
		t.Errorf("DecodeUnicode = %q", got)
	}
	if got := DecodeString8([]byte{0xE9}, codepage.Encoding(1252)); got != "é" {
		t.Errorf("DecodeString8 = %q", got)
	}
	if got := DecodeString8([]byte("plain"), nil); got != "plain" {
		t.Errorf("DecodeString8 nil encoding = %q", got)
	}
	if got := DecodeString8([]byte("日本"), codepage.Encoding(65001)); got != "日本" {
		t.Errorf("DecodeString8 utf-8 = %q", got)
	}
	if got := TrimNul("abc\x00\x00"); got != "abc" {
		t.Errorf("TrimNul = %q", got)
	}
}

func TestParseTableShorterThanHeader(t *testing.T) {
	if table := parseTable(make([]byte, HeaderTop-4), HeaderTop); len(table) != 0 {
		t.Errorf("len(table) = %d, want 0", len(table))
	}
}

func TestParseTableFirstRecordWins(t *testing.T) {
	data := make([]byte, HeaderChild+2*recordSize)
	for i, v := range []byte{1, 2} {
		off := HeaderChild + i*recordSize
		data[off] = byte(TypeInt32)
		data[off+2] = 0x17
		data[off+4] = 0xFF // flags are skipped
		data[off+8] = v
	}
	p, ok, err := parseTable(data, HeaderChild)[0x0017].decode()
	if err != nil || !ok || p.Int != 1 {
		t.Errorf("decode = %v, %v, %v; want 1", p.Int, ok, err)
	}
}
