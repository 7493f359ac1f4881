package rtf

import (
	"bytes"
	"fmt"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

// Stream magics.
const (
	MagicCompressed   uint32 = 0x75465A4C // "LZFu"
	MagicUncompressed uint32 = 0x414C454D // "MELA"
)

const (
	headerSize = 16
	windowSize = 4096
)

// prefix seeds the decompression window.
var prefix = []byte("{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}" +
	"{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript " +
	"\\fdecor MS Sans SerifSymbolArialTimes New Roman" +
	"Courier{\\colortbl\\red0\\green0\\blue0\r\n\\par " +
	"\\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\tx")

/*
Header Layout:
Offset  Size  Description
0       4     Compressed size, counting every byte after this field
4       4     Uncompressed size
8       4     Magic ("LZFu" or "MELA")
12      4     CRC-32 of bytes 16..end (zero for MELA)
*/

// Header is the fixed header of a compressed RTF stream.
type Header struct {
	CompressedSize uint32
	RawSize        uint32
	Magic          uint32
	CRC            uint32
}

// ReadHeader parses and validates the stream header.
func ReadHeader(src []byte) (Header, error) {
	if len(src) < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(src))
	}
	var h Header
	r := binpkg.NewReader(bytes.NewReader(src))
	for _, v := range []*uint32{&h.CompressedSize, &h.RawSize, &h.Magic, &h.CRC} {
		var err error
		if *v, err = r.ReadUint32(); err != nil {
			return Header{}, fmt.Errorf("%w: %v", ErrHeaderTooShort, err)
		}
	}
	if int64(h.CompressedSize) != int64(len(src))-4 {
		return h, fmt.Errorf("%w: header says %d, stream has %d", ErrSizeMismatch, h.CompressedSize, len(src)-4)
	}
	return h, nil
}

// Decompress returns the RTF held in a PR_RTF_COMPRESSED stream.
func Decompress(src []byte) ([]byte, error) {
	h, err := ReadHeader(src)
	if err != nil {
		return nil, err
	}

	switch h.Magic {
	case MagicUncompressed:
		end := headerSize + int64(h.RawSize)
		if end > int64(len(src)) {
			end = int64(len(src))
		}
		return append([]byte(nil), src[headerSize:end]...), nil

	case MagicCompressed:
		if !binpkg.VerifyCRC32(src[headerSize:], h.CRC) {
			return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrCRCMismatch, h.CRC, binpkg.CRC32(src[headerSize:]))
		}
		return inflate(src[headerSize:], int(h.RawSize))

	default:
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnknownMagic, h.Magic)
	}
}

// inflate runs the LZFu loop over one linear buffer that starts with the
// seed prefix, so back-references never need modular indexing.
func inflate(in []byte, rawSize int) ([]byte, error) {
	// A flag byte and eight references (17 input bytes) expand to at most
	// 136 output bytes.
	if rawSize < 0 || rawSize > 64*len(in)+windowSize {
		return nil, fmt.Errorf("%w: declared size %d for %d input bytes", ErrCorrupt, rawSize, len(in))
	}

	out := make([]byte, len(prefix)+rawSize)
	copy(out, prefix)
	outPos := len(prefix)
	inPos := 0

	var flags byte
	for n := 0; outPos < len(out); n++ {
		if n%8 == 0 {
			if inPos >= len(in) {
				return nil, fmt.Errorf("%w: input ends at output byte %d of %d", ErrCorrupt, outPos-len(prefix), rawSize)
			}
			flags = in[inPos]
			inPos++
		} else {
			flags >>= 1
		}

		if flags&1 == 0 {
			if inPos >= len(in) {
				return nil, fmt.Errorf("%w: input ends at output byte %d of %d", ErrCorrupt, outPos-len(prefix), rawSize)
			}
			out[outPos] = in[inPos]
			outPos++
			inPos++
			continue
		}

		if inPos+2 > len(in) {
			return nil, fmt.Errorf("%w: truncated reference at input byte %d", ErrCorrupt, inPos)
		}
		hi, lo := int(in[inPos]), int(in[inPos+1])
		inPos += 2

		offset := hi<<4 | lo>>4
		length := lo&0x0F + 2

		offset += outPos / windowSize * windowSize
		if offset >= outPos {
			offset -= windowSize
		}
		if offset < 0 {
			return nil, fmt.Errorf("%w: reference before start of window", ErrCorrupt)
		}

		// Source and destination may overlap, so copy one byte at a time.
		for i := 0; i < length && outPos < len(out); i++ {
			out[outPos] = out[offset+i]
			outPos++
		}
	}
	return out[len(prefix):], nil
}
