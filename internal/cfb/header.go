package cfb

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

// Compound file signature: D0 CF 11 E0 A1 B1 1A E1
var Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Special sector numbers.
const (
	MaxRegSect uint32 = 0xFFFFFFFA
	DIFATSect  uint32 = 0xFFFFFFFC
	FATSect    uint32 = 0xFFFFFFFD
	EndOfChain uint32 = 0xFFFFFFFE
	FreeSect   uint32 = 0xFFFFFFFF

	// NoStream marks an absent sibling or child in a directory entry.
	NoStream uint32 = 0xFFFFFFFF
)

const (
	headerSize         = 512
	headerDIFATEntries = 109
	byteOrderMark      = 0xFFFE
	miniStreamCutoff   = 4096
)

// Errors
var (
	ErrNotCFB             = errors.New("not a compound file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported compound file version")
	ErrInvalidHeader      = errors.New("invalid compound file header")
	ErrCorrupt            = errors.New("corrupt compound file")
	ErrNotFound           = errors.New("entry not found")
	ErrNotStorage         = errors.New("entry is not a storage")
	ErrNotStream          = errors.New("entry is not a stream")
	ErrClosed             = errors.New("compound file is closed")
)

/*
Header Layout:
Offset  Size  Description
0       8     Signature
8       16    Header CLSID (zero)
24      2     Minor version (0x003E)
26      2     Major version (3 or 4)
28      2     Byte order (0xFFFE)
30      2     Sector shift (9 for v3, 12 for v4)
32      2     Mini sector shift (6)
34      6     Reserved
40      4     Number of directory sectors (0 for v3)
44      4     Number of FAT sectors
48      4     First directory sector
52      4     Transaction signature
56      4     Mini stream cutoff (4096)
60      4     First MiniFAT sector
64      4     Number of MiniFAT sectors
68      4     First DIFAT sector
72      4     Number of DIFAT sectors
76      436   DIFAT[109]
*/

// Header contains the fixed compound file header fields.
type Header struct {
	MinorVersion    uint16
	MajorVersion    uint16
	SectorShift     uint16
	MiniSectorShift uint16

	NumDirSectors uint32
	NumFATSectors uint32

	FirstDirSector   uint32
	MiniStreamCutoff uint32

	FirstMiniFATSector uint32
	NumMiniFATSectors  uint32

	FirstDIFATSector uint32
	NumDIFATSectors  uint32

	// DIFAT holds the first 109 FAT sector locations.
	DIFAT [headerDIFATEntries]uint32
}

// ReadHeader parses and validates the header at the start of r.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	buf, err := binpkg.NewReader(r).Peek(headerSize)
	if err != nil {
		if errors.Is(err, binpkg.ErrShortRead) {
			return nil, ErrNotCFB
		}
		return nil, err
	}
	if !bytes.Equal(buf[:8], Signature) {
		return nil, ErrNotCFB
	}

	h := &Header{}
	var bom uint16
	var transaction uint32
	br := binpkg.NewReader(bytes.NewReader(buf)).At(24)
	for _, v := range []*uint16{&h.MinorVersion, &h.MajorVersion, &bom, &h.SectorShift, &h.MiniSectorShift} {
		if *v, err = br.ReadUint16(); err != nil {
			return nil, err
		}
	}
	br.Skip(6)
	for _, v := range []*uint32{
		&h.NumDirSectors, &h.NumFATSectors, &h.FirstDirSector, &transaction,
		&h.MiniStreamCutoff, &h.FirstMiniFATSector, &h.NumMiniFATSectors,
		&h.FirstDIFATSector, &h.NumDIFATSectors,
	} {
		if *v, err = br.ReadUint32(); err != nil {
			return nil, err
		}
	}
	for i := range h.DIFAT {
		if h.DIFAT[i], err = br.ReadUint32(); err != nil {
			return nil, err
		}
	}

	if bom != byteOrderMark {
		return nil, fmt.Errorf("%w: byte order mark 0x%04x", ErrInvalidHeader, bom)
	}

	switch h.MajorVersion {
	case 3:
		if h.SectorShift != 9 {
			return nil, fmt.Errorf("%w: version 3 with sector shift %d", ErrInvalidHeader, h.SectorShift)
		}
	case 4:
		if h.SectorShift != 12 {
			return nil, fmt.Errorf("%w: version 4 with sector shift %d", ErrInvalidHeader, h.SectorShift)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.MajorVersion)
	}

	if h.MiniSectorShift != 6 {
		return nil, fmt.Errorf("%w: mini sector shift %d", ErrInvalidHeader, h.MiniSectorShift)
	}
	if h.MiniStreamCutoff != miniStreamCutoff {
		return nil, fmt.Errorf("%w: mini stream cutoff %d", ErrInvalidHeader, h.MiniStreamCutoff)
	}

	return h, nil
}

// SectorSize returns the size of a regular sector in bytes.
func (h *Header) SectorSize() int {
	return 1 << h.SectorShift
}

// MiniSectorSize returns the size of a mini sector in bytes.
func (h *Header) MiniSectorSize() int {
	return 1 << h.MiniSectorShift
}

// sectorOffset returns the file offset of a regular sector.
// Sector 0 follows the header slot, which is one sector wide.
func (h *Header) sectorOffset(id uint32) int64 {
	return (int64(id) + 1) << h.SectorShift
}
