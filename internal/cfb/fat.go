package cfb

import (
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-msg/internal/binary"
)

// readSector reads one regular sector. A final sector cut short by the end
// of the file is returned as far as it exists.
func (f *File) readSector(id uint32) ([]byte, error) {
	if id > MaxRegSect {
		return nil, fmt.Errorf("%w: reading special sector 0x%08x", ErrCorrupt, id)
	}
	buf := make([]byte, f.header.SectorSize())
	n, err := f.r.ReadAt(buf, f.header.sectorOffset(id))
	if n == len(buf) {
		return buf, nil
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: sector %d beyond end of file", ErrCorrupt, id)
	}
	return buf[:n], nil
}

// loadFAT collects the FAT sector list from the header DIFAT and any DIFAT
// sectors, then reads the FAT itself.
func (f *File) loadFAT() error {
	h := f.header
	ids := make([]uint32, 0, h.NumFATSectors)
	for i := 0; i < headerDIFATEntries && uint32(len(ids)) < h.NumFATSectors; i++ {
		ids = append(ids, h.DIFAT[i])
	}

	perSector := h.SectorSize()/4 - 1
	next := h.FirstDIFATSector
	for n := uint32(0); n < h.NumDIFATSectors && uint32(len(ids)) < h.NumFATSectors; n++ {
		buf, err := f.readSector(next)
		if err != nil {
			return fmt.Errorf("reading DIFAT sector %d: %w", next, err)
		}
		if len(buf) < h.SectorSize() {
			return fmt.Errorf("%w: truncated DIFAT sector %d", ErrCorrupt, next)
		}
		for i := 0; i < perSector && uint32(len(ids)) < h.NumFATSectors; i++ {
			ids = append(ids, binpkg.Uint32(buf, 4*i))
		}
		next = binpkg.Uint32(buf, 4*perSector)
	}

	if uint32(len(ids)) < h.NumFATSectors {
		return fmt.Errorf("%w: DIFAT lists %d of %d FAT sectors", ErrCorrupt, len(ids), h.NumFATSectors)
	}

	fat, err := f.readTable(ids)
	if err != nil {
		return fmt.Errorf("reading FAT: %w", err)
	}
	f.fat = fat
	return nil
}

// loadMiniFAT reads the MiniFAT chain, if the file has one.
func (f *File) loadMiniFAT() error {
	h := f.header
	if h.NumMiniFATSectors == 0 || h.FirstMiniFATSector == EndOfChain {
		return nil
	}
	ids, err := followChain(f.fat, h.FirstMiniFATSector)
	if err != nil {
		return fmt.Errorf("MiniFAT chain: %w", err)
	}
	table, err := f.readTable(ids)
	if err != nil {
		return fmt.Errorf("reading MiniFAT: %w", err)
	}
	f.miniFAT = table
	return nil
}

// readTable reads sectors of little-endian uint32 entries.
func (f *File) readTable(ids []uint32) ([]uint32, error) {
	per := f.header.SectorSize() / 4
	table := make([]uint32, 0, len(ids)*per)
	for _, id := range ids {
		buf, err := f.readSector(id)
		if err != nil {
			return nil, err
		}
		for i := 0; i+4 <= len(buf); i += 4 {
			table = append(table, binpkg.Uint32(buf, i))
		}
	}
	return table, nil
}

// followChain returns the sector ids of the chain starting at start.
func followChain(table []uint32, start uint32) ([]uint32, error) {
	var ids []uint32
	for id := start; id != EndOfChain; id = table[id] {
		if id >= uint32(len(table)) {
			return nil, fmt.Errorf("%w: sector %d outside allocation table", ErrCorrupt, id)
		}
		if len(ids) >= len(table) {
			return nil, fmt.Errorf("%w: sector chain from %d loops", ErrCorrupt, start)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readChain reads size bytes of a regular-sector chain.
func (f *File) readChain(start uint32, size int64) ([]byte, error) {
	ids, err := followChain(f.fat, start)
	if err != nil {
		return nil, err
	}
	if avail := int64(len(ids)) * int64(f.header.SectorSize()); size < 0 || size > avail {
		return nil, fmt.Errorf("%w: chain from %d holds %d of %d bytes", ErrCorrupt, start, avail, size)
	}
	data := make([]byte, 0, size)
	for _, id := range ids {
		if int64(len(data)) >= size {
			break
		}
		buf, err := f.readSector(id)
		if err != nil {
			return nil, err
		}
		data = append(data, buf...)
	}
	if int64(len(data)) < size {
		return nil, fmt.Errorf("%w: chain from %d holds %d of %d bytes", ErrCorrupt, start, len(data), size)
	}
	return data[:size], nil
}

// readMiniChain reads size bytes of a mini-sector chain out of the mini stream.
func (f *File) readMiniChain(start uint32, size int64) ([]byte, error) {
	ids, err := followChain(f.miniFAT, start)
	if err != nil {
		return nil, err
	}
	sz := int64(f.header.MiniSectorSize())
	if avail := int64(len(ids)) * sz; size < 0 || size > avail {
		return nil, fmt.Errorf("%w: mini chain from %d holds %d of %d bytes", ErrCorrupt, start, avail, size)
	}
	data := make([]byte, 0, size)
	for _, id := range ids {
		if int64(len(data)) >= size {
			break
		}
		off := int64(id) * sz
		if off+sz > int64(len(f.miniStream)) {
			return nil, fmt.Errorf("%w: mini sector %d outside mini stream", ErrCorrupt, id)
		}
		data = append(data, f.miniStream[off:off+sz]...)
	}
	if int64(len(data)) < size {
		return nil, fmt.Errorf("%w: mini chain from %d holds %d of %d bytes", ErrCorrupt, start, len(data), size)
	}
	return data[:size], nil
}
