// Package cfbtest builds small version 3 compound files in memory for tests.
package cfbtest

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096
	entrySize      = 128

	endOfChain = 0xFFFFFFFE
	freeSect   = 0xFFFFFFFF
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF
)

// Node is a storage or stream in a compound file under construction.
type Node struct {
	Name    string
	Data    []byte
	Storage bool
	Kids    []*Node
}

// NewRoot returns an empty root storage.
func NewRoot() *Node {
	return &Node{Name: "Root Entry", Storage: true}
}

// AddStream adds a stream child and returns n.
func (n *Node) AddStream(name string, data []byte) *Node {
	n.Kids = append(n.Kids, &Node{Name: name, Data: data})
	return n
}

// AddStorage adds a storage child and returns it.
func (n *Node) AddStorage(name string) *Node {
	s := &Node{Name: name, Storage: true}
	n.Kids = append(n.Kids, s)
	return s
}

type entry struct {
	node  *Node
	typ   byte
	left  uint32
	right uint32
	child uint32
	start uint32
	size  uint32
}

// Build serializes the tree rooted at root as a version 3 compound file.
// Children of each storage are stored as a right-leaning sibling chain in
// compound file name order.
func Build(root *Node) []byte {
	var entries []*entry
	var add func(n *Node, typ byte) uint32
	add = func(n *Node, typ byte) uint32 {
		id := uint32(len(entries))
		e := &entry{node: n, typ: typ, left: noStream, right: noStream, child: noStream}
		entries = append(entries, e)
		if !n.Storage {
			return id
		}
		kids := append([]*Node(nil), n.Kids...)
		sort.SliceStable(kids, func(i, j int) bool { return less(kids[i].Name, kids[j].Name) })
		var prev *entry
		for _, k := range kids {
			t := byte(2)
			if k.Storage {
				t = 1
			}
			kid := add(k, t)
			if prev == nil {
				e.child = kid
			} else {
				prev.right = kid
			}
			prev = entries[kid]
		}
		return id
	}
	add(root, 5)

	// Mini stream and regular stream placement.
	var mini []byte
	var miniFAT []uint32
	var big [][]byte
	var bigEntries []*entry
	for _, e := range entries[1:] {
		if e.typ != 2 {
			continue
		}
		e.size = uint32(len(e.node.Data))
		if len(e.node.Data) == 0 {
			e.start = endOfChain
			continue
		}
		if len(e.node.Data) < miniCutoff {
			first := uint32(len(miniFAT))
			n := sectors(len(e.node.Data), miniSectorSize)
			for i := 0; i < n; i++ {
				miniFAT = append(miniFAT, first+uint32(i)+1)
			}
			miniFAT[len(miniFAT)-1] = endOfChain
			e.start = first
			mini = append(mini, pad(e.node.Data, miniSectorSize)...)
			continue
		}
		big = append(big, e.node.Data)
		bigEntries = append(bigEntries, e)
	}

	dirSectors := sectors(len(entries)*entrySize, sectorSize)
	miniFATSectors := sectors(len(miniFAT)*4, sectorSize)
	miniStreamSectors := sectors(len(mini), sectorSize)
	bigSectors := 0
	for _, b := range big {
		bigSectors += sectors(len(b), sectorSize)
	}
	other := dirSectors + miniFATSectors + miniStreamSectors + bigSectors
	fatSectors := 1
	for fatSectors*(sectorSize/4) < fatSectors+other {
		fatSectors++
	}
	total := fatSectors + other
	fat := make([]uint32, fatSectors*(sectorSize/4))
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = fatSect
	}
	next := uint32(fatSectors)
	chain := func(n int) uint32 {
		if n == 0 {
			return endOfChain
		}
		first := next
		for i := 0; i < n-1; i++ {
			fat[next] = next + 1
			next++
		}
		fat[next] = endOfChain
		next++
		return first
	}
	dirStart := chain(dirSectors)
	miniFATStart := chain(miniFATSectors)
	miniStreamStart := chain(miniStreamSectors)
	for i, e := range bigEntries {
		e.start = chain(sectors(len(big[i]), sectorSize))
	}
	entries[0].start = miniStreamStart
	entries[0].size = uint32(len(mini))

	out := make([]byte, sectorSize*(1+total))
	h := out[:sectorSize]
	copy(h, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	le := binary.LittleEndian
	le.PutUint16(h[24:], 0x003E)
	le.PutUint16(h[26:], 3)
	le.PutUint16(h[28:], 0xFFFE)
	le.PutUint16(h[30:], 9)
	le.PutUint16(h[32:], 6)
	le.PutUint32(h[44:], uint32(fatSectors))
	le.PutUint32(h[48:], dirStart)
	le.PutUint32(h[56:], miniCutoff)
	le.PutUint32(h[60:], miniFATStart)
	le.PutUint32(h[64:], uint32(miniFATSectors))
	le.PutUint32(h[68:], endOfChain)
	for i := 0; i < 109; i++ {
		v := uint32(freeSect)
		if i < fatSectors {
			v = uint32(i)
		}
		le.PutUint32(h[76+4*i:], v)
	}

	sector := func(id uint32) []byte {
		off := int(id+1) * sectorSize
		return out[off : off+sectorSize]
	}
	for i, v := range fat {
		le.PutUint32(sector(uint32(i/(sectorSize/4)))[4*(i%(sectorSize/4)):], v)
	}

	dir := make([]byte, dirSectors*sectorSize)
	for i := range dir {
		if i%entrySize >= 68 && i%entrySize < 80 {
			dir[i] = 0xFF
		}
	}
	for i, e := range entries {
		writeEntry(dir[i*entrySize:(i+1)*entrySize], e)
	}
	writeRun(out, dirStart, dir)

	mf := make([]byte, miniFATSectors*sectorSize)
	for i := range mf {
		mf[i] = 0xFF
	}
	for i, v := range miniFAT {
		le.PutUint32(mf[4*i:], v)
	}
	writeRun(out, miniFATStart, mf)
	writeRun(out, miniStreamStart, mini)
	for i, e := range bigEntries {
		writeRun(out, e.start, big[i])
	}
	return out
}

func writeEntry(buf []byte, e *entry) {
	le := binary.LittleEndian
	units := utf16.Encode([]rune(e.node.Name))
	for i, u := range units {
		le.PutUint16(buf[2*i:], u)
	}
	le.PutUint16(buf[64:], uint16(2*(len(units)+1)))
	buf[66] = e.typ
	buf[67] = 1
	le.PutUint32(buf[68:], e.left)
	le.PutUint32(buf[72:], e.right)
	le.PutUint32(buf[76:], e.child)
	le.PutUint32(buf[116:], e.start)
	le.PutUint32(buf[120:], e.size)
}

// writeRun copies data into consecutive sectors starting at start.
func writeRun(out []byte, start uint32, data []byte) {
	if start == endOfChain || len(data) == 0 {
		return
	}
	copy(out[int(start+1)*sectorSize:], data)
}

func sectors(n, size int) int {
	return (n + size - 1) / size
}

func pad(b []byte, size int) []byte {
	n := sectors(len(b), size) * size
	out := make([]byte, n)
	copy(out, b)
	return out
}

// less orders names the way compound file directories do: shorter names
// first, then by upper-cased comparison.
func less(a, b string) bool {
	la, lb := len(utf16.Encode([]rune(a))), len(utf16.Encode([]rune(b)))
	if la != lb {
		return la < lb
	}
	return strings.ToUpper(a) < strings.ToUpper(b)
}
