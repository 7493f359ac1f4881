package cfb

import (
	"fmt"
	"io"
	"os"
	"path"
)

// File represents an open compound file.
type File struct {
	r      io.ReaderAt
	closer io.Closer
	header *Header

	fat        []uint32
	miniFAT    []uint32
	miniStream []byte
	entries    []Entry

	root   *Storage
	closed bool
}

// Open opens a compound file on disk.
func Open(name string) (*File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := New(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	f.closer = fh
	return f, nil
}

// New parses a compound file from r. The caller keeps ownership of r.
func New(r io.ReaderAt) (*File, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	f := &File{r: r, header: h}

	if err := f.loadFAT(); err != nil {
		return nil, err
	}
	if err := f.loadDirectory(); err != nil {
		return nil, err
	}
	if err := f.loadMiniFAT(); err != nil {
		return nil, err
	}

	root := &f.entries[0]
	if root.Size > 0 {
		ms, err := f.readChain(root.Start, int64(root.Size))
		if err != nil {
			return nil, fmt.Errorf("reading mini stream: %w", err)
		}
		f.miniStream = ms
	}

	f.root, err = f.storageAt(0, "/")
	if err != nil {
		return nil, fmt.Errorf("opening root storage: %w", err)
	}
	return f, nil
}

// Close releases the file. Calling Close more than once is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.miniStream = nil
	f.entries = nil
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Root returns the root storage.
func (f *File) Root() *Storage {
	return f.root
}

// Version returns the major format version (3 or 4).
func (f *File) Version() int {
	return int(f.header.MajorVersion)
}

// storageAt builds the storage view for directory entry id.
func (f *File) storageAt(id uint32, p string) (*Storage, error) {
	kids, err := f.children(id)
	if err != nil {
		return nil, err
	}
	s := &Storage{
		file:  f,
		id:    id,
		path:  p,
		kids:  kids,
		index: make(map[string]uint32, len(kids)),
	}
	for _, k := range kids {
		s.index[nameKey(f.entries[k].Name)] = k
	}
	return s, nil
}

// readStream returns the content of stream entry id.
func (f *File) readStream(id uint32) ([]byte, error) {
	e := &f.entries[id]
	if e.Size == 0 {
		return []byte{}, nil
	}
	if e.Size < uint64(f.header.MiniStreamCutoff) {
		return f.readMiniChain(e.Start, int64(e.Size))
	}
	return f.readChain(e.Start, int64(e.Size))
}

// Storage is a directory node inside a compound file.
type Storage struct {
	file  *File
	id    uint32
	path  string
	kids  []uint32
	index map[string]uint32
}

// Name returns the storage name. The root storage is named "/".
func (s *Storage) Name() string {
	if s.id == 0 {
		return "/"
	}
	return s.file.entries[s.id].Name
}

// Path returns the full path to this storage.
func (s *Storage) Path() string {
	return s.path
}

// Children returns the names of all child entries in directory order.
func (s *Storage) Children() []string {
	if s.file.closed {
		return nil
	}
	names := make([]string, len(s.kids))
	for i, k := range s.kids {
		names[i] = s.file.entries[k].Name
	}
	return names
}

// Stat returns the directory entry of a child.
func (s *Storage) Stat(name string) (Entry, error) {
	if s.file.closed {
		return Entry{}, ErrClosed
	}
	id, ok := s.index[nameKey(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path.Join(s.path, name))
	}
	return s.file.entries[id], nil
}

// IsStorage reports whether the named child exists and is a storage.
func (s *Storage) IsStorage(name string) bool {
	e, err := s.Stat(name)
	return err == nil && e.IsStorage()
}

// IsStream reports whether the named child exists and is a stream.
func (s *Storage) IsStream(name string) bool {
	e, err := s.Stat(name)
	return err == nil && e.IsStream()
}

// ReadStream returns the bytes of the named child stream.
func (s *Storage) ReadStream(name string) ([]byte, error) {
	if s.file.closed {
		return nil, ErrClosed
	}
	id, ok := s.index[nameKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path.Join(s.path, name))
	}
	if !s.file.entries[id].IsStream() {
		return nil, fmt.Errorf("%w: %s", ErrNotStream, path.Join(s.path, name))
	}
	data, err := s.file.readStream(id)
	if err != nil {
		return nil, fmt.Errorf("reading stream %s: %w", path.Join(s.path, name), err)
	}
	return data, nil
}

// OpenStorage opens the named child storage.
func (s *Storage) OpenStorage(name string) (*Storage, error) {
	if s.file.closed {
		return nil, ErrClosed
	}
	id, ok := s.index[nameKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path.Join(s.path, name))
	}
	if s.file.entries[id].Type != TypeStorage {
		return nil, fmt.Errorf("%w: %s", ErrNotStorage, path.Join(s.path, name))
	}
	return s.file.storageAt(id, path.Join(s.path, s.file.entries[id].Name))
}
