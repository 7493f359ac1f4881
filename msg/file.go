package msg

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-msg/internal/cfb"
)

// File is an open .msg file and its decoded message.
type File struct {
	path    string
	cf      *cfb.File
	message *Message
	closed  bool
}

// Open opens and decodes a .msg file.
func Open(path string, opts ...Option) (*File, error) {
	cf, err := cfb.Open(path)
	if err != nil {
		return nil, wrapCFBError(err)
	}
	f, err := decodeFile(cf, opts)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

// OpenReader decodes a .msg file read from r. Closing the returned File
// does not close r.
func OpenReader(r io.ReaderAt, opts ...Option) (*File, error) {
	cf, err := cfb.New(r)
	if err != nil {
		return nil, wrapCFBError(err)
	}
	return decodeFile(cf, opts)
}

func wrapCFBError(err error) error {
	if errors.Is(err, cfb.ErrNotCFB) {
		return fmt.Errorf("%w: %w", ErrNotMSG, err)
	}
	return err
}

// decodeFile decodes the root message of cf, closing cf on failure.
func decodeFile(cf *cfb.File, opts []Option) (*File, error) {
	m, err := Decode(cfbStorage{cf.Root()}, opts...)
	if err != nil {
		cf.Close()
		return nil, err
	}
	return &File{cf: cf, message: m}, nil
}

// Message returns the decoded top-level message, or nil after Close.
func (f *File) Message() *Message {
	if f.closed {
		return nil
	}
	return f.message
}

// Path returns the file path, empty for files from OpenReader.
func (f *File) Path() string {
	return f.path
}

// Close releases the message tree and the underlying file. Calling Close
// more than once is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	f.message.release()
	f.message = nil

	return f.cf.Close()
}
