package msg

import (
	"github.com/robert-malhotra/go-msg/internal/cfb"
	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// Storage is a node of the compound file: it lists children, reads child
// streams and opens child storages. Any implementation can be passed to
// Decode.
type Storage = mapi.Storage

// cfbStorage adapts a compound file storage.
type cfbStorage struct {
	s *cfb.Storage
}

func (c cfbStorage) Children() []string {
	return c.s.Children()
}

func (c cfbStorage) IsStorage(name string) bool {
	return c.s.IsStorage(name)
}

func (c cfbStorage) ReadStream(name string) ([]byte, error) {
	return c.s.ReadStream(name)
}

func (c cfbStorage) OpenStorage(name string) (Storage, error) {
	sub, err := c.s.OpenStorage(name)
	if err != nil {
		return nil, err
	}
	return cfbStorage{sub}, nil
}
