package mapi

// Storage is the container capability properties are read from. A compound
// file storage, or an in-memory fake in tests, satisfies it.
type Storage interface {
	// Children lists child entry names in directory order.
	Children() []string
	// IsStorage reports whether the named child is a sub-storage.
	IsStorage(name string) bool
	// ReadStream returns the bytes of the named child stream.
	ReadStream(name string) ([]byte, error)
	// OpenStorage descends into the named child storage.
	OpenStorage(name string) (Storage, error)
}
