// Package cfb reads Compound File Binary (OLE2 structured storage) files.
//
// A compound file is a small file system inside one file: a tree of
// storages (directories) and streams (files) addressed by name. Outlook
// .msg files, legacy Office documents and OLE packages all use it.
//
// # File Layout
//
// The file is divided into fixed-size sectors. The 512-byte header occupies
// the first sector slot and carries the sector sizes, the location of the
// directory, and the first 109 entries of the DIFAT (the list of sectors
// holding the FAT).
//
//   - Version 3: 512-byte sectors; stream sizes are 32 bits wide.
//   - Version 4: 4096-byte sectors; stream sizes are 64 bits wide.
//
// # Allocation Tables
//
// The FAT maps each sector to the next sector of its chain, ending with
// [EndOfChain]. Streams smaller than the mini stream cutoff (4096 bytes)
// are stored in 64-byte mini sectors inside the root entry's mini stream
// and are chained through the MiniFAT instead.
//
// # Directory
//
// The directory is a flat array of 128-byte entries. The children of each
// storage form a red-black tree threaded through left/right sibling ids;
// an in-order walk yields the canonical child order (shorter names first,
// then case-insensitive comparison). [Storage.Children] returns that order.
//
// # Usage
//
//	f, err := cfb.Open("message.msg")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	root := f.Root()
//	for _, name := range root.Children() {
//	    if root.IsStorage(name) {
//	        sub, _ := root.OpenStorage(name)
//	        ...
//	    }
//	}
//
// # Errors
//
//   - [ErrNotCFB]: the signature is missing
//   - [ErrUnsupportedVersion]: major version other than 3 or 4
//   - [ErrInvalidHeader]: header fields are inconsistent
//   - [ErrCorrupt]: a sector chain or the directory tree is damaged
//   - [ErrNotFound]: no child with the requested name
package cfb
