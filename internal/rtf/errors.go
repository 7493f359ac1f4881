package rtf

import "errors"

// Errors
var (
	ErrHeaderTooShort = errors.New("compressed RTF header too short")
	ErrSizeMismatch   = errors.New("compressed RTF size mismatch")
	ErrCRCMismatch    = errors.New("compressed RTF CRC mismatch")
	ErrUnknownMagic   = errors.New("compressed RTF has unknown magic")
	ErrCorrupt        = errors.New("compressed RTF payload is corrupt")
)
