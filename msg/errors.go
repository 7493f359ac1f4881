package msg

import (
	"errors"

	"github.com/robert-malhotra/go-msg/internal/mapi"
	"github.com/robert-malhotra/go-msg/internal/rtf"
)

// Common errors
var (
	ErrNotMSG        = errors.New("not an Outlook message file")
	ErrClosed        = errors.New("message file is closed")
	ErrNoBodyContent = errors.New("message has no body content")
	ErrNotStorage    = errors.New("property does not reference a storage")
	ErrNestingDepth  = errors.New("maximum embedded message depth exceeded")

	// ErrUnsupportedPropertyType is returned when a property carries a type
	// outside the decoded set.
	ErrUnsupportedPropertyType = mapi.ErrUnsupportedPropertyType
)

// MaxNestingDepth bounds how deep embedded messages may nest.
const MaxNestingDepth = 64

// DecompressionKind identifies why a compressed RTF body could not be
// decompressed.
type DecompressionKind int

// Decompression failure kinds
const (
	HeaderTooShort DecompressionKind = iota + 1
	SizeMismatch
	CRCMismatch
	UnknownMagic
	Corrupt
)

func (k DecompressionKind) String() string {
	switch k {
	case HeaderTooShort:
		return "HeaderTooShort"
	case SizeMismatch:
		return "SizeMismatch"
	case CRCMismatch:
		return "CrcMismatch"
	case UnknownMagic:
		return "UnknownMagic"
	case Corrupt:
		return "Corrupt"
	}
	return "Unknown"
}

// DecompressionError reports a compressed RTF failure.
type DecompressionError struct {
	Kind DecompressionKind
	Err  error
}

func (e *DecompressionError) Error() string {
	return "decompressing RTF: " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// DecompressRTF decompresses a PR_RTF_COMPRESSED value. Failures are
// returned as *DecompressionError.
func DecompressRTF(b []byte) ([]byte, error) {
	out, err := rtf.Decompress(b)
	if err != nil {
		return nil, &DecompressionError{Kind: decompressionKind(err), Err: err}
	}
	return out, nil
}

func decompressionKind(err error) DecompressionKind {
	switch {
	case errors.Is(err, rtf.ErrHeaderTooShort):
		return HeaderTooShort
	case errors.Is(err, rtf.ErrSizeMismatch):
		return SizeMismatch
	case errors.Is(err, rtf.ErrCRCMismatch):
		return CRCMismatch
	case errors.Is(err, rtf.ErrUnknownMagic):
		return UnknownMagic
	}
	return Corrupt
}
