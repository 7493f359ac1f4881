package mapi

import "errors"

// ErrUnsupportedPropertyType reports a property type outside the decoded set.
var ErrUnsupportedPropertyType = errors.New("unsupported MAPI property type")
