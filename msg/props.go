package msg

import (
	"time"

	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// Property is a decoded property value.
type Property = mapi.Property

// PropertyID is a 16-bit property identifier.
type PropertyID = mapi.ID

// propReader reads typed properties from one object. The first hard error
// sticks and later reads return zero values.
type propReader struct {
	obj *mapi.Object
	err error
}

func (r *propReader) fail(err error) bool {
	if err != nil && r.err == nil {
		r.err = err
	}
	return r.err != nil
}

func (r *propReader) str(id mapi.ID) (string, bool) {
	if r.err != nil {
		return "", false
	}
	s, ok, err := r.obj.String(id)
	if r.fail(err) || !ok {
		return "", false
	}
	return mapi.TrimNul(s), true
}

// text returns the first non-empty string among ids.
func (r *propReader) text(ids ...mapi.ID) string {
	for _, id := range ids {
		if s, _ := r.str(id); s != "" {
			return s
		}
	}
	return ""
}

func (r *propReader) int(id mapi.ID) (int64, bool) {
	if r.err != nil {
		return 0, false
	}
	v, ok, err := r.obj.Int(id)
	if r.fail(err) {
		return 0, false
	}
	return v, ok
}

func (r *propReader) bool(id mapi.ID) bool {
	if r.err != nil {
		return false
	}
	v, ok, err := r.obj.Bool(id)
	if r.fail(err) {
		return false
	}
	return ok && v
}

func (r *propReader) time(id mapi.ID) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, ok, err := r.obj.Time(id)
	if r.fail(err) || !ok {
		return time.Time{}
	}
	return v
}

func (r *propReader) bytes(id mapi.ID) []byte {
	if r.err != nil {
		return nil
	}
	v, ok, err := r.obj.Bytes(id)
	if r.fail(err) || !ok {
		return nil
	}
	return v
}

func (r *propReader) sub(id mapi.ID) (Storage, bool) {
	if r.err != nil {
		return nil, false
	}
	s, ok, err := r.obj.Sub(id)
	if r.fail(err) {
		return nil, false
	}
	return s, ok
}

// stringOrBinary reads a property Outlook stores either as a string or as
// bytes in the object's code page, such as PR_BODY_HTML.
func (r *propReader) stringOrBinary(id mapi.ID, decode func([]byte) string) string {
	if s, ok := r.str(id); ok {
		return s
	}
	if b := r.bytes(id); b != nil {
		return mapi.TrimNul(decode(b))
	}
	return ""
}
