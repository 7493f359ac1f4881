package msg

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// AttachMethod is PR_ATTACH_METHOD.
type AttachMethod int

// Attach methods
const (
	AttachNone            AttachMethod = 0
	AttachByValue         AttachMethod = 1
	AttachByReference     AttachMethod = 2
	AttachByRefResolve    AttachMethod = 3
	AttachByRefOnly       AttachMethod = 4
	AttachEmbeddedMessage AttachMethod = 5
	AttachOLE             AttachMethod = 6
)

func (m AttachMethod) String() string {
	switch m {
	case AttachNone:
		return "None"
	case AttachByValue:
		return "ByValue"
	case AttachByReference:
		return "ByReference"
	case AttachByRefResolve:
		return "ByRefResolve"
	case AttachByRefOnly:
		return "ByRefOnly"
	case AttachEmbeddedMessage:
		return "EmbeddedMessage"
	case AttachOLE:
		return "OLE"
	}
	return fmt.Sprintf("AttachMethod(%d)", int(m))
}

// IsReference reports whether the attachment bytes live in a file named
// by the attachment.
func (m AttachMethod) IsReference() bool {
	return m == AttachByReference || m == AttachByRefResolve || m == AttachByRefOnly
}

// namelessAttachment names attachments that carry no usable filename.
const namelessAttachment = "Nameless"

// Attachment is a file attached to a message. Embedded messages are not
// attachments; they are decoded into Message.Messages.
type Attachment struct {
	Filename  string
	Data      []byte // nil when a referenced file could not be read
	ContentID string
	MIMETag   string
	Inline    bool
	Method    AttachMethod

	// Pathname is the file a by-reference attachment points to.
	Pathname string

	RenderingPosition int // -1 when absent
	ContactPhoto      bool
	Created           time.Time
	Modified          time.Time

	obj      *mapi.Object
	path     string
	released bool
}

// addAttachment decodes the attachment storage s and appends it to
// m.Attachments, or appends the message it embeds to m.Messages.
func (m *Message) addAttachment(s Storage, p string) error {
	obj, err := m.load(s, mapi.HeaderChild)
	if err != nil {
		return fmt.Errorf("loading attachment %s: %w", p, err)
	}
	r := &propReader{obj: obj}
	method, _ := r.int(mapi.TagAttachMethod)
	if r.err != nil {
		return fmt.Errorf("reading attachment %s: %w", p, r.err)
	}

	if AttachMethod(method) == AttachEmbeddedMessage {
		sub, ok := r.sub(mapi.TagAttachData)
		if r.err != nil {
			return fmt.Errorf("reading attachment %s: %w", p, r.err)
		}
		if !ok {
			return fmt.Errorf("attachment %s: %w", p, ErrNotStorage)
		}
		sm, err := newMessage(sub, mapi.HeaderEmbedded, m, path.Join(p, mapi.StreamName(mapi.TagAttachData, mapi.TypeObject)), m.opts)
		if err != nil {
			return err
		}
		m.Messages = append(m.Messages, sm)
		return nil
	}

	a, err := m.newAttachment(r, AttachMethod(method), p)
	if err != nil {
		return err
	}
	m.Attachments = append(m.Attachments, a)
	return nil
}

func (m *Message) newAttachment(r *propReader, method AttachMethod, p string) (*Attachment, error) {
	a := &Attachment{
		Method:            method,
		RenderingPosition: -1,
		obj:               r.obj,
		path:              p,
	}
	a.Created = r.time(mapi.TagCreationTime)
	a.Modified = r.time(mapi.TagLastModifiedTime)
	a.ContentID, _ = r.str(mapi.TagAttachContentID)
	a.Inline = a.ContentID != ""
	a.ContactPhoto = r.bool(mapi.TagAttachContactPhoto)
	if v, ok := r.int(mapi.TagRenderingPosition); ok {
		a.RenderingPosition = int(int32(v))
	}
	a.MIMETag, _ = r.str(mapi.TagAttachMIMETag)
	name := r.text(mapi.TagAttachLongFilename, mapi.TagAttachFilename, mapi.TagDisplayName)

	switch {
	case method.IsReference():
		a.Pathname = r.text(mapi.TagAttachLongPathname, mapi.TagAttachPathname)
		if r.err == nil {
			a.Data = m.readReference(r, p)
		}
	case method == AttachOLE:
		if r.err == nil {
			m.readOLE(a, r, p)
		}
		a.Inline = true
	default:
		a.Data = r.bytes(mapi.TagAttachData)
	}
	if r.err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", p, r.err)
	}

	a.Filename = SanitizeFilename(name)
	if method == AttachOLE && a.Data != nil {
		a.Filename = oleFilename(name, a.Data)
		if a.MIMETag == "" {
			a.MIMETag = mimetype.Detect(a.Data).String()
		}
	}
	return a, nil
}

// readReference reads the file a by-reference attachment points to. The
// long path is tried before the short one. Unreadable files leave the
// attachment without data.
func (m *Message) readReference(r *propReader, p string) []byte {
	if !m.opts.resolveRefs {
		return nil
	}
	for _, id := range []mapi.ID{mapi.TagAttachLongPathname, mapi.TagAttachPathname} {
		name, _ := r.str(id)
		if name == "" {
			continue
		}
		if m.opts.refRoot != "" && !filepath.IsAbs(name) {
			name = filepath.Join(m.opts.refRoot, name)
		}
		data, err := os.ReadFile(name)
		if err == nil {
			return data
		}
		m.opts.logger.Debug("referenced attachment unreadable",
			slog.String("path", p), slog.String("name", name), slog.Any("error", err))
	}
	return nil
}

// readOLE reads the CONTENTS stream of an OLE attachment's object storage.
func (m *Message) readOLE(a *Attachment, r *propReader, p string) {
	sub, ok := r.sub(mapi.TagAttachData)
	if !ok {
		m.opts.logger.Debug("OLE attachment without object storage", slog.String("path", p))
		return
	}
	data, err := sub.ReadStream(mapi.EmbeddedContents)
	if err != nil {
		m.opts.logger.Debug("OLE attachment without contents",
			slog.String("path", p), slog.Any("error", err))
		return
	}
	a.Data = data
}

// oleFilename names an OLE attachment after its sniffed content type.
func oleFilename(name string, data []byte) string {
	ext := mimetype.Detect(data).Extension()
	if name == "" {
		return namelessAttachment + ext
	}
	name = SanitizeFilename(name)
	if ext != "" && !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

// Path returns the storage path of the attachment.
func (a *Attachment) Path() string {
	return a.path
}

// Property decodes an attachment property by id.
func (a *Attachment) Property(id PropertyID) (Property, bool, error) {
	if a.released {
		return Property{}, false, ErrClosed
	}
	return a.obj.Get(id)
}

func (a *Attachment) release() {
	if a.released {
		return
	}
	a.released = true
	a.obj = nil
}

// SanitizeFilename makes name safe to use as a file name: control
// characters are dropped and path separators and reserved characters are
// replaced with "_". An empty result becomes "Nameless".
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return namelessAttachment
	}
	return name
}
