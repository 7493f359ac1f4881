package msg

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/robert-malhotra/go-msg/internal/codepage"
	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// Importance is PR_IMPORTANCE.
type Importance int

// Importance levels
const (
	ImportanceLow    Importance = 0
	ImportanceNormal Importance = 1
	ImportanceHigh   Importance = 2
)

// Priority is PR_PRIORITY.
type Priority int

// Priority levels
const (
	PriorityNonUrgent Priority = -1
	PriorityNormal    Priority = 0
	PriorityUrgent    Priority = 1
)

// Message is a decoded message: a top-level .msg or one embedded in an
// attachment. The whole tree is read when the message is decoded.
type Message struct {
	Class string
	Type  MessageType

	Subject     string
	SenderName  string
	SenderEmail string
	DisplayTo   string
	DisplayCc   string

	SentTime     time.Time
	ReceivedTime time.Time

	MessageID         string
	InReplyTo         string
	References        string
	ConversationIndex []byte
	TransportHeaders  string

	BodyText string
	BodyHTML string
	BodyRTF  []byte // compressed; see DecompressRTF

	Importance Importance
	Priority   Priority
	Codepage   int

	Recipients  []*Recipient
	Attachments []*Attachment
	Messages    []*Message

	// Appointment is set for appointment classes and for any message
	// carrying appointment named properties.
	Appointment *Appointment

	hasImportance bool
	hasPriority   bool

	parent   *Message
	names    *mapi.NameIDTable
	obj      *mapi.Object
	opts     *options
	path     string
	depth    int
	released bool
}

// Decode builds the message tree rooted at s, a top-level message storage.
func Decode(s Storage, opts ...Option) (*Message, error) {
	return newMessage(s, mapi.HeaderTop, nil, "/", newOptions(opts))
}

func newMessage(s Storage, headerSize int, parent *Message, p string, o *options) (*Message, error) {
	m := &Message{
		parent: parent,
		opts:   o,
		path:   p,
	}
	if parent != nil {
		m.depth = parent.depth + 1
		if m.depth > MaxNestingDepth {
			return nil, fmt.Errorf("%s: %w", p, ErrNestingDepth)
		}
	}

	obj, err := m.load(s, headerSize)
	if err != nil {
		return nil, fmt.Errorf("loading message %s: %w", p, err)
	}
	m.obj = obj
	m.Codepage, _ = obj.Codepage()

	// The name-id table must be known before any named property is read,
	// including those of embedded messages.
	for _, name := range s.Children() {
		if strings.EqualFold(name, mapi.NameIDStorage) && s.IsStorage(name) {
			ns, err := s.OpenStorage(name)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", path.Join(p, name), err)
			}
			if m.names, err = mapi.LoadNameIDTable(ns); err != nil {
				return nil, fmt.Errorf("reading %s: %w", path.Join(p, name), err)
			}
			break
		}
	}

	r := &propReader{obj: obj}
	m.readProperties(r)
	m.Appointment = m.readAppointment(r)
	if r.err != nil {
		return nil, fmt.Errorf("reading message %s: %w", p, r.err)
	}

	for _, name := range s.Children() {
		if !s.IsStorage(name) {
			continue
		}
		child := path.Join(p, name)
		switch {
		case hasPrefixFold(name, mapi.RecipientPrefix):
			cs, err := s.OpenStorage(name)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", child, err)
			}
			rcp, err := m.newRecipient(cs, child)
			if err != nil {
				return nil, err
			}
			m.Recipients = append(m.Recipients, rcp)
		case hasPrefixFold(name, mapi.AttachmentPrefix):
			cs, err := s.OpenStorage(name)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", child, err)
			}
			if err := m.addAttachment(cs, child); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// load indexes the properties of s. PT_STRING8 values use the forced
// code page, the object's own, or the parent message's, in that order.
func (m *Message) load(s Storage, headerSize int) (*mapi.Object, error) {
	obj, err := mapi.Load(s, headerSize)
	if err != nil {
		return nil, err
	}
	switch {
	case m.opts.codepage > 0:
		obj.UseCodepage(m.opts.codepage)
	case m.obj != nil:
		if _, own := obj.Codepage(); !own {
			obj.UseCodepage(m.Codepage)
		}
	case m.parent != nil:
		if _, own := obj.Codepage(); !own {
			obj.UseCodepage(m.parent.Codepage)
		}
	}
	return obj, nil
}

func (m *Message) readProperties(r *propReader) {
	m.Class, _ = r.str(mapi.TagMessageClass)
	m.Type = ParseMessageType(m.Class)
	m.Subject, _ = r.str(mapi.TagSubject)
	m.SenderName, _ = r.str(mapi.TagSenderName)
	m.SenderEmail = r.text(mapi.TagSenderEmail, mapi.TagPrimarySendAccount, mapi.TagNextSendAccount)
	m.DisplayTo, _ = r.str(mapi.TagDisplayTo)
	m.DisplayCc, _ = r.str(mapi.TagDisplayCc)
	m.SentTime = r.time(mapi.TagClientSubmitTime)
	m.ReceivedTime = r.time(mapi.TagMessageDeliveryTime)
	m.MessageID, _ = r.str(mapi.TagInternetMessageID)
	m.InReplyTo, _ = r.str(mapi.TagInReplyTo)
	m.References, _ = r.str(mapi.TagInternetReferences)
	m.ConversationIndex = r.bytes(mapi.TagConversationIndex)
	m.TransportHeaders, _ = r.str(mapi.TagTransportHeaders)

	m.BodyText, _ = r.str(mapi.TagBody)
	enc := codepage.Encoding(m.Codepage)
	m.BodyHTML = r.stringOrBinary(mapi.TagBodyHTML, func(b []byte) string {
		return mapi.DecodeString8(b, enc)
	})
	m.BodyRTF = r.bytes(mapi.TagRTFCompressed)

	m.Importance = ImportanceNormal
	if v, ok := r.int(mapi.TagImportance); ok {
		m.Importance, m.hasImportance = Importance(v), true
	}
	m.Priority = PriorityNormal
	if v, ok := r.int(mapi.TagPriority); ok {
		m.Priority, m.hasPriority = Priority(v), true
	}
}

// namedID resolves a numeric property name to the id it is stored under.
// The nearest message with a name-id table answers; messages without one
// defer to their parent.
func (m *Message) namedID(name uint32) (mapi.ID, bool) {
	for cur := m; cur != nil; cur = cur.parent {
		if cur.names != nil {
			id, ok := cur.names.Lookup(name)
			if !ok {
				m.opts.logger.Debug("named property unresolved",
					slog.String("path", m.path), slog.String("name", fmt.Sprintf("%04X", name)))
			}
			return id, ok
		}
	}
	m.opts.logger.Debug("no name-id table", slog.String("path", m.path))
	return 0, false
}

// Property decodes a property of the message by id.
func (m *Message) Property(id PropertyID) (Property, bool, error) {
	if m.released {
		return Property{}, false, ErrClosed
	}
	return m.obj.Get(id)
}

// NamedProperty decodes a property addressed by its numeric name, such as
// 0x8208 for the appointment location.
func (m *Message) NamedProperty(name uint32) (Property, bool, error) {
	if m.released {
		return Property{}, false, ErrClosed
	}
	id, ok := m.namedID(name)
	if !ok {
		return Property{}, false, nil
	}
	return m.obj.Get(id)
}

// Parent returns the message this one is embedded in, or nil.
func (m *Message) Parent() *Message {
	return m.parent
}

// Path returns the storage path of the message; "/" for the top level.
func (m *Message) Path() string {
	return m.path
}

// HasImportance reports whether PR_IMPORTANCE was present.
func (m *Message) HasImportance() bool {
	return m.hasImportance
}

// HasPriority reports whether PR_PRIORITY was present.
func (m *Message) HasPriority() bool {
	return m.hasPriority
}

// release drops the storages the tree was built from, children first.
func (m *Message) release() {
	if m == nil || m.released {
		return
	}
	m.released = true
	for _, sub := range m.Messages {
		sub.release()
	}
	for _, r := range m.Recipients {
		r.release()
	}
	for _, a := range m.Attachments {
		a.release()
	}
	m.obj = nil
	m.names = nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
