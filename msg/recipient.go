package msg

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// RecipientType is PR_RECIPIENT_TYPE.
type RecipientType int

// Recipient types
const (
	RecipientUnknown  RecipientType = 0
	RecipientTo       RecipientType = 1
	RecipientCc       RecipientType = 2
	RecipientBcc      RecipientType = 3
	RecipientResource RecipientType = 4
	RecipientRoom     RecipientType = 7
)

func recipientType(v int64) RecipientType {
	switch t := RecipientType(v); t {
	case RecipientTo, RecipientCc, RecipientBcc, RecipientResource, RecipientRoom:
		return t
	}
	return RecipientUnknown
}

func (t RecipientType) String() string {
	switch t {
	case RecipientTo:
		return "To"
	case RecipientCc:
		return "Cc"
	case RecipientBcc:
		return "Bcc"
	case RecipientResource:
		return "Resource"
	case RecipientRoom:
		return "Room"
	}
	return "Unknown"
}

// Recipient is one entry of a message's recipient table.
type Recipient struct {
	DisplayName string
	// Email is the first non-empty of the SMTP address, the
	// organizational address and the email address. A display name that
	// is itself a valid address is used last.
	Email string
	Type  RecipientType

	obj      *mapi.Object
	path     string
	released bool
}

func (m *Message) newRecipient(s Storage, p string) (*Recipient, error) {
	obj, err := m.load(s, mapi.HeaderChild)
	if err != nil {
		return nil, fmt.Errorf("loading recipient %s: %w", p, err)
	}
	r := &propReader{obj: obj}
	rcp := &Recipient{obj: obj, path: p}
	rcp.DisplayName, _ = r.str(mapi.TagDisplayName)
	rcp.Email = r.text(mapi.TagSMTPAddress, mapi.TagOrgAddress, mapi.TagEmailAddress)
	if rcp.Email == "" && isValidEmail(rcp.DisplayName) {
		rcp.Email = rcp.DisplayName
	}
	v, _ := r.int(mapi.TagRecipientType)
	rcp.Type = recipientType(v)
	if r.err != nil {
		return nil, fmt.Errorf("reading recipient %s: %w", p, r.err)
	}
	return rcp, nil
}

// Path returns the storage path of the recipient.
func (r *Recipient) Path() string {
	return r.path
}

// Property decodes a recipient property by id.
func (r *Recipient) Property(id PropertyID) (Property, bool, error) {
	if r.released {
		return Property{}, false, ErrClosed
	}
	return r.obj.Get(id)
}

func (r *Recipient) release() {
	if r.released {
		return
	}
	r.released = true
	r.obj = nil
}

var (
	localPart  = regexp.MustCompile("^(?i)(?:\"[^\"]+\"|[0-9a-z](?:\\.?[-!#$%&'*+/=?^`{}|~\\w])*)$")
	domainPart = regexp.MustCompile(`^(?i)(?:\[(?:\d{1,3}\.){3}\d{1,3}\]|(?:[0-9a-z][-\w]*[0-9a-z]*\.)+[a-z0-9]{2,17})$`)
)

// isValidEmail reports whether s is a syntactically valid address. The
// domain is mapped to ASCII first; a domain that cannot be mapped is
// invalid.
func isValidEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]

	if !strings.HasPrefix(domain, "[") {
		ascii, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return false
		}
		domain = ascii
	}

	if !localPart.MatchString(local) {
		return false
	}
	if local[0] != '"' && !isAlnum(local[len(local)-1]) {
		return false
	}
	return domainPart.MatchString(domain)
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
