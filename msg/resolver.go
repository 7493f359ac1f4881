package msg

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/emersion/go-message/mail"
)

// Resolver turns the display name and raw address token stored in a
// message into a mail address. Tokens may be SMTP addresses, Exchange
// legacy distinguished names or "DOMAIN\user" forms.
type Resolver interface {
	Resolve(displayName, address string) (*mail.Address, bool)
}

// NullResolver uses the display name and address unchanged.
type NullResolver struct{}

// Resolve implements Resolver. An empty address does not resolve.
func (NullResolver) Resolve(displayName, address string) (*mail.Address, bool) {
	if address == "" {
		return nil, false
	}
	return &mail.Address{Name: displayName, Address: address}, true
}

// unresolvedAddress stands in for a directory user that is not known.
const unresolvedAddress = "?@?"

const legacyDNRecipients = "/CN=RECIPIENTS/CN="

var domainUser = regexp.MustCompile(`\w+\\([-.A-Za-z0-9_]+)@[?]`)

// ExchangeResolver maps Exchange address tokens to SMTP addresses using a
// static alias table instead of a directory lookup.
type ExchangeResolver struct {
	// DefaultDomain is appended to aliases missing from Aliases.
	DefaultDomain string
	// Aliases maps a legacy DN or a user alias, compared
	// case-insensitively, to an SMTP address.
	Aliases map[string]string
}

// Resolve implements Resolver.
//
// A legacy DN ("/O=ORG/.../CN=RECIPIENTS/CN=JSMITH") resolves through
// Aliases by the full DN, then by alias, then to the lower-cased alias at
// DefaultDomain. A "DOMAIN\user@?" token resolves through Aliases by user
// name, then to the user at DefaultDomain, else to "?@?". Anything else
// must parse as an address.
func (r ExchangeResolver) Resolve(displayName, address string) (*mail.Address, bool) {
	if address == "" {
		return nil, false
	}
	if i := strings.Index(strings.ToUpper(address), legacyDNRecipients); i >= 0 {
		if smtp, ok := r.lookup(address); ok {
			return &mail.Address{Name: displayName, Address: smtp}, true
		}
		alias := legacyAlias(address[i+len(legacyDNRecipients):])
		if smtp, ok := r.lookup(alias); ok {
			return &mail.Address{Name: displayName, Address: smtp}, true
		}
		return &mail.Address{Name: displayName, Address: strings.ToLower(alias) + "@" + r.DefaultDomain}, true
	}
	if m := domainUser.FindStringSubmatch(address); m != nil {
		addr := unresolvedAddress
		if smtp, ok := r.lookup(m[1]); ok {
			addr = smtp
		} else if r.DefaultDomain != "" {
			addr = strings.ToLower(m[1]) + "@" + r.DefaultDomain
		}
		return &mail.Address{Name: displayName, Address: addr}, true
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return nil, false
	}
	return &mail.Address{Name: displayName, Address: address}, true
}

func (r ExchangeResolver) lookup(key string) (string, bool) {
	if v, ok := r.Aliases[key]; ok {
		return v, true
	}
	for k, v := range r.Aliases {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// legacyAlias returns the leading run of letters, digits and punctuation.
func legacyAlias(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsPunct(r)
	})
	if end < 0 {
		return s
	}
	return s[:end]
}
