package msg

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Renderer renders decompressed RTF.
type Renderer interface {
	PlainText(rtf []byte) (string, error)
	HTML(rtf []byte) (string, error)
}

// Assemble converts a decoded message into a MIME email. Bodies are
// collected as {plain, html} alternatives, followed by views rendered from
// the compressed RTF body when plain or HTML is missing. Attachments and
// embedded messages wrap the body in multipart/mixed.
//
// A message with no body at all fails with ErrNoBodyContent.
func Assemble(m *Message, opts ...Option) (*Email, error) {
	a := &assembler{opts: newOptions(opts)}
	return a.assemble(m)
}

type assembler struct {
	opts *options
}

func (a *assembler) log() *slog.Logger {
	return a.opts.logger
}

func (a *assembler) assemble(m *Message) (*Email, error) {
	if m.released {
		return nil, ErrClosed
	}
	bodies, err := a.bodyParts(m)
	if err != nil {
		return nil, err
	}
	var root *Part
	if len(bodies) == 1 {
		root = bodies[0]
	} else {
		root = newMultipart("alternative", bodies...)
	}

	if len(m.Attachments)+len(m.Messages) > 0 {
		mixed := newMultipart("mixed", root)
		for _, att := range m.Attachments {
			mixed.Children = append(mixed.Children, attachmentPart(att))
		}
		for _, sub := range m.Messages {
			p, err := a.subMessagePart(sub)
			if err != nil {
				return nil, fmt.Errorf("embedded message %s: %w", sub.path, err)
			}
			mixed.Children = append(mixed.Children, p)
		}
		root = mixed
	}

	e := &Email{Root: root}
	a.headers(m, &e.Header)
	return e, nil
}

// bodyParts returns the body alternatives in order.
func (a *assembler) bodyParts(m *Message) ([]*Part, error) {
	var parts []*Part
	if m.BodyText != "" {
		parts = append(parts, textPart("text/plain", m.BodyText))
	}
	if m.BodyHTML != "" {
		parts = append(parts, textPart("text/html", m.BodyHTML))
	}

	if len(m.BodyRTF) > 0 && (m.BodyText == "" || m.BodyHTML == "" || a.opts.rawRTF) {
		doc, err := DecompressRTF(m.BodyRTF)
		if err != nil {
			a.log().Warn("RTF body dropped", slog.String("path", m.path), slog.Any("error", err))
		} else {
			parts = append(parts, a.rtfParts(m, doc)...)
		}
	}

	if len(parts) == 0 {
		return nil, ErrNoBodyContent
	}
	return parts, nil
}

func (a *assembler) rtfParts(m *Message, doc []byte) []*Part {
	var parts []*Part
	if m.BodyText == "" {
		if s, err := a.opts.renderer.PlainText(doc); err != nil {
			a.log().Warn("rendering RTF as text", slog.String("path", m.path), slog.Any("error", err))
		} else if s != "" {
			parts = append(parts, textPart("text/plain", s))
		}
	}
	if m.BodyHTML == "" {
		if s, err := a.opts.renderer.HTML(doc); err != nil {
			a.log().Warn("rendering RTF as HTML", slog.String("path", m.path), slog.Any("error", err))
		} else if hasPrefixFold(strings.TrimSpace(s), "<html") {
			parts = append(parts, textPart("text/html", s))
		}
	}
	if a.opts.rawRTF {
		p := newPart("application/rtf", nil)
		p.Header.Set("Content-Transfer-Encoding", "base64")
		p.Body = doc
		parts = append(parts, p)
	}
	return parts
}

func textPart(mediaType, body string) *Part {
	p := newPart(mediaType, map[string]string{"charset": "utf-8"})
	p.Header.Set("Content-Transfer-Encoding", "quoted-printable")
	p.Body = []byte(body)
	return p
}

func attachmentPart(att *Attachment) *Part {
	mediaType := "application/octet-stream"
	if t := strings.TrimSpace(att.MIMETag); strings.Count(t, "/") == 1 {
		mediaType = strings.ToLower(t)
	}
	p := newPart(mediaType, map[string]string{"name": att.Filename})
	disposition := "attachment"
	if att.Inline && att.ContentID != "" {
		disposition = "inline"
	}
	p.Header.SetContentDisposition(disposition, map[string]string{"filename": att.Filename})
	if att.ContentID != "" {
		p.Header.Set("Content-Id", "<"+strings.Trim(att.ContentID, "<>")+">")
	}
	p.Header.Set("Content-Transfer-Encoding", "base64")
	p.Body = att.Data
	return p
}

// subMessagePart embeds an embedded message: appointments as a calendar
// file, everything else as a nested message.
func (a *assembler) subMessagePart(sub *Message) (*Part, error) {
	if sub.Type.IsAppointment() {
		return a.calendarPart(sub), nil
	}
	e, err := a.assemble(sub)
	if err != nil {
		return nil, err
	}
	body, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	name := SanitizeFilename(sub.Subject) + ".eml"
	p := newPart("message/rfc822", map[string]string{"name": name})
	p.Header.SetContentDisposition("attachment", map[string]string{"filename": name})
	p.Body = body
	return p, nil
}

// excludedHeader reports whether a transport header field is replaced by
// the assembled entity's own fields.
func excludedHeader(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "content-") || k == "mime-version"
}

// headers fills h from the transport headers, then from message
// properties for the fields the transport headers lack.
func (a *assembler) headers(m *Message, h *mail.Header) {
	if m.TransportHeaders != "" {
		fields, err := a.opts.headerParser(m.TransportHeaders)
		if err != nil {
			a.log().Warn("transport headers ignored", slog.String("path", m.path), slog.Any("error", err))
		}
		for _, f := range fields {
			if !excludedHeader(f.Key) {
				h.Add(f.Key, f.Value)
			}
		}
	}

	if !h.Has("From") {
		if from, ok := a.opts.resolver.Resolve(m.SenderName, m.SenderEmail); ok {
			h.SetAddressList("From", []*mail.Address{from})
		}
	}
	to, cc := a.recipients(m)
	if !h.Has("To") && len(to) > 0 {
		h.SetAddressList("To", to)
	}
	if !h.Has("Cc") && len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	if !h.Has("Subject") {
		h.SetSubject(m.Subject)
	}
	if !h.Has("Date") {
		switch {
		case !m.SentTime.IsZero():
			h.SetDate(m.SentTime)
		case !m.ReceivedTime.IsZero():
			h.SetDate(m.ReceivedTime)
		}
	}
	if !h.Has("Message-Id") {
		if m.MessageID != "" {
			h.Set("Message-Id", m.MessageID)
		} else {
			h.SetMessageID(uuid.NewString() + "@" + senderDomain(m.SenderEmail))
		}
	}
	if !h.Has("In-Reply-To") && m.InReplyTo != "" {
		h.Set("In-Reply-To", m.InReplyTo)
	}
	if !h.Has("References") && m.References != "" {
		h.Set("References", m.References)
	}
	if name, ok := importanceNames[m.Importance]; ok && m.hasImportance {
		if !h.Has("Importance") {
			h.Set("Importance", name)
		}
		if !h.Has("X-Priority") {
			h.Set("X-Priority", xPriority[m.Importance])
		}
	}
	h.Set("Mime-Version", "1.0")
}

var (
	importanceNames = map[Importance]string{
		ImportanceLow:    "low",
		ImportanceNormal: "normal",
		ImportanceHigh:   "high",
	}
	xPriority = map[Importance]string{
		ImportanceLow:    "5",
		ImportanceNormal: "3",
		ImportanceHigh:   "1",
	}
)

var embeddedAddress = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,4}\b`)

// recipients splits the recipient table into To and Cc lists. Recipients
// without an address use one found in their display name, or are dropped.
func (a *assembler) recipients(m *Message) (to, cc []*mail.Address) {
	for _, r := range m.Recipients {
		email := r.Email
		if email == "" {
			email = embeddedAddress.FindString(r.DisplayName)
		}
		addr, ok := a.opts.resolver.Resolve(r.DisplayName, email)
		if !ok {
			a.log().Debug("recipient dropped", slog.String("path", r.path), slog.String("name", r.DisplayName))
			continue
		}
		if r.Type == RecipientCc {
			cc = append(cc, addr)
		} else {
			to = append(to, addr)
		}
	}
	return to, cc
}

func senderDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 && i < len(email)-1 && isValidEmail(email) {
		return email[i+1:]
	}
	return "localhost"
}
