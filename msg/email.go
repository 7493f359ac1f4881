package msg

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// Email is an assembled MIME message.
type Email struct {
	// Header holds the message-level fields. Content-* fields of the
	// root entity live on Root.
	Header mail.Header
	Root   *Part
}

// Part is one MIME entity. Multipart entities have Children and no Body.
type Part struct {
	Header   message.Header
	Body     []byte
	Children []*Part
}

func newPart(mediaType string, params map[string]string) *Part {
	p := &Part{}
	p.Header.SetContentType(mediaType, params)
	return p
}

func newMultipart(subtype string, children ...*Part) *Part {
	p := newPart("multipart/"+subtype, nil)
	p.Children = children
	return p
}

// MediaType returns the part's media type, such as "text/plain".
func (p *Part) MediaType() string {
	t, _, _ := p.Header.ContentType()
	return t
}

// IsMultipart reports whether the part is a multipart container.
func (p *Part) IsMultipart() bool {
	return strings.HasPrefix(p.MediaType(), "multipart/")
}

// Filename returns the filename parameter of Content-Disposition.
func (p *Part) Filename() string {
	_, params, err := p.Header.ContentDisposition()
	if err != nil {
		return ""
	}
	return params["filename"]
}

// WriteTo writes the message in RFC 5322 form. Bodies are encoded as
// their Content-Transfer-Encoding field says.
func (e *Email) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	var h message.Header
	for f := e.Header.Fields(); f.Next(); {
		h.Add(f.Key(), f.Value())
	}
	for f := e.Root.Header.Fields(); f.Next(); {
		h.Add(f.Key(), f.Value())
	}

	mw, err := message.CreateWriter(cw, h)
	if err != nil {
		return cw.n, fmt.Errorf("writing header: %w", err)
	}
	if err := writeBody(mw, e.Root); err != nil {
		mw.Close()
		return cw.n, err
	}
	if err := mw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes returns the serialized message.
func (e *Email) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBody(w *message.Writer, p *Part) error {
	if !p.IsMultipart() {
		_, err := w.Write(p.Body)
		return err
	}
	for _, c := range p.Children {
		pw, err := w.CreatePart(c.Header)
		if err != nil {
			return fmt.Errorf("creating %s part: %w", c.MediaType(), err)
		}
		if err := writeBody(pw, c); err != nil {
			pw.Close()
			return err
		}
		if err := pw.Close(); err != nil {
			return err
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
