package msg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-msg/internal/cfb/cfbtest"
	"github.com/robert-malhotra/go-msg/internal/mapi"
	"github.com/robert-malhotra/go-msg/internal/mapi/mapitest"
)

// newNote returns a top-level IPM.Note storage with a subject and a plain
// body.
func newNote(subject, body string) *mapitest.Storage {
	s := mapitest.New().Props(mapi.HeaderTop)
	s.Unicode(mapi.TagMessageClass, "IPM.Note")
	s.Unicode(mapi.TagSubject, subject)
	if body != "" {
		s.Unicode(mapi.TagBody, body)
	}
	return s
}

func recipientName(i int) string {
	return fmt.Sprintf("%s#%08X", mapi.RecipientPrefix, i)
}

func attachmentName(i int) string {
	return fmt.Sprintf("%s#%08X", mapi.AttachmentPrefix, i)
}

func addRecipient(s *mapitest.Storage, i int, typ int32, name, email string) *mapitest.Storage {
	r := s.Sub(recipientName(i)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagRecipientType, typ))
	if name != "" {
		r.Unicode(mapi.TagDisplayName, name)
	}
	if email != "" {
		r.Unicode(mapi.TagSMTPAddress, email)
	}
	return r
}

func addAttachment(s *mapitest.Storage, i int, filename string, data []byte) *mapitest.Storage {
	a := s.Sub(attachmentName(i)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachByValue)))
	if filename != "" {
		a.Unicode(mapi.TagAttachLongFilename, filename)
	}
	a.Binary(mapi.TagAttachData, data)
	return a
}

// addEmbedded attaches a message and returns its storage.
func addEmbedded(s *mapitest.Storage, i int, class, subject string) *mapitest.Storage {
	a := s.Sub(attachmentName(i)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachEmbeddedMessage)))
	sub := a.Object(mapi.TagAttachData).Props(mapi.HeaderEmbedded)
	sub.Unicode(mapi.TagMessageClass, class)
	sub.Unicode(mapi.TagSubject, subject)
	return sub
}

func decode(t *testing.T, s *mapitest.Storage, opts ...Option) *Message {
	t.Helper()
	m, err := Decode(s, opts...)
	require.NoError(t, err)
	return m
}

// buildFile serializes s as a compound file.
func buildFile(t *testing.T, s *mapitest.Storage) []byte {
	t.Helper()
	root := cfbtest.NewRoot()
	copyTree(t, root, s)
	return cfbtest.Build(root)
}

func copyTree(t *testing.T, dst *cfbtest.Node, src *mapitest.Storage) {
	for _, name := range src.Children() {
		if src.IsStorage(name) {
			sub, err := src.OpenStorage(name)
			require.NoError(t, err)
			copyTree(t, dst.AddStorage(name), sub.(*mapitest.Storage))
			continue
		}
		data, err := src.ReadStream(name)
		require.NoError(t, err)
		dst.AddStream(name, data)
	}
}
