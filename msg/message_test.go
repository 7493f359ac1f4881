package msg

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-msg/internal/mapi"
	"github.com/robert-malhotra/go-msg/internal/mapi/mapitest"
)

func TestDecodeMessageProperties(t *testing.T) {
	sent := time.Date(2023, time.May, 2, 9, 15, 0, 0, time.UTC)
	received := sent.Add(time.Minute)

	s := newNote("Quarterly report", "See attached.\x00")
	s.Props(mapi.HeaderTop,
		mapitest.SysTime(mapi.TagClientSubmitTime, sent),
		mapitest.SysTime(mapi.TagMessageDeliveryTime, received),
		mapitest.Int32(mapi.TagImportance, int32(ImportanceHigh)),
	)
	s.Unicode(mapi.TagSenderName, "Ann Example")
	s.Unicode(mapi.TagPrimarySendAccount, "ann@example.com")
	s.Unicode(mapi.TagInternetMessageID, "<abc@example.com>")
	s.Binary(mapi.TagBodyHTML, []byte("<p>caf\xe9</p>"))

	m := decode(t, s)
	assert.Equal(t, "IPM.Note", m.Class)
	assert.Equal(t, TypeEmail, m.Type)
	assert.Equal(t, "Quarterly report", m.Subject)
	assert.Equal(t, "See attached.", m.BodyText)
	assert.Equal(t, "<p>café</p>", m.BodyHTML)
	assert.Equal(t, "Ann Example", m.SenderName)
	assert.Equal(t, "ann@example.com", m.SenderEmail)
	assert.Equal(t, "<abc@example.com>", m.MessageID)
	assert.True(t, sent.Equal(m.SentTime))
	assert.True(t, received.Equal(m.ReceivedTime))
	assert.Equal(t, ImportanceHigh, m.Importance)
	assert.True(t, m.HasImportance())
	assert.Equal(t, PriorityNormal, m.Priority)
	assert.False(t, m.HasPriority())
	assert.Equal(t, mapi.DefaultCodepage, m.Codepage)
	assert.Nil(t, m.Appointment)
	assert.Equal(t, "/", m.Path())
}

func TestDecodeString8Codepage(t *testing.T) {
	s := mapitest.New().Props(mapi.HeaderTop, mapitest.Int32(mapi.TagInternetCodepage, 1251))
	s.String8(mapi.TagSubject, []byte{0xcf, 0xf0, 0xe8, 0xe2, 0xe5, 0xf2, 0x00})
	addRecipient(s, 0, 1, "", "").String8(mapi.TagDisplayName, []byte{0xc0, 0xed, 0xed, 0xe0})

	m := decode(t, s)
	assert.Equal(t, 1251, m.Codepage)
	assert.Equal(t, "Привет", m.Subject)
	require.Len(t, m.Recipients, 1)
	assert.Equal(t, "Анна", m.Recipients[0].DisplayName)

	forced := decode(t, s, WithCodepage(1252))
	assert.Equal(t, 1252, forced.Codepage)
	assert.NotEqual(t, "Привет", forced.Subject)
}

func TestParseMessageType(t *testing.T) {
	tests := []struct {
		class string
		want  MessageType
	}{
		{"IPM.Note", TypeEmail},
		{"ipm.note", TypeEmail},
		{"IPM.Note.SMIME.MultipartSigned", TypeEmailClearSigned},
		{"IPM.Note.Receipt.SMIME.MultipartSigned", TypeEmailClearSigned},
		{"REPORT.IPM.Note.NDR", TypeEmailNonDeliveryReport},
		{"IPM.Appointment", TypeAppointment},
		{"IPM.Schedule.Meeting.Request", TypeAppointmentRequest},
		{"IPM.Schedule.Meeting.Resp.Tent", TypeAppointmentResponseTentative},
		{"IPM.Contact", TypeContact},
		{"IPM.StickyNote", TypeStickyNote},
		{"IPM.Note.Custom.Cisco.Unity.Voice", TypeCiscoUnityVoiceMessage},
		{"IPM.Note.Custom", TypeUnknown},
		{"", TypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMessageType(tt.class), tt.class)
	}
	assert.Equal(t, "EmailClearSigned", TypeEmailClearSigned.String())
	assert.True(t, TypeAppointmentRequest.IsAppointment())
	assert.False(t, TypeAppointmentResponse.IsAppointment())
}

func TestRecipients(t *testing.T) {
	s := newNote("hi", "body")
	addRecipient(s, 0, 1, "Ann", "ann@example.com")
	addRecipient(s, 1, 2, "bob@example.com", "")
	addRecipient(s, 2, 3, "Carol", "").Unicode(mapi.TagOrgAddress, "carol@corp.example")
	addRecipient(s, 3, 4, "Projector", "").Unicode(mapi.TagEmailAddress, "/O=ORG/CN=RECIPIENTS/CN=PROJ")
	addRecipient(s, 4, 7, "Room 1", "")
	addRecipient(s, 5, 9, "Dave", "dave@example.com").Unicode(mapi.TagOrgAddress, "ignored@example.com")

	m := decode(t, s)
	require.Len(t, m.Recipients, 6)

	want := []struct {
		name  string
		email string
		typ   RecipientType
	}{
		{"Ann", "ann@example.com", RecipientTo},
		{"bob@example.com", "bob@example.com", RecipientCc},
		{"Carol", "carol@corp.example", RecipientBcc},
		{"Projector", "/O=ORG/CN=RECIPIENTS/CN=PROJ", RecipientResource},
		{"Room 1", "", RecipientRoom},
		{"Dave", "dave@example.com", RecipientUnknown},
	}
	for i, w := range want {
		r := m.Recipients[i]
		assert.Equal(t, w.name, r.DisplayName, "recipient %d", i)
		assert.Equal(t, w.email, r.Email, "recipient %d", i)
		assert.Equal(t, w.typ, r.Type, "recipient %d", i)
	}
}

func TestRecipientTypeMapping(t *testing.T) {
	tests := map[int64]RecipientType{
		1: RecipientTo,
		2: RecipientCc,
		3: RecipientBcc,
		4: RecipientResource,
		7: RecipientRoom,
		0: RecipientUnknown,
		5: RecipientUnknown,
		8: RecipientUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, recipientType(in), "type %d", in)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"john@example.com", true},
		{"john.doe+tag@mail.example.co.uk", true},
		{"o'brien@example.ie", true},
		{`"john doe"@example.com`, true},
		{"john@[192.168.0.1]", true},
		{"jorg@bücher.de", true},
		{"john..doe@example.com", false},
		{"john.@example.com", false},
		{".john@example.com", false},
		{"@example.com", false},
		{"john@", false},
		{"john@localhost", false},
		{"John Smith", false},
		{"john@exa mple.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidEmail(tt.in), tt.in)
	}
}

func TestAttachmentClassification(t *testing.T) {
	s := newNote("outer", "body")
	addAttachment(s, 0, "report.pdf", []byte("%PDF-1.4"))
	inner := addEmbedded(s, 1, "IPM.Note", "inner")
	inner.Unicode(mapi.TagBody, "inner body")

	m := decode(t, s)
	require.Len(t, m.Attachments, 1)
	require.Len(t, m.Messages, 1)

	a := m.Attachments[0]
	assert.Equal(t, "report.pdf", a.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), a.Data)
	assert.Equal(t, AttachByValue, a.Method)
	assert.Equal(t, -1, a.RenderingPosition)
	assert.False(t, a.Inline)

	sub := m.Messages[0]
	assert.Equal(t, "inner", sub.Subject)
	assert.Equal(t, "inner body", sub.BodyText)
	assert.Same(t, m, sub.Parent())
	assert.Equal(t, "/"+attachmentName(1)+"/__substg1.0_3701000D", sub.Path())
}

func TestEmbeddedWithoutStorage(t *testing.T) {
	s := newNote("outer", "body")
	s.Sub(attachmentName(0)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachEmbeddedMessage)))

	_, err := Decode(s)
	assert.ErrorIs(t, err, ErrNotStorage)
}

func TestAttachmentMetadata(t *testing.T) {
	created := time.Date(2020, time.January, 2, 3, 4, 5, 0, time.UTC)
	s := newNote("x", "body")
	a := addAttachment(s, 0, "logo.png", []byte{1, 2, 3})
	a.Props(mapi.HeaderChild,
		mapitest.Int32(mapi.TagAttachMethod, int32(AttachByValue)),
		mapitest.Int32(mapi.TagRenderingPosition, 12),
		mapitest.Bool(mapi.TagAttachContactPhoto, true),
		mapitest.SysTime(mapi.TagCreationTime, created),
	)
	a.Unicode(mapi.TagAttachContentID, "logo@01D9")
	a.Unicode(mapi.TagAttachMIMETag, "image/png")

	att := decode(t, s).Attachments[0]
	assert.Equal(t, "logo@01D9", att.ContentID)
	assert.True(t, att.Inline)
	assert.Equal(t, 12, att.RenderingPosition)
	assert.True(t, att.ContactPhoto)
	assert.True(t, created.Equal(att.Created))
	assert.True(t, att.Modified.IsZero())
	assert.Equal(t, "image/png", att.MIMETag)
}

func TestAttachmentFilenameFallback(t *testing.T) {
	tests := []struct {
		name  string
		props map[mapi.ID]string
		want  string
	}{
		{"long", map[mapi.ID]string{mapi.TagAttachLongFilename: "Long Name.docx", mapi.TagAttachFilename: "LONGNA~1.DOC"}, "Long Name.docx"},
		{"short", map[mapi.ID]string{mapi.TagAttachFilename: "SHORT.TXT"}, "SHORT.TXT"},
		{"display", map[mapi.ID]string{mapi.TagDisplayName: "Picture"}, "Picture"},
		{"sanitized", map[mapi.ID]string{mapi.TagAttachLongFilename: `..\a/b:c?.txt`}, ".._a_b_c_.txt"},
		{"nameless", nil, "Nameless"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newNote("x", "body")
			a := addAttachment(s, 0, "", []byte("data"))
			for id, v := range tt.props {
				a.Unicode(id, v)
			}
			assert.Equal(t, tt.want, decode(t, s).Attachments[0].Filename)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b", SanitizeFilename("a/b"))
	assert.Equal(t, "tab", SanitizeFilename("t\tab"))
	assert.Equal(t, "Nameless", SanitizeFilename("  "))
	assert.Equal(t, "Nameless", SanitizeFilename(".."))
}

func addReference(s *mapitest.Storage, i int, long, short string) {
	a := s.Sub(attachmentName(i)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachByReference)))
	a.Unicode(mapi.TagAttachLongFilename, "notes.txt")
	if long != "" {
		a.Unicode(mapi.TagAttachLongPathname, long)
	}
	if short != "" {
		a.Unicode(mapi.TagAttachPathname, short)
	}
}

func TestByReferenceAttachment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("on disk"), 0o644))

	s := newNote("x", "body")
	addReference(s, 0, filepath.Join(dir, "missing.txt"), filepath.Join(dir, "notes.txt"))
	addReference(s, 1, filepath.Join(dir, "missing.txt"), "")
	addReference(s, 2, "notes.txt", "")

	m := decode(t, s, WithReferenceRoot(dir))
	require.Len(t, m.Attachments, 3)
	assert.Equal(t, []byte("on disk"), m.Attachments[0].Data)
	assert.Equal(t, filepath.Join(dir, "missing.txt"), m.Attachments[0].Pathname)
	assert.Nil(t, m.Attachments[1].Data)
	assert.Equal(t, AttachByReference, m.Attachments[1].Method)
	assert.Equal(t, []byte("on disk"), m.Attachments[2].Data)

	off := decode(t, s, WithReferenceResolution(false))
	assert.Nil(t, off.Attachments[0].Data)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestOLEAttachment(t *testing.T) {
	s := newNote("x", "body")
	a := s.Sub(attachmentName(0)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachOLE)))
	a.Object(mapi.TagAttachData).Stream(mapi.EmbeddedContents, pngHeader)

	b := s.Sub(attachmentName(1)).Props(mapi.HeaderChild, mapitest.Int32(mapi.TagAttachMethod, int32(AttachOLE)))
	b.Unicode(mapi.TagAttachLongFilename, "Diagram")
	b.Object(mapi.TagAttachData).Stream(mapi.EmbeddedContents, pngHeader)

	m := decode(t, s)
	require.Len(t, m.Attachments, 2)
	assert.Equal(t, "Nameless.png", m.Attachments[0].Filename)
	assert.Equal(t, "image/png", m.Attachments[0].MIMETag)
	assert.True(t, m.Attachments[0].Inline)
	assert.Equal(t, pngHeader, m.Attachments[0].Data)
	assert.Equal(t, "Diagram.png", m.Attachments[1].Filename)
}

func TestNamedPropertiesInheritFromParent(t *testing.T) {
	start := time.Date(2024, time.June, 3, 14, 0, 0, 0, time.UTC)
	s := newNote("invite", "body")
	s.NameIDs(map[uint32]uint16{
		mapi.NameLocation:   3,
		mapi.NameStartWhole: 4,
		mapi.NameEndWhole:   5,
	})
	appt := addEmbedded(s, 0, "IPM.Appointment", "Standup")
	appt.Props(mapi.HeaderEmbedded,
		mapitest.SysTime(0x8004, start),
		mapitest.SysTime(0x8005, start.Add(15*time.Minute)),
	)
	appt.Unicode(0x8003, "Room 4")

	m := decode(t, s)
	assert.Nil(t, m.Appointment)
	require.Len(t, m.Messages, 1)

	sub := m.Messages[0]
	require.NotNil(t, sub.Appointment)
	assert.Equal(t, "Room 4", sub.Appointment.Location)
	assert.True(t, start.Equal(sub.Appointment.Start))
	assert.True(t, start.Add(15*time.Minute).Equal(sub.Appointment.End))

	p, ok, err := sub.NamedProperty(mapi.NameLocation)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Room 4", mapi.TrimNul(p.String))

	_, ok, err = sub.NamedProperty(mapi.NameDuration)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNamedPropertyUnresolvedAtRoot(t *testing.T) {
	s := newNote("x", "body")
	s.Unicode(0x8003, "Room 4")

	m := decode(t, s)
	_, ok, err := m.NamedProperty(mapi.NameLocation)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m.Appointment)
}

func TestAppointmentFields(t *testing.T) {
	s := mapitest.New().Props(mapi.HeaderTop,
		mapitest.Int32(0x8001, 90),
		mapitest.Int32(0x8002, 4),
	)
	s.Unicode(mapi.TagMessageClass, "IPM.Appointment")
	s.NameIDs(map[uint32]uint16{
		mapi.NameDuration:       1,
		mapi.NameRecurrenceType: 2,
		mapi.NameToAttendees:    6,
	})
	s.Unicode(0x8006, "Ann; Bob")

	appt := decode(t, s).Appointment
	require.NotNil(t, appt)
	assert.Equal(t, 90*time.Minute, appt.Duration)
	assert.Equal(t, RecurrenceMonthly, appt.RecurrenceType)
	assert.Equal(t, "Ann; Bob", appt.ToAttendees)
	assert.Empty(t, appt.Location)
}

func TestRecurrenceTypeMapping(t *testing.T) {
	tests := map[int64]RecurrenceType{
		0: RecurrenceNone, 1: RecurrenceDaily, 2: RecurrenceWeekly,
		3: RecurrenceMonthly, 4: RecurrenceMonthly,
		5: RecurrenceYearly, 6: RecurrenceYearly, 7: RecurrenceNone,
	}
	for in, want := range tests {
		assert.Equal(t, want, recurrenceType(in), "type %d", in)
	}
}

func TestUnsupportedPropertyTypeFails(t *testing.T) {
	s := newNote("x", "body")
	s.Stream(mapi.StreamName(mapi.TagSenderName, mapi.TypeCLSID), make([]byte, 16))

	_, err := Decode(s)
	assert.ErrorIs(t, err, ErrUnsupportedPropertyType)
}

func TestNestingDepth(t *testing.T) {
	s := newNote("level 0", "body")
	cur := s
	for i := 0; i <= MaxNestingDepth; i++ {
		cur = addEmbedded(cur, 0, "IPM.Note", "nested")
	}
	_, err := Decode(s)
	assert.ErrorIs(t, err, ErrNestingDepth)
}

func TestOpenReaderAndClose(t *testing.T) {
	s := newNote("from disk", "hello")
	addRecipient(s, 0, 1, "Ann", "ann@example.com")
	addAttachment(s, 0, "a.txt", []byte("attached"))

	f, err := OpenReader(bytes.NewReader(buildFile(t, s)))
	require.NoError(t, err)

	m := f.Message()
	require.NotNil(t, m)
	assert.Equal(t, "from disk", m.Subject)
	require.Len(t, m.Recipients, 1)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, []byte("attached"), m.Attachments[0].Data)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Nil(t, f.Message())

	_, _, err = m.Property(mapi.TagSubject)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = m.Recipients[0].Property(mapi.TagDisplayName)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = m.Attachments[0].Property(mapi.TagAttachData)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.msg")
	require.NoError(t, os.WriteFile(path, buildFile(t, newNote("on disk", "body")), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, path, f.Path())
	assert.Equal(t, "on disk", f.Message().Subject)
}

func TestOpenNotMSG(t *testing.T) {
	_, err := OpenReader(bytes.NewReader(bytes.Repeat([]byte("not a msg "), 100)))
	assert.ErrorIs(t, err, ErrNotMSG)

	_, err = Open(filepath.Join(t.TempDir(), "missing.msg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
