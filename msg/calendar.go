package msg

import (
	"log/slog"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const calendarProductID = "-//go-msg//msgconv//EN"

// Calendar renders an appointment message as an iCalendar VEVENT.
func Calendar(m *Message, opts ...Option) string {
	a := &assembler{opts: newOptions(opts)}
	return a.calendar(m)
}

func (a *assembler) calendar(m *Message) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	uid := strings.Trim(m.MessageID, "<> ")
	if uid == "" {
		uid = uuid.NewString()
	}
	ev := cal.AddEvent(uid)

	stamp := m.SentTime
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	ev.SetDtStampTime(stamp)

	if appt := m.Appointment; appt != nil {
		if !appt.Start.IsZero() {
			ev.SetStartAt(appt.Start)
		}
		if !appt.End.IsZero() {
			ev.SetEndAt(appt.End)
		}
		if appt.Location != "" {
			ev.SetLocation(appt.Location)
		}
	}
	ev.SetSummary(m.Subject)
	if desc := a.description(m); desc != "" {
		ev.SetDescription(desc)
	}
	if org, ok := a.opts.resolver.Resolve(m.SenderName, m.SenderEmail); ok {
		ev.SetOrganizer("mailto:"+org.Address, ics.WithCN(org.Name))
	}
	ev.SetClass(ics.ClassificationPublic)
	ev.SetPriority(5)
	ev.SetTimeTransparency(ics.TransparencyOpaque)

	return cal.Serialize()
}

// description is the plain body, or the RTF body rendered as text.
func (a *assembler) description(m *Message) string {
	if m.BodyText != "" || len(m.BodyRTF) == 0 {
		return m.BodyText
	}
	doc, err := DecompressRTF(m.BodyRTF)
	if err != nil {
		a.log().Warn("RTF description dropped", slog.String("path", m.path), slog.Any("error", err))
		return ""
	}
	s, err := a.opts.renderer.PlainText(doc)
	if err != nil {
		a.log().Warn("rendering RTF description", slog.String("path", m.path), slog.Any("error", err))
		return ""
	}
	return s
}

func (a *assembler) calendarPart(m *Message) *Part {
	name := SanitizeFilename(m.Subject) + ".ics"
	p := newPart("text/calendar", map[string]string{
		"charset": "utf-8",
		"method":  "PUBLISH",
		"name":    name,
	})
	p.Header.SetContentDisposition("attachment", map[string]string{"filename": name})
	p.Header.Set("Content-Transfer-Encoding", "base64")
	p.Body = []byte(a.calendar(m))
	return p
}
