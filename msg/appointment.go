package msg

import (
	"time"

	"github.com/robert-malhotra/go-msg/internal/mapi"
)

// RecurrenceType is the recurrence frequency of an appointment.
type RecurrenceType int

// Recurrence types
const (
	RecurrenceNone RecurrenceType = iota
	RecurrenceDaily
	RecurrenceWeekly
	RecurrenceMonthly
	RecurrenceYearly
)

func (t RecurrenceType) String() string {
	switch t {
	case RecurrenceDaily:
		return "Daily"
	case RecurrenceWeekly:
		return "Weekly"
	case RecurrenceMonthly:
		return "Monthly"
	case RecurrenceYearly:
		return "Yearly"
	}
	return "None"
}

// recurrenceType maps PidLidRecurrenceType. The "nth" monthly and yearly
// variants fold into their base frequency.
func recurrenceType(v int64) RecurrenceType {
	switch v {
	case 1:
		return RecurrenceDaily
	case 2:
		return RecurrenceWeekly
	case 3, 4:
		return RecurrenceMonthly
	case 5, 6:
		return RecurrenceYearly
	}
	return RecurrenceNone
}

// Appointment holds the calendar named properties of a message.
type Appointment struct {
	Location string
	Start    time.Time
	End      time.Time
	Duration time.Duration

	AllAttendees string
	ToAttendees  string
	CcAttendees  string

	RecurrenceType    RecurrenceType
	RecurrencePattern string
}

// readAppointment reads the appointment named properties. It returns nil
// for non-appointment messages that carry none of them.
func (m *Message) readAppointment(r *propReader) *Appointment {
	var (
		a     Appointment
		found bool
	)
	str := func(name uint32) string {
		if id, ok := m.namedID(name); ok {
			if s, ok := r.str(id); ok {
				found = true
				return s
			}
		}
		return ""
	}
	tm := func(name uint32) time.Time {
		if id, ok := m.namedID(name); ok {
			if t := r.time(id); !t.IsZero() {
				found = true
				return t
			}
		}
		return time.Time{}
	}
	num := func(name uint32) (int64, bool) {
		if id, ok := m.namedID(name); ok {
			if v, ok := r.int(id); ok {
				found = true
				return v, true
			}
		}
		return 0, false
	}

	a.Location = str(mapi.NameLocation)
	a.Start = tm(mapi.NameStartWhole)
	a.End = tm(mapi.NameEndWhole)
	if v, ok := num(mapi.NameDuration); ok {
		a.Duration = time.Duration(v) * time.Minute
	}
	a.AllAttendees = str(mapi.NameAllAttendees)
	a.ToAttendees = str(mapi.NameToAttendees)
	a.CcAttendees = str(mapi.NameCcAttendees)
	if v, ok := num(mapi.NameRecurrenceType); ok {
		a.RecurrenceType = recurrenceType(v)
	}
	a.RecurrencePattern = str(mapi.NameRecurrencePattern)

	if !found && !m.Type.IsAppointment() {
		return nil
	}
	return &a
}
