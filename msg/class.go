package msg

import "strings"

// MessageType classifies a message by its PR_MESSAGE_CLASS.
type MessageType int

// Message types
const (
	TypeUnknown MessageType = iota
	TypeEmail
	TypeEmailSMS
	TypeEmailNonDeliveryReport
	TypeEmailDeliveryReport
	TypeEmailDelayedDeliveryReport
	TypeEmailReadReceipt
	TypeEmailNonReadReceipt
	TypeEmailEncryptedAndMaybeSigned
	TypeEmailEncryptedAndMaybeSignedNonDelivery
	TypeEmailEncryptedAndMaybeSignedDelivery
	TypeEmailClearSigned
	TypeEmailClearSignedNonDelivery
	TypeEmailClearSignedDelivery
	TypeEmailBMAStub
	TypeAppointment
	TypeAppointmentSchedule
	TypeAppointmentNotification
	TypeAppointmentRequest
	TypeAppointmentRequestNonDelivery
	TypeAppointmentResponseCanceled
	TypeAppointmentResponseCanceledNonDelivery
	TypeAppointmentResponse
	TypeAppointmentResponsePositive
	TypeAppointmentResponsePositiveNonDelivery
	TypeAppointmentResponseNegative
	TypeAppointmentResponseNegativeNonDelivery
	TypeAppointmentResponseTentative
	TypeAppointmentResponseTentativeNonDelivery
	TypeContact
	TypeTask
	TypeTaskRequestAccept
	TypeTaskRequestDecline
	TypeTaskRequestUpdate
	TypeStickyNote
	TypeCiscoUnityVoiceMessage
)

// classes maps upper-cased message class strings to types. Matching is
// exact: "IPM.Note.Foo" is not an email.
var classes = map[string]MessageType{
	"IPM.NOTE":                                  TypeEmail,
	"IPM.NOTE.MOBILE.SMS":                       TypeEmailSMS,
	"REPORT.IPM.NOTE.NDR":                       TypeEmailNonDeliveryReport,
	"REPORT.IPM.NOTE.DR":                        TypeEmailDeliveryReport,
	"REPORT.IPM.NOTE.DELAYED":                   TypeEmailDelayedDeliveryReport,
	"REPORT.IPM.NOTE.IPNRN":                     TypeEmailReadReceipt,
	"REPORT.IPM.NOTE.IPNNRN":                    TypeEmailNonReadReceipt,
	"IPM.NOTE.SMIME":                            TypeEmailEncryptedAndMaybeSigned,
	"REPORT.IPM.NOTE.SMIME.NDR":                 TypeEmailEncryptedAndMaybeSignedNonDelivery,
	"REPORT.IPM.NOTE.SMIME.DR":                  TypeEmailEncryptedAndMaybeSignedDelivery,
	"IPM.NOTE.SMIME.MULTIPARTSIGNED":            TypeEmailClearSigned,
	"IPM.NOTE.RECEIPT.SMIME.MULTIPARTSIGNED":    TypeEmailClearSigned,
	"REPORT.IPM.NOTE.SMIME.MULTIPARTSIGNED.NDR": TypeEmailClearSignedNonDelivery,
	"REPORT.IPM.NOTE.SMIME.MULTIPARTSIGNED.DR":  TypeEmailClearSignedDelivery,
	"IPM.NOTE.BMA.STUB":                         TypeEmailBMAStub,
	"IPM.APPOINTMENT":                           TypeAppointment,
	"IPM.SCHEDULE.MEETING":                      TypeAppointmentSchedule,
	"IPM.NOTIFICATION.MEETING":                  TypeAppointmentNotification,
	"IPM.SCHEDULE.MEETING.REQUEST":              TypeAppointmentRequest,
	"IPM.SCHEDULE.MEETING.REQUEST.NDR":          TypeAppointmentRequestNonDelivery,
	"IPM.SCHEDULE.MEETING.CANCELED":             TypeAppointmentResponseCanceled,
	"IPM.SCHEDULE.MEETING.CANCELED.NDR":         TypeAppointmentResponseCanceledNonDelivery,
	"IPM.SCHEDULE.MEETING.RESPONSE":             TypeAppointmentResponse,
	"IPM.SCHEDULE.MEETING.RESP.POS":             TypeAppointmentResponsePositive,
	"IPM.SCHEDULE.MEETING.RESP.POS.NDR":         TypeAppointmentResponsePositiveNonDelivery,
	"IPM.SCHEDULE.MEETING.RESP.NEG":             TypeAppointmentResponseNegative,
	"IPM.SCHEDULE.MEETING.RESP.NEG.NDR":         TypeAppointmentResponseNegativeNonDelivery,
	"IPM.SCHEDULE.MEETING.RESP.TENT":            TypeAppointmentResponseTentative,
	"IPM.SCHEDULE.MEETING.RESP.TENT.NDR":        TypeAppointmentResponseTentativeNonDelivery,
	"IPM.CONTACT":                               TypeContact,
	"IPM.TASK":                                  TypeTask,
	"IPM.TASKREQUEST.ACCEPT":                    TypeTaskRequestAccept,
	"IPM.TASKREQUEST.DECLINE":                   TypeTaskRequestDecline,
	"IPM.TASKREQUEST.UPDATE":                    TypeTaskRequestUpdate,
	"IPM.STICKYNOTE":                            TypeStickyNote,
	"IPM.NOTE.CUSTOM.CISCO.UNITY.VOICE":         TypeCiscoUnityVoiceMessage,
}

var typeNames = [...]string{
	TypeUnknown:                                 "Unknown",
	TypeEmail:                                   "Email",
	TypeEmailSMS:                                "EmailSMS",
	TypeEmailNonDeliveryReport:                  "EmailNonDeliveryReport",
	TypeEmailDeliveryReport:                     "EmailDeliveryReport",
	TypeEmailDelayedDeliveryReport:              "EmailDelayedDeliveryReport",
	TypeEmailReadReceipt:                        "EmailReadReceipt",
	TypeEmailNonReadReceipt:                     "EmailNonReadReceipt",
	TypeEmailEncryptedAndMaybeSigned:            "EmailEncryptedAndMaybeSigned",
	TypeEmailEncryptedAndMaybeSignedNonDelivery: "EmailEncryptedAndMaybeSignedNonDelivery",
	TypeEmailEncryptedAndMaybeSignedDelivery:    "EmailEncryptedAndMaybeSignedDelivery",
	TypeEmailClearSigned:                        "EmailClearSigned",
	TypeEmailClearSignedNonDelivery:             "EmailClearSignedNonDelivery",
	TypeEmailClearSignedDelivery:                "EmailClearSignedDelivery",
	TypeEmailBMAStub:                            "EmailBMAStub",
	TypeAppointment:                             "Appointment",
	TypeAppointmentSchedule:                     "AppointmentSchedule",
	TypeAppointmentNotification:                 "AppointmentNotification",
	TypeAppointmentRequest:                      "AppointmentRequest",
	TypeAppointmentRequestNonDelivery:           "AppointmentRequestNonDelivery",
	TypeAppointmentResponseCanceled:             "AppointmentResponseCanceled",
	TypeAppointmentResponseCanceledNonDelivery:  "AppointmentResponseCanceledNonDelivery",
	TypeAppointmentResponse:                     "AppointmentResponse",
	TypeAppointmentResponsePositive:             "AppointmentResponsePositive",
	TypeAppointmentResponsePositiveNonDelivery:  "AppointmentResponsePositiveNonDelivery",
	TypeAppointmentResponseNegative:             "AppointmentResponseNegative",
	TypeAppointmentResponseNegativeNonDelivery:  "AppointmentResponseNegativeNonDelivery",
	TypeAppointmentResponseTentative:            "AppointmentResponseTentative",
	TypeAppointmentResponseTentativeNonDelivery: "AppointmentResponseTentativeNonDelivery",
	TypeContact:                                 "Contact",
	TypeTask:                                    "Task",
	TypeTaskRequestAccept:                       "TaskRequestAccept",
	TypeTaskRequestDecline:                      "TaskRequestDecline",
	TypeTaskRequestUpdate:                       "TaskRequestUpdate",
	TypeStickyNote:                              "StickyNote",
	TypeCiscoUnityVoiceMessage:                  "CiscoUnityVoiceMessage",
}

// ParseMessageType maps a message class to its type. Unknown classes
// return TypeUnknown.
func ParseMessageType(class string) MessageType {
	return classes[strings.ToUpper(class)]
}

func (t MessageType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// IsAppointment reports whether messages of this type carry a calendar
// item: the appointment itself and the meeting schedule, notification and
// request classes.
func (t MessageType) IsAppointment() bool {
	switch t {
	case TypeAppointment, TypeAppointmentSchedule, TypeAppointmentNotification, TypeAppointmentRequest:
		return true
	}
	return false
}
