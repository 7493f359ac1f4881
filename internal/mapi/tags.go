package mapi

import "fmt"

// Type is a MAPI property type.
type Type uint16

// Property types
const (
	TypeUnspecified Type = 0x0000
	TypeNull        Type = 0x0001
	TypeInt16       Type = 0x0002
	TypeInt32       Type = 0x0003
	TypeFloat32     Type = 0x0004
	TypeFloat64     Type = 0x0005
	TypeCurrency    Type = 0x0006
	TypeAppTime     Type = 0x0007
	TypeError       Type = 0x000A
	TypeBoolean     Type = 0x000B
	TypeObject      Type = 0x000D
	TypeInt64       Type = 0x0014
	TypeString8     Type = 0x001E
	TypeUnicode     Type = 0x001F
	TypeSysTime     Type = 0x0040
	TypeCLSID       Type = 0x0048
	TypeBinary      Type = 0x0102

	TypeMultiString8 Type = 0x101E
	TypeMultiUnicode Type = 0x101F
)

var typeNames = map[Type]string{
	TypeUnspecified:  "PT_UNSPECIFIED",
	TypeNull:         "PT_NULL",
	TypeInt16:        "PT_I2",
	TypeInt32:        "PT_LONG",
	TypeFloat32:      "PT_R4",
	TypeFloat64:      "PT_DOUBLE",
	TypeCurrency:     "PT_CURRENCY",
	TypeAppTime:      "PT_APPTIME",
	TypeError:        "PT_ERROR",
	TypeBoolean:      "PT_BOOLEAN",
	TypeObject:       "PT_OBJECT",
	TypeInt64:        "PT_I8",
	TypeString8:      "PT_STRING8",
	TypeUnicode:      "PT_UNICODE",
	TypeSysTime:      "PT_SYSTIME",
	TypeCLSID:        "PT_CLSID",
	TypeBinary:       "PT_BINARY",
	TypeMultiString8: "PT_MV_STRING8",
	TypeMultiUnicode: "PT_MV_UNICODE",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// IsMultiValue reports whether the multi-value flag is set.
func (t Type) IsMultiValue() bool {
	return t&0x1000 != 0
}

// ID is a 16-bit property identifier.
type ID uint16

// String renders the id as four upper-case hex digits, the form used in
// stream names.
func (id ID) String() string {
	return fmt.Sprintf("%04X", uint16(id))
}

// IsNamed reports whether id falls in the named property range.
func (id ID) IsNamed() bool {
	return id >= 0x8000
}

// Property ids on messages.
const (
	TagImportance          ID = 0x0017
	TagMessageClass        ID = 0x001A
	TagPriority            ID = 0x0026
	TagSubject             ID = 0x0037
	TagClientSubmitTime    ID = 0x0039
	TagConversationIndex   ID = 0x0071
	TagTransportHeaders    ID = 0x007D
	TagSenderName          ID = 0x0C1A
	TagSenderEmail         ID = 0x0C1F
	TagDisplayTo           ID = 0x0E04
	TagDisplayCc           ID = 0x0E03
	TagMessageDeliveryTime ID = 0x0E06
	TagPrimarySendAccount  ID = 0x0E28
	TagNextSendAccount     ID = 0x0E29
	TagBody                ID = 0x1000
	TagRTFCompressed       ID = 0x1009
	TagBodyHTML            ID = 0x1013
	TagInternetMessageID   ID = 0x1035
	TagInternetReferences  ID = 0x1039
	TagInReplyTo           ID = 0x1042
	TagMessageCodepage     ID = 0x3FFD
	TagInternetCodepage    ID = 0x3FDE
)

// Property ids on recipients.
const (
	TagRecipientType ID = 0x0C15
	TagDisplayName   ID = 0x3001
	TagEmailAddress  ID = 0x3003
	TagSMTPAddress   ID = 0x39FE
	TagOrgAddress    ID = 0x403E
)

// Property ids on attachments.
const (
	TagCreationTime       ID = 0x3007
	TagLastModifiedTime   ID = 0x3008
	TagAttachData         ID = 0x3701
	TagAttachFilename     ID = 0x3704
	TagAttachMethod       ID = 0x3705
	TagAttachLongFilename ID = 0x3707
	TagAttachPathname     ID = 0x3708
	TagRenderingPosition  ID = 0x370B
	TagAttachLongPathname ID = 0x370D
	TagAttachMIMETag      ID = 0x370E
	TagAttachContentID    ID = 0x3712
	TagAttachContactPhoto ID = 0x7FFF
)

// Numeric names of appointment named properties.
const (
	NameLocation          uint32 = 0x8208
	NameStartWhole        uint32 = 0x820D
	NameEndWhole          uint32 = 0x820E
	NameDuration          uint32 = 0x8213
	NameRecurrenceType    uint32 = 0x8231
	NameRecurrencePattern uint32 = 0x8232
	NameAllAttendees      uint32 = 0x8238
	NameToAttendees       uint32 = 0x823B
	NameCcAttendees       uint32 = 0x823C
)

// Storage and stream names.
const (
	SubstgPrefix      = "__substg1.0_"
	PropertiesStream  = "__properties_version1.0"
	RecipientPrefix   = "__recip_version1.0_"
	AttachmentPrefix  = "__attach_version1.0_"
	NameIDStorage     = "__nameid_version1.0"
	EmbeddedContents  = "CONTENTS"
	nameIDEntryStream = "__substg1.0_00030102"
)

// Property table header sizes by object role.
const (
	HeaderTop      = 32
	HeaderEmbedded = 24
	HeaderChild    = 8
)

// StreamName returns the dedicated entry name for a property.
func StreamName(id ID, t Type) string {
	return fmt.Sprintf("%s%04X%04X", SubstgPrefix, uint16(id), uint16(t))
}
