// Package mapi decodes MAPI properties stored in an Outlook message
// compound file.
//
// An object (a message, recipient or attachment) is a storage. Its
// properties live in one of two places:
//
//   - A dedicated stream or storage named "__substg1.0_IIIITTTT", where IIII
//     is the property id and TTTT the property type, both in hex. Strings,
//     binary values, nested objects and multi-valued strings are stored this
//     way. Multi-valued entries add a "-0000000N" suffix per value.
//   - A 16-byte record in the "__properties_version1.0" stream, after a
//     header whose size depends on the object's role (see [HeaderTop],
//     [HeaderEmbedded] and [HeaderChild]). Fixed-width scalars are stored
//     this way.
//
// Use [Load] to index an object and [Object.Get] to decode a property:
//
//	obj, err := mapi.Load(storage, mapi.HeaderTop)
//	subject, ok, err := obj.String(mapi.TagSubject)
//
// A property that is in neither place is reported with ok == false and a
// nil error. Type bytes outside the supported set fail with
// [ErrUnsupportedPropertyType].
//
// # Named properties
//
// Ids 0x8000 and above are assigned per file. [NameIDTable] maps a numeric
// property name such as 0x8208 (appointment location) to the id under which
// the value is stored.
package mapi
