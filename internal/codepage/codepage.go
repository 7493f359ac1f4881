// Package codepage maps Windows code page numbers to text encodings.
package codepage

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Default is the ANSI code page assumed when none is declared.
const Default = 1252

// names maps Windows code page numbers to IANA charset names.
var names = map[int]string{
	437:   "ibm437",
	850:   "ibm850",
	866:   "ibm866",
	874:   "windows-874",
	932:   "shift_jis",
	936:   "gbk",
	949:   "euc-kr",
	950:   "big5",
	1250:  "windows-1250",
	1251:  "windows-1251",
	1252:  "windows-1252",
	1253:  "windows-1253",
	1254:  "windows-1254",
	1255:  "windows-1255",
	1256:  "windows-1256",
	1257:  "windows-1257",
	1258:  "windows-1258",
	20127: "us-ascii",
	20866: "koi8-r",
	21866: "koi8-u",
	28591: "iso-8859-1",
	28592: "iso-8859-2",
	28593: "iso-8859-3",
	28594: "iso-8859-4",
	28595: "iso-8859-5",
	28596: "iso-8859-6",
	28597: "iso-8859-7",
	28598: "iso-8859-8",
	28599: "iso-8859-9",
	28605: "iso-8859-15",
	50220: "iso-2022-jp",
	51932: "euc-jp",
	54936: "gb18030",
	65001: "utf-8",
}

// Encoding returns the text encoding for a Windows code page.
// Unknown or unsupported code pages fall back to Windows-1252.
func Encoding(cp int) encoding.Encoding {
	name, ok := names[cp]
	if !ok {
		return charmap.Windows1252
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return charmap.Windows1252
	}
	return enc
}
