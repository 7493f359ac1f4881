// Package rtf decompresses PR_RTF_COMPRESSED bodies and renders the
// resulting RTF as plain text or HTML.
//
// # Compressed RTF
//
// [Decompress] handles both stream kinds defined by MS-OXRTFCP:
//
//   - "MELA": the RTF follows the 16-byte header uncompressed.
//   - "LZFu": an LZ77 variant over a 4096-byte window pre-seeded with a
//     fixed 207-byte RTF prefix. The payload is protected by a CRC-32
//     computed without the usual pre- and post-inversion.
//
// # Rendering
//
// [Renderer] extracts text from RTF. HTML bodies that Outlook encapsulated
// in RTF (\fromhtml1, MS-OXRTFEX) are recovered from their \*\htmltag
// groups; other documents are rendered as text and wrapped in a minimal
// HTML page.
package rtf
