package rtf

import (
	"bytes"
	"html"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/robert-malhotra/go-msg/internal/codepage"
)

// Renderer turns decompressed RTF into plain text or HTML. The zero value
// is ready to use.
type Renderer struct{}

// IsHTMLEncapsulated reports whether doc carries an HTML body encapsulated
// by Outlook (\fromhtml).
func IsHTMLEncapsulated(doc []byte) bool {
	head := doc
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte(`\fromhtml`))
}

// PlainText renders the visible text of doc.
func (Renderer) PlainText(doc []byte) (string, error) {
	return strings.TrimSpace(interpret(doc, false)), nil
}

// HTML returns the HTML body of doc. Encapsulated HTML is recovered as is;
// any other document is rendered as text inside a minimal page.
func (r Renderer) HTML(doc []byte) (string, error) {
	if IsHTMLEncapsulated(doc) {
		return strings.TrimSpace(interpret(doc, true)), nil
	}
	text, err := r.PlainText(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<html>\r\n<body>\r\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<br>\r\n")
		}
		b.WriteString(html.EscapeString(line))
	}
	b.WriteString("\r\n</body>\r\n</html>")
	return b.String(), nil
}

// destinations are groups whose content is never rendered as text.
var destinations = map[string]bool{
	"colortbl":           true,
	"colorschememapping": true,
	"datastore":          true,
	"filetbl":            true,
	"fldinst":            true,
	"fonttbl":            true,
	"footer":             true,
	"footerf":            true,
	"footerl":            true,
	"footerr":            true,
	"generator":          true,
	"header":             true,
	"headerf":            true,
	"headerl":            true,
	"headerr":            true,
	"info":               true,
	"latentstyles":       true,
	"listoverridetable":  true,
	"listtable":          true,
	"mmathPr":            true,
	"nonshppict":         true,
	"object":             true,
	"pict":               true,
	"private":            true,
	"revtbl":             true,
	"rsidtbl":            true,
	"stylesheet":         true,
	"themedata":          true,
	"xmlnstbl":           true,
}

// specials maps character control words to their text.
var specials = map[string]string{
	"bullet":    "•",
	"emdash":    "—",
	"emspace":   " ",
	"endash":    "–",
	"enspace":   " ",
	"ldblquote": "“",
	"lquote":    "‘",
	"rdblquote": "”",
	"rquote":    "’",
}

type groupState struct {
	skip    bool // ignored destination
	htmltag bool // inside \*\htmltag
	htmlrtf bool // inside \htmlrtf ... \htmlrtf0
	uc      int  // characters to skip after \u
}

// textWriter accumulates output. Raw 8-bit text is buffered so multi-byte
// code pages decode correctly.
type textWriter struct {
	out     strings.Builder
	pending []byte
	dec     *encoding.Decoder
}

func (w *textWriter) raw(b ...byte) {
	w.pending = append(w.pending, b...)
}

func (w *textWriter) str(s string) {
	w.flush()
	w.out.WriteString(s)
}

func (w *textWriter) flush() {
	if len(w.pending) == 0 {
		return
	}
	if decoded, err := w.dec.Bytes(w.pending); err == nil {
		w.out.Write(decoded)
	} else {
		w.out.Write(w.pending)
	}
	w.pending = w.pending[:0]
}

func (w *textWriter) setCodepage(cp int) {
	w.flush()
	w.dec = codepage.Encoding(cp).NewDecoder()
}

// interpret walks doc. In HTML mode only the encapsulated HTML is emitted:
// \*\htmltag groups plus text outside \htmlrtf regions.
func interpret(doc []byte, htmlMode bool) string {
	lx := &lexer{data: doc}
	w := &textWriter{}
	w.setCodepage(codepage.Default)

	newline := "\n"
	if htmlMode {
		newline = "\r\n"
	}

	cur := groupState{uc: 1}
	var stack []groupState
	first := false   // next token is the first of its group
	starred := false // group opened with \*
	skipChars := 0   // fallback characters left to skip after \u

	visible := func() bool {
		if cur.skip {
			return false
		}
		if htmlMode {
			return cur.htmltag || !cur.htmlrtf
		}
		return true
	}

	for {
		t := lx.next()
		wasFirst := first
		first = false

		switch t.kind {
		case tokEOF:
			w.flush()
			return w.out.String()

		case tokGroupStart:
			stack = append(stack, cur)
			first = true
			starred = false
			skipChars = 0

		case tokGroupEnd:
			if n := len(stack); n > 0 {
				cur = stack[n-1]
				stack = stack[:n-1]
			}
			starred = false
			skipChars = 0

		case tokSymbol:
			if t.sym == '*' && wasFirst {
				starred = true
				first = true
				continue
			}
			if !visible() {
				continue
			}
			switch t.sym {
			case '\\', '{', '}':
				w.raw(t.sym)
			case '~':
				if htmlMode && !cur.htmltag {
					w.str("&nbsp;")
				} else {
					w.str("\u00a0")
				}
			case '_':
				w.str("\u2011")
			}

		case tokHex:
			if skipChars > 0 {
				skipChars--
				continue
			}
			if visible() {
				w.raw(byte(t.param))
			}

		case tokText:
			text := t.text
			if skipChars > 0 {
				n := min(skipChars, len(text))
				text = text[n:]
				skipChars -= n
			}
			if visible() {
				w.raw(text...)
			}

		case tokWord:
			if wasFirst {
				if starred {
					starred = false
					if htmlMode && t.word == "htmltag" {
						cur.htmltag = true
					} else {
						cur.skip = true
					}
					continue
				}
				if destinations[t.word] {
					cur.skip = true
					continue
				}
			}
			switch t.word {
			case "ansicpg":
				if t.hasParam {
					w.setCodepage(t.param)
				}
			case "uc":
				if t.hasParam && t.param >= 0 {
					cur.uc = t.param
				}
			case "u":
				if visible() {
					r := t.param
					if r < 0 {
						r += 0x10000
					}
					w.str(string(rune(r)))
				}
				skipChars = cur.uc
			case "htmlrtf":
				cur.htmlrtf = !t.hasParam || t.param != 0
			case "par", "line", "row":
				if visible() {
					w.str(newline)
				}
			case "tab", "cell":
				if visible() {
					w.str("\t")
				}
			default:
				if s, ok := specials[t.word]; ok && visible() {
					w.str(s)
				}
			}
		}
	}
}
