package rtf

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokGroupStart
	tokGroupEnd
	tokWord   // \word or \wordN
	tokSymbol // \x for a non-letter x
	tokHex    // \'hh
	tokText
)

type token struct {
	kind     tokenKind
	word     string
	param    int
	hasParam bool
	sym      byte
	text     []byte
}

// lexer splits an RTF document into tokens. Bare CR and LF carry no
// meaning in RTF and are dropped.
type lexer struct {
	data []byte
	pos  int
}

func (l *lexer) next() token {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '{':
			l.pos++
			return token{kind: tokGroupStart}
		case '}':
			l.pos++
			return token{kind: tokGroupEnd}
		case '\\':
			return l.control()
		case '\r', '\n':
			l.pos++
			continue
		}
		start := l.pos
		for l.pos < len(l.data) {
			c = l.data[l.pos]
			if c == '{' || c == '}' || c == '\\' || c == '\r' || c == '\n' {
				break
			}
			l.pos++
		}
		return token{kind: tokText, text: l.data[start:l.pos]}
	}
	return token{kind: tokEOF}
}

func (l *lexer) control() token {
	l.pos++ // backslash
	if l.pos >= len(l.data) {
		return token{kind: tokEOF}
	}
	c := l.data[l.pos]
	if !isLetter(c) {
		l.pos++
		if c == '\'' {
			if l.pos+2 <= len(l.data) {
				hi, lo := unhex(l.data[l.pos]), unhex(l.data[l.pos+1])
				if hi >= 0 && lo >= 0 {
					l.pos += 2
					return token{kind: tokHex, param: hi<<4 | lo}
				}
			}
			return l.next()
		}
		// \<CR> and \<LF> are paragraph marks.
		if c == '\r' || c == '\n' {
			return token{kind: tokWord, word: "par"}
		}
		return token{kind: tokSymbol, sym: c}
	}

	start := l.pos
	for l.pos < len(l.data) && isLetter(l.data[l.pos]) {
		l.pos++
	}
	t := token{kind: tokWord, word: string(l.data[start:l.pos])}

	neg := false
	if l.pos < len(l.data) && l.data[l.pos] == '-' {
		neg = true
		l.pos++
	}
	for l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '9' {
		t.hasParam = true
		t.param = t.param*10 + int(l.data[l.pos]-'0')
		if t.param > 1<<20 {
			t.param = 1 << 20
		}
		l.pos++
	}
	if neg {
		t.param = -t.param
	}
	if l.pos < len(l.data) && l.data[l.pos] == ' ' {
		l.pos++
	}
	return t
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
