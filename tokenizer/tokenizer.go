// Package tokenizer splits CSS text into the coarse tokens the parser works
// on. It never fails on unknown characters: anything that is not
// punctuation, whitespace, a string, a comment or an at-keyword is a word.
package tokenizer

import (
	"io"
	"iter"
	"strings"

	"github.com/eykd/postcss-go/ast"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	Space Kind = iota
	Word
	String
	AtWord
	Brackets // a parenthesized run without nested quotes or parens, such as url(a.png)
	Comment
	OpenParen
	CloseParen
	OpenSquare
	CloseSquare
	OpenCurly
	CloseCurly
	Colon
	Semicolon
)

var kindNames = [...]string{
	Space:       "space",
	Word:        "word",
	String:      "string",
	AtWord:      "at-word",
	Brackets:    "brackets",
	Comment:     "comment",
	OpenParen:   "(",
	CloseParen:  ")",
	OpenSquare:  "[",
	CloseSquare: "]",
	OpenCurly:   "{",
	CloseCurly:  "}",
	Colon:       ":",
	Semicolon:   ";",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit. Start and End are byte offsets of its first and
// last byte, both inclusive.
type Token struct {
	Kind  Kind
	Value string
	Start int
	End   int
}

// Tokenizer produces tokens on demand.
type Tokenizer struct {
	in  *ast.Input
	css string
	pos int

	// words remembers emitted words so that "(" can tell whether it opens url().
	words    []Token
	returned []Token
}

// New returns a tokenizer over the text of in.
func New(in *ast.Input) *Tokenizer {
	return &Tokenizer{in: in, css: in.CSS}
}

// Position returns the offset of the next unread byte.
func (t *Tokenizer) Position() int { return t.pos }

// EOF reports whether every token has been consumed.
func (t *Tokenizer) EOF() bool {
	return len(t.returned) == 0 && t.pos >= len(t.css)
}

// Back pushes tok back; the next call to Next returns it again.
func (t *Tokenizer) Back(tok Token) {
	t.returned = append(t.returned, tok)
}

// All returns the remaining tokens. Iteration stops after the first error.
func (t *Tokenizer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := t.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Next returns the next token, or io.EOF when the input is exhausted.
// Unterminated strings, comments and url() brackets are reported as
// *ast.SyntaxError positioned at the token start.
func (t *Tokenizer) Next() (Token, error) {
	if n := len(t.returned); n > 0 {
		tok := t.returned[n-1]
		t.returned = t.returned[:n-1]
		return tok, nil
	}
	css := t.css
	pos := t.pos
	if pos >= len(css) {
		return Token{}, io.EOF
	}

	var tok Token
	switch c := css[pos]; c {
	case ' ', '\n', '\t', '\r', '\f':
		next := pos + 1
		for next < len(css) && isSpace(css[next]) {
			next++
		}
		tok = Token{Kind: Space, Value: css[pos:next], Start: pos, End: next - 1}
		pos = next - 1

	case '[', ']', '{', '}', ':', ';', ')':
		tok = Token{Kind: punctuation[c], Value: css[pos : pos+1], Start: pos, End: pos}

	case '(':
		prev := ""
		if n := len(t.words); n > 0 {
			prev = t.words[n-1].Value
			t.words = t.words[:n-1]
		}
		n := byteAt(css, pos+1)
		if prev == "url" && n != '\'' && n != '"' && !isSpace(n) {
			next, ok := scanClosing(css, pos, ')')
			if !ok {
				return Token{}, t.in.Error("Unclosed bracket", pos, -1)
			}
			tok = Token{Kind: Brackets, Value: css[pos : next+1], Start: pos, End: next}
			pos = next
			break
		}
		next := strings.IndexByte(css[pos+1:], ')')
		if next < 0 {
			tok = Token{Kind: OpenParen, Value: "(", Start: pos, End: pos}
			break
		}
		next += pos + 1
		content := css[pos : next+1]
		if strings.ContainsAny(content[1:], "\r\n\"'(/\\") {
			tok = Token{Kind: OpenParen, Value: "(", Start: pos, End: pos}
			break
		}
		tok = Token{Kind: Brackets, Value: content, Start: pos, End: next}
		pos = next

	case '\'', '"':
		next, ok := scanClosing(css, pos, c)
		if !ok {
			return Token{}, t.in.Error("Unclosed string", pos, -1)
		}
		tok = Token{Kind: String, Value: css[pos : next+1], Start: pos, End: next}
		pos = next

	case '@':
		next := len(css) - 1
		if i := strings.IndexAny(css[pos+1:], atEnd); i >= 0 {
			next = pos + i
		}
		tok = Token{Kind: AtWord, Value: css[pos : next+1], Start: pos, End: next}
		pos = next

	case '\\':
		next := pos
		escape := true
		for byteAt(css, next+1) == '\\' {
			next++
			escape = !escape
		}
		n := byteAt(css, next+1)
		if escape && n != '/' && !isSpace(n) && next+1 < len(css) {
			next++
			if isHex(css[next]) {
				for isHex(byteAt(css, next+1)) {
					next++
				}
				if byteAt(css, next+1) == ' ' {
					next++
				}
			}
		}
		tok = Token{Kind: Word, Value: css[pos : next+1], Start: pos, End: next}
		pos = next

	default:
		if c == '/' && byteAt(css, pos+1) == '*' {
			end := strings.Index(css[pos+2:], "*/")
			if end < 0 {
				return Token{}, t.in.Error("Unclosed comment", pos, -1)
			}
			next := pos + 2 + end + 1
			tok = Token{Kind: Comment, Value: css[pos : next+1], Start: pos, End: next}
			pos = next
			break
		}
		next := wordEnd(css, pos+1) - 1
		tok = Token{Kind: Word, Value: css[pos : next+1], Start: pos, End: next}
		t.words = append(t.words, tok)
		pos = next
	}

	t.pos = pos + 1
	return tok, nil
}

var punctuation = map[byte]Kind{
	'[': OpenSquare,
	']': CloseSquare,
	'{': OpenCurly,
	'}': CloseCurly,
	':': Colon,
	';': Semicolon,
	')': CloseParen,
}

// atEnd lists the bytes that end an at-keyword.
const atEnd = "\t\n\f\r \"#'()/;[\\]{}"

// wordStop lists the bytes that end a word. A "/" ends a word only when it
// starts a comment.
const wordStop = "\t\n\f\r !\"#'():;@[\\]{}"

func wordEnd(css string, from int) int {
	for i := from; i < len(css); i++ {
		c := css[i]
		if strings.IndexByte(wordStop, c) >= 0 || (c == '/' && byteAt(css, i+1) == '*') {
			return i
		}
	}
	return len(css)
}

// scanClosing finds the unescaped closing byte for the token opened at pos.
func scanClosing(css string, pos int, closing byte) (int, bool) {
	next := pos
	for {
		i := strings.IndexByte(css[next+1:], closing)
		if i < 0 {
			return 0, false
		}
		next += 1 + i
		escaped := false
		for j := next; j > 0 && css[j-1] == '\\'; j-- {
			escaped = !escaped
		}
		if !escaped {
			return next, true
		}
	}
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == '\f'
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
