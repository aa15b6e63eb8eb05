package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// singleCharTokens maps single-byte punctuation to their token types.
var singleCharTokens = map[byte]TokenType{
	'(': LPAREN,
	')': RPAREN,
	',': COMMA,
	'|': PIPE,
}

// Lexer splits a query into tokens. Keywords are not distinguished here;
// the parser matches them case-insensitively against IDENT tokens.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over the query text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken scans and returns the next token. It returns EOF repeatedly
// once the input is exhausted.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Position: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]
	if tt, ok := singleCharTokens[ch]; ok {
		l.pos++
		return Token{Type: tt, Value: string(ch), Position: start}
	}

	switch {
	case ch == '-':
		return l.readDash(start)
	case strings.IndexByte("=!<>", ch) >= 0:
		return l.readOperator(start)
	case ch == '\'' || ch == '"':
		return l.readString(start, ch)
	case ch == '`':
		return l.readQuotedIdent(start)
	case isDigit(ch):
		return l.readNumber(start)
	case ch == '_' || isLetter(ch):
		return l.readIdentifier(start)
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return Token{Type: INVALID, Value: l.input[start:l.pos], Position: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset < len(l.input) {
		return l.input[l.pos+offset]
	}
	return 0
}

// readDash scans "->" or a negative number.
func (l *Lexer) readDash(start int) Token {
	switch next := l.peekByte(1); {
	case next == '>':
		l.pos += 2
		return Token{Type: ARROW, Value: "->", Position: start}
	case isDigit(next):
		l.pos++
		tok := l.readNumber(l.pos)
		tok.Value = "-" + tok.Value
		tok.Position = start
		return tok
	}
	l.pos++
	return Token{Type: INVALID, Value: "-", Position: start}
}

// readOperator scans ==, !=, <, <=, > and >=. A lone '=' or '!' is invalid.
func (l *Lexer) readOperator(start int) Token {
	ch := l.input[l.pos]
	if l.peekByte(1) == '=' {
		l.pos += 2
		return Token{Type: OPERATOR, Value: l.input[start:l.pos], Position: start}
	}
	l.pos++
	if ch == '<' || ch == '>' {
		return Token{Type: OPERATOR, Value: string(ch), Position: start}
	}
	return Token{Type: INVALID, Value: string(ch), Position: start}
}

// readString scans a quoted string. A backslash escapes the next character.
// An unterminated string is INVALID.
func (l *Lexer) readString(start int, quote byte) Token {
	l.pos++
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '\\':
			if l.pos+1 < len(l.input) {
				b.WriteByte(l.input[l.pos+1])
				l.pos += 2
				continue
			}
		case quote:
			l.pos++
			return Token{Type: STRING, Value: b.String(), Position: start}
		}
		b.WriteByte(ch)
		l.pos++
	}
	return Token{Type: INVALID, Value: l.input[start:], Position: start}
}

// readQuotedIdent scans a back-quoted identifier, which may hold spaces.
func (l *Lexer) readQuotedIdent(start int) Token {
	end := strings.IndexByte(l.input[start+1:], '`')
	if end <= 0 {
		l.pos = len(l.input)
		return Token{Type: INVALID, Value: l.input[start:], Position: start}
	}
	l.pos = start + 1 + end + 1
	return Token{Type: QUOTED_IDENT, Value: l.input[start+1 : start+1+end], Position: start}
}

func (l *Lexer) readNumber(start int) Token {
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '.' && !seenDot && isDigit(l.peekByte(1)) {
			seenDot = true
			l.pos++
			continue
		}
		if !isDigit(ch) {
			break
		}
		l.pos++
	}
	return Token{Type: NUMBER, Value: l.input[start:l.pos], Position: start}
}

func (l *Lexer) readIdentifier(start int) Token {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch != '_' && !isLetter(ch) && !isDigit(ch) {
			break
		}
		l.pos++
	}
	return Token{Type: IDENT, Value: l.input[start:l.pos], Position: start}
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
