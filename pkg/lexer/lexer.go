package lexer

import (
	"strings"

	"lingoscope/pkg/token"
)

// Lexer splits Lingo assembly into tokens. Newlines are significant; ';'
// starts a comment that runs to the end of the line.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}

	if l.ch == ';' {
		l.skipComment()
	}

	line, column := l.line, l.column

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, line, column)
		l.readChar()
		l.line++
		l.column = 1
		return tok
	case ',':
		tok = newToken(token.COMMA, l.ch, line, column)
	case ':':
		tok = newToken(token.COLON, l.ch, line, column)
	case '"':
		literal, ok := l.readString()
		tok = token.Token{Type: token.STRING, Literal: literal, Line: line, Column: column}
		if !ok {
			tok.Type = token.ILLEGAL
			return tok
		}
	case '@':
		l.readChar()
		name := l.readIdentifier()
		if name == "" {
			return token.Token{Type: token.ILLEGAL, Literal: "@", Line: line, Column: column}
		}
		return token.Token{Type: token.LABEL, Literal: name, Line: line, Column: column}
	case 0:
		tok = token.Token{Type: token.EOF, Literal: "", Line: line, Column: column}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal, Line: line, Column: column}
		}
		if isDigit(l.ch) || (l.ch == '-' && (isDigit(l.peekChar()) || l.peekChar() == '.')) {
			literal, isFloat := l.readNumber()
			tok = token.Token{Type: token.INT, Literal: literal, Line: line, Column: column}
			if isFloat {
				tok.Type = token.FLOAT
			}
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch, line, column)
	}

	l.readChar()
	return tok
}

func newToken(tokenType token.TokenType, ch byte, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	isFloat := false
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position], isFloat
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readString reads a quoted string. The closing quote is left as the current
// char. It reports false when the line ends before the string does.
func (l *Lexer) readString() (string, bool) {
	var result strings.Builder
	l.readChar() // opening quote

	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return result.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			case '0':
				result.WriteByte('\x00')
			case 'x':
				if hex, ok := l.readHexByte(); ok {
					result.WriteByte(hex)
					break
				}
				result.WriteString("\\x")
			default:
				result.WriteByte('\\')
				result.WriteByte(l.ch)
			}
		} else {
			result.WriteByte(l.ch)
		}
		l.readChar()
	}

	return result.String(), true
}

// readHexByte reads the two hex digits of a \x escape.
func (l *Lexer) readHexByte() (byte, bool) {
	hi, ok1 := hexValue(l.peekChar())
	if !ok1 {
		return 0, false
	}
	l.readChar()
	lo, ok2 := hexValue(l.peekChar())
	if !ok2 {
		return 0, false
	}
	l.readChar()
	return hi<<4 | lo, true
}

func hexValue(ch byte) (byte, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}
