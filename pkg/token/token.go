package token

import "fmt"

type TokenType string

const (
	// Special
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers & Literals
	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"
	LABEL  = "LABEL" // @name

	// Delimiters
	COMMA = ","
	COLON = ":"

	// Keywords
	SCRIPT   = "SCRIPT"
	METHOD   = "METHOD"
	PROPERTY = "PROPERTY"
	HANDLER  = "HANDLER"
	EVENT    = "EVENT"
	GLOBAL   = "GLOBAL"
	LOCAL    = "LOCAL"
	END      = "END"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Literal, t.Line, t.Column)
}

// Pos formats the token position as line:column.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"script":   SCRIPT,
	"method":   METHOD,
	"property": PROPERTY,
	"handler":  HANDLER,
	"event":    EVENT,
	"global":   GLOBAL,
	"local":    LOCAL,
	"end":      END,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
