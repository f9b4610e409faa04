package parser

import (
	"fmt"
	"strconv"

	"lingoscope/pkg/lexer"
	"lingoscope/pkg/token"
)

type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) ParseFile() *File {
	file := &File{}

	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
		case token.SCRIPT:
			if s := p.parseScript(); s != nil {
				file.Scripts = append(file.Scripts, s)
			}
		default:
			p.errorf(p.curToken, "expected script, got %s", p.curToken.Type)
			p.skipLine()
		}
	}

	return file
}

// parseScript parses a script header and its body up to the next script.
func (p *Parser) parseScript() *Script {
	s := &Script{Token: p.curToken}

	if !p.expectPeek(token.INT) {
		p.skipLine()
		return nil
	}
	id, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as script id", p.curToken.Literal)
	}
	s.ID = id
	if p.peekTokenIs(token.STRING) {
		p.nextToken()
		s.Name = p.curToken.Literal
	}
	p.endLine()

	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.SCRIPT) {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
		case token.METHOD:
			s.IsMethod = true
			p.endLine()
		case token.PROPERTY:
			s.Properties = append(s.Properties, p.parseNameList()...)
			p.endLine()
		case token.HANDLER, token.EVENT:
			if h := p.parseHandler(); h != nil {
				s.Handlers = append(s.Handlers, h)
			}
		default:
			p.errorf(p.curToken, "unexpected %s in script %d", p.curToken.Type, s.ID)
			p.skipLine()
		}
	}

	return s
}

func (p *Parser) parseHandler() *Handler {
	h := &Handler{Token: p.curToken, IsGenericEvent: p.curTokenIs(token.EVENT)}

	if !p.expectPeek(token.IDENT) {
		p.skipLine()
		return nil
	}
	h.Name = p.curToken.Literal
	h.Args = p.parseNameList()
	p.endLine()

	for {
		switch p.curToken.Type {
		case token.EOF, token.SCRIPT, token.HANDLER, token.EVENT:
			p.errorf(p.curToken, "handler %s is missing end", h.Name)
			return h
		case token.END:
			p.endLine()
			return h
		case token.NEWLINE:
			p.nextToken()
		case token.GLOBAL:
			h.Globals = append(h.Globals, p.parseNameList()...)
			p.endLine()
		case token.LOCAL:
			h.Locals = append(h.Locals, p.parseNameList()...)
			p.endLine()
		case token.LABEL:
			label := &Label{Token: p.curToken, Name: p.curToken.Literal}
			if !p.expectPeek(token.COLON) {
				p.skipLine()
				continue
			}
			h.Body = append(h.Body, label)
			p.endLine()
		case token.IDENT:
			h.Body = append(h.Body, p.parseInstruction())
			p.endLine()
		default:
			p.errorf(p.curToken, "unexpected %s in handler %s", p.curToken.Type, h.Name)
			p.skipLine()
		}
	}
}

func (p *Parser) parseInstruction() *Instruction {
	ins := &Instruction{Token: p.curToken}

	switch p.peekToken.Type {
	case token.INT, token.FLOAT, token.STRING, token.IDENT, token.LABEL:
		p.nextToken()
		ins.Operand = p.parseOperand()
	}

	return ins
}

func (p *Parser) parseOperand() *Operand {
	op := &Operand{Token: p.curToken}

	switch p.curToken.Type {
	case token.INT:
		value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
		if err != nil {
			p.errorf(p.curToken, "could not parse %q as integer", p.curToken.Literal)
		}
		op.Int = int(value)
	case token.FLOAT:
		value, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errorf(p.curToken, "could not parse %q as float", p.curToken.Literal)
		}
		op.Float = value
	}

	return op
}

// parseNameList reads "a, b, c" after the current token.
func (p *Parser) parseNameList() []string {
	var names []string
	if !p.peekTokenIs(token.IDENT) {
		return names
	}

	p.nextToken()
	names = append(names, p.curToken.Literal)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return names
		}
		names = append(names, p.curToken.Literal)
	}

	return names
}

// endLine expects the current construct to end the line and advances to the
// first token of the next one.
func (p *Parser) endLine() {
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		p.nextToken()
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		return
	}
	p.errorf(p.peekToken, "expected end of line, got %s", p.peekToken.Type)
	p.nextToken()
	p.skipLine()
}

func (p *Parser) skipLine() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s: %s", tok.Pos(), msg))
}
