// Package parser provides a recursive descent SQL parser.
package parser

import (
	"fmt"
	"sync"

	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/lexer"
	"github.com/freeeve/csvql/token"
)

// Parser is a recursive descent SQL parser.
type Parser struct {
	lexer  *lexer.Lexer
	errors []ParseError
	cur    token.Item // current token
	funcID int        // next FuncExpr id, unique within one statement
	depth  int        // expression nesting depth
}

// maxExprDepth bounds expression nesting so pathological inputs fail
// with a parse error instead of exhausting the stack.
const maxExprDepth = 200

// ParseError represents a parse error with position and the unparsed
// remainder of the input.
type ParseError struct {
	Pos       token.Pos
	Message   string
	Remainder string
}

func (e ParseError) Error() string {
	if e.Remainder != "" {
		return fmt.Sprintf("line %d, column %d: %s (unparsed: %q)",
			e.Pos.Line, e.Pos.Column, e.Message, e.Remainder)
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// New creates a new parser for the given input.
func New(input string) *Parser {
	p := &Parser{
		lexer: lexer.New(input),
	}
	p.advance() // Prime the first token
	return p
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// Get returns a parser from the pool for the given input.
// Call Put(p) when done to return it to the pool.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.errors = p.errors[:0]
	p.cur = token.Item{}
	p.funcID = 0
	p.depth = 0
	p.advance()
	return p
}

// Put returns the parser and its lexer to the pool.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Parse parses a single SELECT statement. The whole input must be
// consumed: anything left after the statement is an error.
func (p *Parser) Parse() (ast.Statement, error) {
	if p.curIs(token.EOF) {
		p.errorf("expected SELECT")
		return nil, p.errors[0]
	}
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected %s after statement", p.describeCur())
		return nil, p.errors[0]
	}
	return stmt, nil
}

func (p *Parser) parseStatement() ast.Statement {
	if !p.curIs(token.SELECT) {
		p.errorf("expected SELECT, got %s", p.describeCur())
		return nil
	}
	return p.parseSelect()
}

// Token navigation methods

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

// expect consumes the current token if it matches t, or records an error.
func (p *Parser) expect(t token.Token) bool {
	if !p.curIs(t) {
		p.errorf("expected %s, got %s", t, p.describeCur())
		return false
	}
	p.advance()
	return true
}

// expectIdent consumes the current token as an identifier and returns its
// value. Keywords are reserved and never accepted as identifiers.
func (p *Parser) expectIdent(what string) (string, bool) {
	if !p.curIs(token.IDENT) {
		p.errorf("expected %s, got %s", what, p.describeCur())
		return "", false
	}
	val := p.cur.Value
	p.advance()
	return val, true
}

func (p *Parser) describeCur() string {
	switch p.cur.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.INT:
		return fmt.Sprintf("%q", p.cur.Value)
	case token.STRING:
		return fmt.Sprintf("'%s'", p.cur.Value)
	case token.ILLEGAL:
		return fmt.Sprintf("illegal token %q", p.cur.Value)
	default:
		return p.cur.Type.String()
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{
		Pos:       p.cur.Pos,
		Message:   fmt.Sprintf(format, args...),
		Remainder: p.lexer.Remainder(p.cur.Pos.Offset),
	})
}
