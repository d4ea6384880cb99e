// Package parser turns Echo source text into an ast.Program (or a
// single ast.Expr/ast.Stmt) using a recursive-descent parser with a
// precedence table for expressions. A second constructor,
// NewMOOCompat, tags the parser with a MOO-compat mode that accepts
// the same grammar; object-file and textdump syntax is read by the
// mooimport package.
package parser

import (
	"fmt"

	"echo/ast"
	"echo/lexer"
)

// Mode records the grammar dialect a Parser was created for. No parse
// function consults it: ModeMOOCompat accepts exactly the expression
// and statement grammar of ModeEcho.
type Mode int

const (
	ModeEcho Mode = iota
	ModeMOOCompat
)

// ParseError locates a syntax failure to a byte offset, per the parser
// contract in the language core.
type ParseError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d (line %d, col %d): %s", e.Offset, e.Line, e.Column, e.Message)
}

// Parser holds two-token lookahead over a Lexer.
type Parser struct {
	lexer   *lexer.Lexer
	mode    Mode
	current lexer.Token
	peek    lexer.Token
}

// NewEcho creates a Parser for the native Echo grammar.
func NewEcho(input string) *Parser {
	return newParser(input, ModeEcho)
}

// NewMOOCompat creates a Parser tagged ModeMOOCompat; it accepts the
// same grammar as NewEcho.
func NewMOOCompat(input string) *Parser {
	return newParser(input, ModeMOOCompat)
}

func newParser(input string, mode Mode) *Parser {
	p := &Parser{lexer: lexer.NewLexer(input), mode: mode}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Offset:  p.current.Position.Offset,
		Line:    p.current.Position.Line,
		Column:  p.current.Position.Column,
	}
}

func (p *Parser) expect(tt lexer.TokenType) error {
	if p.current.Type != tt {
		return p.errorf("expected %s, got %s %q", tt, p.current.Type, p.current.Value)
	}
	p.nextToken()
	return nil
}

func toPos(pos lexer.Position) ast.Position {
	return ast.Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset}
}

// Parse parses a single top-level statement.
func Parse(source string) (ast.Stmt, error) {
	p := NewEcho(source)
	return p.parseStatement()
}

// ParseProgram parses multi-statement input into an ast.Program.
func ParseProgram(source string) (*ast.Program, error) {
	p := NewEcho(source)
	pos := toPos(p.current.Position)
	var stmts []ast.Stmt
	for p.current.Type != lexer.TOKEN_EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &ast.Program{Pos: pos, Stmts: stmts}, nil
}
