package parser

import (
	"strconv"

	"echo/ast"
	"echo/lexer"
	"echo/value"
)

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.current.Type {
	case lexer.TOKEN_IF:
		return p.parseIfStmt()
	case lexer.TOKEN_WHILE:
		return p.parseWhileStmt()
	case lexer.TOKEN_FOR:
		return p.parseForStmt()
	case lexer.TOKEN_RETURN:
		return p.parseReturnStmt()
	case lexer.TOKEN_BREAK:
		return p.parseBreakStmt()
	case lexer.TOKEN_CONTINUE:
		return p.parseContinueStmt()
	case lexer.TOKEN_TRY:
		return p.parseTryStmt()
	case lexer.TOKEN_MATCH:
		return p.parseMatchStmt()
	case lexer.TOKEN_FN:
		return p.parseFnDeclStmt()
	case lexer.TOKEN_LET, lexer.TOKEN_CONST:
		return p.parseLetStmt()
	case lexer.TOKEN_EVENT:
		return p.parseEventStmt()
	case lexer.TOKEN_SEMICOLON:
		pos := p.current.Position
		p.nextToken()
		return &ast.ExprStmt{Pos: toPos(pos), Expr: nil}, nil
	default:
		return p.parseExprStmt()
	}
}

// parseBody parses statements until one of the given terminator tokens
// is reached, without consuming the terminator.
func (p *Parser) parseBody(terminators ...lexer.TokenType) ([]ast.Stmt, error) {
	var body []ast.Stmt
	for {
		for _, term := range terminators {
			if p.current.Type == term {
				return body, nil
			}
		}
		if p.current.Type == lexer.TOKEN_EOF {
			return body, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

func (p *Parser) parseOptionalLabel() string {
	if p.current.Type == lexer.TOKEN_IDENTIFIER && p.peek.Type == lexer.TOKEN_LPAREN {
		label := p.current.Value
		p.nextToken()
		return label
	}
	return ""
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	if err := p.expect(lexer.TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'if'

	cond, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(lexer.TOKEN_ELSEIF, lexer.TOKEN_ELSE, lexer.TOKEN_ENDIF)
	if err != nil {
		return nil, err
	}

	var elseIfs []*ast.ElseIfClause
	for p.current.Type == lexer.TOKEN_ELSEIF {
		eiPos := p.current.Position
		p.nextToken()
		eiCond, err := p.parseParenExpr()
		if err != nil {
			return nil, err
		}
		eiBody, err := p.parseBody(lexer.TOKEN_ELSEIF, lexer.TOKEN_ELSE, lexer.TOKEN_ENDIF)
		if err != nil {
			return nil, err
		}
		elseIfs = append(elseIfs, &ast.ElseIfClause{Pos: toPos(eiPos), Condition: eiCond, Body: eiBody})
	}

	var elseBody []ast.Stmt
	if p.current.Type == lexer.TOKEN_ELSE {
		p.nextToken()
		elseBody, err = p.parseBody(lexer.TOKEN_ENDIF)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.TOKEN_ENDIF); err != nil {
		return nil, err
	}

	return &ast.IfStmt{Pos: toPos(pos), Condition: cond, Body: body, ElseIfs: elseIfs, Else: elseBody}, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'while'
	label := p.parseOptionalLabel()

	cond, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(lexer.TOKEN_ENDWHILE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Pos: toPos(pos), Label: label, Condition: cond, Body: body}, nil
}

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'for'

	var label string
	if p.current.Type == lexer.TOKEN_IDENTIFIER && p.peek.Type == lexer.TOKEN_IDENTIFIER {
		label = p.current.Value
		p.nextToken()
	}

	if p.current.Type != lexer.TOKEN_IDENTIFIER {
		return nil, p.errorf("expected identifier in for loop")
	}
	valueName := p.current.Value
	p.nextToken()

	var indexName string
	if p.current.Type == lexer.TOKEN_COMMA {
		p.nextToken()
		if p.current.Type != lexer.TOKEN_IDENTIFIER {
			return nil, p.errorf("expected identifier after ',' in for loop")
		}
		indexName = p.current.Value
		p.nextToken()
	}

	if err := p.expect(lexer.TOKEN_IN); err != nil {
		return nil, err
	}

	var container, rangeStart, rangeEnd ast.Expr
	var err error

	if p.current.Type == lexer.TOKEN_LBRACKET {
		p.nextToken()
		rangeStart, err = p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_RANGE); err != nil {
			return nil, err
		}
		rangeEnd, err = p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_RBRACKET); err != nil {
			return nil, err
		}
	} else if p.current.Type == lexer.TOKEN_LPAREN {
		p.nextToken()
		container, err = p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
			return nil, err
		}
	} else {
		return nil, p.errorf("expected '[' or '(' after 'in' in for loop")
	}

	body, err := p.parseBody(lexer.TOKEN_ENDFOR)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_ENDFOR); err != nil {
		return nil, err
	}

	return &ast.ForStmt{
		Pos: toPos(pos), Label: label, Value: valueName, Index: indexName,
		Container: container, RangeStart: rangeStart, RangeEnd: rangeEnd, Body: body,
	}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'return'
	var val ast.Expr
	if p.current.Type != lexer.TOKEN_SEMICOLON {
		v, err := p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		val = v
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Pos: toPos(pos), Value: val}, nil
}

func (p *Parser) parseBreakStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	var label string
	if p.current.Type == lexer.TOKEN_IDENTIFIER {
		label = p.current.Value
		p.nextToken()
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.BreakStmt{Pos: toPos(pos), Label: label}, nil
}

func (p *Parser) parseContinueStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken()
	var label string
	if p.current.Type == lexer.TOKEN_IDENTIFIER {
		label = p.current.Value
		p.nextToken()
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ContinueStmt{Pos: toPos(pos), Label: label}, nil
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	pos := p.current.Position
	isConst := p.current.Type == lexer.TOKEN_CONST
	p.nextToken() // consume 'let' or 'const'
	if p.current.Type != lexer.TOKEN_IDENTIFIER {
		return nil, p.errorf("expected identifier after let/const")
	}
	name := p.current.Value
	p.nextToken()
	if err := p.expect(lexer.TOKEN_ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.ParseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.LetStmt{Pos: toPos(pos), Name: name, Const: isConst, Value: val}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	pos := p.current.Position
	expr, err := p.ParseExpression(PrecLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: toPos(pos), Expr: expr}, nil
}

func (p *Parser) parseFnDeclStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'fn'
	if p.current.Type != lexer.TOKEN_IDENTIFIER {
		return nil, p.errorf("expected function name after 'fn'")
	}
	name := p.current.Value
	p.nextToken()
	if err := p.expect(lexer.TOKEN_LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(lexer.TOKEN_ENDFN)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TOKEN_ENDFN); err != nil {
		return nil, err
	}
	return &ast.FnDeclStmt{Pos: toPos(pos), Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseEventStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'event'
	if p.current.Type != lexer.TOKEN_IDENTIFIER {
		return nil, p.errorf("expected event name")
	}
	name := p.current.Value
	p.nextToken()
	var args []ast.Expr
	if p.current.Type == lexer.TOKEN_LPAREN {
		p.nextToken()
		a, err := p.parseArgList(lexer.TOKEN_RPAREN)
		if err != nil {
			return nil, err
		}
		args = a
	}
	if err := p.expect(lexer.TOKEN_SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.EventStmt{Pos: toPos(pos), Name: name, Args: args}, nil
}

// parseTryStmt parses try/catch/finally, with any combination of catch
// clauses (zero or more) and an optional finally block.
func (p *Parser) parseTryStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'try'

	body, err := p.parseBody(lexer.TOKEN_CATCH, lexer.TOKEN_FINALLY, lexer.TOKEN_ENDTRY)
	if err != nil {
		return nil, err
	}

	var catches []*ast.CatchClause
	for p.current.Type == lexer.TOKEN_CATCH {
		cPos := p.current.Position
		p.nextToken()
		var variable string
		var codes []value.ErrorCode
		isAny := true
		if p.current.Type == lexer.TOKEN_LPAREN {
			p.nextToken()
			if p.current.Type != lexer.TOKEN_RPAREN {
				isAny = false
				for {
					if p.current.Type != lexer.TOKEN_ERROR_LIT {
						return nil, p.errorf("expected error literal in catch clause")
					}
					code, ok := lookupErrorName(p.current.Value)
					if !ok {
						return nil, p.errorf("unknown error literal %q", p.current.Value)
					}
					codes = append(codes, code)
					p.nextToken()
					if p.current.Type == lexer.TOKEN_COMMA {
						p.nextToken()
						continue
					}
					break
				}
			}
			if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
				return nil, err
			}
		}
		if p.current.Type == lexer.TOKEN_IDENTIFIER {
			variable = p.current.Value
			p.nextToken()
		}
		cBody, err := p.parseBody(lexer.TOKEN_CATCH, lexer.TOKEN_FINALLY, lexer.TOKEN_ENDTRY)
		if err != nil {
			return nil, err
		}
		catches = append(catches, &ast.CatchClause{Pos: toPos(cPos), Codes: codes, IsAny: isAny, Variable: variable, Body: cBody})
	}

	var finally []ast.Stmt
	if p.current.Type == lexer.TOKEN_FINALLY {
		p.nextToken()
		finally, err = p.parseBody(lexer.TOKEN_ENDTRY)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.TOKEN_ENDTRY); err != nil {
		return nil, err
	}

	return &ast.TryStmt{Pos: toPos(pos), Body: body, Catches: catches, Finally: finally}, nil
}

func (p *Parser) parseMatchStmt() (ast.Stmt, error) {
	pos := p.current.Position
	p.nextToken() // consume 'match'
	subject, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}

	var cases []*ast.MatchCase
	for p.current.Type == lexer.TOKEN_CASE {
		cPos := p.current.Position
		p.nextToken()
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.current.Type == lexer.TOKEN_WHEN {
			p.nextToken()
			g, err := p.ParseExpression(PrecLowest)
			if err != nil {
				return nil, err
			}
			guard = g
		}
		if err := p.expect(lexer.TOKEN_COLON); err != nil {
			return nil, err
		}
		body, err := p.parseBody(lexer.TOKEN_CASE, lexer.TOKEN_ENDMATCH)
		if err != nil {
			return nil, err
		}
		cases = append(cases, &ast.MatchCase{Pos: toPos(cPos), Pattern: pattern, Guard: guard, Body: body})
	}

	if err := p.expect(lexer.TOKEN_ENDMATCH); err != nil {
		return nil, err
	}

	return &ast.MatchStmt{Pos: toPos(pos), Subject: subject, Cases: cases}, nil
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	pos := p.current.Position
	switch p.current.Type {
	case lexer.TOKEN_UNDERSCORE:
		p.nextToken()
		return &ast.WildcardPattern{Pos: toPos(pos)}, nil
	case lexer.TOKEN_INT:
		n, err := strconv.ParseInt(p.current.Value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer pattern %q: %v", p.current.Value, err)
		}
		p.nextToken()
		return &ast.LiteralPattern{Pos: toPos(pos), Val: value.NewInt(n)}, nil
	case lexer.TOKEN_STRING:
		s := p.current.Literal
		p.nextToken()
		return &ast.LiteralPattern{Pos: toPos(pos), Val: value.NewString(s)}, nil
	case lexer.TOKEN_IDENTIFIER:
		name := p.current.Value
		p.nextToken()
		if p.current.Type == lexer.TOKEN_LPAREN {
			p.nextToken()
			var args []ast.Pattern
			for p.current.Type != lexer.TOKEN_RPAREN {
				arg, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.current.Type == lexer.TOKEN_COMMA {
					p.nextToken()
					continue
				}
				break
			}
			if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
				return nil, err
			}
			return &ast.ConstructorPattern{Pos: toPos(pos), Name: name, Args: args}, nil
		}
		return &ast.IdentPattern{Pos: toPos(pos), Name: name}, nil
	default:
		return nil, p.errorf("unexpected token %s in pattern", p.current.Type)
	}
}
