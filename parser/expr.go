package parser

import (
	"strconv"
	"strings"

	"echo/ast"
	"echo/lexer"
	"echo/value"
)

// Precedence levels, low to high, per the operator table: assignment
// and ternary are right-associative; postfix access (. : []) binds
// tighter than unary, which binds tighter than power.
const (
	PrecLowest = iota
	PrecAssign
	PrecTernary
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecAdditive
	PrecMultiplicative
	PrecPower
	PrecUnary
	PrecPostfix
)

func precedenceOf(tt lexer.TokenType) int {
	switch tt {
	case lexer.TOKEN_ASSIGN:
		return PrecAssign
	case lexer.TOKEN_QUESTION:
		return PrecTernary
	case lexer.TOKEN_OR:
		return PrecOr
	case lexer.TOKEN_AND:
		return PrecAnd
	case lexer.TOKEN_EQ, lexer.TOKEN_NE:
		return PrecEquality
	case lexer.TOKEN_LT, lexer.TOKEN_LE, lexer.TOKEN_GT, lexer.TOKEN_GE, lexer.TOKEN_IN:
		return PrecComparison
	case lexer.TOKEN_PLUS, lexer.TOKEN_MINUS:
		return PrecAdditive
	case lexer.TOKEN_STAR, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT:
		return PrecMultiplicative
	case lexer.TOKEN_CARET:
		return PrecPower
	case lexer.TOKEN_DOT, lexer.TOKEN_COLON, lexer.TOKEN_LBRACKET:
		return PrecPostfix
	default:
		return PrecLowest
	}
}

func binOpOf(tt lexer.TokenType) ast.Operator {
	switch tt {
	case lexer.TOKEN_PLUS:
		return ast.OpAdd
	case lexer.TOKEN_MINUS:
		return ast.OpSub
	case lexer.TOKEN_STAR:
		return ast.OpMul
	case lexer.TOKEN_SLASH:
		return ast.OpDiv
	case lexer.TOKEN_PERCENT:
		return ast.OpMod
	case lexer.TOKEN_CARET:
		return ast.OpPow
	case lexer.TOKEN_EQ:
		return ast.OpEq
	case lexer.TOKEN_NE:
		return ast.OpNe
	case lexer.TOKEN_LT:
		return ast.OpLt
	case lexer.TOKEN_LE:
		return ast.OpLe
	case lexer.TOKEN_GT:
		return ast.OpGt
	case lexer.TOKEN_GE:
		return ast.OpGe
	case lexer.TOKEN_AND:
		return ast.OpAnd
	case lexer.TOKEN_OR:
		return ast.OpOr
	case lexer.TOKEN_IN:
		return ast.OpIn
	default:
		return ast.OpAdd
	}
}

// ParseExpression parses an expression with operators binding no
// looser than minPrec, implementing the precedence table via
// precedence climbing over a hand-written prefix/infix split.
func (p *Parser) ParseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.current.Type
		prec := precedenceOf(tt)
		if prec == PrecLowest || prec < minPrec {
			break
		}

		switch tt {
		case lexer.TOKEN_ASSIGN:
			pos := p.current.Position
			p.nextToken()
			right, err := p.ParseExpression(PrecAssign)
			if err != nil {
				return nil, err
			}
			left = &ast.AssignExpr{Pos: toPos(pos), Target: left, Value: right}

		case lexer.TOKEN_QUESTION:
			pos := p.current.Position
			p.nextToken()
			thenExpr, err := p.ParseExpression(PrecTernary)
			if err != nil {
				return nil, err
			}
			// '|' has no dedicated token (Echo has no bitwise-or); it
			// lexes as TOKEN_ILLEGAL and is recognized positionally here.
			if p.current.Value != "|" {
				return nil, p.errorf("expected '|' in ternary expression")
			}
			p.nextToken()
			elseExpr, err := p.ParseExpression(PrecTernary)
			if err != nil {
				return nil, err
			}
			left = &ast.TernaryExpr{Pos: toPos(pos), Condition: left, Then: thenExpr, Else: elseExpr}

		case lexer.TOKEN_DOT:
			pos := p.current.Position
			p.nextToken()
			if p.current.Type != lexer.TOKEN_IDENTIFIER {
				return nil, p.errorf("expected property name after '.'")
			}
			name := p.current.Value
			p.nextToken()
			left = &ast.PropertyExpr{Pos: toPos(pos), Expr: left, Property: name}

		case lexer.TOKEN_COLON:
			pos := p.current.Position
			p.nextToken()
			if p.current.Type != lexer.TOKEN_IDENTIFIER {
				return nil, p.errorf("expected verb name after ':'")
			}
			verb := p.current.Value
			p.nextToken()
			if err := p.expect(lexer.TOKEN_LPAREN); err != nil {
				return nil, err
			}
			args, err := p.parseArgList(lexer.TOKEN_RPAREN)
			if err != nil {
				return nil, err
			}
			left = &ast.VerbCallExpr{Pos: toPos(pos), Expr: left, Verb: verb, Args: args}

		case lexer.TOKEN_LBRACKET:
			pos := p.current.Position
			p.nextToken()
			first, err := p.ParseExpression(PrecLowest)
			if err != nil {
				return nil, err
			}
			if p.current.Type == lexer.TOKEN_RANGE {
				p.nextToken()
				end, err := p.ParseExpression(PrecLowest)
				if err != nil {
					return nil, err
				}
				if err := p.expect(lexer.TOKEN_RBRACKET); err != nil {
					return nil, err
				}
				left = &ast.RangeExpr{Pos: toPos(pos), Expr: left, Start: first, End: end}
			} else {
				if err := p.expect(lexer.TOKEN_RBRACKET); err != nil {
					return nil, err
				}
				left = &ast.IndexExpr{Pos: toPos(pos), Expr: left, Index: first}
			}

		default:
			pos := p.current.Position
			op := binOpOf(tt)
			p.nextToken()
			// '^' (power) is right-associative; everything else here is left.
			nextMin := prec + 1
			if tt == lexer.TOKEN_CARET {
				nextMin = prec
			}
			right, err := p.ParseExpression(nextMin)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{Pos: toPos(pos), Left: left, Op: op, Right: right}
		}
	}

	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	pos := p.current.Position

	switch p.current.Type {
	case lexer.TOKEN_MINUS:
		p.nextToken()
		operand, err := p.ParseExpression(PrecUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: toPos(pos), Op: ast.OpNeg, Operand: operand}, nil

	case lexer.TOKEN_BANG:
		p.nextToken()
		operand, err := p.ParseExpression(PrecUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: toPos(pos), Op: ast.OpNot, Operand: operand}, nil

	case lexer.TOKEN_REST:
		p.nextToken()
		operand, err := p.ParseExpression(PrecUnary)
		if err != nil {
			return nil, err
		}
		return &ast.SpliceExpr{Pos: toPos(pos), Expr: operand}, nil

	case lexer.TOKEN_LPAREN:
		p.nextToken()
		inner, err := p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Pos: toPos(pos), Expr: inner}, nil

	case lexer.TOKEN_LBRACE:
		return p.parseListExpr()

	case lexer.TOKEN_LBRACKET:
		return p.parseMapExpr()

	case lexer.TOKEN_FN:
		return p.parseLambdaExpr()

	case lexer.TOKEN_DOLLAR:
		p.nextToken()
		if p.current.Type != lexer.TOKEN_IDENTIFIER {
			return nil, p.errorf("expected name after '$'")
		}
		name := p.current.Value
		p.nextToken()
		return &ast.SysPropExpr{Pos: toPos(pos), Name: name}, nil

	case lexer.TOKEN_OBJECT:
		n, err := strconv.ParseInt(strings.TrimPrefix(p.current.Value, "#"), 10, 64)
		if err != nil {
			return nil, p.errorf("invalid object literal %q: %v", p.current.Value, err)
		}
		p.nextToken()
		return &ast.ObjRefExpr{Pos: toPos(pos), MooNum: n}, nil

	case lexer.TOKEN_INT:
		n, err := strconv.ParseInt(p.current.Value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q: %v", p.current.Value, err)
		}
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewInt(n)}, nil

	case lexer.TOKEN_FLOAT:
		f, err := strconv.ParseFloat(p.current.Value, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q: %v", p.current.Value, err)
		}
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewFloat(f)}, nil

	case lexer.TOKEN_STRING:
		s := p.current.Literal
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewString(s)}, nil

	case lexer.TOKEN_TRUE:
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewBool(true)}, nil

	case lexer.TOKEN_FALSE:
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewBool(false)}, nil

	case lexer.TOKEN_NULL:
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.Null}, nil

	case lexer.TOKEN_ERROR_LIT:
		code, ok := lookupErrorName(p.current.Value)
		if !ok {
			return nil, p.errorf("unknown error literal %q", p.current.Value)
		}
		p.nextToken()
		return &ast.LiteralExpr{Pos: toPos(pos), Val: value.NewErrorValue(code, "")}, nil

	case lexer.TOKEN_IDENTIFIER:
		name := p.current.Value
		p.nextToken()
		if p.current.Type == lexer.TOKEN_LPAREN {
			p.nextToken()
			args, err := p.parseArgList(lexer.TOKEN_RPAREN)
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Pos: toPos(pos), Callee: &ast.IdentifierExpr{Pos: toPos(pos), Name: name}, Args: args}, nil
		}
		return &ast.IdentifierExpr{Pos: toPos(pos), Name: name}, nil

	default:
		return nil, p.errorf("unexpected token %s %q", p.current.Type, p.current.Value)
	}
}

func (p *Parser) parseArgList(end lexer.TokenType) ([]ast.Expr, error) {
	var args []ast.Expr
	if p.current.Type == end {
		p.nextToken()
		return args, nil
	}
	for {
		arg, err := p.ParseExpression(PrecLowest)
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
	if err := p.expect(end); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseListExpr() (ast.Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume '{'
	items, err := p.parseArgList(lexer.TOKEN_RBRACE)
	if err != nil {
		return nil, err
	}
	return &ast.ListExpr{Pos: toPos(pos), Items: items}, nil
}

func (p *Parser) parseMapExpr() (ast.Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume '['
	var entries []ast.MapEntryExpr
	for p.current.Type != lexer.TOKEN_RBRACKET {
		key, err := p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TOKEN_FATARROW); err != nil {
			return nil, err
		}
		val, err := p.ParseExpression(PrecLowest)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntryExpr{Key: key, Value: val})
		if p.current.Type == lexer.TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.TOKEN_RBRACKET); err != nil {
		return nil, err
	}
	return &ast.MapExpr{Pos: toPos(pos), Entries: entries}, nil
}

func (p *Parser) parseLambdaExpr() (ast.Expr, error) {
	pos := p.current.Position
	p.nextToken() // consume 'fn'
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
	return &ast.LambdaExpr{Pos: toPos(pos), Params: params, Body: body}, nil
}

func (p *Parser) parseParamList() ([]ast.Parameter, error) {
	var params []ast.Parameter
	for p.current.Type != lexer.TOKEN_RPAREN {
		var param ast.Parameter
		switch p.current.Type {
		case lexer.TOKEN_REST:
			p.nextToken()
			if p.current.Type != lexer.TOKEN_IDENTIFIER {
				return nil, p.errorf("expected identifier after '@' in parameter list")
			}
			param = ast.Parameter{Name: p.current.Value, Kind: ast.ParamRest}
			p.nextToken()
		case lexer.TOKEN_QUESTION:
			p.nextToken()
			if p.current.Type != lexer.TOKEN_IDENTIFIER {
				return nil, p.errorf("expected identifier after '?' in parameter list")
			}
			name := p.current.Value
			p.nextToken()
			var def ast.Expr
			if p.current.Type == lexer.TOKEN_ASSIGN {
				p.nextToken()
				d, err := p.ParseExpression(PrecAssign)
				if err != nil {
					return nil, err
				}
				def = d
			}
			param = ast.Parameter{Name: name, Kind: ast.ParamOptional, Default: def}
		case lexer.TOKEN_IDENTIFIER:
			param = ast.Parameter{Name: p.current.Value, Kind: ast.ParamRequired}
			p.nextToken()
		default:
			return nil, p.errorf("expected parameter, got %s", p.current.Type)
		}
		params = append(params, param)
		if p.current.Type == lexer.TOKEN_COMMA {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}
