package parser

import (
	"fmt"
	"strconv"
	"strings"

	"echo/ast"
	"echo/value"
)

// Unparse regenerates Echo source from a parsed program. Round-tripping
// an object file through the import pipeline and back through Unparse
// must reproduce semantically equivalent source (see mooimport).
func Unparse(stmts []ast.Stmt) string {
	var lines []string
	for _, stmt := range stmts {
		lines = append(lines, unparseStmt(stmt, 0))
	}
	return strings.Join(lines, "\n")
}

func indentOf(n int) string { return strings.Repeat("  ", n) }

func unparseStmt(stmt ast.Stmt, indent int) string {
	ind := indentOf(indent)

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if s.Expr == nil {
			return ind + ";"
		}
		return ind + unparseExpr(s.Expr, PrecLowest) + ";"

	case *ast.LetStmt:
		kw := "let"
		if s.Const {
			kw = "const"
		}
		return ind + kw + " " + s.Name + " = " + unparseExpr(s.Value, PrecLowest) + ";"

	case *ast.ReturnStmt:
		if s.Value == nil {
			return ind + "return;"
		}
		return ind + "return " + unparseExpr(s.Value, PrecLowest) + ";"

	case *ast.IfStmt:
		var b strings.Builder
		b.WriteString(ind + "if (" + unparseExpr(s.Condition, PrecLowest) + ")\n")
		b.WriteString(unparseBody(s.Body, indent+1))
		for _, ei := range s.ElseIfs {
			b.WriteString(ind + "elseif (" + unparseExpr(ei.Condition, PrecLowest) + ")\n")
			b.WriteString(unparseBody(ei.Body, indent+1))
		}
		if s.Else != nil {
			b.WriteString(ind + "else\n")
			b.WriteString(unparseBody(s.Else, indent+1))
		}
		b.WriteString(ind + "endif")
		return b.String()

	case *ast.WhileStmt:
		var b strings.Builder
		if s.Label != "" {
			b.WriteString(ind + "while " + s.Label + " (" + unparseExpr(s.Condition, PrecLowest) + ")\n")
		} else {
			b.WriteString(ind + "while (" + unparseExpr(s.Condition, PrecLowest) + ")\n")
		}
		b.WriteString(unparseBody(s.Body, indent+1))
		b.WriteString(ind + "endwhile")
		return b.String()

	case *ast.ForStmt:
		var b strings.Builder
		b.WriteString(ind + "for ")
		if s.Label != "" {
			b.WriteString(s.Label + " ")
		}
		b.WriteString(s.Value)
		if s.Index != "" {
			b.WriteString(", " + s.Index)
		}
		if s.Container != nil {
			b.WriteString(" in (" + unparseExpr(s.Container, PrecLowest) + ")\n")
		} else {
			b.WriteString(" in [" + unparseExpr(s.RangeStart, PrecLowest) + ".." + unparseExpr(s.RangeEnd, PrecLowest) + "]\n")
		}
		b.WriteString(unparseBody(s.Body, indent+1))
		b.WriteString(ind + "endfor")
		return b.String()

	case *ast.BreakStmt:
		if s.Label != "" {
			return ind + "break " + s.Label + ";"
		}
		return ind + "break;"

	case *ast.ContinueStmt:
		if s.Label != "" {
			return ind + "continue " + s.Label + ";"
		}
		return ind + "continue;"

	case *ast.TryStmt:
		var b strings.Builder
		b.WriteString(ind + "try\n")
		b.WriteString(unparseBody(s.Body, indent+1))
		for _, c := range s.Catches {
			b.WriteString(ind + "catch ")
			if !c.IsAny {
				b.WriteString("(")
				for i, code := range c.Codes {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString("E_" + code.Name())
				}
				b.WriteString(") ")
			}
			if c.Variable != "" {
				b.WriteString(c.Variable)
			}
			b.WriteString("\n")
			b.WriteString(unparseBody(c.Body, indent+1))
		}
		if s.Finally != nil {
			b.WriteString(ind + "finally\n")
			b.WriteString(unparseBody(s.Finally, indent+1))
		}
		b.WriteString(ind + "endtry")
		return b.String()

	case *ast.MatchStmt:
		var b strings.Builder
		b.WriteString(ind + "match (" + unparseExpr(s.Subject, PrecLowest) + ")\n")
		for _, c := range s.Cases {
			b.WriteString(ind + "case " + unparsePattern(c.Pattern))
			if c.Guard != nil {
				b.WriteString(" when " + unparseExpr(c.Guard, PrecLowest))
			}
			b.WriteString(":\n")
			b.WriteString(unparseBody(c.Body, indent+1))
		}
		b.WriteString(ind + "endmatch")
		return b.String()

	case *ast.FnDeclStmt:
		var b strings.Builder
		b.WriteString(ind + "fn " + s.Name + "(" + unparseParams(s.Params) + ")\n")
		b.WriteString(unparseBody(s.Body, indent+1))
		b.WriteString(ind + "endfn")
		return b.String()

	case *ast.EventStmt:
		return ind + "event " + s.Name + "(" + unparseArgs(s.Args) + ");"

	default:
		return ind + fmt.Sprintf("<unknown statement: %T>", stmt)
	}
}

func unparseBody(stmts []ast.Stmt, indent int) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(unparseStmt(s, indent) + "\n")
	}
	return b.String()
}

func unparsePattern(p ast.Pattern) string {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return "_"
	case *ast.LiteralPattern:
		return unparseLiteral(pat.Val)
	case *ast.IdentPattern:
		return pat.Name
	case *ast.ConstructorPattern:
		var parts []string
		for _, a := range pat.Args {
			parts = append(parts, unparsePattern(a))
		}
		return pat.Name + "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprintf("<unknown pattern: %T>", p)
	}
}

func unparseParams(params []ast.Parameter) string {
	var parts []string
	for _, p := range params {
		switch p.Kind {
		case ast.ParamOptional:
			s := "?" + p.Name
			if p.Default != nil {
				s += " = " + unparseExpr(p.Default, PrecAssign)
			}
			parts = append(parts, s)
		case ast.ParamRest:
			parts = append(parts, "@"+p.Name)
		default:
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func unparseExpr(expr ast.Expr, parentPrec int) string {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return unparseLiteral(e.Val)

	case *ast.ObjRefExpr:
		return "#" + strconv.FormatInt(e.MooNum, 10)

	case *ast.IdentifierExpr:
		return e.Name

	case *ast.SysPropExpr:
		return "$" + e.Name

	case *ast.UnaryExpr:
		return e.Op.String() + unparseExpr(e.Operand, PrecUnary)

	case *ast.BinaryExpr:
		return unparseBinary(e, parentPrec)

	case *ast.TernaryExpr:
		result := unparseExpr(e.Condition, PrecTernary) + " ? " + unparseExpr(e.Then, PrecTernary) + " | " + unparseExpr(e.Else, PrecTernary)
		if PrecTernary < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.ParenExpr:
		return "(" + unparseExpr(e.Expr, PrecLowest) + ")"

	case *ast.IndexExpr:
		return unparseExpr(e.Expr, PrecPostfix) + "[" + unparseExpr(e.Index, PrecLowest) + "]"

	case *ast.RangeExpr:
		return unparseExpr(e.Expr, PrecPostfix) + "[" + unparseExpr(e.Start, PrecLowest) + ".." + unparseExpr(e.End, PrecLowest) + "]"

	case *ast.PropertyExpr:
		return unparseExpr(e.Expr, PrecPostfix) + "." + e.Property

	case *ast.VerbCallExpr:
		return unparseExpr(e.Expr, PrecPostfix) + ":" + e.Verb + "(" + unparseArgs(e.Args) + ")"

	case *ast.CallExpr:
		return unparseExpr(e.Callee, PrecPostfix) + "(" + unparseArgs(e.Args) + ")"

	case *ast.SpliceExpr:
		return "@" + unparseExpr(e.Expr, PrecUnary)

	case *ast.CatchExpr:
		result := unparseExpr(e.Expr, PrecTernary) + " `! "
		if len(e.Codes) == 0 {
			result += "ANY"
		} else {
			var names []string
			for _, c := range e.Codes {
				names = append(names, "E_"+c.Name())
			}
			result += strings.Join(names, ", ")
		}
		if e.Default != nil {
			result += " => " + unparseExpr(e.Default, PrecTernary)
		}
		return result

	case *ast.AssignExpr:
		result := unparseExpr(e.Target, PrecAssign) + " = " + unparseExpr(e.Value, PrecAssign)
		if PrecAssign < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.ListExpr:
		return "{" + unparseArgs(e.Items) + "}"

	case *ast.MapExpr:
		var pairs []string
		for _, entry := range e.Entries {
			pairs = append(pairs, unparseExpr(entry.Key, PrecLowest)+" => "+unparseExpr(entry.Value, PrecLowest))
		}
		return "[" + strings.Join(pairs, ", ") + "]"

	case *ast.LambdaExpr:
		return "fn(" + unparseParams(e.Params) + ") " + strings.TrimSpace(unparseBody(e.Body, 0)) + " endfn"

	default:
		return fmt.Sprintf("<unknown expr: %T>", expr)
	}
}

func asSystemRef(e ast.Expr) (bool, bool) {
	ref, ok := e.(*ast.ObjRefExpr)
	if !ok {
		return false, false
	}
	return ref.MooNum == 0, true
}

func unparseBinary(e *ast.BinaryExpr, parentPrec int) string {
	prec := binaryPrecedenceOfOp(e.Op)
	left := unparseExpr(e.Left, prec)
	right := unparseExpr(e.Right, prec+1)
	result := left + " " + e.Op.String() + " " + right
	if prec < parentPrec {
		return "(" + result + ")"
	}
	return result
}

func binaryPrecedenceOfOp(op ast.Operator) int {
	switch op {
	case ast.OpOr:
		return PrecOr
	case ast.OpAnd:
		return PrecAnd
	case ast.OpEq, ast.OpNe:
		return PrecEquality
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpIn:
		return PrecComparison
	case ast.OpAdd, ast.OpSub:
		return PrecAdditive
	case ast.OpMul, ast.OpDiv, ast.OpMod:
		return PrecMultiplicative
	case ast.OpPow:
		return PrecPower
	default:
		return PrecLowest
	}
}

func unparseLiteral(v value.Value) string {
	switch val := v.(type) {
	case value.IntValue:
		return strconv.FormatInt(val.Val, 10)
	case value.FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case value.StringValue:
		return strconv.Quote(val.Val)
	case value.BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case value.ErrorValue:
		return "E_" + val.Code.Name()
	default:
		return v.String()
	}
}

func unparseArgs(args []ast.Expr) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, unparseExpr(a, PrecLowest))
	}
	return strings.Join(parts, ", ")
}
