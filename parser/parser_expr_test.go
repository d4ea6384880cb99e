package parser

import (
	"testing"

	"echo/ast"
)

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	p := NewEcho(src)
	expr, err := p.ParseExpression(PrecLowest)
	if err != nil {
		t.Fatalf("ParseExpression(%q) failed: %v", src, err)
	}
	return expr
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	expr := parseExpr(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("top operator = %v, want OpAdd", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.OpMul {
		t.Errorf("right side = %#v, want a multiplication", bin.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 should parse as 2 ^ (3 ^ 2)
	expr := parseExpr(t, "2 ^ 3 ^ 2")
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpPow {
		t.Fatalf("expected top-level power, got %#v", expr)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("right operand should itself be a power expr, got %#v", bin.Right)
	}
	if _, ok := bin.Left.(*ast.LiteralExpr); !ok {
		t.Errorf("left operand should be the literal 2, got %#v", bin.Left)
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	expr := parseExpr(t, "a = b = 1")
	assign, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", expr)
	}
	if _, ok := assign.Value.(*ast.AssignExpr); !ok {
		t.Errorf("expected nested assignment on the right, got %#v", assign.Value)
	}
}

func TestParseTernary(t *testing.T) {
	expr := parseExpr(t, "a ? 1 | 2")
	tern, ok := expr.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("expected TernaryExpr, got %T", expr)
	}
	if tern.Then == nil || tern.Else == nil {
		t.Error("expected both then and else arms")
	}
}

func TestParsePropertyAndVerbCall(t *testing.T) {
	expr := parseExpr(t, "obj.name")
	prop, ok := expr.(*ast.PropertyExpr)
	if !ok || prop.Property != "name" {
		t.Fatalf("expected PropertyExpr(name), got %#v", expr)
	}

	expr = parseExpr(t, `obj:tell("hi", 1)`)
	call, ok := expr.(*ast.VerbCallExpr)
	if !ok || call.Verb != "tell" || len(call.Args) != 2 {
		t.Fatalf("expected VerbCallExpr(tell, 2 args), got %#v", expr)
	}
}

func TestParseIndexAndRange(t *testing.T) {
	expr := parseExpr(t, "a[1]")
	if _, ok := expr.(*ast.IndexExpr); !ok {
		t.Fatalf("expected IndexExpr, got %T", expr)
	}

	expr = parseExpr(t, "a[1..3]")
	if _, ok := expr.(*ast.RangeExpr); !ok {
		t.Fatalf("expected RangeExpr, got %T", expr)
	}
}

func TestParseListAndMapLiterals(t *testing.T) {
	expr := parseExpr(t, "{1, 2, @x}")
	lst, ok := expr.(*ast.ListExpr)
	if !ok || len(lst.Items) != 3 {
		t.Fatalf("expected ListExpr with 3 items, got %#v", expr)
	}
	if _, ok := lst.Items[2].(*ast.SpliceExpr); !ok {
		t.Errorf("expected last item to be a splice, got %#v", lst.Items[2])
	}

	expr = parseExpr(t, `["a" => 1, "b" => 2]`)
	m, ok := expr.(*ast.MapExpr)
	if !ok || len(m.Entries) != 2 {
		t.Fatalf("expected MapExpr with 2 entries, got %#v", expr)
	}
}

func TestParseObjectAndSysProp(t *testing.T) {
	expr := parseExpr(t, "#42")
	ref, ok := expr.(*ast.ObjRefExpr)
	if !ok || ref.MooNum != 42 {
		t.Fatalf("expected ObjRefExpr(42), got %#v", expr)
	}

	expr = parseExpr(t, "$foo")
	sp, ok := expr.(*ast.SysPropExpr)
	if !ok || sp.Name != "foo" {
		t.Fatalf("expected SysPropExpr(foo), got %#v", expr)
	}
}

func TestParseLambdaExpr(t *testing.T) {
	expr := parseExpr(t, "fn(a, ?b = 1, @rest) return a; endfn")
	lam, ok := expr.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected LambdaExpr, got %T", expr)
	}
	if len(lam.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(lam.Params))
	}
	if lam.Params[0].Kind != ast.ParamRequired || lam.Params[1].Kind != ast.ParamOptional || lam.Params[2].Kind != ast.ParamRest {
		t.Errorf("unexpected param kinds: %#v", lam.Params)
	}
}

func TestParseCallExpr(t *testing.T) {
	expr := parseExpr(t, `tostr(1, "x")`)
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("expected CallExpr with 2 args, got %#v", expr)
	}
}
