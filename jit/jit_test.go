package jit

import (
	"testing"

	"echo/ast"
	"echo/value"
)

type fakeEnv map[string]value.Value

func (f fakeEnv) Lookup(name string) (value.Value, bool) {
	v, ok := f[name]
	return v, ok
}

func TestClassifyRejectsFloat(t *testing.T) {
	expr := &ast.BinaryExpr{Op: ast.OpAdd,
		Left:  &ast.LiteralExpr{Val: value.NewFloat(1.5)},
		Right: &ast.LiteralExpr{Val: value.NewInt(2)},
	}
	if classify(expr) {
		t.Fatal("expected float operand to disqualify the subtree")
	}
}

func TestTryEvalCompilesAfterThreshold(t *testing.T) {
	j := New()
	if !j.Enabled() {
		t.Skip("platform not JIT-eligible")
	}
	expr := &ast.BinaryExpr{Op: ast.OpAdd,
		Left:  &ast.LiteralExpr{Val: value.NewInt(2)},
		Right: &ast.LiteralExpr{Val: value.NewInt(3)},
	}
	env := fakeEnv{}

	var last value.Value
	var ok bool
	for i := 0; i < 15; i++ {
		last, ok = j.TryEval(expr, env)
	}
	if !ok {
		t.Fatal("expected the subtree to compile after crossing the hit threshold")
	}
	if last.(value.IntValue).Val != 5 {
		t.Fatalf("got %v", last)
	}
	compiled, _ := j.Stats()
	if compiled != 1 {
		t.Fatalf("expected exactly one compiled subtree, got %d", compiled)
	}
}

func TestTryEvalFallsBackOnDivisionByZero(t *testing.T) {
	j := New()
	if !j.Enabled() {
		t.Skip("platform not JIT-eligible")
	}
	expr := &ast.BinaryExpr{Op: ast.OpDiv,
		Left:  &ast.LiteralExpr{Val: value.NewInt(1)},
		Right: &ast.LiteralExpr{Val: value.NewInt(0)},
	}
	env := fakeEnv{}
	for i := 0; i < 15; i++ {
		_, ok := j.TryEval(expr, env)
		if i == 14 && ok {
			t.Fatal("expected division by zero to decline rather than produce a value")
		}
	}
}

func TestTryEvalDisabledJIT(t *testing.T) {
	j := &JIT{}
	expr := &ast.LiteralExpr{Val: value.NewInt(1)}
	if _, ok := j.TryEval(expr, fakeEnv{}); ok {
		t.Fatal("expected a disabled JIT to always decline")
	}
}
