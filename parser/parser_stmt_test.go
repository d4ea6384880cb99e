package parser

import (
	"testing"

	"echo/ast"
)

func parseOneStmt(t *testing.T, src string) ast.Stmt {
	t.Helper()
	stmt, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return stmt
}

func TestParseIfElseifElse(t *testing.T) {
	src := `if (a) return 1; elseif (b) return 2; else return 3; endif`
	stmt := parseOneStmt(t, src)
	ifs, ok := stmt.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", stmt)
	}
	if len(ifs.ElseIfs) != 1 {
		t.Errorf("expected 1 elseif, got %d", len(ifs.ElseIfs))
	}
	if len(ifs.Else) != 1 {
		t.Errorf("expected else body of 1 stmt, got %d", len(ifs.Else))
	}
}

func TestParseWhileWithLabel(t *testing.T) {
	src := `while outer (x) break outer; endwhile`
	stmt := parseOneStmt(t, src)
	w, ok := stmt.(*ast.WhileStmt)
	if !ok || w.Label != "outer" {
		t.Fatalf("expected labeled WhileStmt, got %#v", stmt)
	}
}

func TestParseForContainerAndRange(t *testing.T) {
	stmt := parseOneStmt(t, `for x in (items) continue; endfor`)
	f, ok := stmt.(*ast.ForStmt)
	if !ok || f.Container == nil {
		t.Fatalf("expected ForStmt over a container, got %#v", stmt)
	}

	stmt = parseOneStmt(t, `for i in [1..10] continue; endfor`)
	f, ok = stmt.(*ast.ForStmt)
	if !ok || f.RangeStart == nil || f.RangeEnd == nil {
		t.Fatalf("expected ForStmt over a range, got %#v", stmt)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `try
		x = 1 / 0;
	catch (E_DivisionByZero) e
		x = 0;
	finally
		y = 1;
	endtry`
	stmt := parseOneStmt(t, src)
	tr, ok := stmt.(*ast.TryStmt)
	if !ok {
		t.Fatalf("expected TryStmt, got %T", stmt)
	}
	if len(tr.Catches) != 1 || tr.Catches[0].Variable != "e" {
		t.Fatalf("expected 1 catch clause binding 'e', got %#v", tr.Catches)
	}
	if tr.Finally == nil {
		t.Fatal("expected finally block to be present")
	}
}

func TestParseMatchStmt(t *testing.T) {
	src := `match (x)
		case 1:
			return "one";
		case n when n > 1:
			return "many";
		case _:
			return "other";
	endmatch`
	stmt := parseOneStmt(t, src)
	m, ok := stmt.(*ast.MatchStmt)
	if !ok {
		t.Fatalf("expected MatchStmt, got %T", stmt)
	}
	if len(m.Cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(m.Cases))
	}
	if _, ok := m.Cases[0].Pattern.(*ast.LiteralPattern); !ok {
		t.Errorf("case 0 pattern = %#v, want LiteralPattern", m.Cases[0].Pattern)
	}
	if m.Cases[1].Guard == nil {
		t.Error("case 1 should have a guard")
	}
	if _, ok := m.Cases[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("case 2 pattern = %#v, want WildcardPattern", m.Cases[2].Pattern)
	}
}

func TestParseFnDecl(t *testing.T) {
	stmt := parseOneStmt(t, `fn add(a, b) return a + b; endfn`)
	fn, ok := stmt.(*ast.FnDeclStmt)
	if !ok || fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("expected FnDeclStmt(add, 2 params), got %#v", stmt)
	}
}

func TestParseLetConst(t *testing.T) {
	stmt := parseOneStmt(t, `let x = 1;`)
	l, ok := stmt.(*ast.LetStmt)
	if !ok || l.Const {
		t.Fatalf("expected mutable LetStmt, got %#v", stmt)
	}

	stmt = parseOneStmt(t, `const y = 2;`)
	l, ok = stmt.(*ast.LetStmt)
	if !ok || !l.Const {
		t.Fatalf("expected const LetStmt, got %#v", stmt)
	}
}

func TestParseProgramMultipleStatements(t *testing.T) {
	prog, err := ParseProgram("let x = 1; let y = 2; return x + y;")
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	if len(prog.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Stmts))
	}
}
