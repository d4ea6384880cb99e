package transform

import (
	"os"
	"path/filepath"
	"testing"

	"echo/ast"
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

func TestPropertySyntaxRuleRewritesSysProp(t *testing.T) {
	e := NewEngine(PropertySyntaxRule{})
	ctx := &Context{}
	stats := &Stats{}

	node, err := e.TransformExpr(&ast.SysPropExpr{Name: "player"}, ctx, stats)
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	prop, ok := node.(*ast.PropertyExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.PropertyExpr", node)
	}
	ref, ok := prop.Expr.(*ast.ObjRefExpr)
	if !ok || ref.MooNum != 0 || prop.Property != "player" {
		t.Fatalf("got %+v", prop)
	}
	if stats.Transformed != 1 {
		t.Fatalf("expected one transformation, got %d", stats.Transformed)
	}
}

func TestObjectReferenceRulePositiveResolvesThroughBimap(t *testing.T) {
	e := NewEngine(ObjectReferenceRule{})
	ctx := &Context{}

	positive, err := e.TransformExpr(&ast.ObjRefExpr{MooNum: 5}, ctx, &Stats{})
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	call, ok := positive.(*ast.CallExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CallExpr", positive)
	}
	ident, ok := call.Callee.(*ast.IdentifierExpr)
	if !ok || ident.Name != "resolve_object_ref" {
		t.Fatalf("got callee %+v", call.Callee)
	}
}

func TestObjectReferenceRuleLeavesSystemAndRootAlone(t *testing.T) {
	e := NewEngine(ObjectReferenceRule{})
	ctx := &Context{}

	for _, n := range []int64{0, 1} {
		node, err := e.TransformExpr(&ast.ObjRefExpr{MooNum: n}, ctx, &Stats{})
		if err != nil {
			t.Fatalf("TransformExpr: %v", err)
		}
		if ref, ok := node.(*ast.ObjRefExpr); !ok || ref.MooNum != n {
			t.Fatalf("#%d should pass through unchanged, got %T", n, node)
		}
	}
}

func TestObjectReferenceRuleNegativeWrapsConnectionCatch(t *testing.T) {
	e := NewEngine(ObjectReferenceRule{})
	ctx := &Context{}

	negative, err := e.TransformExpr(&ast.ObjRefExpr{MooNum: -3}, ctx, &Stats{})
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	catch, ok := negative.(*ast.CatchExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CatchExpr", negative)
	}
	call, ok := catch.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CallExpr", catch.Expr)
	}
	ident, ok := call.Callee.(*ast.IdentifierExpr)
	if !ok || ident.Name != "connection_object" {
		t.Fatalf("got callee %+v", call.Callee)
	}
	if len(catch.Codes) == 0 {
		t.Fatal("expected catch codes for the missing-connection case")
	}
	def, ok := catch.Default.(*ast.ObjRefExpr)
	if !ok || def.MooNum != -3 {
		t.Fatalf("expected default to fall back to the bare constant, got %+v", catch.Default)
	}
}

func TestBuiltinFunctionRuleRewritesKnownCall(t *testing.T) {
	rule := NewBuiltinFunctionRule("valid", "typeof")
	e := NewEngine(rule)
	ctx := &Context{}

	call := &ast.CallExpr{
		Callee: &ast.IdentifierExpr{Name: "valid"},
		Args:   []ast.Expr{&ast.LiteralExpr{Val: value.NewInt(1)}},
	}
	node, err := e.TransformExpr(call, ctx, &Stats{})
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	verbCall, ok := node.(*ast.VerbCallExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.VerbCallExpr", node)
	}
	if verbCall.Verb != "valid" {
		t.Fatalf("got verb %q", verbCall.Verb)
	}
	sp, ok := verbCall.Expr.(*ast.SysPropExpr)
	if !ok || sp.Name != "builtins" {
		t.Fatalf("got receiver %+v", verbCall.Expr)
	}
}

func TestBuiltinFunctionRuleIgnoresUnknownCall(t *testing.T) {
	rule := NewBuiltinFunctionRule("valid")
	e := NewEngine(rule)
	call := &ast.CallExpr{Callee: &ast.IdentifierExpr{Name: "mystery"}}
	node, err := e.TransformExpr(call, &Context{}, &Stats{})
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	if _, ok := node.(*ast.CallExpr); !ok {
		t.Fatalf("unknown call should pass through unchanged, got %T", node)
	}
}

func TestEngineDescendsIntoNestedExpressions(t *testing.T) {
	e := NewEngine(ObjectReferenceRule{})
	binary := &ast.BinaryExpr{
		Op:   ast.OpAdd,
		Left: &ast.ObjRefExpr{MooNum: -1},
		Right: &ast.ParenExpr{
			Expr: &ast.ObjRefExpr{MooNum: -2},
		},
	}
	node, err := e.TransformExpr(binary, &Context{}, &Stats{})
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	rewritten := node.(*ast.BinaryExpr)
	if _, ok := rewritten.Left.(*ast.CatchExpr); !ok {
		t.Fatalf("left operand not rewritten: %T", rewritten.Left)
	}
	paren := rewritten.Right.(*ast.ParenExpr)
	if _, ok := paren.Expr.(*ast.CatchExpr); !ok {
		t.Fatalf("nested paren operand not rewritten: %T", paren.Expr)
	}
}

func TestEngineDryRunCountsWithoutRewriting(t *testing.T) {
	e := NewEngine(PropertySyntaxRule{})
	ctx := &Context{DryRun: true}
	stats := &Stats{}
	node, err := e.TransformExpr(&ast.SysPropExpr{Name: "player"}, ctx, stats)
	if err != nil {
		t.Fatalf("TransformExpr: %v", err)
	}
	if _, ok := node.(*ast.SysPropExpr); !ok {
		t.Fatalf("dry run should leave the node unchanged, got %T", node)
	}
	if stats.Transformed != 1 {
		t.Fatalf("dry run should still count the match, got %d", stats.Transformed)
	}
}

func TestSystemTracerRewritesStoredVerb(t *testing.T) {
	store, err := objstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	obj := objstore.NewObject(objid.New(), "thing")
	obj.Verbs["look"] = &objstore.VerbDefinition{
		Name: "look",
		Code: "$player;",
		AST: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.SysPropExpr{Name: "player"}},
		},
	}
	if err := store.Store(obj); err != nil {
		t.Fatalf("Store: %v", err)
	}

	tracer := NewSystemTracer(store, false, PropertySyntaxRule{})
	report := tracer.Run()
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.Transformed != 1 {
		t.Fatalf("expected one transformation, got %d", report.Transformed)
	}

	reloaded, err := store.Get(obj.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	verb := reloaded.Verbs["look"]
	stmt := verb.AST[0].(*ast.ExprStmt)
	if _, ok := stmt.Expr.(*ast.PropertyExpr); !ok {
		t.Fatalf("persisted verb AST was not rewritten: %T", stmt.Expr)
	}
	if verb.Code == "" {
		t.Fatal("expected Code to be re-derived from the rewritten AST")
	}
}

func TestFileTracerRewritesFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.echo")
	if err := os.WriteFile(path, []byte("notify($player, \"hi\");\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tracer := NewFileTracer(dir, ".echo", false, PropertySyntaxRule{})
	report := tracer.Run()
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.ObjectsVisited != 1 {
		t.Fatalf("expected one file visited, got %d", report.ObjectsVisited)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected rewritten file contents")
	}
}
