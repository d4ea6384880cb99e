package eval

import (
	"path/filepath"
	"testing"

	"echo/ast"
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

func openTestEvaluator(t *testing.T) (*Evaluator, *objstore.Store) {
	t.Helper()
	store, err := objstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, objid.Root), store
}

func lit(v value.Value) ast.Expr { return &ast.LiteralExpr{Val: v} }

func TestEvalArithmetic(t *testing.T) {
	e, _ := openTestEvaluator(t)
	expr := &ast.BinaryExpr{Op: ast.OpAdd, Left: lit(value.NewInt(2)), Right: lit(value.NewInt(3))}
	r := e.EvalExpr(expr)
	if !r.IsNormal() || r.Val.(value.IntValue).Val != 5 {
		t.Fatalf("got %+v", r)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	e, _ := openTestEvaluator(t)
	expr := &ast.BinaryExpr{Op: ast.OpDiv, Left: lit(value.NewInt(1)), Right: lit(value.NewInt(0))}
	r := e.EvalExpr(expr)
	if !r.IsError() || r.Err.Code != value.ErrDivisionByZero {
		t.Fatalf("got %+v", r)
	}
}

func TestEvalStringConcatRejectsMixedTypes(t *testing.T) {
	e, _ := openTestEvaluator(t)
	expr := &ast.BinaryExpr{Op: ast.OpAdd, Left: lit(value.NewString("a")), Right: lit(value.NewInt(1))}
	r := e.EvalExpr(expr)
	if !r.IsError() || r.Err.Code != value.ErrTypeError {
		t.Fatalf("got %+v", r)
	}
}

func TestShortCircuitAndSkipsFailingRight(t *testing.T) {
	e, _ := openTestEvaluator(t)
	expr := &ast.BinaryExpr{
		Op:   ast.OpAnd,
		Left: lit(value.NewBool(false)),
		Right: &ast.BinaryExpr{Op: ast.OpDiv, Left: lit(value.NewInt(1)), Right: lit(value.NewInt(0))},
	}
	r := e.EvalExpr(expr)
	if !r.IsNormal() || r.Val.(value.BoolValue).Val != false {
		t.Fatalf("got %+v", r)
	}
}

func TestPropertyResolutionWalksParentChain(t *testing.T) {
	e, store := openTestEvaluator(t)
	parent := objstore.NewObject(objid.New(), "parent")
	parent.Properties["greeting"] = value.NewString("hi")
	if err := store.Store(parent); err != nil {
		t.Fatal(err)
	}
	child := objstore.NewObject(objid.New(), "child")
	child.Parent = &parent.ID
	if err := store.Store(child); err != nil {
		t.Fatal(err)
	}

	r := e.resolveProperty(child.ID, "greeting")
	if !r.IsNormal() || r.Val.(value.StringValue).Raw() != "hi" {
		t.Fatalf("got %+v", r)
	}
}

func TestPropertyNotFound(t *testing.T) {
	e, store := openTestEvaluator(t)
	obj := objstore.NewObject(objid.New(), "obj")
	if err := store.Store(obj); err != nil {
		t.Fatal(err)
	}
	r := e.resolveProperty(obj.ID, "missing")
	if !r.IsError() || r.Err.Code != value.ErrPropertyNotFound {
		t.Fatalf("got %+v", r)
	}
}

func TestVerbDispatchScoresExactOverWildcard(t *testing.T) {
	e, store := openTestEvaluator(t)
	obj := objstore.NewObject(objid.New(), "thing")
	obj.Verbs["wild"] = &objstore.VerbDefinition{Name: "get*"}
	obj.Verbs["exact"] = &objstore.VerbDefinition{Name: "get", Code: "return 1;"}
	if err := store.Store(obj); err != nil {
		t.Fatal(err)
	}

	_, verb, ok := e.findVerb(obj.ID, "get")
	if !ok || verb.Name != "get" {
		t.Fatalf("expected exact verb to win, got %+v", verb)
	}
}

func TestVerbNotFound(t *testing.T) {
	e, store := openTestEvaluator(t)
	obj := objstore.NewObject(objid.New(), "thing")
	if err := store.Store(obj); err != nil {
		t.Fatal(err)
	}
	call := &ast.VerbCallExpr{Expr: lit(value.NewObj(obj.ID)), Verb: "nope"}
	r := e.evalVerbCall(call)
	if !r.IsError() || r.Err.Code != value.ErrVerbNotFound {
		t.Fatalf("got %+v", r)
	}
}

func TestLambdaCallBindsRequiredOptionalRest(t *testing.T) {
	e, _ := openTestEvaluator(t)
	lambda := &value.LambdaValue{
		Params: []value.Parameter{
			{Name: "a", Kind: value.ParamRequired},
			{Name: "b", Kind: value.ParamOptional, Default: lit(value.NewInt(9))},
			{Name: "rest", Kind: value.ParamRest},
		},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.IdentifierExpr{Name: "b"}},
		},
		Captured: e.Env,
	}
	r := e.invokeLambda(lambda, []value.Value{value.NewInt(1)})
	if !r.IsNormal() || r.Val.(value.IntValue).Val != 9 {
		t.Fatalf("expected default value 9, got %+v", r)
	}
}

func TestLambdaMissingRequiredArgument(t *testing.T) {
	e, _ := openTestEvaluator(t)
	lambda := &value.LambdaValue{
		Params:   []value.Parameter{{Name: "a", Kind: value.ParamRequired}},
		Body:     []ast.Stmt{},
		Captured: e.Env,
	}
	r := e.invokeLambda(lambda, nil)
	if !r.IsError() || r.Err.Code != value.ErrMissingArgument {
		t.Fatalf("got %+v", r)
	}
}

func TestConstReassignmentFails(t *testing.T) {
	e, _ := openTestEvaluator(t)
	e.Env.Define("x", value.NewInt(1), true)
	ok, isConst := e.Env.Assign("x", value.NewInt(2))
	if ok || !isConst {
		t.Fatalf("expected const reassignment to fail")
	}
}

func TestWhileLoopBreak(t *testing.T) {
	e, _ := openTestEvaluator(t)
	e.Env.Define("i", value.NewInt(0), false)
	stmt := &ast.WhileStmt{
		Condition: lit(value.NewBool(true)),
		Body: []ast.Stmt{
			&ast.BreakStmt{},
		},
	}
	r := e.EvalStmt(stmt)
	if !r.IsNormal() {
		t.Fatalf("got %+v", r)
	}
}

func TestForOverList(t *testing.T) {
	e, _ := openTestEvaluator(t)
	e.Env.Define("sum", value.NewInt(0), false)
	stmt := &ast.ForStmt{
		Value:     "item",
		Container: lit(value.NewList([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})),
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.AssignExpr{
				Target: &ast.IdentifierExpr{Name: "sum"},
				Value: &ast.BinaryExpr{
					Op:    ast.OpAdd,
					Left:  &ast.IdentifierExpr{Name: "sum"},
					Right: &ast.IdentifierExpr{Name: "item"},
				},
			}},
		},
	}
	// sum is defined in the outer frame; for-loop bodies push a child
	// frame, so assignment must walk up to find it.
	if r := e.EvalStmt(stmt); !r.IsNormal() {
		t.Fatalf("got %+v", r)
	}
	v, _ := e.Env.Lookup("sum")
	if v.(value.IntValue).Val != 6 {
		t.Fatalf("expected sum 6, got %v", v)
	}
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	e, _ := openTestEvaluator(t)
	e.Env.Define("ran", value.NewBool(false), false)
	stmt := &ast.TryStmt{
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.BinaryExpr{Op: ast.OpDiv, Left: lit(value.NewInt(1)), Right: lit(value.NewInt(0))}},
		},
		Finally: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.AssignExpr{Target: &ast.IdentifierExpr{Name: "ran"}, Value: lit(value.NewBool(true))}},
		},
	}
	r := e.EvalStmt(stmt)
	if !r.IsError() {
		t.Fatalf("expected the division error to still surface, got %+v", r)
	}
	v, _ := e.Env.Lookup("ran")
	if !v.(value.BoolValue).Val {
		t.Fatalf("expected finally to run")
	}
}

func TestCatchClauseHandlesMatchingCode(t *testing.T) {
	e, _ := openTestEvaluator(t)
	stmt := &ast.TryStmt{
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.BinaryExpr{Op: ast.OpDiv, Left: lit(value.NewInt(1)), Right: lit(value.NewInt(0))}},
		},
		Catches: []*ast.CatchClause{
			{Codes: []value.ErrorCode{value.ErrDivisionByZero}, Body: []ast.Stmt{}},
		},
	}
	r := e.EvalStmt(stmt)
	if !r.IsNormal() {
		t.Fatalf("expected catch to absorb the error, got %+v", r)
	}
}

func TestMatchFallsThroughToMatchFailed(t *testing.T) {
	e, _ := openTestEvaluator(t)
	stmt := &ast.MatchStmt{
		Subject: lit(value.NewInt(5)),
		Cases: []*ast.MatchCase{
			{Pattern: &ast.LiteralPattern{Val: value.NewInt(1)}, Body: []ast.Stmt{}},
		},
	}
	r := e.EvalStmt(stmt)
	if !r.IsError() || r.Err.Code != value.ErrMatchFailed {
		t.Fatalf("got %+v", r)
	}
}

func TestListIndexOutOfRange(t *testing.T) {
	e, _ := openTestEvaluator(t)
	expr := &ast.IndexExpr{
		Expr:  lit(value.NewList([]value.Value{value.NewInt(1)})),
		Index: lit(value.NewInt(5)),
	}
	r := e.EvalExpr(expr)
	if !r.IsError() || r.Err.Code != value.ErrIndexOutOfRange {
		t.Fatalf("got %+v", r)
	}
}

func TestObjRefFallsBackToIntegerConstant(t *testing.T) {
	e, _ := openTestEvaluator(t)
	r := e.evalObjRef(-3)
	if !r.IsNormal() {
		t.Fatalf("got %+v", r)
	}
	if i, ok := r.Val.(value.IntValue); !ok || i.Val != -3 {
		t.Fatalf("expected FAILED_MATCH-style constant -3, got %+v", r.Val)
	}
}
