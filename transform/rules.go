// Package transform implements a rule-driven AST rewriter, run either
// over every verb in a live object store (SystemTracer) or over a
// directory of source files (FileTracer). The rule contract — name,
// description, priority, matches, transform, optional validate — is
// carried over from the original implementation's
// TransformationRule trait, expressed here as a Go interface with
// descent handled by the engine rather than by each rule.
package transform

import (
	"echo/ast"
	"echo/objstore"
	"echo/value"
)

// Context carries the state a rule may need beyond the node it is
// given: the store a SystemTracer run is rewriting against (nil for a
// FileTracer run operating on bare source text), and the verb/object
// currently being visited (for diagnostics).
type Context struct {
	Store      *objstore.Store
	ObjectName string
	VerbName   string
	DryRun     bool
}

// Rule is one transformation. Transform may assume Matches already
// returned true for the same node and context.
type Rule interface {
	Name() string
	Description() string
	Priority() int
	Matches(node ast.Expr, ctx *Context) bool
	Transform(node ast.Expr, ctx *Context) (ast.Expr, error)
}

// Validator is implemented by rules that want to check their own
// output; rules that don't implement it are treated as always valid.
type Validator interface {
	Validate(before, after ast.Expr, ctx *Context) error
}

// PropertySyntaxRule normalizes MOO constants appearing as property
// values — `$name` shorthand used where the parser produced a bare
// SysPropExpr but the surrounding expression expected a fully
// qualified `#0.name` — into an explicit PropertyExpr on #0. Both
// forms evaluate identically; this rule exists so FileTracer output
// is textually uniform regardless of which surface syntax the source
// used.
type PropertySyntaxRule struct{}

func (PropertySyntaxRule) Name() string        { return "PropertySyntaxRule" }
func (PropertySyntaxRule) Priority() int       { return 200 }
func (PropertySyntaxRule) Description() string {
	return "normalizes $name property shorthand into an explicit #0.name access"
}

func (PropertySyntaxRule) Matches(node ast.Expr, ctx *Context) bool {
	_, ok := node.(*ast.SysPropExpr)
	return ok
}

func (PropertySyntaxRule) Transform(node ast.Expr, ctx *Context) (ast.Expr, error) {
	sp := node.(*ast.SysPropExpr)
	return &ast.PropertyExpr{
		Pos:      sp.Pos,
		Expr:     &ast.ObjRefExpr{Pos: sp.Pos, MooNum: 0},
		Property: sp.Name,
	}, nil
}

// ObjectReferenceRule makes the connection-vs-constant check that
// evalObjRef applies implicitly visible in traced source. A negative
// reference is wrapped in a catch expression that tries
// connection_object first and falls back to the bare integer constant
// when no such connection is active. A positive reference (other than
// #0 System or #1 Root, which always resolve directly) is routed
// through resolve_object_ref instead, since those always go through
// the store's MOO bimap regardless of connection state.
type ObjectReferenceRule struct{}

func (ObjectReferenceRule) Name() string  { return "ObjectReferenceRule" }
func (ObjectReferenceRule) Priority() int { return 150 }
func (ObjectReferenceRule) Description() string {
	return "makes the connection-vs-constant check for negative object references explicit"
}

func (ObjectReferenceRule) Matches(node ast.Expr, ctx *Context) bool {
	ref, ok := node.(*ast.ObjRefExpr)
	return ok && ref.MooNum != 0 && ref.MooNum != 1
}

func (ObjectReferenceRule) Transform(node ast.Expr, ctx *Context) (ast.Expr, error) {
	ref := node.(*ast.ObjRefExpr)
	if ref.MooNum < 0 {
		return &ast.CatchExpr{
			Pos: ref.Pos,
			Expr: &ast.CallExpr{
				Pos:    ref.Pos,
				Callee: &ast.IdentifierExpr{Pos: ref.Pos, Name: "connection_object"},
				Args:   []ast.Expr{ref},
			},
			Codes:   []value.ErrorCode{value.ErrMissingArgument, value.ErrTypeError},
			Default: ref,
		}, nil
	}
	return &ast.CallExpr{
		Pos:    ref.Pos,
		Callee: &ast.IdentifierExpr{Pos: ref.Pos, Name: "resolve_object_ref"},
		Args:   []ast.Expr{ref},
	}, nil
}

// BuiltinFunctionRule rewrites a bare call to a known builtin name
// into an explicit method call on $builtins, so traced output never
// depends on the evaluator's identifier-shadowing lookup order to
// find the builtin.
type BuiltinFunctionRule struct {
	Builtins map[string]bool
}

// NewBuiltinFunctionRule returns the rule seeded with the evaluator's
// builtin set.
func NewBuiltinFunctionRule(names ...string) *BuiltinFunctionRule {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &BuiltinFunctionRule{Builtins: set}
}

func (r *BuiltinFunctionRule) Name() string  { return "BuiltinFunctionRule" }
func (r *BuiltinFunctionRule) Priority() int { return 180 }
func (r *BuiltinFunctionRule) Description() string {
	return "rewrites builtin calls into explicit $builtins method calls"
}

func (r *BuiltinFunctionRule) Matches(node ast.Expr, ctx *Context) bool {
	call, ok := node.(*ast.CallExpr)
	if !ok {
		return false
	}
	ident, ok := call.Callee.(*ast.IdentifierExpr)
	return ok && r.Builtins[ident.Name]
}

func (r *BuiltinFunctionRule) Transform(node ast.Expr, ctx *Context) (ast.Expr, error) {
	call := node.(*ast.CallExpr)
	ident := call.Callee.(*ast.IdentifierExpr)
	return &ast.VerbCallExpr{
		Pos:  call.Pos,
		Expr: &ast.SysPropExpr{Pos: call.Pos, Name: "builtins"},
		Verb: ident.Name,
		Args: call.Args,
	}, nil
}
