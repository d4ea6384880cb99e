// Package eval implements the tree-walking interpreter: expression and
// statement dispatch, operator semantics, property and verb
// resolution, lambda calling convention, and the narrow builtin set.
package eval

import (
	"echo/ast"
	"echo/connections"
	"echo/events"
	"echo/jit"
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

// Evaluator executes AST against an Object Store and a player-scoped
// Environment. One Evaluator is cheap to create per top-level
// eval_command call; the Store it wraps is the shared, durable state.
// Connections and Events are optional collaborators: nil disables
// connection-overlay object resolution and event emission respectively
// (cmd/echo wires both for the REPL).
type Evaluator struct {
	Store       *objstore.Store
	Env         *Environment
	Connections *connections.Registry
	Events      *events.Registry
	JIT         *jit.JIT
}

// New creates an Evaluator whose environment's single frame runs as
// player.
func New(store *objstore.Store, player objid.ObjectId) *Evaluator {
	return &Evaluator{Store: store, Env: NewEnvironment(player)}
}

// EvalCommand parses src as a single statement and evaluates it.
func EvalCommand(store *objstore.Store, player objid.ObjectId, src string, parse func(string) (ast.Stmt, error)) value.Result {
	stmt, err := parse(src)
	if err != nil {
		return value.Err(value.ErrParseError, err.Error())
	}
	ev := New(store, player)
	return ev.EvalStmt(stmt)
}

// EvalWithPlayer runs stmt with a fresh environment scoped to pid
// instead of the Evaluator's own player.
func (e *Evaluator) EvalWithPlayer(stmt ast.Stmt, pid objid.ObjectId) value.Result {
	saved := e.Env
	e.Env = NewEnvironment(pid)
	defer func() { e.Env = saved }()
	return e.EvalStmt(stmt)
}

// EvalExpr evaluates an expression to a value.Result. Control-flow
// flows (FlowReturn/FlowBreak/FlowContinue) never originate from an
// expression itself, only from nested calls that execute statements
// (a lambda call's body).
func (e *Evaluator) EvalExpr(expr ast.Expr) value.Result {
	switch ex := expr.(type) {
	case *ast.LiteralExpr:
		return value.Ok(ex.Val)

	case *ast.IdentifierExpr:
		if v, ok := e.Env.Lookup(ex.Name); ok {
			return value.Ok(v)
		}
		return value.Err(value.ErrUndefinedVariable, ex.Name)

	case *ast.ObjRefExpr:
		return e.evalObjRef(ex.MooNum)

	case *ast.SysPropExpr:
		return e.resolveProperty(objid.System, ex.Name)

	case *ast.UnaryExpr:
		operand := e.EvalExpr(ex.Operand)
		if !operand.IsNormal() {
			return operand
		}
		return evalUnary(ex.Op, operand.Val)

	case *ast.BinaryExpr:
		return e.evalBinaryExpr(ex)

	case *ast.TernaryExpr:
		cond := e.EvalExpr(ex.Condition)
		if !cond.IsNormal() {
			return cond
		}
		b, ok := cond.Val.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "ternary condition must be boolean")
		}
		if b.Val {
			return e.EvalExpr(ex.Then)
		}
		return e.EvalExpr(ex.Else)

	case *ast.ParenExpr:
		return e.EvalExpr(ex.Expr)

	case *ast.IndexExpr:
		return e.evalIndex(ex)

	case *ast.RangeExpr:
		return e.evalRange(ex)

	case *ast.PropertyExpr:
		return e.evalPropertyExpr(ex)

	case *ast.VerbCallExpr:
		return e.evalVerbCall(ex)

	case *ast.CallExpr:
		return e.evalCall(ex)

	case *ast.SpliceExpr:
		return e.EvalExpr(ex.Expr)

	case *ast.CatchExpr:
		return e.evalCatchExpr(ex)

	case *ast.AssignExpr:
		return e.evalAssign(ex)

	case *ast.ListExpr:
		return e.evalListExpr(ex)

	case *ast.MapExpr:
		return e.evalMapExpr(ex)

	case *ast.LambdaExpr:
		return value.Ok(&value.LambdaValue{
			Params:   toValueParams(ex.Params),
			Body:     ex.Body,
			Captured: e.Env.Snapshot(),
			Name:     ex.Name,
		})

	default:
		return value.Err(value.ErrTypeError, "unsupported expression node")
	}
}

func (e *Evaluator) evalBinaryExpr(ex *ast.BinaryExpr) value.Result {
	if e.JIT != nil {
		if v, ok := e.JIT.TryEval(ex, e.Env.Current()); ok {
			return value.Ok(v)
		}
	}

	if ex.Op == ast.OpAnd || ex.Op == ast.OpOr {
		left := e.EvalExpr(ex.Left)
		if !left.IsNormal() {
			return left
		}
		lb, ok := left.Val.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "&&/|| require boolean operands")
		}
		if ex.Op == ast.OpAnd && !lb.Val {
			return value.Ok(value.NewBool(false))
		}
		if ex.Op == ast.OpOr && lb.Val {
			return value.Ok(value.NewBool(true))
		}
		right := e.EvalExpr(ex.Right)
		if !right.IsNormal() {
			return right
		}
		rb, ok := right.Val.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "&&/|| require boolean operands")
		}
		return value.Ok(value.NewBool(rb.Val))
	}

	left := e.EvalExpr(ex.Left)
	if !left.IsNormal() {
		return left
	}
	right := e.EvalExpr(ex.Right)
	if !right.IsNormal() {
		return right
	}
	return evalBinary(ex.Op, left.Val, right.Val)
}

// evalObjRef resolves a `#N` literal. Negative N is first checked
// against the live connection overlay (see connections.Registry,
// wired in by cmd/echo); with no active connection at N it evaluates
// to the integer constant N. Non-negative N goes through the store's
// MOO bimap.
func (e *Evaluator) evalObjRef(n int64) value.Result {
	if n < 0 {
		if e.Connections != nil {
			if id, ok := e.Connections.Resolve(n); ok {
				return value.Ok(value.NewObj(id))
			}
		}
		return value.Ok(value.NewInt(n))
	}
	id, err := e.Store.GetOrCreateMooID(n)
	if err != nil {
		return value.Err(value.ErrStorageError, err.Error())
	}
	return value.Ok(value.NewObj(id))
}

func (e *Evaluator) evalListExpr(ex *ast.ListExpr) value.Result {
	var items []value.Value
	for _, item := range ex.Items {
		if splice, ok := item.(*ast.SpliceExpr); ok {
			r := e.EvalExpr(splice.Expr)
			if !r.IsNormal() {
				return r
			}
			list, ok := r.Val.(value.ListValue)
			if !ok {
				return value.Err(value.ErrTypeError, "@ splice requires a list")
			}
			items = append(items, list.Items...)
			continue
		}
		r := e.EvalExpr(item)
		if !r.IsNormal() {
			return r
		}
		items = append(items, r.Val)
	}
	return value.Ok(value.NewList(items))
}

func (e *Evaluator) evalMapExpr(ex *ast.MapExpr) value.Result {
	entries := make(map[string]value.Value, len(ex.Entries))
	for _, entry := range ex.Entries {
		kr := e.EvalExpr(entry.Key)
		if !kr.IsNormal() {
			return kr
		}
		key, ok := kr.Val.(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "map keys must be strings")
		}
		vr := e.EvalExpr(entry.Value)
		if !vr.IsNormal() {
			return vr
		}
		entries[key.Val] = vr.Val
	}
	return value.Ok(value.NewMap(entries))
}

func (e *Evaluator) evalCatchExpr(ex *ast.CatchExpr) value.Result {
	r := e.EvalExpr(ex.Expr)
	if r.IsNormal() {
		return r
	}
	if !r.IsError() {
		return r
	}
	if len(ex.Codes) > 0 && !codeMatches(r.Err.Code, ex.Codes) {
		return r
	}
	if ex.Default != nil {
		return e.EvalExpr(ex.Default)
	}
	return value.Ok(r.Err)
}

func codeMatches(code value.ErrorCode, codes []value.ErrorCode) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func toValueParams(params []ast.Parameter) []value.Parameter {
	out := make([]value.Parameter, len(params))
	for i, p := range params {
		out[i] = value.Parameter{Name: p.Name, Kind: value.ParamKind(p.Kind), Default: p.Default}
	}
	return out
}
