package eval

import (
	"echo/ast"
	"echo/value"
)

// evalCall dispatches a plain call `callee(args)`: a builtin name when
// callee is a bare identifier naming one, a lambda value otherwise.
func (e *Evaluator) evalCall(ex *ast.CallExpr) value.Result {
	args := make([]value.Value, 0, len(ex.Args))
	for _, a := range ex.Args {
		if splice, ok := a.(*ast.SpliceExpr); ok {
			r := e.EvalExpr(splice.Expr)
			if !r.IsNormal() {
				return r
			}
			list, ok := r.Val.(value.ListValue)
			if !ok {
				return value.Err(value.ErrTypeError, "@ splice requires a list")
			}
			args = append(args, list.Items...)
			continue
		}
		r := e.EvalExpr(a)
		if !r.IsNormal() {
			return r
		}
		args = append(args, r.Val)
	}

	if ident, ok := ex.Callee.(*ast.IdentifierExpr); ok {
		if _, isLocal := e.Env.Lookup(ident.Name); !isLocal {
			if fn, ok := builtins[ident.Name]; ok {
				return fn(e, args)
			}
		}
	}

	callee := e.EvalExpr(ex.Callee)
	if !callee.IsNormal() {
		return callee
	}
	lambda, ok := callee.Val.(*value.LambdaValue)
	if !ok {
		return value.Err(value.ErrTypeError, "value is not callable")
	}
	return e.invokeLambda(lambda, args)
}

// invokeLambda runs a lambda's body in a fresh frame pushed onto its
// captured environment (by-reference free variables, by-value
// parameter list per the binding protocol).
func (e *Evaluator) invokeLambda(lambda *value.LambdaValue, args []value.Value) value.Result {
	captured, ok := lambda.Captured.(*Environment)
	if !ok {
		return value.Err(value.ErrTypeError, "lambda has no captured environment")
	}
	body, ok := lambda.Body.([]ast.Stmt)
	if !ok {
		return value.Err(value.ErrTypeError, "lambda has no body")
	}

	saved := e.Env
	e.Env = captured.Snapshot()
	e.Env.Push(saved.Current().PlayerID)
	defer func() { e.Env = saved }()

	if lambda.Name != "" {
		e.Env.Define(lambda.Name, lambda, true)
	}

	if res := bindParameters(e, lambda.Params, args); !res.IsNormal() {
		return res
	}

	result := e.execBlock(body)
	if result.IsReturn() {
		return value.Ok(result.Val)
	}
	if result.IsError() {
		return result
	}
	return value.Ok(value.Null)
}

// bindParameters implements the three-kind parameter binding protocol:
// required parameters consume one argument each; an optional parameter
// consumes one if available, else its default is evaluated in the
// callee's own frame (where prior parameters are already bound); a
// trailing rest parameter absorbs everything left over.
func bindParameters(e *Evaluator, params []value.Parameter, args []value.Value) value.Result {
	i := 0
	for _, p := range params {
		switch p.Kind {
		case value.ParamRequired:
			if i >= len(args) {
				return value.Err(value.ErrMissingArgument, p.Name)
			}
			e.Env.Define(p.Name, args[i], false)
			i++
		case value.ParamOptional:
			if i < len(args) {
				e.Env.Define(p.Name, args[i], false)
				i++
			} else {
				def, ok := p.Default.(ast.Expr)
				if !ok {
					e.Env.Define(p.Name, value.Null, false)
					continue
				}
				r := e.EvalExpr(def)
				if !r.IsNormal() {
					return r
				}
				e.Env.Define(p.Name, r.Val, false)
			}
		case value.ParamRest:
			rest := append([]value.Value{}, args[min(i, len(args)):]...)
			e.Env.Define(p.Name, value.NewList(rest), false)
			i = len(args)
		}
	}
	if i < len(args) {
		return value.Err(value.ErrTooManyArguments, "")
	}
	return value.Ok(value.Null)
}
