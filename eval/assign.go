package eval

import (
	"echo/ast"
	"echo/value"
)

// evalAssign dispatches `target = value` on the four legal target
// shapes: a bare identifier, a property, a list/map index, or a range
// (range assignment splices value in place of the selected slice).
func (e *Evaluator) evalAssign(ex *ast.AssignExpr) value.Result {
	rhs := e.EvalExpr(ex.Value)
	if !rhs.IsNormal() {
		return rhs
	}

	switch target := ex.Target.(type) {
	case *ast.IdentifierExpr:
		ok, isConst := e.Env.Assign(target.Name, rhs.Val)
		if !ok {
			if isConst {
				return value.Err(value.ErrConstReassignment, target.Name)
			}
			return value.Err(value.ErrUndefinedVariable, target.Name)
		}
		return value.Ok(rhs.Val)

	case *ast.PropertyExpr:
		recv := e.EvalExpr(target.Expr)
		if !recv.IsNormal() {
			return recv
		}
		obj, ok := recv.Val.(value.ObjValue)
		if !ok {
			return value.Err(value.ErrTypeError, "property assignment requires an object")
		}
		return e.setProperty(obj.ID, target.Property, rhs.Val)

	case *ast.IndexExpr:
		recv := e.EvalExpr(target.Expr)
		if !recv.IsNormal() {
			return recv
		}
		idx := e.EvalExpr(target.Index)
		if !idx.IsNormal() {
			return idx
		}
		updated, res := assignIndexed(recv.Val, idx.Val, rhs.Val)
		if !res.IsNormal() {
			return res
		}
		return e.writeBack(target.Expr, updated, rhs.Val)

	case *ast.RangeExpr:
		return e.evalRangeAssign(target, rhs.Val)

	default:
		return value.Err(value.ErrTypeError, "invalid assignment target")
	}
}

// writeBack stores updated into the same slot container was read from
// (a local variable or a property), then reports rhs as the assignment
// expression's own value, matching value = target[i] = value semantics.
func (e *Evaluator) writeBack(containerExpr ast.Expr, updated value.Value, rhs value.Value) value.Result {
	switch c := containerExpr.(type) {
	case *ast.IdentifierExpr:
		ok, isConst := e.Env.Assign(c.Name, updated)
		if !ok {
			if isConst {
				return value.Err(value.ErrConstReassignment, c.Name)
			}
			return value.Err(value.ErrUndefinedVariable, c.Name)
		}
		return value.Ok(rhs)
	case *ast.PropertyExpr:
		recv := e.EvalExpr(c.Expr)
		if !recv.IsNormal() {
			return recv
		}
		obj, ok := recv.Val.(value.ObjValue)
		if !ok {
			return value.Err(value.ErrTypeError, "property assignment requires an object")
		}
		res := e.setProperty(obj.ID, c.Property, updated)
		if !res.IsNormal() {
			return res
		}
		return value.Ok(rhs)
	default:
		return value.Err(value.ErrTypeError, "assignment target is not addressable")
	}
}

// evalRangeAssign implements `target[start..end] = value`, splicing
// value's elements (or characters, for a string target) in place of
// the selected slice.
func (e *Evaluator) evalRangeAssign(target *ast.RangeExpr, rhs value.Value) value.Result {
	recv := e.EvalExpr(target.Expr)
	if !recv.IsNormal() {
		return recv
	}
	startR := e.EvalExpr(target.Start)
	if !startR.IsNormal() {
		return startR
	}
	endR := e.EvalExpr(target.End)
	if !endR.IsNormal() {
		return endR
	}
	start, ok := startR.Val.(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "range bounds must be integers")
	}
	end, ok := endR.Val.(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "range bounds must be integers")
	}

	switch container := recv.Val.(type) {
	case value.ListValue:
		repl, ok := rhs.(value.ListValue)
		if !ok {
			return value.Err(value.ErrTypeError, "list range assignment requires a list")
		}
		lo, hi := rangeBounds(start.Val, end.Val, len(container.Items))
		items := make([]value.Value, 0, lo+len(repl.Items)+(len(container.Items)-hi))
		items = append(items, container.Items[:lo]...)
		items = append(items, repl.Items...)
		items = append(items, container.Items[hi:]...)
		return e.writeBack(target.Expr, value.NewList(items), rhs)

	case value.StringValue:
		repl, ok := rhs.(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "string range assignment requires a string")
		}
		runes := []rune(container.Val)
		lo, hi := rangeBounds(start.Val, end.Val, len(runes))
		out := string(runes[:lo]) + repl.Val + string(runes[hi:])
		return e.writeBack(target.Expr, value.NewString(out), rhs)

	default:
		return value.Err(value.ErrTypeError, "value does not support range assignment")
	}
}

func rangeBounds(start, end int64, length int) (int, int) {
	lo := int(start) - 1
	hi := int(end)
	if lo < 0 {
		lo = 0
	}
	if lo > length {
		lo = length
	}
	if hi > length {
		hi = length
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
