package eval

import (
	"echo/ast"
	"echo/value"
)

// evalIndex implements `expr[index]` for lists (1-based, MOO style),
// maps (string key), and strings (1-based character access).
func (e *Evaluator) evalIndex(ex *ast.IndexExpr) value.Result {
	recv := e.EvalExpr(ex.Expr)
	if !recv.IsNormal() {
		return recv
	}
	idx := e.EvalExpr(ex.Index)
	if !idx.IsNormal() {
		return idx
	}

	switch container := recv.Val.(type) {
	case value.ListValue:
		i, ok := idx.Val.(value.IntValue)
		if !ok {
			return value.Err(value.ErrTypeError, "list index must be an integer")
		}
		pos := int(i.Val) - 1
		if pos < 0 || pos >= len(container.Items) {
			return value.Err(value.ErrIndexOutOfRange, "list index out of range")
		}
		return value.Ok(container.Items[pos])

	case value.StringValue:
		i, ok := idx.Val.(value.IntValue)
		if !ok {
			return value.Err(value.ErrTypeError, "string index must be an integer")
		}
		runes := []rune(container.Val)
		pos := int(i.Val) - 1
		if pos < 0 || pos >= len(runes) {
			return value.Err(value.ErrIndexOutOfRange, "string index out of range")
		}
		return value.Ok(value.NewString(string(runes[pos])))

	case value.MapValue:
		key, ok := idx.Val.(value.StringValue)
		if !ok {
			return value.Err(value.ErrTypeError, "map index must be a string")
		}
		v, found := container.Get(key.Val)
		if !found {
			return value.Err(value.ErrIndexOutOfRange, "key not found: "+key.Val)
		}
		return value.Ok(v)

	default:
		return value.Err(value.ErrTypeError, "value is not indexable")
	}
}

// evalRange implements `expr[start..end]`, 1-based and inclusive, for
// lists and strings.
func (e *Evaluator) evalRange(ex *ast.RangeExpr) value.Result {
	recv := e.EvalExpr(ex.Expr)
	if !recv.IsNormal() {
		return recv
	}
	startR := e.EvalExpr(ex.Start)
	if !startR.IsNormal() {
		return startR
	}
	endR := e.EvalExpr(ex.End)
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
		lo, hi, ok := clampRange(start.Val, end.Val, len(container.Items))
		if !ok {
			return value.Ok(value.NewList(nil))
		}
		return value.Ok(value.NewList(append([]value.Value{}, container.Items[lo:hi]...)))
	case value.StringValue:
		runes := []rune(container.Val)
		lo, hi, ok := clampRange(start.Val, end.Val, len(runes))
		if !ok {
			return value.Ok(value.NewString(""))
		}
		return value.Ok(value.NewString(string(runes[lo:hi])))
	default:
		return value.Err(value.ErrTypeError, "value does not support range access")
	}
}

func clampRange(start, end int64, length int) (int, int, bool) {
	lo := int(start) - 1
	hi := int(end)
	if lo < 0 {
		lo = 0
	}
	if hi > length {
		hi = length
	}
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// assignIndexed writes one element back into a list or map, returning the newly assembled container so the caller can store it
// back through the same path it read the receiver from.
func assignIndexed(container value.Value, index value.Value, v value.Value) (value.Value, value.Result) {
	switch c := container.(type) {
	case value.ListValue:
		i, ok := index.(value.IntValue)
		if !ok {
			return nil, value.Err(value.ErrTypeError, "list index must be an integer")
		}
		pos := int(i.Val) - 1
		if pos < 0 || pos >= len(c.Items) {
			return nil, value.Err(value.ErrIndexOutOfRange, "list index out of range")
		}
		items := append([]value.Value{}, c.Items...)
		items[pos] = v
		return value.NewList(items), value.Ok(v)
	case value.MapValue:
		key, ok := index.(value.StringValue)
		if !ok {
			return nil, value.Err(value.ErrTypeError, "map index must be a string")
		}
		return c.Set(key.Val, v), value.Ok(v)
	default:
		return nil, value.Err(value.ErrTypeError, "value is not indexable")
	}
}
