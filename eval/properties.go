package eval

import (
	"echo/ast"
	"echo/objid"
	"echo/value"
)

// resolveProperty looks up name on obj's own properties, then walks the
// parent chain until found or the chain ends.
func (e *Evaluator) resolveProperty(id objid.ObjectId, name string) value.Result {
	current := id
	seen := map[objid.ObjectId]bool{}
	for {
		if seen[current] {
			return value.Err(value.ErrPropertyNotFound, name)
		}
		seen[current] = true

		obj, err := e.Store.Get(current)
		if err != nil {
			return value.Err(value.ErrObjectNotFound, current.String())
		}
		if v, ok := obj.Properties[name]; ok {
			return value.Ok(v)
		}
		if obj.Parent == nil {
			return value.Err(value.ErrPropertyNotFound, name)
		}
		current = *obj.Parent
	}
}

func (e *Evaluator) evalPropertyExpr(ex *ast.PropertyExpr) value.Result {
	recv := e.EvalExpr(ex.Expr)
	if !recv.IsNormal() {
		return recv
	}
	obj, ok := recv.Val.(value.ObjValue)
	if !ok {
		return value.Err(value.ErrTypeError, "property access requires an object")
	}
	return e.resolveProperty(obj.ID, ex.Property)
}

// setProperty writes directly onto obj (never a parent), creating the
// property if it does not already exist there.
func (e *Evaluator) setProperty(id objid.ObjectId, name string, v value.Value) value.Result {
	obj, err := e.Store.Get(id)
	if err != nil {
		return value.Err(value.ErrObjectNotFound, id.String())
	}
	obj.Properties[name] = v
	if serr := e.Store.Store(obj); serr != nil {
		return value.Err(value.ErrStorageError, serr.Error())
	}
	return value.Ok(v)
}
