package value

import "echo/objid"

// ObjValue is a resolved reference to an Object in the store. AST
// object literals (#N) are resolved through the store's MOO-number
// bimap before becoming an ObjValue; the negative sentinel range that
// has no live connection resolves to an IntValue instead (see
// connections.Registry), never to an ObjValue.
type ObjValue struct {
	ID objid.ObjectId
}

func NewObj(id objid.ObjectId) ObjValue { return ObjValue{ID: id} }

func (o ObjValue) Type() TypeCode { return TypeObj }
func (o ObjValue) String() string { return o.ID.String() }

// Truthy matches MOO semantics: object references are never truthy.
func (o ObjValue) Truthy() bool { return false }

func (o ObjValue) Equal(other Value) bool {
	oo, ok := other.(ObjValue)
	return ok && oo.ID.Equal(o.ID)
}
