package value

// NullValue is the MOO null/void value. typeof(null) reports TypeObj,
// and its literal object identity is #-1 — it has no backing
// objid.ObjectId of its own.
type NullValue struct{}

// Null is the single shared null value.
var Null = NullValue{}

func (NullValue) Type() TypeCode       { return TypeObj }
func (NullValue) String() string       { return "#-1" }
func (NullValue) Truthy() bool         { return false }
func (NullValue) Equal(o Value) bool {
	_, ok := o.(NullValue)
	return ok
}
