// Package value implements the PropertyValue/Value type lattice
// described in the language's data model: a closed set of tagged
// variants with MOO-style literal formatting, deep equality, and
// truthiness, plus the tagged Result that every evaluator step
// threads control flow through.
package value

// Value is the interface every runtime value implements. PropertyValue
// is the serializable subset (Null, Boolean, Integer, Float, String,
// Object, List, Map); Lambda is runtime-only and the object store
// rejects storing it directly.
type Value interface {
	Type() TypeCode
	String() string
	Equal(Value) bool
	Truthy() bool
}

// Persistable reports whether a Value is a PropertyValue — i.e. safe to
// write into the object store. Lambda values return false.
func Persistable(v Value) bool {
	_, isLambda := v.(*LambdaValue)
	return !isLambda
}
