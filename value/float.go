package value

import "strconv"

// FloatValue is a MOO float (f64).
type FloatValue struct {
	Val float64
}

func NewFloat(v float64) FloatValue { return FloatValue{Val: v} }

func (f FloatValue) Type() TypeCode { return TypeFloat }
func (f FloatValue) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }
func (f FloatValue) Truthy() bool   { return f.Val != 0 }

func (f FloatValue) Equal(o Value) bool {
	of, ok := o.(FloatValue)
	return ok && of.Val == f.Val
}
