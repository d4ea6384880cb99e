package value

import "strconv"

// IntValue is a MOO integer (i64).
type IntValue struct {
	Val int64
}

func NewInt(v int64) IntValue { return IntValue{Val: v} }

func (i IntValue) Type() TypeCode { return TypeInt }
func (i IntValue) String() string { return strconv.FormatInt(i.Val, 10) }
func (i IntValue) Truthy() bool   { return i.Val != 0 }

func (i IntValue) Equal(o Value) bool {
	oi, ok := o.(IntValue)
	return ok && oi.Val == i.Val
}
