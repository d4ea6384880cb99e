package value

import "strconv"

// StringValue is a MOO string.
type StringValue struct {
	Val string
}

func NewString(v string) StringValue { return StringValue{Val: v} }

func (s StringValue) Type() TypeCode { return TypeStr }
func (s StringValue) String() string { return strconv.Quote(s.Val) }
func (s StringValue) Truthy() bool   { return s.Val != "" }

func (s StringValue) Equal(o Value) bool {
	os, ok := o.(StringValue)
	return ok && os.Val == s.Val
}

// Raw returns the string's bare contents, without MOO literal quoting.
func (s StringValue) Raw() string { return s.Val }
