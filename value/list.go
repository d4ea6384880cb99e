package value

import "strings"

// ListValue is an ordered MOO list. Lists are immutable from the
// caller's point of view: mutating operations return a new ListValue.
type ListValue struct {
	Items []Value
}

func NewList(items []Value) ListValue {
	if items == nil {
		items = []Value{}
	}
	return ListValue{Items: items}
}

func (l ListValue) Type() TypeCode { return TypeList }

func (l ListValue) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range l.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (l ListValue) Truthy() bool { return len(l.Items) > 0 }

func (l ListValue) Equal(o Value) bool {
	ol, ok := o.(ListValue)
	if !ok || len(ol.Items) != len(l.Items) {
		return false
	}
	for i := range l.Items {
		if !l.Items[i].Equal(ol.Items[i]) {
			return false
		}
	}
	return true
}

// Len returns the number of elements.
func (l ListValue) Len() int { return len(l.Items) }

// Append returns a new list with v appended.
func (l ListValue) Append(v Value) ListValue {
	out := make([]Value, len(l.Items)+1)
	copy(out, l.Items)
	out[len(l.Items)] = v
	return NewList(out)
}

// Contains reports whether v is a member, using MOO equality.
func (l ListValue) Contains(v Value) bool {
	for _, item := range l.Items {
		if item.Equal(v) {
			return true
		}
	}
	return false
}
