package value

import (
	"sort"
	"strings"
)

// MapEntry is one key/value pair of a MapValue.
type MapEntry struct {
	Key string
	Val Value
}

// MapValue is a MOO map keyed by string, per the data model's
// PropertyValue::Map(string -> PropertyValue). Entries are kept sorted
// by key so iteration and String() are deterministic.
type MapValue struct {
	Entries []MapEntry
}

func NewMap(entries map[string]Value) MapValue {
	out := make([]MapEntry, 0, len(entries))
	for k, v := range entries {
		out = append(out, MapEntry{Key: k, Val: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return MapValue{Entries: out}
}

func (m MapValue) Type() TypeCode { return TypeMap }

func (m MapValue) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range m.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(StringValue{Val: e.Key}.String())
		b.WriteString(" -> ")
		b.WriteString(e.Val.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (m MapValue) Truthy() bool { return len(m.Entries) > 0 }

func (m MapValue) Equal(o Value) bool {
	om, ok := o.(MapValue)
	if !ok || len(om.Entries) != len(m.Entries) {
		return false
	}
	for i := range m.Entries {
		if m.Entries[i].Key != om.Entries[i].Key || !m.Entries[i].Val.Equal(om.Entries[i].Val) {
			return false
		}
	}
	return true
}

// Get looks up a key.
func (m MapValue) Get(key string) (Value, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Val, true
		}
	}
	return nil, false
}

// Set returns a new MapValue with key bound to v, replacing any prior
// binding for key.
func (m MapValue) Set(key string, v Value) MapValue {
	out := make([]MapEntry, 0, len(m.Entries)+1)
	replaced := false
	for _, e := range m.Entries {
		if e.Key == key {
			out = append(out, MapEntry{Key: key, Val: v})
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, MapEntry{Key: key, Val: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return MapValue{Entries: out}
}

// Delete returns a new MapValue without key.
func (m MapValue) Delete(key string) MapValue {
	out := make([]MapEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return MapValue{Entries: out}
}

// Keys returns the map's keys in sorted order.
func (m MapValue) Keys() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Key
	}
	return out
}
