package value

import (
	"testing"

	"echo/objid"
)

func TestTypeofMapping(t *testing.T) {
	tests := []struct {
		v    Value
		want TypeCode
	}{
		{NewInt(1), TypeInt},
		{NewBool(true), TypeInt},
		{NewFloat(1.5), TypeFloat},
		{NewString("hi"), TypeStr},
		{NewList(nil), TypeList},
		{Null, TypeObj},
		{NewErrorValue(ErrTypeError, ""), TypeErr},
		{NewMap(nil), TypeMap},
	}
	for _, tt := range tests {
		if got := tt.v.Type(); got != tt.want {
			t.Errorf("%v.Type() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	if NewInt(0).Truthy() {
		t.Error("0 should be falsy")
	}
	if !NewInt(1).Truthy() {
		t.Error("1 should be truthy")
	}
	if NewString("").Truthy() {
		t.Error("empty string should be falsy")
	}
	if Null.Truthy() {
		t.Error("null should be falsy")
	}
	if NewObj(objid.New()).Truthy() {
		t.Error("objects are never truthy")
	}
}

func TestListEquality(t *testing.T) {
	a := NewList([]Value{NewInt(1), NewString("x")})
	b := NewList([]Value{NewInt(1), NewString("x")})
	c := NewList([]Value{NewInt(1), NewString("y")})
	if !a.Equal(b) {
		t.Error("equal lists should compare equal")
	}
	if a.Equal(c) {
		t.Error("different lists should not compare equal")
	}
}

func TestMapSetGetDelete(t *testing.T) {
	m := NewMap(nil)
	m = m.Set("a", NewInt(1))
	m = m.Set("b", NewInt(2))
	if v, ok := m.Get("a"); !ok || !v.Equal(NewInt(1)) {
		t.Fatalf("expected a=1, got %v ok=%v", v, ok)
	}
	m2 := m.Delete("a")
	if _, ok := m2.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if _, ok := m.Get("a"); !ok {
		t.Fatal("original map should be unaffected by Delete")
	}
}

func TestPersistableRejectsLambda(t *testing.T) {
	l := &LambdaValue{}
	if Persistable(l) {
		t.Error("lambda values must not be persistable")
	}
	if !Persistable(NewInt(1)) {
		t.Error("plain values must be persistable")
	}
}
