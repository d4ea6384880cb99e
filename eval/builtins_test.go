package eval

import (
	"testing"

	"echo/connections"
	"echo/value"
)

func TestStringHashDefaultsToSHA256(t *testing.T) {
	e, _ := openTestEvaluator(t)
	r := builtinStringHash(e, []value.Value{value.NewString("abc")})
	if !r.IsNormal() {
		t.Fatalf("got %+v", r)
	}
	const want = "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD"
	if r.Val.(value.StringValue).Raw() != want {
		t.Fatalf("got %s", r.Val.(value.StringValue).Raw())
	}
}

func TestStringHashRejectsUnknownAlgorithm(t *testing.T) {
	e, _ := openTestEvaluator(t)
	r := builtinStringHash(e, []value.Value{value.NewString("abc"), value.NewString("bogus")})
	if !r.IsError() {
		t.Fatalf("expected error, got %+v", r)
	}
}

func TestBinaryHashMatchesStringHash(t *testing.T) {
	e, _ := openTestEvaluator(t)
	a := builtinStringHash(e, []value.Value{value.NewString("payload")})
	b := builtinBinaryHash(e, []value.Value{value.NewString("payload")})
	if !a.Val.Equal(b.Val) {
		t.Fatalf("expected binary_hash to match string_hash, got %v vs %v", a.Val, b.Val)
	}
}

func TestCryptPasswordRoundTrips(t *testing.T) {
	e, _ := openTestEvaluator(t)
	hashed := builtinCryptPassword(e, []value.Value{value.NewString("hunter2")})
	if !hashed.IsNormal() {
		t.Fatalf("crypt_password failed: %+v", hashed)
	}
	ok := builtinCheckPassword(e, []value.Value{value.NewString("hunter2"), hashed.Val})
	if !ok.IsNormal() || !ok.Val.Truthy() {
		t.Fatalf("expected check_password to accept the correct password, got %+v", ok)
	}
	bad := builtinCheckPassword(e, []value.Value{value.NewString("wrong"), hashed.Val})
	if !bad.IsNormal() || bad.Val.Truthy() {
		t.Fatalf("expected check_password to reject the wrong password, got %+v", bad)
	}
}

func TestConnectionBuiltinsRequireRegistry(t *testing.T) {
	e, _ := openTestEvaluator(t)
	r := builtinCreateConnection(e, nil)
	if !r.IsError() {
		t.Fatalf("expected error with no Connections registry wired, got %+v", r)
	}

	e.Connections = connections.NewRegistry()
	r = builtinCreateConnection(e, nil)
	if !r.IsNormal() {
		t.Fatalf("got %+v", r)
	}
	connNum := r.Val.(value.IntValue)
	if connNum.Val >= 0 {
		t.Fatalf("expected a negative connection number, got %d", connNum.Val)
	}

	obj := builtinConnectionObject(e, []value.Value{connNum})
	if !obj.IsNormal() {
		t.Fatalf("connection_object: got %+v", obj)
	}
	connObj := obj.Val.(value.ObjValue)

	loggedIn := e.resolveProperty(connObj.ID, "logged_in")
	if !loggedIn.IsNormal() || loggedIn.Val.Truthy() {
		t.Fatalf("expected a fresh connection's logged_in property to be false, got %+v", loggedIn)
	}
	player := e.resolveProperty(connObj.ID, "player")
	if !player.IsNormal() || !player.Val.Equal(value.Null) {
		t.Fatalf("expected a fresh connection's player property to be null, got %+v", player)
	}

	login := builtinLoginConnection(e, []value.Value{connNum, value.NewObj(e.Env.Current().PlayerID)})
	if !login.IsNormal() || !login.Val.Truthy() {
		t.Fatalf("expected login_connection to succeed, got %+v", login)
	}

	logged := builtinIsLoggedIn(e, []value.Value{connNum})
	if !logged.Val.Truthy() {
		t.Fatal("expected is_logged_in to report true")
	}
	loggedIn = e.resolveProperty(connObj.ID, "player")
	if !loggedIn.IsNormal() || !loggedIn.Val.Equal(value.NewObj(e.Env.Current().PlayerID)) {
		t.Fatalf("expected the connection's player property to be updated, got %+v", loggedIn)
	}

	builtinDisconnectConnection(e, []value.Value{connNum})
	logged = builtinIsLoggedIn(e, []value.Value{connNum})
	if logged.Val.Truthy() {
		t.Fatal("expected is_logged_in to report false after disconnect")
	}

	missing := builtinConnectionObject(e, []value.Value{connNum})
	if !missing.IsError() {
		t.Fatalf("expected connection_object to fail once disconnected, got %+v", missing)
	}
}
