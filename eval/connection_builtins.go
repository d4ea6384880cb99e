package eval

import (
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

// builtinCreateConnection allocates a fresh backing Object in the
// Store — with logged_in and player properties, per the wire
// protocol a connection exposes to verb code — registers it in the
// Connections registry, and returns its negative MOO number as an
// IntValue, matching the wire convention #-1, #-2, ... for
// not-yet-logged-in sessions. Fails with ErrStorageError if no
// Connections registry was wired (a headless eval_command call).
func builtinCreateConnection(e *Evaluator, args []value.Value) value.Result {
	if e.Connections == nil {
		return value.Err(value.ErrStorageError, "no connection registry available")
	}
	if len(args) != 0 {
		return value.Err(value.ErrTooManyArguments, "create_connection")
	}
	obj := objstore.NewObject(objid.New(), "")
	obj.Properties["logged_in"] = value.NewBool(false)
	obj.Properties["player"] = value.Null
	if err := e.Store.Store(obj); err != nil {
		return value.Err(value.ErrStorageError, err.Error())
	}
	n := e.Connections.Create(obj.ID)
	return value.Ok(value.NewInt(n))
}

// builtinLoginConnection binds player to the connection slot named by
// conn, the negative MOO number returned from create_connection, and
// updates the slot's backing Object so #conn.logged_in and
// #conn.player reflect the change.
func builtinLoginConnection(e *Evaluator, args []value.Value) value.Result {
	if e.Connections == nil {
		return value.Err(value.ErrStorageError, "no connection registry available")
	}
	if len(args) != 2 {
		return value.Err(value.ErrMissingArgument, "login_connection")
	}
	connNum, ok := args[0].(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "login_connection requires a connection number")
	}
	player, ok := args[1].(value.ObjValue)
	if !ok {
		return value.Err(value.ErrTypeError, "login_connection requires a player object")
	}
	objID, ok := e.Connections.Resolve(connNum.Val)
	if !ok || !e.Connections.Login(connNum.Val, player.ID) {
		return value.Err(value.ErrObjectNotFound, "no such connection")
	}
	if r := e.setProperty(objID, "logged_in", value.NewBool(true)); r.IsError() {
		return r
	}
	if r := e.setProperty(objID, "player", player); r.IsError() {
		return r
	}
	return value.Ok(value.NewBool(true))
}

// builtinDisconnectConnection frees conn's slot and resets its backing
// Object's properties; subsequent #conn references fall back to the
// bare integer constant.
func builtinDisconnectConnection(e *Evaluator, args []value.Value) value.Result {
	if e.Connections == nil {
		return value.Err(value.ErrStorageError, "no connection registry available")
	}
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "disconnect_connection")
	}
	connNum, ok := args[0].(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "disconnect_connection requires a connection number")
	}
	if objID, ok := e.Connections.Resolve(connNum.Val); ok {
		e.setProperty(objID, "logged_in", value.NewBool(false))
		e.setProperty(objID, "player", value.Null)
	}
	e.Connections.Disconnect(connNum.Val)
	return value.Ok(value.NewBool(true))
}

// builtinIsLoggedIn reports whether conn is both active and logged in.
func builtinIsLoggedIn(e *Evaluator, args []value.Value) value.Result {
	if e.Connections == nil {
		return value.Ok(value.NewBool(false))
	}
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "is_logged_in")
	}
	connNum, ok := args[0].(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "is_logged_in requires a connection number")
	}
	return value.Ok(value.NewBool(e.Connections.IsLoggedIn(connNum.Val)))
}

// builtinConnectionObject resolves a MOO connection number to the
// backing Object create_connection allocated for it. It is the callee
// transform.ObjectReferenceRule generates for negative object-reference
// literals, wrapped in a catch that falls back to the bare integer
// constant when the lookup fails here.
func builtinConnectionObject(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "connection_object")
	}
	n, ok := args[0].(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "connection_object requires an integer")
	}
	if e.Connections == nil {
		return value.Err(value.ErrTypeError, "connection_object: no active connection")
	}
	id, ok := e.Connections.Resolve(n.Val)
	if !ok {
		return value.Err(value.ErrTypeError, "connection_object: no active connection")
	}
	return value.Ok(value.NewObj(id))
}
