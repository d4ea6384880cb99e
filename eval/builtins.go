package eval

import (
	"strings"

	"echo/events"
	"echo/value"
)

// builtinFunc is the shape every builtin satisfies: the Evaluator for
// store/connection access, its already-evaluated argument list.
type builtinFunc func(e *Evaluator, args []value.Value) value.Result

// builtins is the set resolved at call time when a plain identifier
// names one and no local binding shadows it.
var builtins = map[string]builtinFunc{
	"valid":                 builtinValid,
	"typeof":                builtinTypeof,
	"tostr":                 builtinTostr,
	"notify":                builtinNotify,
	"raise":                 builtinRaise,
	"length":                builtinLength,
	"resolve_object_ref":    builtinResolveObjectRef,
	"crypt_password":        builtinCryptPassword,
	"check_password":        builtinCheckPassword,
	"create_connection":     builtinCreateConnection,
	"login_connection":      builtinLoginConnection,
	"disconnect_connection": builtinDisconnectConnection,
	"is_logged_in":          builtinIsLoggedIn,
	"connection_object":     builtinConnectionObject,
	"string_hash":           builtinStringHash,
	"binary_hash":           builtinBinaryHash,
}

// builtinResolveObjectRef is the identity function transform.ObjectReferenceRule
// generates for positive object references: traced code calls it
// explicitly where the interpreter would otherwise resolve #N through
// the store's MOO bimap implicitly.
func builtinResolveObjectRef(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "resolve_object_ref")
	}
	return value.Ok(args[0])
}

// builtinValid returns 1 iff the integer or object argument resolves
// to a present MOO id, 0 otherwise.
func builtinValid(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "valid")
	}
	switch v := args[0].(type) {
	case value.ObjValue:
		if _, err := e.Store.Get(v.ID); err != nil {
			return value.Ok(value.NewInt(0))
		}
		return value.Ok(value.NewInt(1))
	case value.IntValue:
		if !e.Store.IsValidMooID(v.Val) {
			return value.Ok(value.NewInt(0))
		}
		id, err := e.Store.GetOrCreateMooID(v.Val)
		if err != nil {
			return value.Ok(value.NewInt(0))
		}
		if _, err := e.Store.Get(id); err != nil {
			return value.Ok(value.NewInt(0))
		}
		return value.Ok(value.NewInt(1))
	default:
		return value.Ok(value.NewInt(0))
	}
}

// builtinTypeof returns the MOO type code: booleans report as INT,
// Null reports as OBJ (object #-1).
func builtinTypeof(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "typeof")
	}
	if _, ok := args[0].(value.BoolValue); ok {
		return value.Ok(value.NewInt(int64(value.TypeInt)))
	}
	return value.Ok(value.NewInt(int64(args[0].Type())))
}

// builtinTostr converts and concatenates all arguments as display text
// (strings pass through raw, everything else uses its String() form).
func builtinTostr(e *Evaluator, args []value.Value) value.Result {
	var b strings.Builder
	for _, a := range args {
		if s, ok := a.(value.StringValue); ok {
			b.WriteString(s.Raw())
			continue
		}
		b.WriteString(a.String())
	}
	return value.Ok(value.NewString(b.String()))
}

// builtinNotify resolves target to a player and emits a UI event; with
// no Events registry wired (see Evaluator.Events) this is a no-op that
// still reports success, matching a headless eval_command call.
func builtinNotify(e *Evaluator, args []value.Value) value.Result {
	if len(args) < 2 {
		return value.Err(value.ErrMissingArgument, "notify")
	}
	target, ok := args[0].(value.ObjValue)
	if !ok {
		return value.Err(value.ErrTypeError, "notify requires an object target")
	}
	msg := builtinTostr(e, args[1:])
	if e.Events != nil {
		e.EmitEvent(events.Event{Name: "notify", Args: []value.Value{target, msg.Val}, Emitter: target.ID})
	}
	return value.Ok(msg.Val)
}

// builtinRaise fails with msg as error text.
func builtinRaise(e *Evaluator, args []value.Value) value.Result {
	msg := ""
	if len(args) > 0 {
		if s, ok := args[0].(value.StringValue); ok {
			msg = s.Raw()
		} else {
			msg = args[0].String()
		}
	}
	return value.Err(value.ErrRaised, msg)
}

// builtinLength returns the element count of a list, map, or string.
func builtinLength(e *Evaluator, args []value.Value) value.Result {
	if len(args) != 1 {
		return value.Err(value.ErrMissingArgument, "length")
	}
	switch v := args[0].(type) {
	case value.ListValue:
		return value.Ok(value.NewInt(int64(v.Len())))
	case value.MapValue:
		return value.Ok(value.NewInt(int64(len(v.Entries))))
	case value.StringValue:
		return value.Ok(value.NewInt(int64(len([]rune(v.Val)))))
	default:
		return value.Err(value.ErrTypeError, "length requires a list, map, or string")
	}
}
