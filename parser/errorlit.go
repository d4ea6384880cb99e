package parser

import "echo/value"

// mooErrorNames maps legacy LambdaMOO E_* error literals onto the
// closest code in this runtime's own error taxonomy, for MOO-compat
// object-file and textdump import. Names with no natural equivalent
// (E_PERM, E_QUOTA, E_NACC, E_RECMOVE, E_MAXREC, E_FLOAT) fall back to
// Raised so the original name survives in the error's message.
var mooErrorNames = map[string]value.ErrorCode{
	"E_TYPE":   value.ErrTypeError,
	"E_DIV":    value.ErrDivisionByZero,
	"E_RANGE":  value.ErrIndexOutOfRange,
	"E_PROPNF": value.ErrPropertyNotFound,
	"E_VERBNF": value.ErrVerbNotFound,
	"E_VARNF":  value.ErrUndefinedVariable,
	"E_INVIND": value.ErrObjectNotFound,
	"E_INVARG": value.ErrTypeError,
}

// echoErrorNames maps this runtime's own error literal spellings, used
// by the native Echo grammar (e.g. `E_TypeError`).
var echoErrorNames = map[string]value.ErrorCode{
	"E_ParseError":           value.ErrParseError,
	"E_UndefinedVariable":    value.ErrUndefinedVariable,
	"E_PropertyNotFound":     value.ErrPropertyNotFound,
	"E_VerbNotFound":         value.ErrVerbNotFound,
	"E_ObjectNotFound":       value.ErrObjectNotFound,
	"E_TypeError":            value.ErrTypeError,
	"E_DivisionByZero":       value.ErrDivisionByZero,
	"E_IndexOutOfRange":      value.ErrIndexOutOfRange,
	"E_MatchFailed":          value.ErrMatchFailed,
	"E_MissingArgument":      value.ErrMissingArgument,
	"E_TooManyArguments":     value.ErrTooManyArguments,
	"E_ConstReassignment":    value.ErrConstReassignment,
	"E_UnsupportedOperation": value.ErrUnsupportedOperation,
	"E_Raised":               value.ErrRaised,
	"E_StorageError":         value.ErrStorageError,
}

func lookupErrorName(name string) (value.ErrorCode, bool) {
	if code, ok := echoErrorNames[name]; ok {
		return code, true
	}
	if code, ok := mooErrorNames[name]; ok {
		return code, true
	}
	if len(name) > 2 {
		return value.ErrRaised, true
	}
	return 0, false
}
