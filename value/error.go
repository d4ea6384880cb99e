package value

// ErrorCode enumerates the evaluator's error taxonomy. UnsupportedOperation
// never escapes to a user — it is an internal hint the JIT uses to signal
// fallback to the interpreter — so it has no String() rendering a user
// would see.
type ErrorCode int

const (
	ErrParseError ErrorCode = iota
	ErrUndefinedVariable
	ErrPropertyNotFound
	ErrVerbNotFound
	ErrObjectNotFound
	ErrTypeError
	ErrDivisionByZero
	ErrIndexOutOfRange
	ErrMatchFailed
	ErrMissingArgument
	ErrTooManyArguments
	ErrConstReassignment
	ErrUnsupportedOperation
	ErrRaised
	ErrStorageError
)

func (e ErrorCode) Name() string {
	switch e {
	case ErrParseError:
		return "ParseError"
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrPropertyNotFound:
		return "PropertyNotFound"
	case ErrVerbNotFound:
		return "VerbNotFound"
	case ErrObjectNotFound:
		return "ObjectNotFound"
	case ErrTypeError:
		return "TypeError"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrIndexOutOfRange:
		return "IndexOutOfRange"
	case ErrMatchFailed:
		return "MatchFailed"
	case ErrMissingArgument:
		return "MissingArgument"
	case ErrTooManyArguments:
		return "TooManyArguments"
	case ErrConstReassignment:
		return "ConstReassignment"
	case ErrUnsupportedOperation:
		return "UnsupportedOperation"
	case ErrRaised:
		return "Raised"
	case ErrStorageError:
		return "StorageError"
	default:
		return "UnknownError"
	}
}

// ErrorValue is a MOO error value: a code plus an optional human message
// (populated for Raised, StorageError, MissingArgument, and ParseError,
// where the code alone doesn't say enough).
type ErrorValue struct {
	Code    ErrorCode
	Message string
}

func NewErrorValue(code ErrorCode, message string) ErrorValue {
	return ErrorValue{Code: code, Message: message}
}

func (e ErrorValue) Type() TypeCode { return TypeErr }

func (e ErrorValue) String() string {
	if e.Message != "" {
		return e.Code.Name() + ": " + e.Message
	}
	return e.Code.Name()
}

// Truthy: errors are always truthy, mirroring the MOO convention that
// error values are distinct from Null/zero.
func (e ErrorValue) Truthy() bool { return true }

func (e ErrorValue) Equal(o Value) bool {
	oe, ok := o.(ErrorValue)
	return ok && oe.Code == e.Code && oe.Message == e.Message
}
