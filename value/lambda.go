package value

// ParamKind distinguishes the three parameter kinds the lambda and
// parameter-binding protocol supports.
type ParamKind int

const (
	ParamRequired ParamKind = iota
	ParamOptional
	ParamRest
)

// Parameter describes one formal parameter. Default is an ast.Expr,
// kept as `any` here so the value package (which ast itself depends on
// for literal storage) does not import ast back and create a cycle;
// eval type-asserts it when binding optional defaults.
type Parameter struct {
	Name    string
	Kind    ParamKind
	Default any
}

// LambdaValue is the runtime-only value produced by a lambda
// expression. It is never a PropertyValue: Persistable reports false
// for it, and the object store refuses to write it.
//
// Body is []ast.Stmt and Captured is *eval.Environment; both are kept
// opaque for the same import-cycle reason as Parameter.Default.
type LambdaValue struct {
	Params   []Parameter
	Body     any
	Captured any
	Name     string // empty for anonymous lambdas, set for named fn bindings
}

func (l *LambdaValue) Type() TypeCode { return TypeObj }

func (l *LambdaValue) String() string {
	if l.Name != "" {
		return "fn<" + l.Name + ">"
	}
	return "fn<anonymous>"
}

func (l *LambdaValue) Truthy() bool { return true }

func (l *LambdaValue) Equal(o Value) bool {
	return o == Value(l)
}
