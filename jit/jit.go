// Package jit is an optional accelerator for integer arithmetic and
// comparison subtrees. It never changes observable semantics: every
// compiled subtree produces exactly the value the tree-walking
// interpreter would have produced, or declines to handle the node at
// all and lets the caller fall back to eval.
//
// "Compilation" here means lowering a hot AST subtree to a tree of Go
// closures once and reusing it on every subsequent evaluation — the
// same shape as the teacher's AST-to-bytecode lowering in
// vm/compiler.go, with closures standing in for the native instruction
// stream. VarLookup is deliberately narrow (just the one method eval's
// *Frame already implements) so this package never has to import eval.
package jit

import (
	"runtime"
	"sync"

	"echo/ast"
	"echo/value"
)

// VarLookup is the minimum identifier-resolution surface a compiled
// subtree needs. eval.Frame satisfies this structurally.
type VarLookup interface {
	Lookup(name string) (value.Value, bool)
}

// compiledFn evaluates a compiled subtree against env. ok is false if
// an operand turned out not to be an integer at evaluation time, in
// which case the caller must fall back to the interpreter for this
// call (the JIT's integer-only guarantee is enforced at run time, not
// just at compile time, since a variable's type can vary by call).
// Arithmetic nodes produce an IntValue, comparisons a BoolValue.
type compiledFn func(env VarLookup) (result value.Value, ok bool)

// JIT holds the hot-subtree cache and the compiled-vs-fallback policy
// for one process. The zero value is usable but always disabled; use
// New to get a platform-gated instance.
type JIT struct {
	enabled bool

	mu      sync.Mutex
	hits    map[ast.Expr]int
	cache   map[ast.Expr]compiledFn
	threshold int

	compiledCount int
	fallbackCount int
}

// supportedPlatforms lists the 64-bit targets this package treats as
// having a working native-ish fast path. Everything else runs purely
// through the interpreter fallback.
var supportedPlatforms = map[string]bool{
	"amd64": true,
	"arm64": true,
}

// New returns a JIT gated to 64-bit targets with a supported backend.
// Initialization is crash-safe: a panic while probing the platform is
// caught and converted into a disabled instance rather than taking the
// process down.
func New() (j *JIT) {
	j = &JIT{hits: make(map[ast.Expr]int), cache: make(map[ast.Expr]compiledFn), threshold: 10}
	defer func() {
		if recover() != nil {
			j.enabled = false
		}
	}()
	j.enabled = supportedPlatforms[runtime.GOARCH]
	return j
}

// Enabled reports whether this JIT instance will attempt compilation.
func (j *JIT) Enabled() bool { return j.enabled }

// Stats reports compiled-subtree and fallback counts for the `.stats`
// REPL meta-command.
func (j *JIT) Stats() (compiled, fallback int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.compiledCount, j.fallbackCount
}

// TryEval attempts to evaluate expr as an integer-only arithmetic or
// comparison subtree. ok is false whenever the JIT declines the node
// (not in the compilable set, a non-integer operand, or the JIT is
// disabled) — the caller must then evaluate expr through eval itself.
func (j *JIT) TryEval(expr ast.Expr, env VarLookup) (result value.Value, ok bool) {
	if j == nil || !j.enabled {
		return nil, false
	}
	if !classify(expr) {
		return nil, false
	}

	fn, found := j.lookupCompiled(expr)
	if !found {
		j.mu.Lock()
		j.hits[expr]++
		hit := j.hits[expr]
		j.mu.Unlock()
		if hit < j.threshold {
			return nil, false
		}
		compiled, compileErr := j.compile(expr)
		if compileErr != nil {
			j.mu.Lock()
			j.fallbackCount++
			j.mu.Unlock()
			return nil, false
		}
		j.mu.Lock()
		j.cache[expr] = compiled
		j.compiledCount++
		j.mu.Unlock()
		fn = compiled
	}

	v, runOK := fn(env)
	if !runOK {
		j.mu.Lock()
		j.fallbackCount++
		j.mu.Unlock()
		return nil, false
	}
	return v, true
}

func (j *JIT) lookupCompiled(expr ast.Expr) (compiledFn, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn, ok := j.cache[expr]
	return fn, ok
}

// classify reports whether expr's root (and, recursively, every
// descendant) belongs to the JIT-compilable set: integer literals,
// identifiers, unary minus, +-*/%,  and the six comparison operators.
// Anything else — floats, strings, calls, property access — disqualifies
// the whole subtree.
func classify(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		_, isInt := e.Val.(value.IntValue)
		return isInt
	case *ast.IdentifierExpr:
		return true
	case *ast.ParenExpr:
		return classify(e.Expr)
	case *ast.UnaryExpr:
		if e.Op != ast.OpNeg {
			return false
		}
		return classify(e.Operand)
	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
			ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
			return classify(e.Left) && classify(e.Right)
		default:
			return false
		}
	default:
		return false
	}
}

// compile lowers expr to a closure tree. It never fails for a node
// that classify already accepted, but returns an error rather than
// panicking if it's ever asked to compile a node shape classify
// shouldn't have let through — a defensive seam, not an expected path.
func (j *JIT) compile(expr ast.Expr) (fn compiledFn, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn, err = nil, errUnsupportedNode
		}
	}()
	return compileInt(expr), nil
}

var errUnsupportedNode = jitError("jit: unsupported node reached compile")

type jitError string

func (e jitError) Error() string { return string(e) }

// compileInt lowers an integer-only arithmetic/comparison subtree.
// Each node closes over its already-compiled children, so evaluating
// the returned function walks the compiled tree rather than the AST.
func compileInt(expr ast.Expr) compiledFn {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		n := e.Val.(value.IntValue).Val
		return func(VarLookup) (value.Value, bool) { return value.NewInt(n), true }

	case *ast.ParenExpr:
		return compileInt(e.Expr)

	case *ast.IdentifierExpr:
		name := e.Name
		return func(env VarLookup) (value.Value, bool) {
			v, found := env.Lookup(name)
			if !found {
				return nil, false
			}
			if _, isInt := v.(value.IntValue); !isInt {
				return nil, false
			}
			return v, true
		}

	case *ast.UnaryExpr:
		operand := compileInt(e.Operand)
		return func(env VarLookup) (value.Value, bool) {
			v, ok := operand(env)
			if !ok {
				return nil, false
			}
			return value.NewInt(-v.(value.IntValue).Val), true
		}

	case *ast.BinaryExpr:
		left := compileInt(e.Left)
		right := compileInt(e.Right)
		op := e.Op
		return func(env VarLookup) (value.Value, bool) {
			lv, ok := left(env)
			if !ok {
				return nil, false
			}
			rv, ok := right(env)
			if !ok {
				return nil, false
			}
			a := lv.(value.IntValue).Val
			b := rv.(value.IntValue).Val
			switch op {
			case ast.OpAdd:
				return value.NewInt(a + b), true
			case ast.OpSub:
				return value.NewInt(a - b), true
			case ast.OpMul:
				return value.NewInt(a * b), true
			case ast.OpDiv:
				if b == 0 {
					return nil, false
				}
				return value.NewInt(a / b), true
			case ast.OpMod:
				if b == 0 {
					return nil, false
				}
				return value.NewInt(a % b), true
			case ast.OpEq:
				return value.NewBool(a == b), true
			case ast.OpNe:
				return value.NewBool(a != b), true
			case ast.OpLt:
				return value.NewBool(a < b), true
			case ast.OpLe:
				return value.NewBool(a <= b), true
			case ast.OpGt:
				return value.NewBool(a > b), true
			case ast.OpGe:
				return value.NewBool(a >= b), true
			default:
				return nil, false
			}
		}

	default:
		panic(errUnsupportedNode)
	}
}
