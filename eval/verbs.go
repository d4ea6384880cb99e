package eval

import (
	"strings"

	"echo/ast"
	"echo/objid"
	"echo/objstore"
	"echo/value"
)

// evalVerbCall resolves and invokes `expr:verb(args)`.
func (e *Evaluator) evalVerbCall(ex *ast.VerbCallExpr) value.Result {
	recv := e.EvalExpr(ex.Expr)
	if !recv.IsNormal() {
		return recv
	}
	obj, ok := recv.Val.(value.ObjValue)
	if !ok {
		return value.Err(value.ErrTypeError, "verb call requires an object")
	}

	args := make([]value.Value, 0, len(ex.Args))
	for _, a := range ex.Args {
		r := e.EvalExpr(a)
		if !r.IsNormal() {
			return r
		}
		args = append(args, r.Val)
	}

	owner, verb, ok := e.findVerb(obj.ID, ex.Verb)
	if !ok {
		return value.Err(value.ErrVerbNotFound, ex.Verb)
	}

	caller := e.Env.Current().PlayerID
	return e.callVerb(owner, obj.ID, caller, verb, args)
}

// findVerb walks from obj up through its parent chain, scoring every
// verb pattern against name, and returns the verb with the highest
// score (ties broken by first found walking upward, i.e. the closer
// ancestor wins automatically since it is visited first).
func (e *Evaluator) findVerb(obj objid.ObjectId, name string) (objid.ObjectId, *objstore.VerbDefinition, bool) {
	current := obj
	seen := map[objid.ObjectId]bool{}

	var bestOwner objid.ObjectId
	var bestVerb *objstore.VerbDefinition
	bestScore := -1

	for {
		if seen[current] {
			break
		}
		seen[current] = true

		o, err := e.Store.Get(current)
		if err != nil {
			break
		}
		for _, verb := range o.Verbs {
			score := bestPatternScore(verb.Name, name)
			if score > bestScore {
				bestScore = score
				bestOwner = current
				bestVerb = verb
			}
		}
		if o.Parent == nil {
			break
		}
		current = *o.Parent
	}

	if bestVerb == nil {
		return objid.ObjectId{}, nil, false
	}
	return bestOwner, bestVerb, true
}

// bestPatternScore returns the highest score among the space-separated
// patterns in verbName against m, or -1 if none match.
func bestPatternScore(verbName, m string) int {
	best := -1
	for _, pattern := range strings.Fields(verbName) {
		if !patternMatches(pattern, m) {
			continue
		}
		score := scorePattern(pattern, m)
		if score > best {
			best = score
		}
	}
	return best
}

func scorePattern(pattern, m string) int {
	switch {
	case pattern == m:
		return 1000
	case pattern == "*":
		return 1
	case !strings.Contains(pattern, "*"):
		return 900
	default:
		return 10 + countNonStar(pattern)
	}
}

func countNonStar(pattern string) int {
	n := 0
	for _, r := range pattern {
		if r != '*' {
			n++
		}
	}
	return n
}

// patternMatches implements the star-splitting match rule: split at
// the star into prefix and suffix; m matches iff it starts with the
// prefix, its length is between len(prefix) and len(prefix)+len(suffix),
// and the tail after the prefix is itself a prefix of the suffix.
func patternMatches(pattern, m string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == m
	}
	prefix := pattern[:star]
	suffix := pattern[star+1:]
	if !strings.HasPrefix(m, prefix) {
		return false
	}
	if len(m) < len(prefix) || len(m) > len(prefix)+len(suffix) {
		return false
	}
	tail := m[len(prefix):]
	return strings.HasPrefix(suffix, tail)
}

// callVerb executes verb's body in a fresh frame: `this` binds to
// receiver, `caller` to the invoking object.
func (e *Evaluator) callVerb(owner, receiver, caller objid.ObjectId, verb *objstore.VerbDefinition, args []value.Value) value.Result {
	saved := e.Env
	e.Env = saved.Snapshot()
	e.Env.Push(saved.Current().PlayerID)
	defer func() { e.Env = saved }()

	e.Env.Define("this", value.NewObj(receiver), true)
	e.Env.Define("caller", value.NewObj(caller), true)
	e.Env.Define("verb", value.NewString(verb.Name), true)
	e.Env.Define("args", value.NewList(args), false)

	if res := bindParameters(e, verb.Params, args); !res.IsNormal() {
		return res
	}

	result := e.execBlock(verb.AST)
	if result.IsReturn() {
		return value.Ok(result.Val)
	}
	if result.IsError() {
		return result
	}
	return value.Ok(value.Null)
}
