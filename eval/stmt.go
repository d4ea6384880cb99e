package eval

import (
	"echo/ast"
	"echo/events"
	"echo/value"
)

// execBlock runs a statement sequence, stopping at the first
// non-normal flow (return/break/continue/error) and propagating it.
// A block that runs to completion yields a normal Null result — only
// its control-flow tag matters to callers, not its value.
func (e *Evaluator) execBlock(stmts []ast.Stmt) value.Result {
	for _, s := range stmts {
		r := e.EvalStmt(s)
		if !r.IsNormal() {
			return r
		}
	}
	return value.Ok(value.Null)
}

// EvalStmt evaluates one statement for effect and control flow.
func (e *Evaluator) EvalStmt(stmt ast.Stmt) value.Result {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if s.Expr == nil {
			return value.Ok(value.Null)
		}
		r := e.EvalExpr(s.Expr)
		if !r.IsNormal() {
			return r
		}
		return value.Ok(value.Null)

	case *ast.LetStmt:
		r := e.EvalExpr(s.Value)
		if !r.IsNormal() {
			return r
		}
		e.Env.Define(s.Name, r.Val, s.Const)
		return value.Ok(value.Null)

	case *ast.IfStmt:
		return e.evalIf(s)

	case *ast.WhileStmt:
		return e.evalWhile(s)

	case *ast.ForStmt:
		return e.evalFor(s)

	case *ast.ReturnStmt:
		if s.Value == nil {
			return value.ReturnValue(value.Null)
		}
		r := e.EvalExpr(s.Value)
		if !r.IsNormal() {
			return r
		}
		return value.ReturnValue(r.Val)

	case *ast.BreakStmt:
		return value.BreakFlow(s.Label)

	case *ast.ContinueStmt:
		return value.ContinueFlow(s.Label)

	case *ast.TryStmt:
		return e.evalTry(s)

	case *ast.MatchStmt:
		return e.evalMatch(s)

	case *ast.FnDeclStmt:
		e.Env.Define(s.Name, &value.LambdaValue{
			Params:   toValueParams(s.Params),
			Body:     s.Body,
			Captured: e.Env.Snapshot(),
			Name:     s.Name,
		}, true)
		return value.Ok(value.Null)

	case *ast.EventStmt:
		return e.evalEventStmt(s)

	default:
		return value.Err(value.ErrTypeError, "unsupported statement node")
	}
}

func (e *Evaluator) evalIf(s *ast.IfStmt) value.Result {
	cond := e.EvalExpr(s.Condition)
	if !cond.IsNormal() {
		return cond
	}
	b, ok := cond.Val.(value.BoolValue)
	if !ok {
		return value.Err(value.ErrTypeError, "if condition must be boolean")
	}
	if b.Val {
		return e.execBlock(s.Body)
	}
	for _, ei := range s.ElseIfs {
		c := e.EvalExpr(ei.Condition)
		if !c.IsNormal() {
			return c
		}
		cb, ok := c.Val.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "elseif condition must be boolean")
		}
		if cb.Val {
			return e.execBlock(ei.Body)
		}
	}
	if s.Else != nil {
		return e.execBlock(s.Else)
	}
	return value.Ok(value.Null)
}

func (e *Evaluator) evalWhile(s *ast.WhileStmt) value.Result {
	for {
		cond := e.EvalExpr(s.Condition)
		if !cond.IsNormal() {
			return cond
		}
		b, ok := cond.Val.(value.BoolValue)
		if !ok {
			return value.Err(value.ErrTypeError, "while condition must be boolean")
		}
		if !b.Val {
			return value.Ok(value.Null)
		}
		r := e.execBlock(s.Body)
		if r.IsBreak() {
			if r.Label == "" || r.Label == s.Label {
				return value.Ok(value.Null)
			}
			return r
		}
		if r.IsContinue() {
			if r.Label == "" || r.Label == s.Label {
				continue
			}
			return r
		}
		if !r.IsNormal() {
			return r
		}
	}
}

// evalFor iterates a container (list, map, or string by character) or
// an integer range, binding Value (and, for a map, Index to the key).
func (e *Evaluator) evalFor(s *ast.ForStmt) value.Result {
	runBody := func(item value.Value, idx value.Value) value.Result {
		e.Env.Push(e.Env.Current().PlayerID)
		defer e.Env.Pop()
		e.Env.Define(s.Value, item, false)
		if s.Index != "" && idx != nil {
			e.Env.Define(s.Index, idx, false)
		}
		r := e.execBlock(s.Body)
		if r.IsBreak() {
			if r.Label == "" || r.Label == s.Label {
				return value.BreakFlow("")
			}
			return r
		}
		if r.IsContinue() {
			if r.Label == "" || r.Label == s.Label {
				return value.Ok(value.Null)
			}
			return r
		}
		return r
	}

	if s.Container != nil {
		c := e.EvalExpr(s.Container)
		if !c.IsNormal() {
			return c
		}
		switch container := c.Val.(type) {
		case value.ListValue:
			for i, item := range container.Items {
				r := runBody(item, value.NewInt(int64(i+1)))
				if r.IsBreak() && r.Label == "" {
					return value.Ok(value.Null)
				}
				if !r.IsNormal() {
					return r
				}
			}
			return value.Ok(value.Null)
		case value.MapValue:
			for _, entry := range container.Entries {
				r := runBody(entry.Val, value.NewString(entry.Key))
				if r.IsBreak() && r.Label == "" {
					return value.Ok(value.Null)
				}
				if !r.IsNormal() {
					return r
				}
			}
			return value.Ok(value.Null)
		case value.StringValue:
			for i, ch := range []rune(container.Val) {
				r := runBody(value.NewString(string(ch)), value.NewInt(int64(i+1)))
				if r.IsBreak() && r.Label == "" {
					return value.Ok(value.Null)
				}
				if !r.IsNormal() {
					return r
				}
			}
			return value.Ok(value.Null)
		default:
			return value.Err(value.ErrTypeError, "for-in requires a list, map, or string")
		}
	}

	startR := e.EvalExpr(s.RangeStart)
	if !startR.IsNormal() {
		return startR
	}
	endR := e.EvalExpr(s.RangeEnd)
	if !endR.IsNormal() {
		return endR
	}
	start, ok := startR.Val.(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "for range bounds must be integers")
	}
	end, ok := endR.Val.(value.IntValue)
	if !ok {
		return value.Err(value.ErrTypeError, "for range bounds must be integers")
	}
	for n := start.Val; n <= end.Val; n++ {
		r := runBody(value.NewInt(n), nil)
		if r.IsBreak() && r.Label == "" {
			return value.Ok(value.Null)
		}
		if !r.IsNormal() {
			return r
		}
	}
	return value.Ok(value.Null)
}

// evalTry runs body; on failure, the first catch clause whose code
// list matches (or that is a bare catch-all) handles it. finally runs
// on every path, and a failure inside finally supersedes whatever
// outcome body/catch produced.
func (e *Evaluator) evalTry(s *ast.TryStmt) value.Result {
	result := e.execBlock(s.Body)

	if result.IsError() {
		for _, c := range s.Catches {
			if !c.IsAny && !codeMatches(result.Err.Code, c.Codes) {
				continue
			}
			e.Env.Push(e.Env.Current().PlayerID)
			if c.Variable != "" {
				e.Env.Define(c.Variable, result.Err, false)
			}
			result = e.execBlock(c.Body)
			e.Env.Pop()
			break
		}
	}

	if s.Finally != nil {
		fr := e.execBlock(s.Finally)
		if !fr.IsNormal() {
			return fr
		}
	}
	return result
}

func (e *Evaluator) evalMatch(s *ast.MatchStmt) value.Result {
	subject := e.EvalExpr(s.Subject)
	if !subject.IsNormal() {
		return subject
	}
	for _, c := range s.Cases {
		e.Env.Push(e.Env.Current().PlayerID)
		if !matchPattern(e, c.Pattern, subject.Val) {
			e.Env.Pop()
			continue
		}
		if c.Guard != nil {
			g := e.EvalExpr(c.Guard)
			if !g.IsNormal() {
				e.Env.Pop()
				return g
			}
			gb, isBool := g.Val.(value.BoolValue)
			if !isBool || !gb.Val {
				e.Env.Pop()
				continue
			}
		}
		r := e.execBlock(c.Body)
		e.Env.Pop()
		return r
	}
	return value.Err(value.ErrMatchFailed, "")
}

// matchPattern reports whether pat matches subject, binding identifier
// patterns into the current (innermost) frame as a side effect.
func matchPattern(e *Evaluator, pat ast.Pattern, subject value.Value) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.LiteralPattern:
		return p.Val.Equal(subject)
	case *ast.IdentPattern:
		e.Env.Define(p.Name, subject, false)
		return true
	case *ast.ConstructorPattern:
		return false
	default:
		return false
	}
}

func (e *Evaluator) evalEventStmt(s *ast.EventStmt) value.Result {
	args := make([]value.Value, 0, len(s.Args))
	for _, a := range s.Args {
		r := e.EvalExpr(a)
		if !r.IsNormal() {
			return r
		}
		args = append(args, r.Val)
	}
	emitter := e.Env.Current().PlayerID
	if e.Events == nil {
		return value.Ok(value.Null)
	}
	_, res := e.EmitEvent(events.Event{Name: s.Name, Args: args, Emitter: emitter})
	return res
}
