package transform

import (
	"fmt"
	"sort"

	"echo/ast"
)

const (
	maxIterationsPerNode = 8
	maxDescentDepth      = 64
)

// Engine applies a fixed rule set over AST trees. Rules run in
// descending priority order; for each node, every rule whose Matches
// returns true runs in turn, and the engine re-applies the full rule
// set to the result until a fixed point (no rule matched) or the
// per-node iteration cap is hit.
type Engine struct {
	rules []Rule
}

// NewEngine sorts rules by descending priority once at construction so
// each node visit doesn't need to re-sort.
func NewEngine(rules ...Rule) *Engine {
	sorted := append([]Rule{}, rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })
	return &Engine{rules: sorted}
}

// Stats accumulates counts across the TransformExpr/TransformStmts
// calls it is passed to.
type Stats struct {
	Transformed int
	Visited     int
}

// TransformExpr applies the rule set to node and its children
// (post-order: children first, then the node itself), returning the
// rewritten expression.
func (e *Engine) TransformExpr(node ast.Expr, ctx *Context, stats *Stats) (ast.Expr, error) {
	return e.transformExpr(node, ctx, stats, 0)
}

func (e *Engine) transformExpr(node ast.Expr, ctx *Context, stats *Stats, depth int) (ast.Expr, error) {
	if node == nil || depth > maxDescentDepth {
		return node, nil
	}
	stats.Visited++

	descended, err := e.descendExpr(node, ctx, stats, depth+1)
	if err != nil {
		return nil, err
	}

	current := descended
	for i := 0; i < maxIterationsPerNode; i++ {
		matched := false
		for _, rule := range e.rules {
			if !rule.Matches(current, ctx) {
				continue
			}
			next, err := rule.Transform(current, ctx)
			if err != nil {
				return nil, fmt.Errorf("transform: rule %s: %w", rule.Name(), err)
			}
			if v, ok := rule.(Validator); ok {
				if err := v.Validate(current, next, ctx); err != nil {
					return nil, fmt.Errorf("transform: rule %s validation: %w", rule.Name(), err)
				}
			}
			if !ctx.DryRun {
				current = next
			}
			stats.Transformed++
			matched = true
		}
		// A dry run never changes current, so a further pass would only
		// re-match and re-count the same node.
		if !matched || ctx.DryRun {
			break
		}
	}
	return current, nil
}

// descendExpr rewrites node's children without touching node itself.
func (e *Engine) descendExpr(node ast.Expr, ctx *Context, stats *Stats, depth int) (ast.Expr, error) {
	switch n := node.(type) {
	case *ast.UnaryExpr:
		operand, err := e.transformExpr(n.Operand, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: n.Pos, Op: n.Op, Operand: operand}, nil

	case *ast.BinaryExpr:
		left, err := e.transformExpr(n.Left, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		right, err := e.transformExpr(n.Right, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Pos: n.Pos, Left: left, Op: n.Op, Right: right}, nil

	case *ast.TernaryExpr:
		cond, err := e.transformExpr(n.Condition, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		then, err := e.transformExpr(n.Then, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		els, err := e.transformExpr(n.Else, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Pos: n.Pos, Condition: cond, Then: then, Else: els}, nil

	case *ast.ParenExpr:
		inner, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Pos: n.Pos, Expr: inner}, nil

	case *ast.IndexExpr:
		recv, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		idx, err := e.transformExpr(n.Index, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Pos: n.Pos, Expr: recv, Index: idx}, nil

	case *ast.RangeExpr:
		recv, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		start, err := e.transformExpr(n.Start, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		end, err := e.transformExpr(n.End, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.RangeExpr{Pos: n.Pos, Expr: recv, Start: start, End: end}, nil

	case *ast.PropertyExpr:
		recv, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyExpr{Pos: n.Pos, Expr: recv, Property: n.Property}, nil

	case *ast.VerbCallExpr:
		recv, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		args, err := e.transformExprList(n.Args, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.VerbCallExpr{Pos: n.Pos, Expr: recv, Verb: n.Verb, Args: args}, nil

	case *ast.CallExpr:
		callee, err := e.transformExpr(n.Callee, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		args, err := e.transformExprList(n.Args, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Pos: n.Pos, Callee: callee, Args: args}, nil

	case *ast.SpliceExpr:
		inner, err := e.transformExpr(n.Expr, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.SpliceExpr{Pos: n.Pos, Expr: inner}, nil

	case *ast.AssignExpr:
		target, err := e.transformExpr(n.Target, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		val, err := e.transformExpr(n.Value, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Pos: n.Pos, Target: target, Value: val}, nil

	case *ast.ListExpr:
		items, err := e.transformExprList(n.Items, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		return &ast.ListExpr{Pos: n.Pos, Items: items}, nil

	case *ast.MapExpr:
		entries := make([]ast.MapEntryExpr, len(n.Entries))
		for i, entry := range n.Entries {
			k, err := e.transformExpr(entry.Key, ctx, stats, depth)
			if err != nil {
				return nil, err
			}
			v, err := e.transformExpr(entry.Value, ctx, stats, depth)
			if err != nil {
				return nil, err
			}
			entries[i] = ast.MapEntryExpr{Key: k, Value: v}
		}
		return &ast.MapExpr{Pos: n.Pos, Entries: entries}, nil

	default:
		// Literals, identifiers, object/sys-prop refs, catch, and
		// lambda bodies have no rewritable Expr children at this
		// level (a lambda body is a []ast.Stmt, rewritten via
		// TransformStmts by the caller that owns the verb/function).
		return node, nil
	}
}

func (e *Engine) transformExprList(items []ast.Expr, ctx *Context, stats *Stats, depth int) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(items))
	for i, item := range items {
		v, err := e.transformExpr(item, ctx, stats, depth)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// TransformStmts rewrites every expression reachable from stmts,
// recursing into nested statement bodies (if/while/for/try/match/fn/event).
func (e *Engine) TransformStmts(stmts []ast.Stmt, ctx *Context, stats *Stats) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		v, err := e.transformStmt(s, ctx, stats)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Engine) transformStmt(stmt ast.Stmt, ctx *Context, stats *Stats) (ast.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if s.Expr == nil {
			return s, nil
		}
		expr, err := e.TransformExpr(s.Expr, ctx, stats)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Pos: s.Pos, Expr: expr}, nil

	case *ast.LetStmt:
		v, err := e.TransformExpr(s.Value, ctx, stats)
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Pos: s.Pos, Name: s.Name, Const: s.Const, Value: v}, nil

	case *ast.IfStmt:
		cond, err := e.TransformExpr(s.Condition, ctx, stats)
		if err != nil {
			return nil, err
		}
		body, err := e.TransformStmts(s.Body, ctx, stats)
		if err != nil {
			return nil, err
		}
		elseIfs := make([]*ast.ElseIfClause, len(s.ElseIfs))
		for i, ei := range s.ElseIfs {
			c, err := e.TransformExpr(ei.Condition, ctx, stats)
			if err != nil {
				return nil, err
			}
			b, err := e.TransformStmts(ei.Body, ctx, stats)
			if err != nil {
				return nil, err
			}
			elseIfs[i] = &ast.ElseIfClause{Pos: ei.Pos, Condition: c, Body: b}
		}
		var elseBody []ast.Stmt
		if s.Else != nil {
			elseBody, err = e.TransformStmts(s.Else, ctx, stats)
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStmt{Pos: s.Pos, Condition: cond, Body: body, ElseIfs: elseIfs, Else: elseBody}, nil

	case *ast.WhileStmt:
		cond, err := e.TransformExpr(s.Condition, ctx, stats)
		if err != nil {
			return nil, err
		}
		body, err := e.TransformStmts(s.Body, ctx, stats)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Pos: s.Pos, Label: s.Label, Condition: cond, Body: body}, nil

	case *ast.ForStmt:
		body, err := e.TransformStmts(s.Body, ctx, stats)
		if err != nil {
			return nil, err
		}
		out := &ast.ForStmt{Pos: s.Pos, Label: s.Label, Value: s.Value, Index: s.Index, Body: body}
		if s.Container != nil {
			out.Container, err = e.TransformExpr(s.Container, ctx, stats)
			if err != nil {
				return nil, err
			}
		}
		if s.RangeStart != nil {
			out.RangeStart, err = e.TransformExpr(s.RangeStart, ctx, stats)
			if err != nil {
				return nil, err
			}
			out.RangeEnd, err = e.TransformExpr(s.RangeEnd, ctx, stats)
			if err != nil {
				return nil, err
			}
		}
		return out, nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			return s, nil
		}
		v, err := e.TransformExpr(s.Value, ctx, stats)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Pos: s.Pos, Value: v}, nil

	case *ast.TryStmt:
		body, err := e.TransformStmts(s.Body, ctx, stats)
		if err != nil {
			return nil, err
		}
		catches := make([]*ast.CatchClause, len(s.Catches))
		for i, c := range s.Catches {
			cb, err := e.TransformStmts(c.Body, ctx, stats)
			if err != nil {
				return nil, err
			}
			catches[i] = &ast.CatchClause{Pos: c.Pos, Codes: c.Codes, IsAny: c.IsAny, Variable: c.Variable, Body: cb}
		}
		var fin []ast.Stmt
		if s.Finally != nil {
			fin, err = e.TransformStmts(s.Finally, ctx, stats)
			if err != nil {
				return nil, err
			}
		}
		return &ast.TryStmt{Pos: s.Pos, Body: body, Catches: catches, Finally: fin}, nil

	case *ast.MatchStmt:
		subject, err := e.TransformExpr(s.Subject, ctx, stats)
		if err != nil {
			return nil, err
		}
		cases := make([]*ast.MatchCase, len(s.Cases))
		for i, c := range s.Cases {
			body, err := e.TransformStmts(c.Body, ctx, stats)
			if err != nil {
				return nil, err
			}
			var guard ast.Expr
			if c.Guard != nil {
				guard, err = e.TransformExpr(c.Guard, ctx, stats)
				if err != nil {
					return nil, err
				}
			}
			cases[i] = &ast.MatchCase{Pos: c.Pos, Pattern: c.Pattern, Guard: guard, Body: body}
		}
		return &ast.MatchStmt{Pos: s.Pos, Subject: subject, Cases: cases}, nil

	case *ast.FnDeclStmt:
		body, err := e.TransformStmts(s.Body, ctx, stats)
		if err != nil {
			return nil, err
		}
		return &ast.FnDeclStmt{Pos: s.Pos, Name: s.Name, Params: s.Params, Body: body}, nil

	case *ast.EventStmt:
		args, err := e.transformExprList(s.Args, ctx, stats, 0)
		if err != nil {
			return nil, err
		}
		return &ast.EventStmt{Pos: s.Pos, Name: s.Name, Args: args}, nil

	default:
		return stmt, nil
	}
}
