package eval

import (
	"echo/ast"
	"echo/events"
	"echo/value"
)

// EmitEvent runs the event-system emission algorithm: collect handlers
// (exact-name bucket, "*" bucket, global, merged and sorted by
// priority), run each in its owner's frame, stop early on a
// cancelable event once a handler cancels, then notify out-of-band
// subscribers regardless of outcome.
func (e *Evaluator) EmitEvent(ev events.Event) (events.Outcome, value.Result) {
	if e.Events == nil {
		return events.Unhandled, value.Ok(value.Null)
	}

	ran := false
	for _, h := range e.Events.Collect(ev.Name) {
		ran = true
		res := e.runHandler(h, ev)
		if !res.IsNormal() && res.IsError() {
			e.notifySubscribers(ev)
			return events.Unhandled, res
		}
		if ev.Cancelable && res.IsNormal() {
			if b, ok := res.Val.(value.BoolValue); ok && !b.Val {
				e.notifySubscribers(ev)
				return events.Cancelled, value.Ok(value.Null)
			}
		}
	}

	e.notifySubscribers(ev)
	if ran {
		return events.Handled, value.Ok(value.Null)
	}
	return events.Unhandled, value.Ok(value.Null)
}

func (e *Evaluator) notifySubscribers(ev events.Event) {
	for _, sub := range e.Events.MatchingSubscriptions(ev.Name) {
		sub.Notify(ev)
	}
}

// runHandler pushes a frame owned by the handler, binds event.args
// positionally (missing args bind Null), binds the const locals
// event_name and event_emitter, then evaluates the body. Nothing is
// bound under $event_name or $event_emitter: in a handler body those
// still read properties of #0.
func (e *Evaluator) runHandler(h *events.Handler, ev events.Event) value.Result {
	body, ok := h.Body.([]ast.Stmt)
	if !ok {
		return value.Ok(value.Null)
	}

	saved := e.Env
	e.Env = saved.Snapshot()
	e.Env.Push(h.Owner)
	defer func() { e.Env = saved }()

	for i, p := range h.Params {
		if i < len(ev.Args) {
			e.Env.Define(p.Name, ev.Args[i], false)
		} else {
			e.Env.Define(p.Name, value.Null, false)
		}
	}
	e.Env.Define("event_name", value.NewString(ev.Name), true)
	e.Env.Define("event_emitter", value.NewObj(ev.Emitter), true)

	result := e.execBlock(body)
	if result.IsReturn() {
		return value.Ok(result.Val)
	}
	if result.IsError() {
		return result
	}
	return value.Ok(value.Null)
}
