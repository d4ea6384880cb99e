package transform

import (
	"fmt"

	"echo/objid"
	"echo/objstore"
	"echo/parser"
)

// SystemTracer walks every verb on every object in a live store and
// rewrites its AST in place, the way the original implementation's
// system-wide tracer re-lints the whole database after a rule set
// changes. Verb source (Code) is re-derived from the rewritten AST via
// parser.Unparse so a later load sees the traced form too.
type SystemTracer struct {
	Engine *Engine
	Store  *objstore.Store
	DryRun bool
}

// NewSystemTracer builds a tracer running the given rules against store.
func NewSystemTracer(store *objstore.Store, dryRun bool, rules ...Rule) *SystemTracer {
	return &SystemTracer{Engine: NewEngine(rules...), Store: store, DryRun: dryRun}
}

// Report summarizes one SystemTracer.Run call.
type Report struct {
	ObjectsVisited int
	VerbsVisited   int
	Transformed    int
	Errors         []error
}

// Run applies the rule set to every verb of every object in the store.
// Objects whose AST is unchanged after tracing are never re-stored.
func (t *SystemTracer) Run() Report {
	var report Report

	ids, err := t.Store.ListAll()
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("transform: listing objects: %w", err))
		return report
	}

	for _, id := range ids {
		report.ObjectsVisited++
		if err := t.traceObject(id, &report); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}
	return report
}

func (t *SystemTracer) traceObject(id objid.ObjectId, report *Report) error {
	obj, err := t.Store.Get(id)
	if err != nil {
		return fmt.Errorf("transform: loading %s: %w", id, err)
	}

	dirty := false
	for name, verb := range obj.Verbs {
		report.VerbsVisited++
		ctx := &Context{Store: t.Store, ObjectName: obj.Name, VerbName: name, DryRun: t.DryRun}

		stats := &Stats{}
		rewritten, err := t.Engine.TransformStmts(verb.AST, ctx, stats)
		if err != nil {
			return fmt.Errorf("transform: %s:%s: %w", obj.Name, name, err)
		}
		report.Transformed += stats.Transformed
		if stats.Transformed == 0 || t.DryRun {
			continue
		}

		verb.AST = rewritten
		verb.Code = parser.Unparse(rewritten)
		dirty = true
	}

	if dirty {
		if err := t.Store.Store(obj); err != nil {
			return fmt.Errorf("transform: persisting %s: %w", obj.Name, err)
		}
	}
	return nil
}
