package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"echo/parser"
)

// FileTracer runs the rule engine over a directory of standalone
// source files (verb bodies saved to disk for editing outside a live
// store), re-parsing each with parser.ParseProgram and re-serializing
// changed files with parser.Unparse. Unlike SystemTracer it has no
// Store in its Context — rules that only look at AST shape (all three
// shipped rules) work unchanged; a rule that needs store state simply
// sees a nil Context.Store and should decline to match.
type FileTracer struct {
	Engine    *Engine
	Dir       string
	Extension string
	DryRun    bool
}

// NewFileTracer builds a tracer over every file under dir matching ext
// (e.g. ".moo" or ".echo").
func NewFileTracer(dir, ext string, dryRun bool, rules ...Rule) *FileTracer {
	return &FileTracer{Engine: NewEngine(rules...), Dir: dir, Extension: ext, DryRun: dryRun}
}

// Run walks Dir non-recursively, tracing each matching file.
func (t *FileTracer) Run() Report {
	var report Report

	entries, err := os.ReadDir(t.Dir)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("transform: reading %s: %w", t.Dir, err))
		return report
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != t.Extension {
			continue
		}
		path := filepath.Join(t.Dir, entry.Name())
		report.ObjectsVisited++
		if err := t.traceFile(path, &report); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}
	return report
}

func (t *FileTracer) traceFile(path string, report *Report) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("transform: reading %s: %w", path, err)
	}

	program, err := parser.ParseProgram(string(src))
	if err != nil {
		return fmt.Errorf("transform: parsing %s: %w", path, err)
	}
	report.VerbsVisited++

	ctx := &Context{VerbName: filepath.Base(path), DryRun: t.DryRun}
	stats := &Stats{}
	rewritten, err := t.Engine.TransformStmts(program.Stmts, ctx, stats)
	if err != nil {
		return fmt.Errorf("transform: %s: %w", path, err)
	}
	report.Transformed += stats.Transformed

	if stats.Transformed == 0 || t.DryRun {
		return nil
	}

	out := parser.Unparse(rewritten)
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("transform: writing %s: %w", path, err)
	}
	return nil
}
