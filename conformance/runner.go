package conformance

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"echo/connections"
	"echo/eval"
	"echo/objid"
	"echo/objstore"
	"echo/parser"
	"echo/value"
)

// TestResult is the outcome of running a single LoadedTest.
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes conformance tests against one Evaluator, backed by a
// throwaway on-disk store (the Object Store has no in-memory-only mode,
// so every run gets a temp bbolt file the caller is responsible for
// cleaning up along with its temp directory).
type Runner struct {
	evaluator   *eval.Evaluator
	store       *objstore.Store
	setupSuites map[string]bool
}

// NewRunner opens a fresh store at dbPath and returns a Runner bound to it.
func NewRunner(dbPath string) (*Runner, error) {
	store, err := objstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("conformance: opening store: %w", err)
	}
	evaluator := eval.New(store, objid.Root)
	evaluator.Connections = connections.NewRegistry()
	return &Runner{
		evaluator:   evaluator,
		store:       store,
		setupSuites: make(map[string]bool),
	}, nil
}

// Close releases the Runner's backing store.
func (r *Runner) Close() error { return r.store.Close() }

func (r *Runner) runSetup(block *SetupBlock) error {
	if block == nil {
		return nil
	}
	for _, fixture := range block.Objects {
		if err := r.seedObject(fixture); err != nil {
			return err
		}
	}
	if block.Statement == "" {
		return nil
	}
	stmt, err := parser.Parse(block.Statement)
	if err != nil {
		return fmt.Errorf("setup parse error: %w", err)
	}
	result := r.evaluator.EvalStmt(stmt)
	if result.IsError() {
		return fmt.Errorf("setup error: %s", result.Err.Code.Name())
	}
	return nil
}

// seedObject stores fixture directly into the Object Store, parsing
// each declared verb's source the same way mooimport does, and
// registers it under its MOO number so tests can reach it as `#N`.
func (r *Runner) seedObject(fixture ObjectFixture) error {
	obj := objstore.NewObject(objid.New(), fixture.Name)
	for _, v := range fixture.Verbs {
		program, err := parser.ParseProgram(v.Code)
		if err != nil {
			return fmt.Errorf("setup: parsing verb %q: %w", v.Name, err)
		}
		obj.Verbs[v.Name] = &objstore.VerbDefinition{
			Name: v.Name,
			Code: v.Code,
			AST:  program.Stmts,
		}
	}
	if err := r.store.Store(obj); err != nil {
		return fmt.Errorf("setup: storing object: %w", err)
	}
	if err := r.store.RegisterMooID(fixture.MooNum, obj.ID); err != nil {
		return fmt.Errorf("setup: registering #%d: %w", fixture.MooNum, err)
	}
	return nil
}

// Run executes a single test case.
func (r *Runner) Run(test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{Test: test, Skipped: true, SkipReason: reason}
	}

	if test.Suite.Setup != nil && !r.setupSuites[test.File] {
		if err := r.runSetup(test.Suite.Setup); err != nil {
			return TestResult{Test: test, Error: fmt.Errorf("suite setup failed: %w", err)}
		}
		r.setupSuites[test.File] = true
	}
	if err := r.runSetup(test.Test.Setup); err != nil {
		return TestResult{Test: test, Error: fmt.Errorf("test setup failed: %w", err)}
	}

	var result value.Result
	switch {
	case test.Test.Statement != "":
		program, err := parser.ParseProgram(test.Test.Statement)
		if err != nil {
			return TestResult{Test: test, Error: fmt.Errorf("parse error: %w", err)}
		}
		for _, stmt := range program.Stmts {
			result = r.evaluator.EvalStmt(stmt)
			if !result.IsNormal() {
				break
			}
		}
		if result.Flow == value.FlowReturn {
			result = value.Ok(result.Val)
		}

	case test.Test.Code != "":
		expr, err := parser.NewEcho(test.Test.Code).ParseExpression(0)
		if err != nil {
			return TestResult{Test: test, Error: fmt.Errorf("parse error: %w", err)}
		}
		result = r.evaluator.EvalExpr(expr)

	default:
		return TestResult{Test: test, Skipped: true, SkipReason: "no code/statement"}
	}

	passed, err := checkExpectation(test.Test.Expect, result)
	return TestResult{Test: test, Passed: passed, Error: err}
}

// RunAll runs every test in order.
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, t := range tests {
		results[i] = r.Run(t)
	}
	return results
}

// Summary aggregates a result set.
type Summary struct {
	Total, Passed, Failed, Skipped int
}

// Summarize tallies results into a Summary.
func Summarize(results []TestResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Passed:
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)", s.Passed, s.Failed, s.Skipped, s.Total)
}

func checkExpectation(expect Expectation, result value.Result) (bool, error) {
	if expect.Error != "" {
		if !result.IsError() {
			return false, fmt.Errorf("expected error %s, got %v", expect.Error, result.Val)
		}
		if !strings.EqualFold(result.Err.Code.Name(), expect.Error) {
			return false, fmt.Errorf("expected error %s, got %s", expect.Error, result.Err.Code.Name())
		}
		return true, nil
	}

	if !result.IsNormal() {
		if result.IsError() {
			return false, fmt.Errorf("unexpected error: %s", result.Err.Code.Name())
		}
		return false, fmt.Errorf("unexpected non-normal flow: %v", result.Flow)
	}

	if expect.Value != nil {
		expected, err := convertYAMLValue(expect.Value)
		if err != nil {
			return false, fmt.Errorf("converting expected value: %w", err)
		}
		if !result.Val.Equal(expected) {
			return false, fmt.Errorf("expected %v, got %v", expected, result.Val)
		}
		return true, nil
	}

	if expect.Type != "" {
		expectedType, ok := typeNameToCode(expect.Type)
		if !ok {
			return false, fmt.Errorf("unknown type: %s", expect.Type)
		}
		if result.Val.Type() != expectedType {
			return false, fmt.Errorf("expected type %s, got %s", expect.Type, result.Val.Type())
		}
		return true, nil
	}

	return false, fmt.Errorf("no expectation specified")
}

// convertYAMLValue converts a decoded YAML scalar/collection into the
// matching runtime Value, recognizing the "#N" object-ref string
// convention the fixtures use since YAML has no native object type.
func convertYAMLValue(v interface{}) (value.Value, error) {
	switch val := v.(type) {
	case int:
		return value.NewInt(int64(val)), nil
	case int64:
		return value.NewInt(val), nil
	case float64:
		return value.NewFloat(val), nil
	case bool:
		return value.NewBool(val), nil
	case string:
		if strings.HasPrefix(val, "#") {
			if n, err := strconv.ParseInt(val[1:], 10, 64); err == nil {
				return value.NewInt(n), nil
			}
		}
		return value.NewString(val), nil
	case []interface{}:
		items := make([]value.Value, len(val))
		for i, elem := range val {
			item, err := convertYAMLValue(elem)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return value.NewList(items), nil
	case map[string]interface{}:
		entries := make(map[string]value.Value, len(val))
		for k, elem := range val {
			item, err := convertYAMLValue(elem)
			if err != nil {
				return nil, err
			}
			entries[k] = item
		}
		return value.NewMap(entries), nil
	default:
		return nil, fmt.Errorf("unsupported YAML type: %T", v)
	}
}

func typeNameToCode(name string) (value.TypeCode, bool) {
	switch strings.ToLower(name) {
	case "int":
		return value.TypeInt, true
	case "float":
		return value.TypeFloat, true
	case "str":
		return value.TypeStr, true
	case "list":
		return value.TypeList, true
	case "obj":
		return value.TypeObj, true
	case "err":
		return value.TypeErr, true
	case "map":
		return value.TypeMap, true
	default:
		return 0, false
	}
}

// TestDataDir returns the default fixture directory, "testdata",
// relative to the current working directory (the conformance package
// directory under `go test`); no other location is tried.
func TestDataDir() string {
	return filepath.Join("testdata")
}
