// Package conformance runs the language's end-to-end test scenarios
// (spec.md §8) as data: YAML test suites under testdata/, loaded and
// executed against a real Evaluator rather than hand-written Go test
// functions per case.
package conformance

// TestSuite is one YAML test file.
type TestSuite struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Setup       *SetupBlock `yaml:"setup,omitempty"`
	Tests       []TestCase  `yaml:"tests"`
}

// SetupBlock binds a shared local or creates a fixture object. A
// suite-wide block runs once per file, before the first of its tests
// that runs; a per-test block runs before that test.
// Objects is for fixtures a bare statement can't express, since the
// language has no builtin for defining a verb on an object: each entry
// is stored directly into the Object Store before Statement runs.
type SetupBlock struct {
	Statement string          `yaml:"statement,omitempty"`
	Objects   []ObjectFixture `yaml:"objects,omitempty"`
}

// ObjectFixture declares one Object to seed into the store, registered
// under MooNum so tests can address it as `#N`.
type ObjectFixture struct {
	MooNum int64         `yaml:"moo_num"`
	Name   string        `yaml:"name,omitempty"`
	Verbs  []VerbFixture `yaml:"verbs,omitempty"`
}

// VerbFixture declares one verb to attach to an ObjectFixture. Name is
// the raw space-separated pattern list, exactly as it would appear in
// a textdump or a live `@verb` definition.
type VerbFixture struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// TestCase is a single scenario. Exactly one of Code (an expression,
// evaluated directly) or Statement (a full program, whose FlowReturn
// result becomes the value checked) should be set.
type TestCase struct {
	Name      string      `yaml:"name"`
	Skip      interface{} `yaml:"skip,omitempty"`
	Code      string      `yaml:"code,omitempty"`
	Statement string      `yaml:"statement,omitempty"`
	Setup     *SetupBlock `yaml:"setup,omitempty"`
	Expect    Expectation `yaml:"expect"`
}

// Expectation describes the outcome a test requires. Exactly one of
// Value, Error, or Type is normally set.
type Expectation struct {
	Value interface{} `yaml:"value,omitempty"`
	Error string      `yaml:"error,omitempty"`
	Type  string      `yaml:"type,omitempty"`
}

// IsSkipped reports whether tc should be skipped and why.
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case bool:
		return v, "skipped"
	case string:
		return true, v
	default:
		return false, ""
	}
}
