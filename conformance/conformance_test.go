package conformance

import (
	"path/filepath"
	"testing"
)

func TestConformance(t *testing.T) {
	tests, err := LoadAll("testdata")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(tests) == 0 {
		t.Fatal("no conformance fixtures loaded")
	}

	runner, err := NewRunner(filepath.Join(t.TempDir(), "conformance.db"))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	results := runner.RunAll(tests)

	byFile := make(map[string][]TestResult)
	for _, r := range results {
		byFile[r.Test.File] = append(byFile[r.Test.File], r)
	}

	for file, fileResults := range byFile {
		t.Run(file, func(t *testing.T) {
			for _, r := range fileResults {
				t.Run(r.Test.Test.Name, func(t *testing.T) {
					if r.Skipped {
						t.Skipf("skipped: %s", r.SkipReason)
					}
					if !r.Passed {
						t.Errorf("%v", r.Error)
					}
				})
			}
		})
	}

	t.Logf("conformance summary: %s", Summarize(results))
}
