package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadedTest pairs a test case with the suite (and file) it came from,
// since suite-level setup and the source filename both matter when
// reporting results.
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAll walks dir for *.yaml files and loads every test case in
// declaration order. A file that fails to parse is reported as an
// error rather than silently skipped — unlike a textdump import, a
// malformed conformance fixture is a repo defect worth failing loudly on.
func LoadAll(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		tests, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("conformance: loading %s: %w", path, err)
		}

		relPath, _ := filepath.Rel(dir, path)
		for _, t := range tests {
			t.File = relPath
			loaded = append(loaded, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	tests := make([]LoadedTest, 0, len(suite.Tests))
	for _, tc := range suite.Tests {
		tests = append(tests, LoadedTest{Suite: suite, Test: tc})
	}
	return tests, nil
}
