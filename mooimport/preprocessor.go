// Package mooimport reads legacy LambdaMOO textdump and object-file
// sources and populates an objstore.Store: a preprocessor resolving
// `define` constants, a single-object text parser, and a binary-db
// (textdump) reader.
package mooimport

import (
	"regexp"
	"strings"
)

var defineLineRe = regexp.MustCompile(`(?m)^\s*define\s+([A-Z_][A-Z0-9_]*)\s*=\s*(.+?)\s*;\s*$`)

var defineNameRe = regexp.MustCompile(`\b[A-Z_][A-Z0-9_]*\b`)

// Report records which `define` names a Preprocess pass resolved, in
// declaration order, and their final (fully-substituted) values.
type Report struct {
	Defines []string
	Values  map[string]string
}

// Preprocess strips every `define NAME = value;` line from src and
// substitutes NAME with its last defined value everywhere in the
// remaining text, including lines before the define. Define values are
// resolved in declaration order, each against the defines seen so far,
// so a later define of the same name overrides an earlier one.
func Preprocess(src string) string {
	out, _ := PreprocessWithReport(src)
	return out
}

// PreprocessWithReport is Preprocess plus a Report naming which defines
// fired and what they resolved to, for import tooling that wants to
// surface a diagnostic summary rather than just the substituted text.
func PreprocessWithReport(src string) (string, Report) {
	defines := make(map[string]string)
	report := Report{Values: make(map[string]string)}

	matches := defineLineRe.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, report
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		name := src[m[2]:m[3]]
		val := src[m[4]:m[5]]

		b.WriteString(src[last:start])
		last = end

		resolved := substituteNames(val, defines)
		defines[name] = resolved
		report.Defines = append(report.Defines, name)
		report.Values[name] = resolved
	}
	b.WriteString(src[last:])
	body := b.String()

	return substituteNames(body, defines), report
}

// substituteNames replaces every whole-word occurrence of a defined
// name with its resolved value. Because defines map is built up in
// declaration order and each new value is itself substituted against
// the defines seen so far, a name referencing an earlier define
// expands transitively.
func substituteNames(text string, defines map[string]string) string {
	return defineNameRe.ReplaceAllStringFunc(text, func(name string) string {
		if v, ok := defines[name]; ok {
			return v
		}
		return name
	})
}
