package mooimport

import (
	"path/filepath"
	"strings"
	"testing"

	"echo/ast"
	"echo/objstore"
	"echo/parser"
)

func TestPreprocessSubstitutesDefines(t *testing.T) {
	src := "define ROOM = #5;\nobject NAME\nparent: ROOM\nendobject\n"
	out := Preprocess(src)
	if strings.Contains(out, "define") {
		t.Fatalf("expected define line stripped, got %q", out)
	}
	if !strings.Contains(out, "parent: #5") {
		t.Fatalf("expected ROOM substituted with #5, got %q", out)
	}
}

func TestPreprocessLaterDefineOverrides(t *testing.T) {
	src := "define X = 1;\ndefine X = 2;\nprop: X;\n"
	out := Preprocess(src)
	if !strings.Contains(out, "prop: 2") {
		t.Fatalf("expected later define to win, got %q", out)
	}
}

func TestPreprocessWithReportRecordsFirings(t *testing.T) {
	src := "define X = 1;\ndefine Y = X + 1;\nprop: Y;\n"
	_, report := PreprocessWithReport(src)
	if len(report.Defines) != 2 || report.Defines[0] != "X" || report.Defines[1] != "Y" {
		t.Fatalf("expected defines in declaration order [X Y], got %v", report.Defines)
	}
	if report.Values["X"] != "1" {
		t.Fatalf("expected X to resolve to 1, got %q", report.Values["X"])
	}
	if report.Values["Y"] != "1 + 1" {
		t.Fatalf("expected Y to resolve to '1 + 1', got %q", report.Values["Y"])
	}
}

func TestParseObjectFileBasic(t *testing.T) {
	src := `object #10
name: thing
parent: #1
property description (owner:#2, flags:"rd") = "a thing";
override aliases = {};
verb "get take" (this none this) owner:#2 flags:"rxd"
return 1;
endverb
endobject
`
	def, err := ParseObjectFile(src)
	if err != nil {
		t.Fatalf("ParseObjectFile: %v", err)
	}
	if def.Ref != "#10" || def.Name != "thing" || def.Parent != "#1" {
		t.Fatalf("got %+v", def)
	}
	if len(def.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(def.Properties))
	}
	if def.Properties[0].Name != "description" || def.Properties[0].Owner != 2 {
		t.Fatalf("got %+v", def.Properties[0])
	}
	if len(def.Verbs) != 1 || def.Verbs[0].Name != "get take" {
		t.Fatalf("got %+v", def.Verbs)
	}
	if !strings.Contains(def.Verbs[0].Body, "return 1;") {
		t.Fatalf("got body %q", def.Verbs[0].Body)
	}
}

func TestImportMaterializesObject(t *testing.T) {
	store, err := objstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	def := &ObjectDef{
		Ref:    "#10",
		Name:   "#10",
		Parent: "#1",
		Properties: []PropertyDef{
			{Name: "description", Value: objRefPlaceholder{MooNum: 1}},
		},
		Verbs: []VerbDef{
			{Name: "get", Flags: "rxd"},
		},
	}

	parseBody := func(src string) ([]ast.Stmt, error) {
		program, err := parser.ParseProgram(src)
		if err != nil {
			return nil, err
		}
		return program.Stmts, nil
	}

	obj, err := Import(store, def, parseBody)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if obj.Parent == nil {
		t.Fatal("expected parent to resolve")
	}
	if _, ok := obj.Verbs["get"]; !ok {
		t.Fatal("expected verb 'get' to be attached")
	}

	reloaded, err := store.Get(obj.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded.Name != "#10" {
		t.Fatalf("got %+v", reloaded)
	}
}

func TestImportBinaryDBRoundTrip(t *testing.T) {
	src := "LambdaMOO Database, Format Version 1\n" +
		"2\n" + // total objects
		"0\n" + // total verbs
		"0\n" + // dummy
		"0\n" + // total players
		"0\n" + // object #0
		"root\n" +
		"\n" +
		"0\n" + // flags
		"0\n" + // owner
		"-1\n" + // location
		"-1\n" + // contents
		"-1\n" + // next
		"-1\n" + // parent
		"-1\n" + // child
		"-1\n" + // sibling
		"0\n" + // verb count
		"0\n" + // propdef count
		"0\n" + // propval count
		"1\n" + // object #1
		"child\n" +
		"\n" +
		"0\n" +
		"0\n" +
		"-1\n" +
		"-1\n" +
		"-1\n" +
		"0\n" + // parent = #0
		"-1\n" +
		"-1\n" +
		"0\n" +
		"0\n" +
		"0\n"

	store, err := objstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := ImportBinaryDB(strings.NewReader(src), store); err != nil {
		t.Fatalf("ImportBinaryDB: %v", err)
	}

	childID, ok := store.ResolveMooID(1)
	if !ok {
		t.Fatal("expected #1 to be registered")
	}
	child, err := store.Get(childID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if child.Name != "child" || child.Parent == nil {
		t.Fatalf("got %+v", child)
	}
}
