package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"echo/objstore"
)

func newTestRepl(t *testing.T) *repl {
	t.Helper()
	store, err := objstore.Open(filepath.Join(t.TempDir(), "echo.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return newRepl(store, false)
}

// captureOut runs fn with a pipe wired to os.Stdout-shaped *os.File and
// returns everything written to it.
func captureOut(t *testing.T, fn func(out *os.File)) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	fn(w)
	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestHandleMetaHelp(t *testing.T) {
	r := newTestRepl(t)
	out := captureOut(t, func(out *os.File) { r.handleMeta(".help", out) })
	if !strings.Contains(out, ".quit") {
		t.Fatalf("expected help text to mention .quit, got %q", out)
	}
}

func TestHandleMetaQuitStopsRepl(t *testing.T) {
	r := newTestRepl(t)
	captureOut(t, func(out *os.File) { r.handleMeta(".quit", out) })
	if r.running {
		t.Fatal("expected .quit to stop the repl")
	}
}

func TestHandleMetaQuietToggles(t *testing.T) {
	r := newTestRepl(t)
	captureOut(t, func(out *os.File) { r.handleMeta(".quiet", out) })
	if !r.quiet {
		t.Fatal("expected .quiet to enable quiet mode")
	}
	captureOut(t, func(out *os.File) { r.handleMeta(".quiet", out) })
	if r.quiet {
		t.Fatal("expected second .quiet to disable quiet mode")
	}
}

func TestCreateAndSwitchPlayer(t *testing.T) {
	r := newTestRepl(t)
	captureOut(t, func(out *os.File) { r.handleMeta(".create wizard", out) })

	id, ok := r.store.FindByName("wizard")
	if !ok {
		t.Fatal("expected player 'wizard' to exist after .create")
	}
	if !r.player.Equal(id) {
		t.Fatal("expected .create to switch to the new player")
	}

	obj, err := r.store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !obj.Meta.Player {
		t.Fatal("expected created object to be flagged as a player")
	}

	out := captureOut(t, func(out *os.File) { r.handleMeta(".create wizard", out) })
	if !strings.Contains(out, "already exists") {
		t.Fatalf("expected duplicate .create to fail, got %q", out)
	}

	out = captureOut(t, func(out *os.File) { r.handleMeta(".switch nobody", out) })
	if !strings.Contains(out, "no such player") {
		t.Fatalf("expected .switch to a nonexistent player to fail, got %q", out)
	}
}

func TestExecuteProgramReturnsValue(t *testing.T) {
	r := newTestRepl(t)
	out, _, err := r.executeProgram("return 2 + 2;")
	if err != nil {
		t.Fatalf("executeProgram: %v", err)
	}
	if out != "4" {
		t.Fatalf("expected 4, got %q", out)
	}
}

func TestExecuteProgramSurfacesErrors(t *testing.T) {
	r := newTestRepl(t)
	_, _, err := r.executeProgram("1 / 0;")
	if err == nil {
		t.Fatal("expected division by zero to surface as an error")
	}
	if !strings.Contains(err.Error(), "DivisionByZero") {
		t.Fatalf("expected DivisionByZero in error, got %v", err)
	}
}
