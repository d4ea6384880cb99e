package objstore

import (
	"path/filepath"
	"testing"

	"echo/objid"
	"echo/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objects.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsSystemAndRoot(t *testing.T) {
	s := openTestStore(t)

	sysID, ok := s.ResolveMooID(0)
	if !ok || sysID != objid.System {
		t.Fatalf("expected MOO 0 to map to objid.System, got %s, %v", sysID, ok)
	}
	rootID, ok := s.ResolveMooID(1)
	if !ok || rootID != objid.Root {
		t.Fatalf("expected MOO 1 to map to objid.Root, got %s, %v", rootID, ok)
	}

	sys, err := s.Get(objid.System)
	if err != nil {
		t.Fatalf("Get(system) failed: %v", err)
	}
	selfRef, ok := sys.Properties["system"].(value.ObjValue)
	if !ok || selfRef.ID != objid.System {
		t.Fatalf("expected system.system to self-reference, got %#v", sys.Properties["system"])
	}

	root, err := s.Get(objid.Root)
	if err != nil {
		t.Fatalf("Get(root) failed: %v", err)
	}
	if root.Parent == nil || *root.Parent != objid.System {
		t.Fatalf("expected root's parent to be system, got %#v", root.Parent)
	}
}

func TestStoreGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id := objid.New()
	obj := NewObject(id, "thing")
	obj.Properties["count"] = value.NewInt(42)
	obj.Properties["label"] = value.NewString("a widget")
	obj.Properties["tags"] = value.NewList([]value.Value{value.NewString("x"), value.NewString("y")})

	if err := s.Store(obj); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "thing" {
		t.Errorf("Name = %q, want %q", got.Name, "thing")
	}
	if !got.Properties["count"].Equal(value.NewInt(42)) {
		t.Errorf("count = %#v", got.Properties["count"])
	}
	if !got.Properties["tags"].Equal(obj.Properties["tags"]) {
		t.Errorf("tags = %#v, want %#v", got.Properties["tags"], obj.Properties["tags"])
	}
}

func TestStoreFindByName(t *testing.T) {
	s := openTestStore(t)

	id := objid.New()
	obj := NewObject(id, "gadget")
	if err := s.Store(obj); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	found, ok := s.FindByName("gadget")
	if !ok || found != id {
		t.Fatalf("FindByName = %s, %v, want %s, true", found, ok, id)
	}

	if _, ok := s.FindByName("nonexistent"); ok {
		t.Error("expected no match for nonexistent name")
	}
}

func TestStoreRenameLeavesOldIndexEntry(t *testing.T) {
	s := openTestStore(t)

	id := objid.New()
	obj := NewObject(id, "old-name")
	if err := s.Store(obj); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	obj.Name = "new-name"
	if err := s.Store(obj); err != nil {
		t.Fatalf("Store (rename) failed: %v", err)
	}

	if newID, ok := s.FindByName("new-name"); !ok || newID != id {
		t.Fatalf("new-name should resolve to %s, got %s, %v", id, newID, ok)
	}
	if oldID, ok := s.FindByName("old-name"); !ok || oldID != id {
		t.Fatalf("old-name index entry must survive an un-deleted rename, got %s, %v", oldID, ok)
	}
}

func TestStoreDelete(t *testing.T) {
	s := openTestStore(t)

	id := objid.New()
	obj := NewObject(id, "ephemeral")
	if err := s.Store(obj); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(id); err == nil {
		t.Error("expected Get to fail after Delete")
	}
	if _, ok := s.FindByName("ephemeral"); ok {
		t.Error("expected name index entry to be removed by Delete")
	}
}

func TestGetOrCreateMooIDIsStable(t *testing.T) {
	s := openTestStore(t)

	first, err := s.GetOrCreateMooID(100)
	if err != nil {
		t.Fatalf("GetOrCreateMooID failed: %v", err)
	}
	second, err := s.GetOrCreateMooID(100)
	if err != nil {
		t.Fatalf("GetOrCreateMooID (second call) failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same ObjectId on repeat lookups, got %s and %s", first, second)
	}
	if !s.IsValidMooID(100) {
		t.Error("expected IsValidMooID(100) to be true")
	}
	if s.IsValidMooID(999) {
		t.Error("expected IsValidMooID(999) to be false")
	}
}

func TestRegisterMooIDRejectsBimapViolation(t *testing.T) {
	s := openTestStore(t)

	a := objid.New()
	b := objid.New()
	if err := s.RegisterMooID(50, a); err != nil {
		t.Fatalf("RegisterMooID failed: %v", err)
	}
	if err := s.RegisterMooID(50, b); err == nil {
		t.Error("expected RegisterMooID to reject remapping an existing MOO number")
	}
	if err := s.RegisterMooID(51, a); err == nil {
		t.Error("expected RegisterMooID to reject giving one ObjectId two MOO numbers")
	}
}

func TestBimapSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := s.GetOrCreateMooID(7)
	if err != nil {
		t.Fatalf("GetOrCreateMooID failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.ResolveMooID(7)
	if !ok || got != id {
		t.Fatalf("expected MOO 7 to survive reopen as %s, got %s, %v", id, got, ok)
	}
}

func TestVerbCodeIsReparsedOnLoad(t *testing.T) {
	s := openTestStore(t)

	id := objid.New()
	obj := NewObject(id, "talker")
	obj.Verbs["greet"] = &VerbDefinition{
		Name: "greet",
		Code: `return "hello";`,
	}
	if err := s.Store(obj); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	verb, ok := got.Verbs["greet"]
	if !ok {
		t.Fatal("expected verb 'greet' to survive round trip")
	}
	if len(verb.AST) != 1 {
		t.Fatalf("expected verb AST to be reparsed into 1 statement, got %d", len(verb.AST))
	}
}
