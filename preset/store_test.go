package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lee-cloete/drift/engine"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	in := engine.Preset{
		Params: engine.Params{Darkness: 0.8, Motion: 0.3, Mode: engine.ModeDeep, PureDrone: true},
		SubHz:  44.2,
		MidHz:  120.5,
		AirHz:  400,
	}
	if err := s.Save("night", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, ok, err := s.Load("night")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected preset to exist")
	}
	if out != in {
		t.Errorf("round trip mismatch: saved %+v, loaded %+v", in, out)
	}
}

func TestStoreOverwrite(t *testing.T) {
	s := testStore(t)
	if err := s.Save("p", engine.Preset{SubHz: 40}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("p", engine.Preset{SubHz: 60}); err != nil {
		t.Fatal(err)
	}
	out, ok, err := s.Load("p")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if out.SubHz != 60 {
		t.Errorf("expected last write to win, got SubHz %v", out.SubHz)
	}
}

func TestStoreMissingName(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Load("absent")
	if err != nil {
		t.Fatalf("missing preset must not error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing preset")
	}
}

func TestStoreCorruptFileDegradesToAbsent(t *testing.T) {
	s := testStore(t)
	if err := os.WriteFile(s.path("broken"), []byte("{unclosed: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	_, ok, err := s.Load("broken")
	if err != nil {
		t.Fatalf("corrupt preset must not error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a corrupt preset")
	}
}

func TestStoreList(t *testing.T) {
	s := testStore(t)
	for _, name := range []string{"a", "b", "c"} {
		if err := s.Save(name, engine.Preset{}); err != nil {
			t.Fatal(err)
		}
	}
	// Stray files without the preset extension are invisible.
	if err := os.WriteFile(filepath.Join(s.dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 {
		t.Errorf("expected 3 presets, got %v", names)
	}
}

func TestStoreDelete(t *testing.T) {
	s := testStore(t)
	if err := s.Save("gone", engine.Preset{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatal(err)
	}
	_, ok, _ := s.Load("gone")
	if ok {
		t.Error("expected preset to be gone after delete")
	}
	if err := s.Delete("gone"); err != nil {
		t.Errorf("deleting an absent preset must be a no-op, got %v", err)
	}
}

func TestStoreSanitizesNames(t *testing.T) {
	s := testStore(t)
	if err := s.Save("../escape/attempt", engine.Preset{SubHz: 50}); err != nil {
		t.Fatal(err)
	}
	out, ok, err := s.Load("../escape/attempt")
	if err != nil || !ok {
		t.Fatalf("load sanitized name: ok=%v err=%v", ok, err)
	}
	if out.SubHz != 50 {
		t.Errorf("expected SubHz 50, got %v", out.SubHz)
	}
	// The file must live inside the bucket directory.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in the bucket, got %v", len(entries))
	}
}
