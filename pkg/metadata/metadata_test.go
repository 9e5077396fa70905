package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}

	return path
}

func TestSignVerify(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "raw.csv", "Year,Country\n2017,Germany\n")

	m := New()

	e, err := m.Sign("raw", path, 1, 2, "run-1")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if e.File != "raw.csv" || e.Rows != 1 || e.Columns != 2 || e.RunID != "run-1" {
		t.Errorf("Unexpected entry: %+v", e)
	}

	if len(e.Hash) != 64 {
		t.Errorf("Expected hex sha256, got %q", e.Hash)
	}

	ok, err := m.Verify("raw", path)
	if !ok || err != nil {
		t.Fatalf("Verify() = %v, %v", ok, err)
	}

	writeFile(t, dir, "raw.csv", "Year,Country\n2017,France\n")

	ok, err = m.Verify("raw", path)
	if ok || !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Expected hash mismatch, got %v, %v", ok, err)
	}
}

func TestVerify_NoEntry(t *testing.T) {
	_, err := New().Verify("wide", "nowhere.csv")
	if !errors.Is(err, ErrNoEntry) {
		t.Errorf("Expected ErrNoEntry, got %v", err)
	}
}

func TestVerify_NoHash(t *testing.T) {
	m := New()
	m.Entries["raw"] = Entry{File: "raw.csv"}

	_, err := m.Verify("raw", "raw.csv")
	if !errors.Is(err, ErrNoHashFound) {
		t.Errorf("Expected ErrNoHashFound, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "wide.csv", "a\n1\n")

	m := New()
	if _, err := m.Sign("wide", path, 1, 1, "run-2"); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	manifest := filepath.Join(dir, FileName)
	if err := m.Save(manifest); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(manifest)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := loaded.Entries["wide"]
	want := m.Entries["wide"]

	if got.Hash != want.Hash || got.RunID != want.RunID || !got.LastModify.Equal(want.LastModify) {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, want)
	}

	if stages := loaded.Stages(); len(stages) != 1 || stages[0] != "wide" {
		t.Errorf("Stages() = %v", stages)
	}

	loaded.Forget("wide")

	if len(loaded.Entries) != 0 {
		t.Errorf("Forget left %v", loaded.Entries)
	}
}

func TestLoad_Missing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load of missing manifest failed: %v", err)
	}

	if len(m.Entries) != 0 || m.Version != Version {
		t.Errorf("Expected empty manifest, got %+v", m)
	}
}
