package fileutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	if err := WriteJSONFileAtomic(path, payload{Name: "room-1", Count: 3}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !FileExists(path) {
		t.Fatalf("file not written: %s", path)
	}

	var got payload
	if err := ReadJSONFile(path, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Name != "room-1" || got.Count != 3 {
		t.Fatalf("got %+v", got)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Fatal("written file missing trailing newline")
	}
}

func TestWriteFileAtomicSameDirLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	if err := WriteFileAtomicSameDir(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir contents = %v", names)
	}
}

func TestReadJSONFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var v map[string]any

	if err := ReadJSONFile(filepath.Join(dir, "missing.json"), &v); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ReadJSONFile(bad, &v); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  hello  ", 10); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abcdef", 0); got != "abcdef" {
		t.Fatalf("got %q", got)
	}
}
