package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "notes.json")

		if err := writeFileAtomic(filename, []byte("[]"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(got) != "[]" {
			t.Errorf("expected content '[]', got '%s'", got)
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "notes.json")
		if err := os.WriteFile(filename, []byte("initial"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := writeFileAtomic(filename, []byte("overwritten"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "overwritten" {
			t.Errorf("expected content 'overwritten', got '%s'", got)
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeFileAtomic(filepath.Join(dir, "notes.json"), []byte("[]"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("expected exactly one file, got %d", len(entries))
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "notes.json")
		if err := writeFileAtomic(filename, []byte("fail"), 0644); err == nil {
			t.Error("expected error when directory is missing, got nil")
		}
	})
}
