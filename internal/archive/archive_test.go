package archive_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"zipdex/internal/archive"
)

func writeZip(t *testing.T, entries map[string]string, order []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip file: %v", err)
	}

	w := zip.NewWriter(f)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add zip entry %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(entries[name])); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close zip file: %v", err)
	}
	return path
}

func TestExtractZip(t *testing.T) {
	entries := map[string]string{
		"readme.md":       "# Hello",
		"src/main.go":     "package main",
		".git/config":     "[core]",
		"src/.hidden.txt": "secret",
		"notes/empty.txt": "   \n\t",
		"docs/guide.md":   "Guide text",
	}
	order := []string{"readme.md", "src/main.go", ".git/config", "src/.hidden.txt", "notes/empty.txt", "docs/guide.md"}

	path := writeZip(t, entries, order)

	files, err := archive.ExtractZip(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractZip() error = %v", err)
	}

	want := []string{"readme.md", "src/main.go", "docs/guide.md"}
	if len(files) != len(want) {
		t.Fatalf("ExtractZip() returned %d files, want %d", len(files), len(want))
	}
	for i, file := range files {
		if file.Path != want[i] {
			t.Errorf("ExtractZip() file[%d].Path = %q, want %q", i, file.Path, want[i])
		}
	}
	if files[0].Content != "# Hello" {
		t.Errorf("ExtractZip() readme content = %q, want %q", files[0].Content, "# Hello")
	}
}

func TestExtractZipMissingArchive(t *testing.T) {
	_, err := archive.ExtractZip(context.Background(), "/nonexistent/archive.zip")
	if err == nil {
		t.Fatal("ExtractZip() on missing archive expected error, got nil")
	}
}

func TestExtractZipCancelled(t *testing.T) {
	path := writeZip(t, map[string]string{"a.txt": "content"}, []string{"a.txt"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := archive.ExtractZip(ctx, path)
	if err != context.Canceled {
		t.Fatalf("ExtractZip() error = %v, want context.Canceled", err)
	}
}

func TestExtractZipNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.zip")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := archive.ExtractZip(context.Background(), path)
	if err == nil {
		t.Fatal("ExtractZip() on non-zip file expected error, got nil")
	}
}
