package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
}

func names(files []string, root string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		out[filepath.ToSlash(rel)] = true
	}
	return out
}

func TestWalk_IncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "doc.txt"))
	writeFile(t, filepath.Join(root, "notes.md"))
	writeFile(t, filepath.Join(root, "image.png"))
	writeFile(t, filepath.Join(root, "sub", "nested.txt"))

	w := NewWalker([]string{"**/*.txt", "**/*.md"}, nil)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	got := names(paths, root)

	for _, want := range []string{"doc.txt", "notes.md", "sub/nested.txt"} {
		if !got[want] {
			t.Errorf("expected %s in results, got %v", want, got)
		}
	}
	if got["image.png"] {
		t.Error("expected image.png excluded by include patterns")
	}
}

func TestWalk_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"))
	writeFile(t, filepath.Join(root, "data", "skip.txt"))

	w := NewWalker([]string{"**/*.txt"}, []string{"**/data/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if filepath.Base(files[0].Path) != "keep.txt" {
		t.Errorf("expected keep.txt, got %s", files[0].Path)
	}
}

func TestWalk_EmptyIncludesMatchEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "anything.xyz"))

	w := NewWalker(nil, nil)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.txt")
	writeFile(t, path)

	content, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "content" {
		t.Errorf("expected %q, got %q", "content", content)
	}

	if _, err := ReadFile(filepath.Join(root, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
