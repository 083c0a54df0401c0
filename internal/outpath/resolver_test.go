package outpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveDirectNextToSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "chapter-one.txt")

	r := &Resolver{}
	p, err := r.Resolve(src)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !p.Direct {
		t.Error("expected direct placement")
	}
	if want := filepath.Join(dir, "chapter-one.wav"); p.Path != want {
		t.Errorf("path = %q, want %q", p.Path, want)
	}
}

func TestResolveOutputDir(t *testing.T) {
	out := t.TempDir()
	r := &Resolver{OutputDir: out}

	p, err := r.Resolve("/somewhere/else/notes.md")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !p.Direct {
		t.Error("explicit output dir is still direct placement")
	}
	if want := filepath.Join(out, "notes.wav"); p.Path != want {
		t.Errorf("path = %q, want %q", p.Path, want)
	}
}

func TestResolveStaged(t *testing.T) {
	stage := t.TempDir()
	r := &Resolver{Staged: true, StageDir: stage}

	p1, err := r.Resolve("/docs/notes.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	p2, _ := r.Resolve("/docs/notes.txt")

	if p1.Direct {
		t.Error("staged placement must require cleanup")
	}
	if filepath.Dir(p1.Path) != stage {
		t.Errorf("staged file landed in %q, want %q", filepath.Dir(p1.Path), stage)
	}
	if !strings.HasPrefix(filepath.Base(p1.Path), "notes-") {
		t.Errorf("staged name should keep the source stem, got %q", p1.Path)
	}
	if p1.Path == p2.Path {
		t.Error("staged paths must be unique per resolution")
	}
}

func TestResolveOverwriteGuard(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.txt")
	existing := filepath.Join(dir, "doc.wav")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{}
	if _, err := r.Resolve(src); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	r.Overwrite = true
	if _, err := r.Resolve(src); err != nil {
		t.Errorf("overwrite enabled should resolve, got %v", err)
	}
}

func TestTempSetCleanup(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tmp")
	b := filepath.Join(dir, "b.tmp")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	set := NewTempSet()
	set.Add(a)
	set.Add(b)
	set.Remove(b) // b's owner cleaned it up already

	if set.Len() != 1 {
		t.Fatalf("expected 1 tracked path, got %d", set.Len())
	}

	set.CleanupAll()

	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Error("tracked file should have been removed")
	}
	if _, err := os.Stat(b); err != nil {
		t.Error("untracked file must be left alone")
	}
	if set.Len() != 0 {
		t.Error("set should be empty after cleanup")
	}
}
