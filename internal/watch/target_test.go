package watch

import (
	"path/filepath"
	"testing"
)

func TestExtensionTargetMatching(t *testing.T) {
	t.Parallel()

	target, err := NewExtensionTarget([]string{"rs", ".go"})
	if err != nil {
		t.Fatalf("new extension target: %v", err)
	}

	if !target.Matches(filepath.Join("a", "b", "c.rs")) {
		t.Fatal("a/b/c.rs should match extension filter {rs, go}")
	}
	if !target.Matches("main.go") {
		t.Fatal("main.go should match extension filter {rs, go}")
	}
	if target.Matches(filepath.Join("a", "b", "c.js")) {
		t.Fatal("a/b/c.js should not match extension filter {rs, go}")
	}
	if target.Matches("Makefile") {
		t.Fatal("extensionless file should never match an extension filter")
	}
}

func TestPathTargetMatching(t *testing.T) {
	t.Parallel()

	target, err := NewPathTarget([]string{"src"})
	if err != nil {
		t.Fatalf("new path target: %v", err)
	}

	if !target.Matches(filepath.Join("src", "lib.rs")) {
		t.Fatal("src/lib.rs should be in scope for watch target [src]")
	}
	if !target.Matches(filepath.Join("src", "nested", "deep.rs")) {
		t.Fatal("nested files under a watched directory should be in scope")
	}
	if target.Matches(filepath.Join("tests", "lib.rs")) {
		t.Fatal("tests/lib.rs should be out of scope for watch target [src]")
	}
	if target.Matches("srcx/lib.rs") {
		t.Fatal("sibling directory with a shared prefix should be out of scope")
	}
}

func TestPathTargetMatchesExactFile(t *testing.T) {
	t.Parallel()

	target, err := NewPathTarget([]string{filepath.Join("docs", "notes.md")})
	if err != nil {
		t.Fatalf("new path target: %v", err)
	}

	if !target.Matches(filepath.Join("docs", "notes.md")) {
		t.Fatal("watched file should match itself")
	}
	if target.Matches(filepath.Join("docs", "other.md")) {
		t.Fatal("sibling of a watched file should not match")
	}
}

func TestEmptyTargetRejected(t *testing.T) {
	t.Parallel()

	if _, err := NewPathTarget(nil); err == nil {
		t.Fatal("expected error for empty path target")
	}
	if _, err := NewExtensionTarget([]string{" ", ""}); err == nil {
		t.Fatal("expected error for empty extension target")
	}
}

func TestExtensionTargetRootsAreWorkingDirectory(t *testing.T) {
	t.Parallel()

	target, err := NewExtensionTarget([]string{"go"})
	if err != nil {
		t.Fatalf("new extension target: %v", err)
	}
	roots := target.Roots()
	if len(roots) != 1 || roots[0] != "." {
		t.Fatalf("extension mode roots = %v, want [.]", roots)
	}
}
