package instructions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coding-agent/internal/config"
)

func TestDiscoverPrefersOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	child := filepath.Join(root, "svc")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mustWrite(t, filepath.Join(root, ProjectDocFilename), "root rules")
	mustWrite(t, filepath.Join(child, ProjectDocFilename), "child rules")
	mustWrite(t, filepath.Join(child, ProjectOverrideFilename), "child override")

	got := Discover(child)
	if !strings.Contains(got, "root rules") || !strings.Contains(got, "child override") {
		t.Fatalf("Discover = %q", got)
	}
	if strings.Contains(got, "child rules") {
		t.Fatalf("override must replace AGENTS.md in the same directory: %q", got)
	}
	if strings.Index(got, "root rules") > strings.Index(got, "child override") {
		t.Fatalf("parent instructions must come first: %q", got)
	}
}

func TestProjectContextListsTopLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "go.mod"), "module x")
	mustWrite(t, filepath.Join(root, "internal", "a.go"), "package a")
	mustWrite(t, filepath.Join(root, ProjectDocFilename), "use gofmt")

	got, err := ProjectContext(config.DefaultSession().WithWorkingDirectory(root))
	if err != nil {
		t.Fatalf("ProjectContext: %v", err)
	}
	for _, want := range []string{"Working directory: " + root, "- go.mod", "- internal/", "use gofmt"} {
		if !strings.Contains(got, want) {
			t.Fatalf("ProjectContext missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "internal/a.go") {
		t.Fatalf("overview must stay at depth 1:\n%s", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
