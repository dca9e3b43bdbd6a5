package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/gocharset/pkg/runner"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func relFiles(t *testing.T, root string, files []string) []string {
	t.Helper()

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListFiles_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt")
	file := filepath.Join(dir, "a.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{Paths: []string{file}})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(res.Files) != 1 || res.Files[0] != file {
		t.Errorf("Files = %v, want [%s]", res.Files, file)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want none", res.Errors)
	}
}

func TestListFiles_DirectoryRecursiveInLexicalOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "b.txt", "a.txt", "sub/c.txt", "sub/deeper/d.txt", "z/e.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{"a.txt", "b.txt", "sub/c.txt", "sub/deeper/d.txt", "z/e.txt"}
	if got := relFiles(t, dir, res.Files); !equalStrings(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestListFiles_DefaultsToWorkingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "one.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(res.Files) != 1 {
		t.Fatalf("expected 1 file, got %v", res.Files)
	}
}

func TestListFiles_DeduplicatesOverlappingInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "sub/a.txt", "sub/b.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:      []string{"sub/b.txt", ".", "sub", "sub/a.txt"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{"sub/b.txt", "sub/a.txt"}
	if got := relFiles(t, dir, res.Files); !equalStrings(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestListFiles_FollowsSymlinkCycles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "sub/a.txt")

	// sub/loop -> .. creates a cycle back to the root.
	if err := os.Symlink("..", filepath.Join(dir, "sub", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:      []string{dir},
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(res.Files) != 1 {
		t.Errorf("expected the cycle to yield 1 file, got %v", res.Files)
	}
}

func TestListFiles_SymlinkedFileDeduplicated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "real.txt")
	if err := os.Symlink("real.txt", filepath.Join(dir, "alias.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := runner.ListFiles(context.Background(), runner.Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	// alias.txt sorts first and wins; real.txt is the same canonical file.
	want := []string{"alias.txt"}
	if got := relFiles(t, dir, res.Files); !equalStrings(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestListFiles_BrokenSymlinkSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt")
	if err := os.Symlink("missing.txt", filepath.Join(dir, "dangling.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := runner.ListFiles(context.Background(), runner.Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(res.Files) != 1 || len(res.Errors) != 0 {
		t.Errorf("Files = %v, Errors = %v", res.Files, res.Errors)
	}
}

func TestListFiles_MissingPathIsReported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:      []string{"a.txt", "nope.txt"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if len(res.Files) != 1 {
		t.Errorf("expected 1 file, got %v", res.Files)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[0], "nope.txt: ") {
		t.Errorf("error %q should start with the path", res.Errors[0])
	}
	if !strings.Contains(res.Errors[0], runner.ErrPathNotFound.Error()) {
		t.Errorf("error %q should mention %q", res.Errors[0], runner.ErrPathNotFound)
	}
}

func TestListFiles_UnreadableFileIsReported(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}

	dir := t.TempDir()
	writeTree(t, dir, "ok.txt", "locked.txt")
	if err := os.Chmod(filepath.Join(dir, "locked.txt"), 0o000); err != nil {
		t.Fatalf("setup chmod: %v", err)
	}

	res, err := runner.ListFiles(context.Background(), runner.Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if got := relFiles(t, dir, res.Files); !equalStrings(got, []string{"ok.txt"}) {
		t.Errorf("Files = %v, want [ok.txt]", got)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "locked.txt") {
		t.Errorf("Errors = %v, want one entry for locked.txt", res.Errors)
	}
}

func TestListFiles_IncludeAndExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt", "b.csv", "c.txt.bak", "skip.txt", "vendor/d.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:        []string{dir},
		IncludeGlobs: []string{"*.txt", "*.csv"},
		ExcludeGlobs: []string{"skip.*", "vendor"},
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{"a.txt", "b.csv"}
	if got := relFiles(t, dir, res.Files); !equalStrings(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestListFiles_ExcludeWinsOverInclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "keep.txt", "drop.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:        []string{dir},
		IncludeGlobs: []string{"*.txt"},
		ExcludeGlobs: []string{"drop.txt"},
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if got := relFiles(t, dir, res.Files); !equalStrings(got, []string{"keep.txt"}) {
		t.Errorf("Files = %v, want [keep.txt]", got)
	}
}

func TestListFiles_SkipHidden(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt", ".hidden.txt", ".git/config")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:      []string{dir},
		SkipHidden: true,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	if got := relFiles(t, dir, res.Files); !equalStrings(got, []string{"a.txt"}) {
		t.Errorf("Files = %v, want [a.txt]", got)
	}
}

func TestListFiles_SkipVendored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt", "src/b.txt", "vendor/lib.txt", "node_modules/pkg/index.js", "web/app.min.js")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:        []string{dir},
		SkipVendored: true,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if got, want := relFiles(t, dir, res.Files), []string{"a.txt", "src/b.txt"}; !equalStrings(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}

	res, err = runner.ListFiles(context.Background(), runner.Options{Paths: []string{dir}})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(res.Files) != 5 {
		t.Errorf("without SkipVendored got %d files, want 5", len(res.Files))
	}
}

func TestListFiles_SkipVendoredKeepsExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "vendor/lib.txt")
	explicit := filepath.Join(dir, "vendor", "lib.txt")

	res, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:        []string{explicit},
		SkipVendored: true,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(res.Files) != 1 || res.Files[0] != explicit {
		t.Errorf("Files = %v, want [%s]", res.Files, explicit)
	}
}

func TestListFiles_InvalidGlob(t *testing.T) {
	t.Parallel()

	_, err := runner.ListFiles(context.Background(), runner.Options{
		Paths:        []string{t.TempDir()},
		IncludeGlobs: []string{"[unclosed"},
	})
	if err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func TestListFiles_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.ListFiles(ctx, runner.Options{Paths: []string{dir}})
	if !errors.Is(err, runner.ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", err)
	}
}
