package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/srcfetch/pkg/errors"
)

type member struct {
	name string
	body string
}

// writeZip creates a zip at path holding members in order. Names ending in
// "/" become directory entries.
func writeZip(t *testing.T, path string, members ...member) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(m.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// listTree returns every path under dir, relative and slash-separated.
func listTree(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(out)
	return out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCopyArchives(t *testing.T) {
	repo := t.TempDir()
	dest := t.TempDir()

	a := filepath.Join(repo, "junit", "junit", "4.13", "junit-4.13-sources.jar")
	b := filepath.Join(repo, "org", "hamcrest", "hamcrest-core", "1.3", "hamcrest-core-1.3-sources.jar")
	writeZip(t, a, member{"junit/Test.java", "class Test {}"})
	writeZip(t, b, member{"org/hamcrest/Matcher.java", "interface Matcher {}"})

	res, err := CopyArchives([]string{a, b}, dest)
	if err != nil {
		t.Fatalf("CopyArchives: %v", err)
	}

	want := []string{
		filepath.Join(dest, "junit-4.13-sources.jar"),
		filepath.Join(dest, "hamcrest-core-1.3-sources.jar"),
	}
	if diff := cmp.Diff(want, res.Copied); diff != "" {
		t.Errorf("Copied mismatch (-want +got):\n%s", diff)
	}
	if len(res.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", res.Conflicts)
	}
	if readFile(t, a) != readFile(t, want[0]) {
		t.Error("copied archive differs from source")
	}
}

func TestCopyArchivesConflict(t *testing.T) {
	repo := t.TempDir()
	dest := t.TempDir()

	first := filepath.Join(repo, "com", "a", "util", "1.0", "util-1.0-sources.jar")
	second := filepath.Join(repo, "com", "b", "util", "1.0", "util-1.0-sources.jar")
	writeZip(t, first, member{"A.java", "first"})
	writeZip(t, second, member{"B.java", "second"})

	res, err := CopyArchives([]string{first, second}, dest)
	if err != nil {
		t.Fatalf("CopyArchives: %v", err)
	}
	if len(res.Copied) != 1 {
		t.Fatalf("Copied = %v, want one archive", res.Copied)
	}
	want := []Conflict{{Filename: "util-1.0-sources.jar", Kept: first, Skipped: second}}
	if diff := cmp.Diff(want, res.Conflicts); diff != "" {
		t.Errorf("Conflicts mismatch (-want +got):\n%s", diff)
	}
	if readFile(t, res.Copied[0]) != readFile(t, first) {
		t.Error("first archive should win the filename")
	}
	if !errors.Is(res.Conflicts[0].Error(), errors.ErrCodeArchiveConflict) {
		t.Error("Conflict.Error() should carry ARCHIVE_CONFLICT")
	}
}

func TestCopyArchivesOverwritesPreviousRun(t *testing.T) {
	repo := t.TempDir()
	dest := t.TempDir()

	src := filepath.Join(repo, "x-1.0-sources.jar")
	writeZip(t, src, member{"X.java", "new"})
	if err := os.WriteFile(filepath.Join(dest, "x-1.0-sources.jar"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := CopyArchives([]string{src}, dest); err != nil {
		t.Fatalf("CopyArchives: %v", err)
	}
	if readFile(t, filepath.Join(dest, "x-1.0-sources.jar")) != readFile(t, src) {
		t.Error("stale archive should be overwritten")
	}
}

func TestCopyArchivesBadDestination(t *testing.T) {
	dir := t.TempDir()

	_, err := CopyArchives(nil, filepath.Join(dir, "missing"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing dest: err = %v, want FILE_NOT_FOUND", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = CopyArchives(nil, file)
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("file dest: err = %v, want INVALID_PATH", err)
	}
}

func TestStripPaths(t *testing.T) {
	got := StripPaths([]string{"/a/b/c-1.0-sources.jar", "d-2.0-sources.jar"})
	want := []string{"c-1.0-sources.jar", "d-2.0-sources.jar"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StripPaths mismatch (-want +got):\n%s", diff)
	}
	if StripPaths(nil) != nil {
		t.Error("StripPaths(nil) should be nil")
	}
}
