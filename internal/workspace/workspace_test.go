// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/testutil"
)

func TestFormatDigest(t *testing.T) {
	t.Parallel()

	got := FormatDigest(&analysis.Digest{Summary: "S", Tree: "T", Content: "C"})
	want := "# Repository Analysis\n\n## Summary\n\nS\n\n## Directory Structure\n\nT\n\n## Files Content\n\nC"
	if got != want {
		t.Errorf("FormatDigest() = %q, want %q", got, want)
	}
}

func TestSaveDigest_NeverOverwrites(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "digest.txt"), "old")
	testutil.MustWriteFile(t, filepath.Join(root, "digest (1).txt"), "older")
	d := &analysis.Digest{Summary: "S", Tree: "T", Content: "C"}

	path, err := SaveDigest(root, d)
	if err != nil {
		t.Fatalf("SaveDigest() error: %v", err)
	}
	if want := filepath.Join(root, "digest (2).txt"); path != want {
		t.Errorf("SaveDigest() = %q, want %q", path, want)
	}
	if got := testutil.MustReadFile(t, filepath.Join(root, "digest.txt")); got != "old" {
		t.Errorf("digest.txt was overwritten: %q", got)
	}
	if got := testutil.MustReadFile(t, path); got != FormatDigest(d) {
		t.Errorf("saved content = %q", got)
	}
}

func TestSaveDigest_FirstName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path, err := SaveDigest(root, &analysis.Digest{})
	if err != nil {
		t.Fatalf("SaveDigest() error: %v", err)
	}
	if filepath.Base(path) != "digest.txt" {
		t.Errorf("SaveDigest() = %q, want digest.txt", path)
	}

	if _, err := SaveDigest("", &analysis.Digest{}); !errors.Is(err, analysis.ErrNoWorkspace) {
		t.Errorf("SaveDigest(\"\") error = %v, want ErrNoWorkspace", err)
	}
}

func TestIngestFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "gitingest-ingest"},
		{"  staged  ", "staged"},
		{"a/b", "ab"},
		{`..\`, "gitingest-ingest"},
		{".", "gitingest-ingest"},
		{"my stage_1.d", "my stage_1.d"},
		{"stage*", "gitingest-ingest"},
		{"CON", "gitingest-ingest"},
		{"nul.txt", "gitingest-ingest"},
		{"ünïcode", "gitingest-ingest"},
	}

	for _, tt := range tests {
		if got := IngestFolderName(tt.in); got != tt.want {
			t.Errorf("IngestFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddToIngest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "main.go"), "package main\n")
	testutil.MustWriteFile(t, filepath.Join(root, "pkg", "api", "api.go"), "package api\n")

	first, err := AddToIngest(ctx, root, filepath.Join(root, "main.go"), "")
	if err != nil {
		t.Fatalf("AddToIngest(main.go) error: %v", err)
	}
	if want := filepath.Join(root, "gitingest-ingest", "main.go"); first.Destination != want {
		t.Errorf("Destination = %q, want %q", first.Destination, want)
	}

	second, err := AddToIngest(ctx, root, filepath.Join(root, "main.go"), "")
	if err != nil {
		t.Fatalf("AddToIngest(main.go) again error: %v", err)
	}
	if filepath.Base(second.Destination) != "main (1).go" {
		t.Errorf("second Destination = %q, want main (1).go", second.Destination)
	}

	if _, err := AddToIngest(ctx, root, filepath.Join(root, "pkg"), ""); err != nil {
		t.Fatalf("AddToIngest(pkg) error: %v", err)
	}
	dir, err := AddToIngest(ctx, root, filepath.Join(root, "pkg"), "")
	if err != nil {
		t.Fatalf("AddToIngest(pkg) again error: %v", err)
	}
	if filepath.Base(dir.Destination) != "pkg (1)" {
		t.Errorf("directory Destination = %q, want pkg (1)", dir.Destination)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir.Destination, "api", "api.go")); got != "package api\n" {
		t.Errorf("copied tree content = %q", got)
	}

	staged, err := AddToIngest(ctx, root, first.Destination, "")
	if err != nil {
		t.Fatalf("AddToIngest(staged) error: %v", err)
	}
	if !staged.AlreadyStaged {
		t.Error("resource inside the ingest folder should be reported as already staged")
	}
}

func TestAddToIngest_OutsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secret.txt")
	testutil.MustWriteFile(t, outside, "x")

	_, err := AddToIngest(context.Background(), root, outside, "")
	if !errors.Is(err, ErrOutsideWorkspace) {
		t.Errorf("AddToIngest() error = %v, want ErrOutsideWorkspace", err)
	}
	if _, err := os.Stat(filepath.Join(root, "gitingest-ingest")); !errors.Is(err, os.ErrNotExist) {
		t.Error("ingest folder must not be created for a rejected resource")
	}
}

func TestCleanupIngestFolder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()

	removed, err := CleanupIngestFolder(ctx, root, "staged")
	if err != nil || removed {
		t.Fatalf("CleanupIngestFolder() on a missing folder = %v, %v", removed, err)
	}

	testutil.MustWriteFile(t, filepath.Join(root, "staged", "a", "b.txt"), "b")
	removed, err = CleanupIngestFolder(ctx, root, "staged")
	if err != nil {
		t.Fatalf("CleanupIngestFolder() error: %v", err)
	}
	if !removed {
		t.Error("CleanupIngestFolder() should report a removal")
	}
	if _, err := os.Stat(filepath.Join(root, "staged")); !errors.Is(err, os.ErrNotExist) {
		t.Error("ingest folder still exists")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("workspace root must survive cleanup: %v", err)
	}
}
