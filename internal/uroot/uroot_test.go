// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ingestkit/ingestkit/internal/testutil"
)

func TestCopy_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "main.go")
	testutil.MustWriteFile(t, src, "package main\n")
	dst := filepath.Join(dir, "main (1).go")

	if err := Copy(context.Background(), src, dst); err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	if got := testutil.MustReadFile(t, dst); got != "package main\n" {
		t.Errorf("copied content = %q", got)
	}
}

func TestCopy_Tree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "pkg")
	testutil.MustWriteFile(t, filepath.Join(src, "a", "a.go"), "package a\n")
	testutil.MustWriteFile(t, filepath.Join(src, "b.txt"), "b\n")
	dst := filepath.Join(dir, "staged", "pkg")
	if err := MkdirAll(context.Background(), filepath.Dir(dst)); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}

	if err := Copy(context.Background(), src, dst); err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dst, "a", "a.go")); got != "package a\n" {
		t.Errorf("nested file content = %q", got)
	}
}

func TestCopy_ExistingDestinationIsKept(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "new.txt")
	dst := filepath.Join(dir, "old.txt")
	testutil.MustWriteFile(t, src, "new\n")
	testutil.MustWriteFile(t, dst, "old\n")

	err := Copy(context.Background(), src, dst)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("Copy() onto an existing file error = %v, want os.ErrExist", err)
	}
	if got := testutil.MustReadFile(t, dst); got != "old\n" {
		t.Errorf("destination content = %q, want it untouched", got)
	}
}

func TestCopy_MissingSourceIsPrefixed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := Copy(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	if err == nil {
		t.Fatal("Copy() of a missing source should fail")
	}
	if !strings.HasPrefix(err.Error(), "[uroot] cp: ") {
		t.Errorf("error = %q, want [uroot] cp prefix", err)
	}
}

func TestRemoveAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "gitingest-ingest")
	testutil.MustWriteFile(t, filepath.Join(target, "x", "y.txt"), "y")

	if err := RemoveAll(context.Background(), target); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("target still exists: %v", err)
	}
	if err := RemoveAll(context.Background(), target); err != nil {
		t.Errorf("RemoveAll() of a missing path error: %v", err)
	}
}
