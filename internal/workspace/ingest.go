// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/config"
	"github.com/ingestkit/ingestkit/internal/platform"
	"github.com/ingestkit/ingestkit/internal/uroot"
)

var (
	// ErrOutsideWorkspace is returned when a resource is not below the workspace root.
	ErrOutsideWorkspace = errors.New("selected item must be inside the workspace root")

	folderNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 _.-]+$`)
)

type (
	// AddResult describes what AddToIngest did.
	AddResult struct {
		// Destination is the staged copy, or the resource itself when AlreadyStaged.
		Destination string
		// AlreadyStaged is true when the resource already lives in the ingest folder.
		AlreadyStaged bool
	}
)

// IngestFolderName returns configured when it is a safe single path element,
// otherwise the default folder name.
func IngestFolderName(configured string) string {
	name := strings.TrimSpace(strings.NewReplacer("/", "", `\`, "").Replace(configured))
	switch {
	case name == "", name == ".", name == "..":
		return config.DefaultIngestFolder
	case !folderNamePattern.MatchString(name):
		return config.DefaultIngestFolder
	case platform.IsWindowsReservedName(name):
		return config.DefaultIngestFolder
	}
	return name
}

// IngestRoot is the absolute staging folder for root.
func IngestRoot(root, folderName string) (string, error) {
	if root == "" {
		return "", analysis.ErrNoWorkspace
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, IngestFolderName(folderName)), nil
}

// AddToIngest copies resource into the staging folder of root under a name
// that does not collide with anything already staged.
func AddToIngest(ctx context.Context, root, resource, folderName string) (AddResult, error) {
	ingestRoot, err := IngestRoot(root, folderName)
	if err != nil {
		return AddResult{}, err
	}
	rootAbs := filepath.Dir(ingestRoot)
	src, err := filepath.Abs(resource)
	if err != nil {
		return AddResult{}, err
	}

	if isSameOrChild(ingestRoot, src) {
		return AddResult{Destination: src, AlreadyStaged: true}, nil
	}
	if !isSameOrChild(rootAbs, src) {
		return AddResult{}, fmt.Errorf("%w: %s", ErrOutsideWorkspace, src)
	}

	info, err := os.Stat(src)
	if err != nil {
		return AddResult{}, err
	}
	name := filepath.Base(src)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return AddResult{}, errors.New("selected item has no name")
	}

	if err := uroot.MkdirAll(ctx, ingestRoot); err != nil {
		return AddResult{}, err
	}
	dst, err := uniqueChild(ingestRoot, name, info.IsDir())
	if err != nil {
		return AddResult{}, err
	}

	if err := uroot.Copy(ctx, src, dst); err != nil {
		return AddResult{}, fmt.Errorf("failed to add to ingest: %w", err)
	}
	slog.Debug("staged resource", "src", src, "dst", dst)
	return AddResult{Destination: dst}, nil
}

// CleanupIngestFolder deletes the staging folder of root. It reports whether
// anything was removed; a missing folder is not an error.
func CleanupIngestFolder(ctx context.Context, root, folderName string) (bool, error) {
	ingestRoot, err := IngestRoot(root, folderName)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(ingestRoot); errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	if ingestRoot == rootAbs || !isSameOrChild(rootAbs, ingestRoot) {
		return false, fmt.Errorf("ingest folder %s is not a child of %s", ingestRoot, rootAbs)
	}

	if err := uroot.RemoveAll(ctx, ingestRoot); err != nil {
		return false, fmt.Errorf("failed to delete ingest folder: %w", err)
	}
	return true, nil
}

// uniqueChild picks the first free "name", "stem (N).ext" (files) or "name (N)"
// (directories) inside parent.
func uniqueChild(parent, name string, isDir bool) (string, error) {
	stem, ext := name, ""
	if !isDir {
		ext = filepath.Ext(name)
		stem = strings.TrimSuffix(name, ext)
		if stem == "" {
			stem, ext = name, ""
		}
	}

	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		candidate := name
		if attempt > 0 {
			candidate = numberedName(stem, ext, attempt)
		}
		path := filepath.Join(parent, candidate)
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free name for %s in %s", name, parent)
}

func isSameOrChild(base, candidate string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}
