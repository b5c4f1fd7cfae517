// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ingestkit/ingestkit/internal/analysis"
)

const (
	digestBaseName = "digest"
	digestExt      = ".txt"

	// maxUniqueAttempts bounds the "name (N)" search.
	maxUniqueAttempts = 10000
)

// FormatDigest renders d as the text document written by SaveDigest.
func FormatDigest(d *analysis.Digest) string {
	var b strings.Builder
	b.WriteString("# Repository Analysis\n\n## Summary\n\n")
	b.WriteString(d.Summary)
	b.WriteString("\n\n## Directory Structure\n\n")
	b.WriteString(d.Tree)
	b.WriteString("\n\n## Files Content\n\n")
	b.WriteString(d.Content)
	return b.String()
}

// SaveDigest writes d to digest.txt in root, or to "digest (N).txt" for the
// first free N. Existing files are never overwritten. It returns the path written.
func SaveDigest(root string, d *analysis.Digest) (string, error) {
	if root == "" {
		return "", analysis.ErrNoWorkspace
	}
	if d == nil {
		return "", errors.New("no analysis result to save")
	}
	return SaveDigestAs(root, digestBaseName, digestExt, FormatDigest(d))
}

// SaveDigestAs writes content to base+ext in dir with the same collision rule as SaveDigest.
func SaveDigestAs(dir, base, ext, content string) (string, error) {
	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		path := filepath.Join(dir, numberedName(base, ext, attempt))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}

		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s%s in %s", base, ext, dir)
}

// WriteDigest writes the formatted digest to path, replacing any existing file.
func WriteDigest(path string, d *analysis.Digest) error {
	if err := os.WriteFile(path, []byte(FormatDigest(d)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// numberedName returns base+ext for attempt 0, else "base (N)"+ext.
func numberedName(base, ext string, attempt int) string {
	if attempt == 0 {
		return base + ext
	}
	return fmt.Sprintf("%s (%d)%s", base, attempt, ext)
}
