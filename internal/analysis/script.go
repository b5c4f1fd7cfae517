// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed gitingest_script.py
var scriptSource []byte

// ScriptSource returns the embedded analysis script.
func ScriptSource() []byte {
	return append([]byte(nil), scriptSource...)
}

// materializeScript writes the embedded script into dir under a name derived
// from its content, so concurrent ingestkit versions never overwrite each other.
func materializeScript(dir string) (string, error) {
	sum := sha256.Sum256(scriptSource)
	path := filepath.Join(dir, "gitingest_script-"+hex.EncodeToString(sum[:6])+".py")

	if data, err := os.ReadFile(path); err == nil && string(data) == string(scriptSource) {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create script directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".script-*.py")
	if err != nil {
		return "", fmt.Errorf("write analysis script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(scriptSource); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write analysis script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write analysis script: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("install analysis script: %w", err)
	}
	return path, nil
}

// defaultScriptDir is <user cache dir>/ingestkit.
func defaultScriptDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ingestkit"), nil
}
