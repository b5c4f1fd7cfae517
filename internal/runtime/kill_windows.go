// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// taskkillNotFound is the exit status of taskkill when the pid no longer exists.
const taskkillNotFound = 128

func setProcessGroup(*exec.Cmd) {}

// killTree runs "taskkill /pid N /T /F", which also ends every child.
func (s *Supervisor) killTree(p *Process) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := s.execCommand(ctx, "taskkill", "/pid", strconv.Itoa(p.pid), "/T", "/F")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == taskkillNotFound {
		return nil
	}
	return fmt.Errorf("taskkill: %w: %s", err, strings.TrimSpace(stderr.String()))
}
