// SPDX-License-Identifier: MPL-2.0

//go:build !unix && !windows

package runtime

import (
	"errors"
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

func (s *Supervisor) killTree(p *Process) error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
