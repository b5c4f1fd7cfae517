// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runtime

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killTree sends SIGKILL to the process group led by p. A process that is
// already gone is not an error.
func (s *Supervisor) killTree(p *Process) error {
	err := unix.Kill(-p.pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		// Not a group leader: signal the pid alone.
		err = unix.Kill(p.pid, unix.SIGKILL)
	}
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
