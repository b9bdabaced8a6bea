//go:build !windows

package supervise

import (
	"errors"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so termination
// reaches the command's own children, not just the direct child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup signals the child's whole process group: SIGTERM for the
// graceful request, SIGKILL when force is set.
func signalGroup(cmd *exec.Cmd, force bool) error {
	if cmd.Process == nil {
		return nil
	}
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	// Setpgid makes the child the group leader, so -pid addresses the group.
	return syscall.Kill(-cmd.Process.Pid, sig)
}

func processGone(err error) bool {
	return errors.Is(err, syscall.ESRCH)
}
