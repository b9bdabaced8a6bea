//go:build windows

package supervise

import (
	"errors"
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on Windows; there is no setpgid equivalent and
// the direct child is the best available kill target.
func setProcessGroup(cmd *exec.Cmd) {}

// signalGroup kills the direct child. Windows has no graceful signal, so
// both the graceful request and the escalation are a hard kill.
func signalGroup(cmd *exec.Cmd, force bool) error {
	if cmd.Process == nil {
		return nil
	}
	_ = force
	return cmd.Process.Kill()
}

func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
