//go:build !windows

package hook

import (
	"os/exec"
	"syscall"
)

// isolate starts the hook in its own process group and makes cancellation kill the
// whole group, so children the hook spawned die with it.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
