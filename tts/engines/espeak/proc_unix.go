//go:build unix

package espeak

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate runs the synthesizer in its own process group so cancellation also
// reaches any audio helpers it spawns.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
