//go:build unix

package daemon

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const Supported = true

// Detach returns true in the parent once the child has been started; the
// parent should then exit 0. In the child it clears the umask, moves to the
// filesystem root and returns false.
func Detach() (bool, error) {
	if IsChild() {
		return false, finishChild()
	}

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("daemon: resolve executable: %w", err)
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("daemon: open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	proc, err := os.StartProcess(exe, os.Args, &os.ProcAttr{
		Env:   append(os.Environ(), EnvChild+"=1"),
		Files: []*os.File{devNull, devNull, devNull},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	})
	if err != nil {
		return false, fmt.Errorf("daemon: fork: %w", err)
	}
	return true, proc.Release()
}

func finishChild() error {
	unix.Umask(0)
	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("daemon: chdir: %w", err)
	}
	return nil
}
