// Package daemon moves the relay into the background.
//
// A Go process cannot fork safely, so the parent re-executes itself in a new
// session with stdio on the null device and exits; the child recognises itself
// through EnvChild and completes the setup.
package daemon

import (
	"errors"
	"os"
)

// EnvChild marks the re-executed background process.
const EnvChild = "TZSPD_DAEMON_CHILD"

var ErrUnsupported = errors.New("daemon: backgrounding not supported on this platform")

// IsChild reports whether this process is the detached child.
func IsChild() bool {
	return os.Getenv(EnvChild) == "1"
}
