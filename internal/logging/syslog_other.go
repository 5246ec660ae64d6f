//go:build windows || plan9

package logging

import "errors"

func UseSyslog() error {
	return errors.New("logging: syslog not supported on this platform")
}
