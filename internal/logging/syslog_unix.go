//go:build !windows && !plan9

package logging

import (
	"fmt"
	"log/syslog"

	"github.com/rs/zerolog"
)

// dialSyslog connects to the local syslog daemon.
var dialSyslog = func() (zerolog.SyslogWriter, error) {
	return syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, appName)
}

// UseSyslog routes all log output to the local syslog daemon. On failure the
// current output is left in place.
func UseSyslog() error {
	w, err := dialSyslog()
	if err != nil {
		return fmt.Errorf("logging: open syslog: %w", err)
	}
	Redirect(zerolog.SyslogLevelWriter(w), true)
	return nil
}
