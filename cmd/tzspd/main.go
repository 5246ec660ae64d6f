package main

import (
	"os"
	"path/filepath"

	"github.com/danmuck/tzspd/internal/config"
	"github.com/danmuck/tzspd/internal/daemon"
	"github.com/danmuck/tzspd/internal/logging"
	"github.com/danmuck/tzspd/internal/service"
	"github.com/rs/zerolog/log"
)

// version is replaced at link time.
var version = "dev"

func main() {
	logging.ConfigureRuntime()

	cmd := newRootCmd(filepath.Base(os.Args[0]), runRelay)
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("tzspd")
		os.Exit(1)
	}
}

// Overridden in tests.
var (
	detach    = daemon.Detach
	useSyslog = logging.UseSyslog
)

func runRelay(cfg config.Config) error {
	logging.SetLevel(cfg.LogLevel)
	if cfg.Daemon {
		parent, err := background()
		if err != nil {
			return err
		}
		if parent {
			return nil
		}
	}

	svc, err := service.New(cfg, version)
	if err != nil {
		return err
	}
	return svc.Run()
}

// background detaches the process. It reports true in the parent, which should
// exit. The child keeps running on its current output when syslog is missing.
func background() (bool, error) {
	parent, err := detach()
	if err != nil || parent {
		return parent, err
	}
	if err := useSyslog(); err != nil {
		log.Warn().Err(err).Msg("tzspd: syslog unavailable, keeping current log output")
	}
	return false, nil
}
