// Command tzspsend wraps an 802.11 frame in a TZSP envelope and sends it over
// UDP, for exercising a running tzspd.
package main

import (
	"os"
	"path/filepath"

	"github.com/danmuck/tzspd/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()

	cmd := newRootCmd(filepath.Base(os.Args[0]))
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("tzspsend")
		os.Exit(1)
	}
}
