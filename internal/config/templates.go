package config

import (
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"
)

const templateHeader = `# tzspd configuration
#
# targets use PORT[-END][,SENSOR_MAC], e.g. "9091", "9100-9103",
# "9200,AA:BB:CC:DD:EE:FF". Command line targets are appended to this list.

`

// Template renders a complete config file from the defaults plus one example target.
func Template() ([]byte, error) {
	cfg := Default()
	raw := fileConfig{
		InputPort:         cfg.InputPort,
		DiscardManagement: cfg.Discard.Management,
		DiscardControl:    cfg.Discard.Control,
		DiscardData:       cfg.Discard.Data,
		DiscardExtension:  cfg.Discard.Extension,
		BeaconOnly:        cfg.BeaconOnly,
		AllowFCSErrors:    cfg.AllowFCSErrors,
		Daemon:            cfg.Daemon,
		Targets:           []string{"9091"},
		ReadBuffer:        cfg.ReadBuffer,
		LogLevel:          cfg.LogLevel,
		Admin: adminFileConfig{
			Listen:      "",
			CORSOrigins: []string{},
		},
	}
	body, err := gotoml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return append([]byte(templateHeader), body...), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, template, 0o600)
}
