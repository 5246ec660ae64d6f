// Package config owns tzspd runtime settings and their TOML file form.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tzspd/internal/logging"
	"github.com/danmuck/tzspd/internal/target"
)

// DefaultInputPort is 0x9090.
const DefaultInputPort = 37008

var (
	ErrInvalidInputPort  = errors.New("config: invalid input port")
	ErrInvalidLogLevel   = errors.New("config: invalid log level")
	ErrInvalidReadBuffer = errors.New("config: invalid read buffer")
)

// Discard selects 802.11 frame categories that are never relayed.
type Discard struct {
	Management bool
	Control    bool
	Data       bool
	Extension  bool
}

// AdminConfig configures the optional HTTP status surface.
type AdminConfig struct {
	// ListenAddr disables the admin server when empty.
	ListenAddr  string
	CORSOrigins []string
}

// Config is the complete runtime configuration.
type Config struct {
	InputPort      int
	Discard        Discard
	BeaconOnly     bool
	AllowFCSErrors bool
	Daemon         bool
	Targets        []string
	ReadBuffer     int
	LogLevel       string
	Admin          AdminConfig
}

func Default() Config {
	return Config{
		InputPort: DefaultInputPort,
		Targets:   []string{},
		LogLevel:  "info",
		Admin: AdminConfig{
			CORSOrigins: []string{},
		},
	}
}

type fileConfig struct {
	InputPort         int             `toml:"input_port"`
	DiscardManagement bool            `toml:"discard_management"`
	DiscardControl    bool            `toml:"discard_control"`
	DiscardData       bool            `toml:"discard_data"`
	DiscardExtension  bool            `toml:"discard_extension"`
	BeaconOnly        bool            `toml:"beacon_only"`
	AllowFCSErrors    bool            `toml:"allow_fcs_errors"`
	Daemon            bool            `toml:"daemon"`
	Targets           []string        `toml:"targets"`
	ReadBuffer        int             `toml:"read_buffer"`
	LogLevel          string          `toml:"log_level"`
	Admin             adminFileConfig `toml:"admin"`
}

type adminFileConfig struct {
	Listen      string   `toml:"listen"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoadFile overlays keys present in the TOML file at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	cfg := base

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load tzspd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load tzspd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("input_port") {
		cfg.InputPort = raw.InputPort
	}
	if meta.IsDefined("discard_management") {
		cfg.Discard.Management = raw.DiscardManagement
	}
	if meta.IsDefined("discard_control") {
		cfg.Discard.Control = raw.DiscardControl
	}
	if meta.IsDefined("discard_data") {
		cfg.Discard.Data = raw.DiscardData
	}
	if meta.IsDefined("discard_extension") {
		cfg.Discard.Extension = raw.DiscardExtension
	}
	if meta.IsDefined("beacon_only") {
		cfg.BeaconOnly = raw.BeaconOnly
	}
	if meta.IsDefined("allow_fcs_errors") {
		cfg.AllowFCSErrors = raw.AllowFCSErrors
	}
	if meta.IsDefined("daemon") {
		cfg.Daemon = raw.Daemon
	}
	if meta.IsDefined("targets") {
		cfg.Targets = normalizeList(raw.Targets)
	}
	if meta.IsDefined("read_buffer") {
		cfg.ReadBuffer = raw.ReadBuffer
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("admin", "listen") {
		cfg.Admin.ListenAddr = strings.TrimSpace(raw.Admin.Listen)
	}
	if meta.IsDefined("admin", "cors_origins") {
		cfg.Admin.CORSOrigins = normalizeList(raw.Admin.CORSOrigins)
	}

	return cfg, nil
}

// Validate checks scalar settings and every target rule.
func (c Config) Validate() error {
	if c.InputPort < target.MinPort || c.InputPort > target.MaxPort {
		return fmt.Errorf("%w (%d)", ErrInvalidInputPort, c.InputPort)
	}
	if c.ReadBuffer < 0 {
		return fmt.Errorf("%w (%d)", ErrInvalidReadBuffer, c.ReadBuffer)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w (%s)", ErrInvalidLogLevel, c.LogLevel)
	}
	if _, err := target.ParseList(c.Targets); err != nil {
		return err
	}
	return nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
