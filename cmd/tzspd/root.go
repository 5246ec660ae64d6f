package main

import (
	"github.com/danmuck/tzspd/internal/config"
	"github.com/danmuck/tzspd/internal/daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	configPath        string
	input             int
	daemon            bool
	beaconOnly        bool
	discardManagement bool
	discardControl    bool
	discardData       bool
	discardExtension  bool
	allowFCSErrors    bool
	readBuffer        int
	logLevel          string
	adminListen       string
	adminCORS         []string
}

func newRootCmd(name string, run func(config.Config) error) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   name + " [flags] PORT[-END][,MAC] ...",
		Short: "Relay TZSP datagrams to local UDP ports",
		Long: `Receives TZSP encapsulated 802.11 frames and relays each datagram unchanged
to 127.0.0.1 on every port of every matching target.

A target is PORT, PORT-END or either form followed by ,MAC to only relay frames
reported by that sensor, e.g. 9091 9100-9103 9200,AA:BB:CC:DD:EE:FF.`,
		Args: cobra.ArbitraryArgs,
		// Errors are logged in main.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts, args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file")
	flags.IntVarP(&opts.input, "input", "i", config.DefaultInputPort, "input UDP port")
	if daemon.Supported {
		flags.BoolVarP(&opts.daemon, "daemon", "d", false, "run in background as daemon")
	}
	flags.BoolVarP(&opts.beaconOnly, "beacons", "b", false, "relay only beacon and probe response frames")
	flags.BoolVarP(&opts.discardManagement, "discard-management", "M", false, "discard management frames")
	flags.BoolVarP(&opts.discardControl, "discard-control", "C", false, "discard control frames")
	flags.BoolVarP(&opts.discardData, "discard-data", "D", false, "discard data frames")
	flags.BoolVarP(&opts.discardExtension, "discard-extension", "E", false, "discard extension frames")
	flags.BoolVar(&opts.allowFCSErrors, "allow-fcs-errors", false, "relay frames flagged with a bad FCS")
	flags.IntVar(&opts.readBuffer, "read-buffer", 0, "input socket receive buffer in bytes (0 keeps the OS default)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, off)")
	flags.StringVar(&opts.adminListen, "admin", "", "admin HTTP listen address, e.g. 127.0.0.1:9190")
	flags.StringSliceVar(&opts.adminCORS, "admin-cors", nil, "allowed CORS origins for the admin API")

	cmd.AddCommand(newConfigCmd(), newVersionCmd())
	return cmd
}

// resolveConfig layers defaults, the optional file, explicitly set flags and
// positional targets, then validates the result.
func resolveConfig(flags *pflag.FlagSet, opts options, args []string) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath, cfg)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flags.Changed("input") {
		cfg.InputPort = opts.input
	}
	if flags.Changed("daemon") {
		cfg.Daemon = opts.daemon
	}
	if flags.Changed("beacons") {
		cfg.BeaconOnly = opts.beaconOnly
	}
	if flags.Changed("discard-management") {
		cfg.Discard.Management = opts.discardManagement
	}
	if flags.Changed("discard-control") {
		cfg.Discard.Control = opts.discardControl
	}
	if flags.Changed("discard-data") {
		cfg.Discard.Data = opts.discardData
	}
	if flags.Changed("discard-extension") {
		cfg.Discard.Extension = opts.discardExtension
	}
	if flags.Changed("allow-fcs-errors") {
		cfg.AllowFCSErrors = opts.allowFCSErrors
	}
	if flags.Changed("read-buffer") {
		cfg.ReadBuffer = opts.readBuffer
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("admin") {
		cfg.Admin.ListenAddr = opts.adminListen
	}
	if flags.Changed("admin-cors") {
		cfg.Admin.CORSOrigins = opts.adminCORS
	}
	cfg.Targets = append(cfg.Targets, args...)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
