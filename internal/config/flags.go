package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile = flag.String("log-file", "", "Write logs to this file")
	flagFormat  = flag.String("format", "", "Export format (json, yaml)")
	flagCharset = flag.String("charset", "", "Material name charset (utf-8, euc-kr, shift-jis, latin1, windows-1252)")
	flagCompact = flag.Bool("compact", false, "Disable JSON indentation")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagCharset != "" {
		cfg.Export.NameCharset = *flagCharset
	}
	if *flagCompact {
		cfg.Export.Indent = false
	}
}
