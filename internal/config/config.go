// Package config handles mdltool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ExportConfig holds model export settings.
type ExportConfig struct {
	Format           string `yaml:"format"`       // json or yaml
	Indent           bool   `yaml:"indent"`       // pretty-print JSON
	NameCharset      string `yaml:"name_charset"` // material name encoding
	IncludePositions bool   `yaml:"include_positions"`
	IncludeIndices   bool   `yaml:"include_indices"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Export: ExportConfig{
			Format:           "json",
			Indent:           true,
			NameCharset:      "utf-8",
			IncludePositions: true,
			IncludeIndices:   true,
		},
	}
}
