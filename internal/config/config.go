// Package config handles glbtex configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	Replace ReplaceConfig `yaml:"replace"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExtractConfig holds defaults for the extract command.
type ExtractConfig struct {
	OutputDir string `yaml:"output_dir"`
	Naming    string `yaml:"naming"` // index, original or role
}

// ReplaceConfig holds defaults for the replace command.
type ReplaceConfig struct {
	Suffix        string `yaml:"suffix"` // Appended to the input stem when no output is given
	SkipUnchanged bool   `yaml:"skip_unchanged"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			OutputDir: "extracted_textures",
			Naming:    "original",
		},
		Replace: ReplaceConfig{
			Suffix:        "_modified",
			SkipUnchanged: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
