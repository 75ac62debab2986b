package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Empty values leave the loaded
// configuration untouched.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath    string
	Debug         bool
	LogLevel      string
	LogFile       string
	OutputDir     string
	Naming        string
	SkipUnchanged bool
}

// RegisterFlags adds the global flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	return f
}

// RegisterExtract adds the extract command flags.
func (f *Flags) RegisterExtract() {
	f.fs.StringVarP(&f.OutputDir, "output", "o", "", "Directory for extracted textures")
	f.fs.StringVarP(&f.Naming, "naming", "n", "", "Naming scheme: index, original or role")
}

// RegisterReplace adds the replace command flags that map onto config.
func (f *Flags) RegisterReplace() {
	f.fs.BoolVar(&f.SkipUnchanged, "skip-unchanged", false, "Keep images whose texture file still matches the manifest hash")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.OutputDir != "" {
		cfg.Extract.OutputDir = f.OutputDir
	}
	if f.Naming != "" {
		cfg.Extract.Naming = f.Naming
	}
	if f.SkipUnchanged || (f.fs != nil && f.fs.Changed("skip-unchanged")) {
		cfg.Replace.SkipUnchanged = f.SkipUnchanged
	}
}
