// Package config loads the witx-bindgen TOML configuration.
package config

import (
	"go/token"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/witx-bindgen/errors"
)

// Config is the full configuration.
type Config struct {
	SectionPrefix string   `toml:"section_prefix"`
	Generate      Generate `toml:"generate"`
	Fixtures      Fixtures `toml:"fixtures"`
	Log           Log      `toml:"log"`
}

// Generate controls code generation.
type Generate struct {
	Package      string `toml:"package"`
	OutDir       string `toml:"out_dir"`
	ImportPrefix string `toml:"import_prefix"`
	Format       bool   `toml:"format"`
}

// Fixtures selects the modules the harness processes. Patterns and Exclude
// are glob patterns matched against paths relative to Dir, with '/' as the
// separator; "**" crosses directories.
type Fixtures struct {
	Dir      string   `toml:"dir"`
	Patterns []string `toml:"patterns"`
	Exclude  []string `toml:"exclude"`
	Jobs     int      `toml:"jobs"`
}

// Log configures the process logger.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, nil)
	return cfg
}

// Load reads and validates a configuration file. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Path(path).
			Cause(err).
			Detail("reading configuration").
			Build()
	}
	return Parse(string(data))
}

// Parse decodes and validates configuration text.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Cause(err).
			Detail("decoding configuration").
			Build()
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(undecoded[0].String()).
			Detail("unknown configuration key %q", undecoded[0].String()).
			Build()
	}

	applyDefaults(&cfg, &md)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, md *toml.MetaData) {
	if strings.TrimSpace(cfg.SectionPrefix) == "" {
		cfg.SectionPrefix = "component-type"
	}
	if strings.TrimSpace(cfg.Generate.Package) == "" {
		cfg.Generate.Package = "harness"
	}
	if strings.TrimSpace(cfg.Generate.OutDir) == "" {
		cfg.Generate.OutDir = "gen"
	}
	if md == nil || !md.IsDefined("generate", "format") {
		cfg.Generate.Format = true
	}
	if strings.TrimSpace(cfg.Fixtures.Dir) == "" {
		cfg.Fixtures.Dir = "tests"
	}
	if len(cfg.Fixtures.Patterns) == 0 {
		cfg.Fixtures.Patterns = []string{"**.wasm"}
	}
	if md == nil || !md.IsDefined("fixtures", "jobs") {
		cfg.Fixtures.Jobs = 4
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks patterns, the job count, the package name and the log
// level.
func (c *Config) Validate() error {
	for _, p := range append(append([]string(nil), c.Fixtures.Patterns...), c.Fixtures.Exclude...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("fixtures").
				Cause(err).
				Detail("invalid pattern %q", p).
				Build()
		}
	}
	if c.Fixtures.Jobs <= 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("fixtures", "jobs").
			Detail("jobs must be positive, got %d", c.Fixtures.Jobs).
			Build()
	}
	if !token.IsIdentifier(c.Generate.Package) {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("generate", "package").
			Detail("%q is not a valid package name", c.Generate.Package).
			Build()
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Cause(err).
			Detail("invalid log level").
			Build()
	}
	return nil
}

// LogLevel returns the parsed log level. It assumes Validate succeeded.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
