// Package config loads msgconv settings from a YAML file, MSGCONV_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-msg/msg"
)

// EnvPrefix prefixes environment overrides, e.g. MSGCONV_CONVERT_WORKERS.
const EnvPrefix = "MSGCONV"

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// OutputConfig controls where converted files are written.
type OutputConfig struct {
	// Dir is the output directory. Empty means next to each input file.
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Overwrite bool   `mapstructure:"overwrite" yaml:"overwrite"`
}

// ConvertConfig holds batch conversion settings.
type ConvertConfig struct {
	Workers int  `mapstructure:"workers" yaml:"workers"`
	RawRTF  bool `mapstructure:"raw_rtf" yaml:"raw_rtf"`
}

// ResolverConfig configures Exchange address resolution.
type ResolverConfig struct {
	DefaultDomain string `mapstructure:"default_domain" yaml:"default_domain"`

	// Aliases maps a legacy Exchange DN or user alias to an SMTP address.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases"`
}

// DecodeConfig holds .msg decoding settings.
type DecodeConfig struct {
	// Codepage forces the PT_STRING8 code page; 0 uses the message's own.
	Codepage          int    `mapstructure:"codepage" yaml:"codepage"`
	ResolveReferences bool   `mapstructure:"resolve_references" yaml:"resolve_references"`
	ReferenceRoot     string `mapstructure:"reference_root" yaml:"reference_root"`
}

// Config is the top-level msgconv configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Convert  ConvertConfig  `mapstructure:"convert" yaml:"convert"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Decode   DecodeConfig   `mapstructure:"decode" yaml:"decode"`
}

// flagKeys binds command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":          "log.level",
	"output-dir":         "output.dir",
	"overwrite":          "output.overwrite",
	"workers":            "convert.workers",
	"raw-rtf":            "convert.raw_rtf",
	"default-domain":     "resolver.default_domain",
	"codepage":           "decode.codepage",
	"resolve-references": "decode.resolve_references",
	"reference-root":     "decode.reference_root",
}

// DefaultPath returns ~/.config/msgconv/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "msgconv", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.overwrite", false)
	v.SetDefault("convert.workers", 0)
	v.SetDefault("convert.raw_rtf", false)
	v.SetDefault("resolver.default_domain", "")
	v.SetDefault("resolver.aliases", map[string]string{})
	v.SetDefault("decode.codepage", 0)
	v.SetDefault("decode.resolve_references", true)
	v.SetDefault("decode.reference_root", "")
}

// Load reads the configuration file at path, then applies environment
// variables and any flags of fs that were set. A missing file yields the
// defaults. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel parses Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return l, nil
}

// Resolver returns the address resolver the configuration describes:
// an ExchangeResolver when a default domain or aliases are set, else a
// NullResolver.
func (c *Config) Resolver() msg.Resolver {
	if c.Resolver.DefaultDomain == "" && len(c.Resolver.Aliases) == 0 {
		return msg.NullResolver{}
	}
	return msg.ExchangeResolver{
		DefaultDomain: c.Resolver.DefaultDomain,
		Aliases:       c.Resolver.Aliases,
	}
}

// Options returns the decode and assembly options for the configuration.
func (c *Config) Options(logger *slog.Logger) []msg.Option {
	opts := []msg.Option{
		msg.WithLogger(logger),
		msg.WithReferenceResolution(c.Decode.ResolveReferences),
		msg.WithRawRTF(c.Convert.RawRTF),
		msg.WithResolver(c.Resolver()),
	}
	if c.Decode.Codepage > 0 {
		opts = append(opts, msg.WithCodepage(c.Decode.Codepage))
	}
	if c.Decode.ReferenceRoot != "" {
		opts = append(opts, msg.WithReferenceRoot(c.Decode.ReferenceRoot))
	}
	return opts
}
