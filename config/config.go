// Package config loads negotiation settings from defaults, an optional YAML
// file, an optional .env file and FILEXFER_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/opd-ai/filexfer"
	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FILEXFER"

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the file-transfer configuration.
type Config struct {
	JID               string        `mapstructure:"jid"`
	AllowBytestreams  bool          `mapstructure:"allow_bytestreams"`
	AllowIBB          bool          `mapstructure:"allow_ibb"`
	ExtraMethods      []string      `mapstructure:"extra_methods"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	OfferExpiry       time.Duration `mapstructure:"offer_expiry"`
	StanzaPriority    int           `mapstructure:"stanza_priority"`
	ChecksumAlgorithm string        `mapstructure:"checksum_algorithm"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AllowBytestreams:  true,
		AllowIBB:          true,
		RequestTimeout:    filexfer.DefaultRequestTimeout,
		StanzaPriority:    filexfer.DefaultStanzaPriority,
		ChecksumAlgorithm: string(file.ChecksumMD5),
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("jid", d.JID)
	v.SetDefault("allow_bytestreams", d.AllowBytestreams)
	v.SetDefault("allow_ibb", d.AllowIBB)
	v.SetDefault("extra_methods", []string{})
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("offer_expiry", d.OfferExpiry)
	v.SetDefault("stanza_priority", d.StanzaPriority)
	v.SetDefault("checksum_algorithm", d.ChecksumAlgorithm)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Load reads the configuration. configFile may be empty. envFiles are loaded
// into the process environment first; when none are given a .env file in the
// working directory is used if it exists. Variables already set in the
// environment are never overwritten.
func Load(configFile string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		logrus.WithFields(logrus.Fields{
			"function": "config.Load",
			"file":     v.ConfigFileUsed(),
		}).Debug("Loaded configuration file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Environment values arrive as one string.
	if len(cfg.ExtraMethods) == 1 && strings.Contains(cfg.ExtraMethods[0], ",") {
		cfg.ExtraMethods = strings.Split(cfg.ExtraMethods[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files %v: %w", files, err)
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout %s is negative", ErrInvalid, c.RequestTimeout)
	}
	if c.OfferExpiry < 0 {
		return fmt.Errorf("%w: offer_expiry %s is negative", ErrInvalid, c.OfferExpiry)
	}
	if !c.AllowBytestreams && !c.AllowIBB && len(c.extraMethods()) == 0 {
		return fmt.Errorf("%w: every stream method is disabled", ErrInvalid)
	}
	if _, err := file.ParseChecksumAlgorithm(c.ChecksumAlgorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q is neither text nor json", ErrInvalid, c.LogFormat)
	}
	return nil
}

func (c *Config) extraMethods() []transport.Method {
	trimmed := make([]string, 0, len(c.ExtraMethods))
	for _, m := range c.ExtraMethods {
		if m = strings.TrimSpace(m); m != "" {
			trimmed = append(trimmed, m)
		}
	}
	return transport.MethodsFromStrings(trimmed)
}

// Options converts the configuration into negotiation options.
func (c *Config) Options() *filexfer.Options {
	opts := filexfer.NewOptions()
	opts.AllowBytestreams = c.AllowBytestreams
	opts.AllowIBB = c.AllowIBB
	opts.ExtraMethods = c.extraMethods()
	opts.RequestTimeout = c.RequestTimeout
	opts.OfferExpiry = c.OfferExpiry
	opts.StanzaPriority = c.StanzaPriority
	return opts
}

// SourceOptions returns the file source options implied by the
// configuration.
func (c *Config) SourceOptions() []file.SourceOption {
	alg, err := file.ParseChecksumAlgorithm(c.ChecksumAlgorithm)
	if err != nil {
		alg = file.ChecksumMD5
	}
	return []file.SourceOption{file.WithChecksumAlgorithm(alg)}
}
