package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/goliatone/go-config/cfgx"
)

// Storage drivers understood by StorageConfig.Driver.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config captures module-level configuration knobs. Feature packages (links,
// attribution, sources, storage) pull from these nested structs.
type Config struct {
	Platform    string            `mapstructure:"platform" json:"platform"`
	Links       LinksConfig       `mapstructure:"links" json:"links"`
	Attribution AttributionConfig `mapstructure:"attribution" json:"attribution"`
	Push        PushConfig        `mapstructure:"push" json:"push"`
	Storage     StorageConfig     `mapstructure:"storage" json:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging" json:"logging"`
}

// LinksConfig controls canonical link construction.
type LinksConfig struct {
	Domain string `mapstructure:"domain" json:"domain"`
	// Audit records every produced canonical link in the link store.
	Audit bool `mapstructure:"audit" json:"audit"`
	// StrictAudit drops links whose audit write fails.
	StrictAudit bool `mapstructure:"strict_audit" json:"strict_audit"`
}

// AttributionConfig scopes campaign persistence.
type AttributionConfig struct {
	StorageKey string `mapstructure:"storage_key" json:"storage_key"`
}

// PushConfig toggles notification replay behaviors. A nil
// ReplayLastResponse defers to the platform defaults.
type PushConfig struct {
	ReplayLastResponse *bool `mapstructure:"replay_last_response" json:"replay_last_response"`
}

// StorageConfig selects the key/value backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Platform: "ios",
		Links: LinksConfig{
			Domain: "https://tonhub.com",
			Audit:  true,
		},
		Attribution: AttributionConfig{
			StorageKey: "branch-campaign",
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Links.Domain) == "" {
		return errors.New("links.domain is required")
	}
	u, err := url.Parse(c.Links.Domain)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("links.domain must be an absolute URL, got %q", c.Links.Domain)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("links.domain must not carry a query or fragment")
	}
	if strings.TrimSpace(c.Attribution.StorageKey) == "" {
		return errors.New("attribution.storage_key is required")
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Platform == "" {
		c.Platform = defaults.Platform
	}
	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
	if c.Links.Domain == "" {
		c.Links.Domain = defaults.Links.Domain
	}
	c.Links.Domain = strings.TrimRight(c.Links.Domain, "/")
	if c.Attribution.StorageKey == "" {
		c.Attribution.StorageKey = defaults.Attribution.StorageKey
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
