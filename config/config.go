// Package config loads faqintent settings from flags, environment, and an
// optional YAML file through viper.
//
// Keys use dots for nesting. Environment variables take the FAQINTENT_
// prefix with dots replaced by underscores, so suggestions.limit is read
// from FAQINTENT_SUGGESTIONS_LIMIT.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/faqintent/bot"
	"github.com/jonwraymond/faqintent/intent"
	"github.com/jonwraymond/faqintent/match"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FAQINTENT"

// Keys.
const (
	KeyCatalog          = "catalog"
	KeySynonyms         = "synonyms"
	KeyThreshold        = "threshold"
	KeySuggestionsLimit = "suggestions.limit"
	KeySuggestionsChips = "suggestions.chips"
	KeyLogLevel         = "log.level"
	KeyServerAddr       = "server.addr"
	KeyWatch            = "watch"
)

// ErrInvalidConfig reports a setting outside its allowed range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved configuration.
type Config struct {
	// Catalog is a YAML or JSON catalog path. Empty uses the embedded one.
	Catalog string `mapstructure:"catalog"`

	// Synonyms is an optional synonym table path overriding the catalog's.
	Synonyms string `mapstructure:"synonyms"`

	Threshold   float64     `mapstructure:"threshold"`
	Suggestions Suggestions `mapstructure:"suggestions"`
	Log         Log         `mapstructure:"log"`
	Server      Server      `mapstructure:"server"`

	// Watch reloads the catalog when its file changes.
	Watch bool `mapstructure:"watch"`
}

// Suggestions configures fallback replies.
type Suggestions struct {
	// Limit caps search suggestions. Zero disables search.
	Limit int `mapstructure:"limit"`

	// Chips lists quick chips as "id" or "id=Label".
	// Empty uses the built-in chips.
	Chips []string `mapstructure:"chips"`
}

// Log configures logging.
type Log struct {
	Level string `mapstructure:"level"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeySynonyms, "")
	v.SetDefault(KeyThreshold, match.DefaultThreshold)
	v.SetDefault(KeySuggestionsLimit, bot.DefaultSuggestLimit)
	v.SetDefault(KeySuggestionsChips, []string{})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyWatch, false)
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w: threshold must be finite", ErrInvalidConfig)
	}
	if c.Suggestions.Limit < 0 {
		return fmt.Errorf("%w: suggestions.limit must not be negative", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	if c.Watch && c.Catalog == "" {
		return fmt.Errorf("%w: watch requires a catalog file", ErrInvalidConfig)
	}
	for _, chip := range c.Suggestions.Chips {
		if id, _, _ := strings.Cut(chip, "="); strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty chip id in %q", ErrInvalidConfig, chip)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Source loads the configured catalog, or the embedded default.
func (c Config) Source() (*intent.Source, error) {
	if c.Catalog == "" {
		return intent.DefaultSource()
	}
	return intent.LoadFile(c.Catalog)
}

// Chips parses the configured quick chips. Nil means use the defaults.
func (c Config) Chips() []bot.Chip {
	if len(c.Suggestions.Chips) == 0 {
		return nil
	}
	labels := make(map[string]string)
	for _, chip := range bot.DefaultChips() {
		labels[chip.ID] = chip.Label
	}

	chips := make([]bot.Chip, 0, len(c.Suggestions.Chips))
	for _, raw := range c.Suggestions.Chips {
		id, label, ok := strings.Cut(raw, "=")
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			label = labels[id]
		}
		if label == "" {
			label = id
		}
		chips = append(chips, bot.Chip{ID: id, Label: label})
	}
	return chips
}

// BotOptions builds bot options from the configuration.
func (c Config) BotOptions(logger *zap.Logger) (bot.Options, error) {
	src, err := c.Source()
	if err != nil {
		return bot.Options{}, err
	}

	opts := bot.Options{
		Source:       src,
		Threshold:    c.Threshold,
		Chips:        c.Chips(),
		SuggestLimit: c.Suggestions.Limit,
		Logger:       logger,
	}
	if opts.SuggestLimit == 0 {
		opts.SuggestLimit = -1
	}
	// Bot options treat zero as unset; the smallest positive float accepts
	// every positive score, which is what a zero threshold means.
	if opts.Threshold == 0 {
		opts.Threshold = math.SmallestNonzeroFloat64
	}
	if c.Synonyms != "" {
		table, err := intent.LoadSynonymsFile(c.Synonyms)
		if err != nil {
			return bot.Options{}, err
		}
		opts.Synonyms = table
	}
	return opts, nil
}
