package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	internal "github.com/ZanzyTHEbar/husrm/husrm"
	"github.com/ZanzyTHEbar/husrm/husrm/indexing"
	"github.com/ZanzyTHEbar/husrm/husrm/mining"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Mining  MiningConfig  `mapstructure:"mining"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Compare CompareConfig `mapstructure:"compare"`
}

// MiningConfig stores the search thresholds.
type MiningConfig struct {
	MinUtility    float64 `mapstructure:"minUtility" validate:"gte=0"`
	MinConfidence float64 `mapstructure:"minConfidence" validate:"gte=0,lte=1"`
	MaxAntecedent int     `mapstructure:"maxAntecedent" validate:"gte=1"`
	MaxConsequent int     `mapstructure:"maxConsequent" validate:"gte=1"`
	SetKind       string  `mapstructure:"setKind" validate:"oneof=bitvector list roaring"`
	// DisabledStrategies lists strategy numbers (1-4) to turn off.
	DisabledStrategies []int `mapstructure:"disabledStrategies" validate:"dive,gte=1,lte=4"`
}

// InputConfig stores where the corpus is read from.
type InputConfig struct {
	Path         string `mapstructure:"path"`
	MaxSequences int    `mapstructure:"maxSequences" validate:"gte=0"`
}

// OutputConfig stores where rules are written.
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format" validate:"oneof=text jsonl"`
}

// LoggingConfig stores logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// MetricsConfig stores metrics export settings.
type MetricsConfig struct {
	// Textfile is the path of a prometheus textfile written after each run; empty disables it.
	Textfile string `mapstructure:"textfile"`
	// SampleEvery reads heap statistics on every Nth observer sample.
	SampleEvery int `mapstructure:"sampleEvery" validate:"gte=1"`
}

// CompareConfig stores strategy comparison settings.
type CompareConfig struct {
	Workers int `mapstructure:"workers" validate:"gte=1"`
}

var validate = validator.New()

// LoadConfig reads configuration from file or environment variables.
// Variables use the HUSRM_ prefix with dots replaced by underscores, e.g.
// HUSRM_MINING_MINUTILITY.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mining.minUtility", internal.DefaultMinUtility)
	v.SetDefault("mining.minConfidence", internal.DefaultMinConfidence)
	v.SetDefault("mining.maxAntecedent", internal.DefaultMaxAntecedent)
	v.SetDefault("mining.maxConsequent", internal.DefaultMaxConsequent)
	v.SetDefault("mining.setKind", internal.DefaultSetKind)
	v.SetDefault("mining.disabledStrategies", []int{})
	v.SetDefault("input.path", "")
	v.SetDefault("input.maxSequences", internal.DefaultMaxSequences)
	v.SetDefault("output.path", "-")
	v.SetDefault("output.format", internal.DefaultOutputFormat)
	v.SetDefault("logging.level", internal.DefaultLogLevel)
	v.SetDefault("logging.format", internal.DefaultLogFormat)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.sampleEvery", 64)
	v.SetDefault("compare.workers", internal.DefaultCompareWorkers)
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	return &Config{
		Mining: MiningConfig{
			MinUtility:    internal.DefaultMinUtility,
			MinConfidence: internal.DefaultMinConfidence,
			MaxAntecedent: internal.DefaultMaxAntecedent,
			MaxConsequent: internal.DefaultMaxConsequent,
			SetKind:       internal.DefaultSetKind,
		},
		Input:   InputConfig{MaxSequences: internal.DefaultMaxSequences},
		Output:  OutputConfig{Path: "-", Format: internal.DefaultOutputFormat},
		Logging: LoggingConfig{Level: internal.DefaultLogLevel, Format: internal.DefaultLogFormat},
		Metrics: MetricsConfig{SampleEvery: 64},
		Compare: CompareConfig{Workers: internal.DefaultCompareWorkers},
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ToMining converts the mining section into a mining.Config.
func (c *Config) ToMining() (mining.Config, error) {
	kind, err := indexing.ParseKind(c.Mining.SetKind)
	if err != nil {
		return mining.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg := mining.Config{
		MinUtility:    c.Mining.MinUtility,
		MinConfidence: c.Mining.MinConfidence,
		MaxAntecedent: c.Mining.MaxAntecedent,
		MaxConsequent: c.Mining.MaxConsequent,
		SetKind:       kind,
		Strategies:    mining.AllStrategies(),
	}
	for _, n := range c.Mining.DisabledStrategies {
		if err := cfg.Strategies.Disable(n); err != nil {
			return mining.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return mining.Config{}, err
	}
	return cfg, nil
}
