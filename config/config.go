// Package config loads and saves evaluation settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides (SYNTHCHECK_SEED, ...).
const EnvPrefix = "SYNTHCHECK"

// Evaluation holds every tunable of an evaluation run.
type Evaluation struct {
	UniqueThreshold    int      `mapstructure:"unique_threshold" yaml:"unique_threshold"`
	CategoricalColumns []string `mapstructure:"categorical_columns" yaml:"categorical_columns"`
	Metric             string   `mapstructure:"metric" yaml:"metric"`
	NSamples           int      `mapstructure:"n_samples" yaml:"n_samples"`
	NSamplesDistance   int      `mapstructure:"n_samples_distance" yaml:"n_samples_distance"`
	Seed               uint64   `mapstructure:"seed" yaml:"seed"`
	EstimatorSeed      int64    `mapstructure:"estimator_seed" yaml:"estimator_seed"`
	KFold              bool     `mapstructure:"kfold" yaml:"kfold"`
	Workers            int      `mapstructure:"workers" yaml:"workers"`
	LogLevel           string   `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() *Evaluation {
	return &Evaluation{
		Metric:           "pearsonr",
		NSamplesDistance: 20000,
		EstimatorSeed:    42,
		LogLevel:         "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("unique_threshold", d.UniqueThreshold)
	v.SetDefault("categorical_columns", []string{})
	v.SetDefault("metric", d.Metric)
	v.SetDefault("n_samples", d.NSamples)
	v.SetDefault("n_samples_distance", d.NSamplesDistance)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("estimator_seed", d.EstimatorSeed)
	v.SetDefault("kfold", d.KFold)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads cfgFile (optional), SYNTHCHECK_* environment variables and the
// defaults, in that order of precedence from highest: env > file > defaults.
func Load(cfgFile string) (*Evaluation, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	}

	var c Evaluation
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes c as YAML, creating the parent directory.
func Save(c *Evaluation, path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "mkdir config dir")
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// Validate checks ranges only; metric and log level names are resolved by
// their consumers.
func (c *Evaluation) Validate() error {
	switch {
	case c.UniqueThreshold < 0:
		return errors.NewValidationError("unique_threshold", "must be non-negative", c.UniqueThreshold)
	case c.NSamples < 0:
		return errors.NewValidationError("n_samples", "must be non-negative", c.NSamples)
	case c.NSamplesDistance < 0:
		return errors.NewValidationError("n_samples_distance", "must be non-negative", c.NSamplesDistance)
	case c.Workers < 0:
		return errors.NewValidationError("workers", "must be non-negative", c.Workers)
	}
	return nil
}
