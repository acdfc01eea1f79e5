// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/livestat/internal/feed"
	"github.com/cardinalhq/livestat/internal/registry"
	"github.com/cardinalhq/livestat/moments"
)

const (
	ModePlain = "plain"
	ModeDelta = "delta"
)

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Input     InputConfig     `mapstructure:"input"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Normality NormalityConfig `mapstructure:"normality"`

	// Reference is an expected statistics record to compare the result
	// against, keyed like moments.Record.
	Reference moments.Record `mapstructure:"reference"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type InputConfig struct {
	Name      string   `mapstructure:"name"`
	Mode      string   `mapstructure:"mode"`
	Files     []string `mapstructure:"files"`
	GapTokens []string `mapstructure:"gap_tokens"`
	MaxErrors int      `mapstructure:"max_errors"`
	Buffer    int      `mapstructure:"buffer"`
}

type RegistryConfig struct {
	IdleTTL          time.Duration `mapstructure:"idle_ttl"`
	RelativeAccuracy float64       `mapstructure:"relative_accuracy"`
	Quantiles        []float64     `mapstructure:"quantiles"`
}

type NormalityConfig struct {
	Alpha float64 `mapstructure:"alpha"`
}

// Default returns a configuration that reads stdin in plain mode.
func Default() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML document. Empty input yields the
// defaults.
func Parse(b []byte) (*Config, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	c := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      c,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs error

	errs = multierr.Append(errs, c.Log.Validate())
	errs = multierr.Append(errs, c.Input.Validate())
	errs = multierr.Append(errs, c.Registry.Validate())
	errs = multierr.Append(errs, c.Normality.Validate())

	if c.Reference != nil {
		if _, err := moments.FromRecord(c.Reference); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reference: %w", err))
		}
	}

	return errs
}

func (c *LogConfig) Validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if _, err := zap.ParseAtomicLevel(c.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Logger builds the zap logger described by c.
func (c *LogConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func (c *InputConfig) Validate() error {
	var errs error
	if c.Name == "" {
		c.Name = "x"
	}
	if c.Mode == "" {
		c.Mode = ModePlain
	}
	c.Mode = strings.ToLower(c.Mode)
	if c.Mode != ModePlain && c.Mode != ModeDelta {
		errs = multierr.Append(errs, errors.New("mode must be either plain or delta, not "+c.Mode))
	}
	if c.MaxErrors < 0 {
		errs = multierr.Append(errs, errors.New("max_errors must be greater than or equal to 0"))
	}
	if c.Buffer == 0 {
		c.Buffer = 1024
	}
	if c.Buffer < 0 {
		errs = multierr.Append(errs, errors.New("buffer must be greater than 0"))
	}
	return errs
}

// ParserOptions converts c into feed parser options.
func (c *InputConfig) ParserOptions() []feed.Option {
	opts := []feed.Option{feed.WithMaxErrors(c.MaxErrors)}
	if len(c.GapTokens) > 0 {
		opts = append(opts, feed.WithGapTokens(c.GapTokens...))
	}
	return opts
}

func (c *RegistryConfig) Validate() error {
	var errs error
	if c.IdleTTL < 0 {
		errs = multierr.Append(errs, errors.New("idle_ttl must be greater than or equal to 0"))
	}
	if c.RelativeAccuracy < 0 || c.RelativeAccuracy >= 1 {
		errs = multierr.Append(errs, fmt.Errorf("relative_accuracy must be in [0, 1), not %v", c.RelativeAccuracy))
	}
	if len(c.Quantiles) > 0 && c.RelativeAccuracy == 0 {
		c.RelativeAccuracy = 0.01
	}
	for i, q := range c.Quantiles {
		if q <= 0 || q >= 1 {
			errs = multierr.Append(errs, fmt.Errorf("quantile %v must be in (0, 1)", q))
		}
		if i > 0 && q <= c.Quantiles[i-1] {
			errs = multierr.Append(errs, errors.New("quantiles must be ascending"))
		}
	}
	return errs
}

// Options converts c into registry options.
func (c *RegistryConfig) Options(logger *zap.Logger) []registry.Option {
	return []registry.Option{
		registry.WithIdleTTL(c.IdleTTL),
		registry.WithQuantiles(c.RelativeAccuracy),
		registry.WithLogger(logger),
	}
}

func (c *NormalityConfig) Validate() error {
	if c.Alpha == 0 {
		c.Alpha = 0.05
	}
	if c.Alpha < 0 || c.Alpha >= 1 {
		return fmt.Errorf("normality alpha must be in (0, 1), not %v", c.Alpha)
	}
	return nil
}
