// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/iwvelando/signal-timing/internal/traffic"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/optimization"
	"github.com/iwvelando/signal-timing/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SIGNAL_TIMING_LOGGING_LEVEL.
const EnvPrefix = "SIGNAL_TIMING"

// Configuration holds all configuration for signal-timing.
type Configuration struct {
	Logging      LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output       OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
	History      HistoryConfig     `yaml:"history,omitempty" mapstructure:"history"`
	Optimizer    OptimizerConfig   `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Preset       string            `yaml:"preset,omitempty" mapstructure:"preset"`
	Intersection traffic.RawConfig `yaml:"intersection,omitempty" mapstructure:"intersection"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("history.capacity", constants.DefaultHistoryCapacity)
	v.SetDefault("optimizer.allocation", string(optimization.AllocationSequential))
	return v
}

// LoadConfiguration takes a file path as input and loads the configuration
// there. YAML is assumed unless the extension names another format viper
// understands.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if !isSupportedExtension(filepath.Ext(configPath)) {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a configuration of the given type
// (yaml, json, toml) from r.
func LoadConfigurationFromReader(r io.Reader, configType string) (*Configuration, error) {
	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading %s config: %w", configType, err)
	}
	return decode(v)
}

// DefaultConfiguration returns the configuration used when no file is
// available: every default applied and the default intersection.
func DefaultConfiguration() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		rawConfigHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&configuration, hooks); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	configuration.Preset = strings.TrimSpace(configuration.Preset)
	configuration.Optimizer.Normalize()
	return &configuration, nil
}

var rawConfigType = reflect.TypeOf(traffic.RawConfig{})

// rawConfigHook decodes the intersection block with traffic.DecodeRaw so a
// block of the wrong shape is sanitized instead of failing the load.
func rawConfigHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != rawConfigType {
		return data, nil
	}
	return traffic.DecodeRaw(data), nil
}

func isSupportedExtension(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, supported := range viper.SupportedExts {
		if ext == supported {
			return true
		}
	}
	return false
}

// ResolveIntersection resolves the configuration's intersection: the named preset
// when one is set, otherwise the inline intersection, otherwise the default
// midday intersection.
func (c *Configuration) ResolveIntersection() (traffic.RawConfig, error) {
	if c.Preset != "" {
		preset, ok := traffic.LookupPreset(c.Preset)
		if !ok {
			return traffic.RawConfig{}, fmt.Errorf("unknown preset %q", c.Preset)
		}
		return preset.Config.Raw(), nil
	}
	if c.Intersection.Empty() {
		return traffic.DefaultConfig().Raw(), nil
	}
	return c.Intersection, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if _, err := c.Optimizer.Options(); err != nil {
		warnings = append(warnings, err.Error())
	}

	if c.Preset != "" {
		if _, ok := traffic.LookupPreset(c.Preset); !ok {
			warnings = append(warnings, fmt.Sprintf("preset %q is unknown", c.Preset))
		}
		if !c.Intersection.Empty() {
			warnings = append(warnings, fmt.Sprintf("preset %q overrides the inline intersection", c.Preset))
		}
		return warnings
	}

	if c.Intersection.Empty() {
		return append(warnings, "no intersection configured, the default intersection will be simulated")
	}

	validator := validation.IntersectionValidator{Raw: c.Intersection}
	return append(warnings, validator.ValidateAll()...)
}
