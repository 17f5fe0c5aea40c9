package config

import (
	"github.com/iwvelando/signal-timing/internal/history"
)

// HistoryConfig selects where past runs are kept.
type HistoryConfig struct {
	// Path is a Badger directory; empty keeps history in memory only.
	Path     string `yaml:"path,omitempty" mapstructure:"path"`
	Capacity int    `yaml:"capacity,omitempty" mapstructure:"capacity"`
	Disabled bool   `yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// Options converts the configuration into repository options.
func (h HistoryConfig) Options() history.Options {
	return history.Options{
		Path:     h.Path,
		Capacity: h.Capacity,
		Disabled: h.Disabled,
	}
}
