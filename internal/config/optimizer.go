package config

import (
	"fmt"

	"github.com/iwvelando/signal-timing/internal/optimizer"
	"github.com/iwvelando/signal-timing/pkg/optimization"
)

// OptimizerConfig tunes the timing optimizer.
type OptimizerConfig struct {
	// Allocation is sequential (default) or largestRemainder.
	Allocation string `yaml:"allocation,omitempty" mapstructure:"allocation"`
}

// Normalize applies the canonical allocation name, leaving unknown names
// untouched so Options can report them.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	if allocation, err := optimization.ParseAllocation(o.Allocation); err == nil {
		o.Allocation = string(allocation)
	}
}

// Options converts the configuration into optimizer options.
func (o OptimizerConfig) Options() (optimizer.Options, error) {
	allocation, err := optimization.ParseAllocation(o.Allocation)
	if err != nil {
		return optimizer.Options{}, fmt.Errorf("invalid optimizer configuration: %w", err)
	}
	return optimizer.Options{Allocation: allocation}, nil
}
