// Package history stores completed simulation results, most recent first,
// behind a bounded repository.
package history

import (
	"fmt"

	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"go.uber.org/zap"
)

// Repository is an append-only, capped list of results.
type Repository interface {
	// Append stores result at the front of the list, dropping the oldest
	// entries beyond capacity.
	Append(result simulation.Result) error
	// List returns stored results, most recent first.
	List() ([]simulation.Result, error)
	// Clear removes every stored result.
	Clear() error
	Close() error
}

// Options selects and sizes a repository.
type Options struct {
	// Path of the Badger directory. Empty keeps history in memory.
	Path     string
	Capacity int
	Disabled bool
}

// Open returns the repository described by opts. A disabled history yields a
// nil repository, which a Recorder treats as unavailable storage.
func Open(logger *zap.Logger, opts Options) (Repository, error) {
	if opts.Disabled {
		return nil, nil
	}
	if opts.Path == "" {
		return NewMemoryStore(opts.Capacity), nil
	}
	store, err := OpenBadgerStore(logger, opts.Path, opts.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", opts.Path, err)
	}
	return store, nil
}

func normalizeCapacity(capacity int) int {
	if capacity <= 0 {
		return constants.DefaultHistoryCapacity
	}
	return capacity
}

// prepend returns a new list with result first, truncated to capacity.
func prepend(list []simulation.Result, result simulation.Result, capacity int) []simulation.Result {
	size := len(list) + 1
	if size > capacity {
		size = capacity
	}
	out := make([]simulation.Result, 0, size)
	out = append(out, result)
	for _, existing := range list {
		if len(out) == size {
			break
		}
		out = append(out, existing)
	}
	return out
}
