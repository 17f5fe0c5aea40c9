// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"
	"time"

	"github.com/iwvelando/signal-timing/internal/simulation"
	"go.uber.org/zap"
)

// FixedTime is the timestamp stamped on results produced by NewFixedRunner.
var FixedTime = time.Date(2026, time.March, 2, 8, 30, 0, 0, time.UTC)

// FindResult finds a simulation result by ID in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []simulation.Result, id string) *simulation.Result {
	for i := range results {
		if results[i].ID == id {
			return &results[i]
		}
	}
	return nil
}

// NewFixedRunner returns a runner whose results carry FixedTime and the
// sequential IDs "run-1", "run-2", ... It is not safe for concurrent use.
func NewFixedRunner(logger *zap.Logger, opts ...simulation.Option) *simulation.Runner {
	next := 0
	opts = append([]simulation.Option{
		simulation.WithClock(func() time.Time { return FixedTime }),
		simulation.WithIDGenerator(func() string {
			next++
			return fmt.Sprintf("run-%d", next)
		}),
	}, opts...)
	return simulation.NewRunner(logger, opts...)
}
