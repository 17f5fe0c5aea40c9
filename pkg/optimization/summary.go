// Package optimization provides shared data structures for optimization results.
package optimization

import (
	"fmt"
	"strings"
)

// Allocation names the method used to split usable green between approaches.
type Allocation string

const (
	// AllocationSequential walks approaches in fixed order, clamping each so the
	// remaining approaches can still receive the minimum green.
	AllocationSequential Allocation = "sequential"

	// AllocationLargestRemainder gives every approach the minimum green and
	// splits the rest by demand share with largest-remainder rounding.
	AllocationLargestRemainder Allocation = "largestRemainder"
)

// ParseAllocation accepts an allocation name, ignoring case. An empty name
// selects the sequential method.
func ParseAllocation(name string) (Allocation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequential":
		return AllocationSequential, nil
	case "largestremainder", "largest-remainder", "largest_remainder":
		return AllocationLargestRemainder, nil
	}
	return "", fmt.Errorf("expected allocation of %s or %s, got %s",
		AllocationSequential, AllocationLargestRemainder, name)
}

// Diagnostics captures the intermediate values of one timing optimization.
// They are exposed for inspection only.
type Diagnostics struct {
	TotalCriticalRatio float64        `json:"totalCriticalRatio"`
	UsableGreen        float64        `json:"usableGreen"`
	LostTime           float64        `json:"lostTime"`
	DirectionalDemand  map[string]int `json:"directionalDemand"`
	Allocation         Allocation     `json:"allocation,omitempty"`
}
