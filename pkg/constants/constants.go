// Package constants provides shared constants for the signal-timing application.
package constants

// Signal timing bounds, in seconds.
const (
	// DefaultCycleLength is used when a configuration has no usable cycle length.
	DefaultCycleLength = 90.0

	// MinCycleLength is the shortest cycle the engine will simulate or propose.
	MinCycleLength = 48.0

	// MaxCycleLength is the longest cycle the engine will simulate or propose.
	MaxCycleLength = 170.0

	// MinGreen is the minimum green interval for any approach.
	MinGreen = 8.0

	// MaxGreen is the maximum green interval for any approach.
	MaxGreen = 130.0

	// MinYellow is the minimum (and default) yellow interval.
	MinYellow = 3.0

	// MaxYellow is the maximum yellow interval.
	MaxYellow = 8.0

	// MinRed is the minimum red interval.
	MinRed = 1.0
)

// Lane bounds.
const (
	// MaxLanesPerDirection is the number of lanes kept per approach.
	MaxLanesPerDirection = 4

	// MaxVehiclesPerLane is the upper bound on a lane's starting queue.
	MaxVehiclesPerLane = 250
)

// Queue model coefficients.
const (
	// HorizonCycles is the number of signal cycles simulated per pass.
	HorizonCycles = 12

	// SecondsPerHour converts per-second rates to hourly rates.
	SecondsPerHour = 3600.0

	// ArrivalFactor scales a lane's saturation flow into its hourly arrival rate.
	ArrivalFactor = 0.34

	// DischargeEfficiency is the fraction of green usable for discharge.
	DischargeEfficiency = 0.92

	// LaneQueueWeight converts waiting vehicles into lane pressure for green splits.
	LaneQueueWeight = 18.0

	// DirectionQueueWeight converts waiting vehicles into approach demand for the optimizer.
	DirectionQueueWeight = 15.0

	// UnservedVolumeToCapacity is reported when a lane has no capacity at all.
	UnservedVolumeToCapacity = 1.5
)

// Webster optimizer coefficients.
const (
	// CapacityHeadroom inflates base capacity when computing critical ratios.
	CapacityHeadroom = 1.05

	// MaxCriticalRatioSum caps the summed critical ratio fed to the cycle formula.
	MaxCriticalRatioSum = 0.92

	// MinCycleDenominator floors the Webster denominator.
	MinCycleDenominator = 0.08

	// LostTimeExtra is added to the mean yellow to obtain lost time per phase.
	LostTimeExtra = 1.0
)

// Scoring coefficients.
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// VolumeToCapacityCap bounds V/C in the congestion index.
	VolumeToCapacityCap = 1.8

	// DelayCap bounds delay (seconds) in the congestion index.
	DelayCap = 180.0

	// QueuePressureCap bounds queue pressure in the congestion index.
	QueuePressureCap = 2.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable result format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// History constants
const (
	// HistoryKey is the fixed storage key holding the run history.
	HistoryKey = "trafficSimHistory"

	// DefaultHistoryCapacity is the number of runs kept, most recent first.
	DefaultHistoryCapacity = 20
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)
