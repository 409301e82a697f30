package libroom

type Real = float64

// Package-wide defaults; each can be overridden per simulation
// through the JSON config, never through a mutable global.
const (
	DefaultEps    = 1e-5 // geometric tolerance, 0.01 mm in meters
	SpeedOfSound  = 343.0
	MaxISMOrder   = 4
	AttenThres    = 1e-7 // image-source branch pruning floor
	EnergyThres   = 1e-7 // ray termination floor
	MaxBounces    = 64
	MicRadius     = 0.05
	DistFactor    = 20 // ray distance budget = DistFactor * Room.MaxDist
	DefaultRays   = 100_000
	progressSteps = 100 // progress prints per full ray run
	// hot-loop constants reused across bounces
	epsDist   = 1e-6
	bumpShift = 1e-6
)
