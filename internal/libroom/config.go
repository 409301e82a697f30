package libroom

import (
	"encoding/json"
	"fmt"
	"os"
)

type WallCfg struct {
	Corners    [][]Real `json:"corners"`
	Absorption Real     `json:"absorption,omitempty"`
	Scattering Real     `json:"scattering,omitempty"`
	Name       string   `json:"name,omitempty"`
}

type Config struct {
	Dim          int       `json:"dim"`
	Eps          Real      `json:"eps,omitempty"`
	SpeedOfSound Real      `json:"speedOfSound,omitempty"`
	MaxOrder     int       `json:"maxOrder,omitempty"`
	AttenThres   Real      `json:"attenThreshold,omitempty"`
	Rays         int       `json:"rays,omitempty"`
	MicRadius    Real      `json:"micRadius,omitempty"`
	EnergyThres  Real      `json:"energyThreshold,omitempty"`
	MaxBounces   int       `json:"maxBounces,omitempty"`
	DistFactor   Real      `json:"distFactor,omitempty"`
	Seed         int64     `json:"seed,omitempty"`
	Walls        []WallCfg `json:"walls"`
	Obstructing  []int     `json:"obstructing,omitempty"`
	Microphones  [][]Real  `json:"microphones"`
	Sources      [][]Real  `json:"sources"`
	Shoebox      []Real    `json:"shoebox,omitempty"` // box dimensions; enables the closed-form ISM
	Out          string    `json:"out,omitempty"`
}

func vecFrom(coords []Real, dim int) (Vec, error) {
	if len(coords) != dim {
		return Vec{}, fmt.Errorf("expected %d coordinates, got %d", dim, len(coords))
	}
	for _, c := range coords {
		if !isFinite(c) {
			return Vec{}, fmt.Errorf("non-finite coordinate %v", c)
		}
	}
	v := Vec{coords[0], coords[1], 0}
	if dim == 3 {
		v.Z = coords[2]
	}
	return v, nil
}

// Build validates and constructs the runtime wall.
func (wc WallCfg) Build(dim int, eps Real) (*Wall, error) {
	corners := make([]Vec, len(wc.Corners))
	for i, c := range wc.Corners {
		v, err := vecFrom(c, dim)
		if err != nil {
			return nil, fmt.Errorf("wall %q corner %d: %w", wc.Name, i, err)
		}
		corners[i] = v
	}
	return NewWall(dim, corners, wc.Absorption, wc.Scattering, wc.Name, eps)
}

// BuildRoom assembles the Room described by the config.
func (c *Config) BuildRoom() (*Room, error) {
	walls := make([]*Wall, len(c.Walls))
	for i, wc := range c.Walls {
		w, err := wc.Build(c.Dim, c.Eps)
		if err != nil {
			return nil, err
		}
		walls[i] = w
	}
	mics := make([]Vec, len(c.Microphones))
	for i, m := range c.Microphones {
		v, err := vecFrom(m, c.Dim)
		if err != nil {
			return nil, fmt.Errorf("microphone %d: %w", i, err)
		}
		mics[i] = v
	}
	room, err := NewRoom(walls, c.Obstructing, mics, c.Eps)
	if err != nil {
		return nil, err
	}
	room.AttenThreshold = c.AttenThres
	return room, nil
}

// TraceCfg extracts the ray-tracing parameters for a built room.
func (c *Config) TraceCfg(r *Room) TraceCfg {
	t := TraceCfg{
		MicRadius:   c.MicRadius,
		EnergyThres: c.EnergyThres,
		MaxBounces:  c.MaxBounces,
	}
	if c.DistFactor > 0 {
		t.MaxDist = c.DistFactor * r.MaxDist
	}
	return t
}

// SourceVecs parses the source positions.
func (c *Config) SourceVecs() ([]Vec, error) {
	if len(c.Sources) == 0 {
		return nil, fmt.Errorf("config has no sources")
	}
	out := make([]Vec, len(c.Sources))
	for i, s := range c.Sources {
		v, err := vecFrom(s, c.Dim)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ShoeboxDims parses the optional shoebox dimensions.
func (c *Config) ShoeboxDims() (Vec, bool, error) {
	if len(c.Shoebox) == 0 {
		return Vec{}, false, nil
	}
	v, err := vecFrom(c.Shoebox, c.Dim)
	if err != nil {
		return Vec{}, false, fmt.Errorf("shoebox: %w", err)
	}
	return v, true, nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// Defaults / validation
	if cfg.Dim != 2 && cfg.Dim != 3 {
		return nil, fmt.Errorf("config dim must be 2 or 3, got %d", cfg.Dim)
	}
	if len(cfg.Walls) == 0 {
		return nil, fmt.Errorf("config has no walls")
	}
	if cfg.Eps <= 0 {
		cfg.Eps = DefaultEps
	}
	if cfg.SpeedOfSound <= 0 {
		cfg.SpeedOfSound = SpeedOfSound
	}
	if cfg.MaxOrder <= 0 {
		cfg.MaxOrder = MaxISMOrder
	}
	if cfg.Rays <= 0 {
		cfg.Rays = DefaultRays
	}
	if cfg.MicRadius <= 0 {
		cfg.MicRadius = MicRadius
	}
	if cfg.MaxBounces <= 0 {
		cfg.MaxBounces = MaxBounces
	}
	if cfg.Out == "" {
		cfg.Out = "rir.json"
	}
	DebugLog("Loaded config from %s: dim=%d, %d walls, %d mics, %d sources, order=%d, rays=%d",
		path, cfg.Dim, len(cfg.Walls), len(cfg.Microphones), len(cfg.Sources), cfg.MaxOrder, cfg.Rays)
	return &cfg, nil
}
