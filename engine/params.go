package engine

import "math"

// ----- Mode ----- //

// Mode tags the last applied scene preset. Manual means the knobs are
// wherever the user (or randomize) left them.
type Mode string

const (
	ModeManual  Mode = "manual"
	ModeDeep    Mode = "deep"
	ModeDrift   Mode = "drift"
	ModeMachine Mode = "machine"
	ModeAurora  Mode = "aurora"
)

// modePresets holds the fixed texture values applied by SetMode. Volume,
// root and interval spread are deliberately absent: a scene change must not
// move the harmonic anchor or the output level.
var modePresets = map[Mode]Timbre{
	ModeDeep:    {Darkness: 0.80, Motion: 0.20, Density: 0.35, Grain: 0.20, Rust: 0.15, Hum: 0.50, Fracture: 0.10, Space: 0.60, PulseIntensity: 0.15},
	ModeDrift:   {Darkness: 0.55, Motion: 0.50, Density: 0.50, Grain: 0.35, Rust: 0.20, Hum: 0.30, Fracture: 0.25, Space: 0.50, PulseIntensity: 0.30},
	ModeMachine: {Darkness: 0.45, Motion: 0.40, Density: 0.70, Grain: 0.55, Rust: 0.70, Hum: 0.25, Fracture: 0.50, Space: 0.35, PulseIntensity: 0.60},
	ModeAurora:  {Darkness: 0.30, Motion: 0.60, Density: 0.55, Grain: 0.40, Rust: 0.10, Hum: 0.20, Fracture: 0.30, Space: 0.70, PulseIntensity: 0.25},
}

// ----- Params ----- //

// Params is the complete normalized state of the instrument. Every numeric
// field stays in [0,1]; setters clamp before storing.
type Params struct {
	Volume         float64 `yaml:"volume"`
	Darkness       float64 `yaml:"darkness"`
	Motion         float64 `yaml:"motion"`
	Density        float64 `yaml:"density"`
	Grain          float64 `yaml:"grain"`
	Rust           float64 `yaml:"rust"`
	Hum            float64 `yaml:"hum"`
	Fracture       float64 `yaml:"fracture"`
	Space          float64 `yaml:"space"`
	PulseIntensity float64 `yaml:"pulseIntensity"`
	PureDrone      bool    `yaml:"pureDrone"`
	RootPosition   float64 `yaml:"rootPosition"`
	IntervalSpread float64 `yaml:"intervalSpread"`
	Mode           Mode    `yaml:"mode"`
}

func defaultParams() Params {
	return Params{
		Volume:         0.7,
		Darkness:       0.5,
		Motion:         0.35,
		Density:        0.45,
		Grain:          0.3,
		Rust:           0.25,
		Hum:            0.3,
		Fracture:       0.2,
		Space:          0.45,
		PulseIntensity: 0.35,
		PureDrone:      false,
		RootPosition:   0.3,
		IntervalSpread: 0.4,
		Mode:           ModeManual,
	}
}

// Timbre is the subset of Params that scene presets and snapshots carry.
type Timbre struct {
	Darkness       float64 `yaml:"darkness"`
	Motion         float64 `yaml:"motion"`
	Density        float64 `yaml:"density"`
	Grain          float64 `yaml:"grain"`
	Rust           float64 `yaml:"rust"`
	Hum            float64 `yaml:"hum"`
	Fracture       float64 `yaml:"fracture"`
	Space          float64 `yaml:"space"`
	PulseIntensity float64 `yaml:"pulseIntensity"`
	RootPosition   float64 `yaml:"rootPosition"`
	IntervalSpread float64 `yaml:"intervalSpread"`
}

// Timbre extracts the snapshot subset; volume and mode stay behind.
func (p Params) Timbre() Timbre {
	return Timbre{
		Darkness:       p.Darkness,
		Motion:         p.Motion,
		Density:        p.Density,
		Grain:          p.Grain,
		Rust:           p.Rust,
		Hum:            p.Hum,
		Fracture:       p.Fracture,
		Space:          p.Space,
		PulseIntensity: p.PulseIntensity,
		RootPosition:   p.RootPosition,
		IntervalSpread: p.IntervalSpread,
	}
}

// Preset is the persisted form of Params plus the cached derived
// frequencies, keyed by name in the preset store.
type Preset struct {
	Params Params  `yaml:"params"`
	SubHz  float64 `yaml:"subHz"`
	MidHz  float64 `yaml:"midHz"`
	AirHz  float64 `yaml:"airHz"`
}

// ----- Utility ----- //

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampF(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
