// Package scenario loads a simulation scenario from YAML, validates it
// eagerly, and builds a ready-to-run network from it.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
	"github.com/slice-sim/slice-sim/sim/trace"
)

// ErrConfig wraps every configuration failure: a missing or malformed
// file, an unknown distribution, malformed weights or out-of-range values.
var ErrConfig = errors.New("configuration error")

// Config is the top-level scenario file.
type Config struct {
	Settings         Settings                `yaml:"settings"`
	Slices           Ordered[SliceConfig]    `yaml:"slices"`
	MobilityPatterns Ordered[MobilityConfig] `yaml:"mobility_patterns"`
	BaseStations     []BaseStationConfig     `yaml:"base_stations"`
	Clients          ClientsConfig           `yaml:"clients"`
}

// Settings holds run-wide parameters.
type Settings struct {
	NumClients               int              `yaml:"num_clients"`
	SimulationTime           float64          `yaml:"simulation_time"`
	LimitClosestBaseStations int              `yaml:"limit_closest_base_stations"`
	LogFile                  string           `yaml:"log_file"`
	StatisticsParams         StatisticsParams `yaml:"statistics_params"`
	// PlottingParams is accepted and ignored.
	PlottingParams yaml.Node `yaml:"plotting_params,omitempty"`

	Seed          *int64  `yaml:"seed,omitempty"`
	Tick          float64 `yaml:"tick,omitempty"`           // default 1
	StatsInterval float64 `yaml:"stats_interval,omitempty"` // default 1
	Trace         string  `yaml:"trace,omitempty"`          // none | decisions
	MetricsFile   string  `yaml:"metrics_file,omitempty"`
}

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// StatisticsParams bounds the coverage statistics area and the warm window.
type StatisticsParams struct {
	X             Range   `yaml:"x"`
	Y             Range   `yaml:"y"`
	WarmupRatio   float64 `yaml:"warmup_ratio"`
	CooldownRatio float64 `yaml:"cooldown_ratio"`
}

// SliceConfig defines one named slice.
type SliceConfig struct {
	ClientWeight        float64           `yaml:"client_weight"`
	DelayTolerance      float64           `yaml:"delay_tolerance"`
	QoSClass            int               `yaml:"qos_class"`
	BandwidthGuaranteed float64           `yaml:"bandwidth_guaranteed"`
	BandwidthMax        float64           `yaml:"bandwidth_max"`
	UsagePattern        distribution.Spec `yaml:"usage_pattern"`
}

// MobilityConfig defines one mobility pattern: a displacement distribution
// and the share of clients assigned to it.
type MobilityConfig struct {
	Distribution string    `yaml:"distribution"`
	Params       []float64 `yaml:"params,omitempty"`
	DivideScale  float64   `yaml:"divide_scale,omitempty"`
	ClientWeight float64   `yaml:"client_weight"`
}

// Spec returns the pattern's displacement distribution.
func (m MobilityConfig) Spec() distribution.Spec {
	return distribution.Spec{Distribution: m.Distribution, Params: m.Params, DivideScale: m.DivideScale}
}

// BaseStationConfig places one base station. Ratios maps slice name to the
// fraction of capacity_bandwidth it gets; a missing or zero ratio means the
// station does not offer the slice.
type BaseStationConfig struct {
	X                 float64            `yaml:"x"`
	Y                 float64            `yaml:"y"`
	Coverage          float64            `yaml:"coverage"`
	CapacityBandwidth float64            `yaml:"capacity_bandwidth"`
	Ratios            map[string]float64 `yaml:"ratios"`
}

// ClientsConfig defines how clients are placed and how often they ask for
// bandwidth.
type ClientsConfig struct {
	UsageFrequency distribution.Spec `yaml:"usage_frequency"`
	Location       LocationConfig    `yaml:"location"`
	// HoldTime samples how long granted bandwidth is held. Defaults to one
	// tick.
	HoldTime *distribution.Spec `yaml:"hold_time,omitempty"`
}

// LocationConfig samples initial client coordinates.
type LocationConfig struct {
	X distribution.Spec `yaml:"x"`
	Y distribution.Spec `yaml:"y"`
}

// Load reads and strictly parses a scenario file, then validates it. A
// missing file yields an error matching both ErrConfig and fs.ErrNotExist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading scenario: %w", ErrConfig, err)
	}
	return Parse(data)
}

// Parse strictly decodes and validates a scenario document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing scenario: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field, including that every distribution can be
// constructed. All failures wrap ErrConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	s := c.Settings
	if s.NumClients < 0 {
		return fmt.Errorf("settings.num_clients must be >= 0, got %d", s.NumClients)
	}
	if !(s.SimulationTime > 0) || math.IsInf(s.SimulationTime, 0) {
		return fmt.Errorf("settings.simulation_time must be positive, got %v", s.SimulationTime)
	}
	if s.LimitClosestBaseStations < 1 {
		return fmt.Errorf("settings.limit_closest_base_stations must be >= 1, got %d", s.LimitClosestBaseStations)
	}
	if s.Tick < 0 || s.StatsInterval < 0 {
		return fmt.Errorf("settings.tick and settings.stats_interval must be >= 0")
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("settings.trace: unknown level %q; valid: none, decisions", s.Trace)
	}
	sp := s.StatisticsParams
	if sp.X.Min > sp.X.Max || sp.Y.Min > sp.Y.Max {
		return fmt.Errorf("settings.statistics_params: min must not exceed max")
	}
	if sp.WarmupRatio < 0 || sp.CooldownRatio < 0 || sp.WarmupRatio+sp.CooldownRatio >= 1 {
		return fmt.Errorf("settings.statistics_params: warmup_ratio and cooldown_ratio must be >= 0 and sum below 1, got %v and %v",
			sp.WarmupRatio, sp.CooldownRatio)
	}

	if len(c.Slices) == 0 {
		return fmt.Errorf("slices: at least one slice required")
	}
	weights := make([]float64, len(c.Slices))
	for i, e := range c.Slices {
		sl := e.Value
		if sl.BandwidthGuaranteed < 0 || sl.BandwidthMax < 0 {
			return fmt.Errorf("slices.%s: bandwidth bounds must be >= 0", e.Name)
		}
		if sl.BandwidthMax > 0 && sl.BandwidthGuaranteed > sl.BandwidthMax {
			return fmt.Errorf("slices.%s: bandwidth_guaranteed %v exceeds bandwidth_max %v", e.Name, sl.BandwidthGuaranteed, sl.BandwidthMax)
		}
		if err := checkDistribution("slices."+e.Name+".usage_pattern", sl.UsagePattern); err != nil {
			return err
		}
		weights[i] = sl.ClientWeight
	}
	if err := checkWeights("slices", weights); err != nil {
		return err
	}

	if len(c.MobilityPatterns) == 0 {
		return fmt.Errorf("mobility_patterns: at least one pattern required")
	}
	weights = make([]float64, len(c.MobilityPatterns))
	for i, e := range c.MobilityPatterns {
		if err := checkDistribution("mobility_patterns."+e.Name, e.Value.Spec()); err != nil {
			return err
		}
		weights[i] = e.Value.ClientWeight
	}
	if err := checkWeights("mobility_patterns", weights); err != nil {
		return err
	}

	if len(c.BaseStations) == 0 {
		return fmt.Errorf("base_stations: at least one base station required")
	}
	known := make(map[string]bool, len(c.Slices))
	for _, name := range c.Slices.Names() {
		known[name] = true
	}
	for i, b := range c.BaseStations {
		if b.Coverage < 0 || b.CapacityBandwidth < 0 {
			return fmt.Errorf("base_stations[%d]: coverage and capacity_bandwidth must be >= 0", i)
		}
		total := 0.0
		for name, r := range b.Ratios {
			if !known[name] {
				return fmt.Errorf("base_stations[%d].ratios: unknown slice %q", i, name)
			}
			if r < 0 || r > 1 {
				return fmt.Errorf("base_stations[%d].ratios.%s must be in [0, 1], got %v", i, name, r)
			}
			total += r
		}
		if total > 1+1e-9 {
			return fmt.Errorf("base_stations[%d].ratios sum to %v, above 1", i, total)
		}
	}

	if err := checkDistribution("clients.usage_frequency", c.Clients.UsageFrequency); err != nil {
		return err
	}
	if err := checkDistribution("clients.location.x", c.Clients.Location.X); err != nil {
		return err
	}
	if err := checkDistribution("clients.location.y", c.Clients.Location.Y); err != nil {
		return err
	}
	if c.Clients.HoldTime != nil {
		if err := checkDistribution("clients.hold_time", *c.Clients.HoldTime); err != nil {
			return err
		}
	}
	return nil
}

// checkDistribution builds the distributor against a throwaway source so
// an unknown family or bad parameters fail at load time.
func checkDistribution(name string, spec distribution.Spec) error {
	_, err := distribution.New(name, spec, rand.New(rand.NewPCG(0, 0)))
	return err
}

// checkWeights rejects negative or all-zero weights. Weights that do not sum
// to 1 are allowed; selection treats the draw against the running sum and
// clamps to the last entry.
func checkWeights(what string, weights []float64) error {
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%s: client_weight[%d] must be >= 0, got %v", what, i, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%s: client weights sum to 0", what)
	}
	if math.Abs(total-1) > 1e-9 {
		logrus.Warnf("%s: client weights sum to %v, not 1; draws above the sum select the last entry", what, total)
	}
	return nil
}

// Horizon returns the simulation horizon in ticks.
func (c *Config) Horizon() float64 {
	return c.Settings.SimulationTime
}

// Tick returns the mobility period, defaulting to 1.
func (c *Config) Tick() float64 {
	if c.Settings.Tick > 0 {
		return c.Settings.Tick
	}
	return 1
}

// StatsInterval returns the sampling period, defaulting to 1.
func (c *Config) StatsInterval() float64 {
	if c.Settings.StatsInterval > 0 {
		return c.Settings.StatsInterval
	}
	return 1
}

// StatsArea returns the rectangle coverage statistics are computed over.
func (c *Config) StatsArea() geo.Rect {
	sp := c.Settings.StatisticsParams
	return geo.Rect{MinX: sp.X.Min, MaxX: sp.X.Max, MinY: sp.Y.Min, MaxY: sp.Y.Max}
}

// TraceLevel returns the configured trace level, defaulting to none.
func (c *Config) TraceLevel() trace.TraceLevel {
	if c.Settings.Trace == "" {
		return trace.TraceLevelNone
	}
	return trace.TraceLevel(c.Settings.Trace)
}

// OutputPath resolves a relative output file under dir/output. Absolute
// paths and the empty string are returned unchanged.
func OutputPath(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, "output", name)
}
