package scenario

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
	"github.com/slice-sim/slice-sim/sim/trace"
)

const minimalYAML = `
settings:
  num_clients: 5
  simulation_time: 20
  limit_closest_base_stations: 2
  log_file: test.log
  statistics_params:
    warmup_ratio: 0.1
    cooldown_ratio: 0.1
    x: {min: 0, max: 100}
    y: {min: 0, max: 50}
slices:
  b_slice:
    delay_tolerance: 10
    qos_class: 1
    bandwidth_guaranteed: 0
    bandwidth_max: 5
    client_weight: 0.5
    usage_pattern: {distribution: randint, params: [1, 5]}
  a_slice:
    delay_tolerance: 10
    qos_class: 2
    bandwidth_guaranteed: 0
    bandwidth_max: 0
    client_weight: 0.5
    usage_pattern: {distribution: uniform, params: [1, 3]}
mobility_patterns:
  walk: {distribution: randint, params: [-1, 1], client_weight: 0.7}
  still: {distribution: normal, params: [0, 0.1], client_weight: 0.3}
base_stations:
  - {x: 25, y: 25, coverage: 40, capacity_bandwidth: 20, ratios: {b_slice: 0.5, a_slice: 0.5}}
  - {x: 75, y: 25, coverage: 40, capacity_bandwidth: 10, ratios: {b_slice: 1, a_slice: 0}}
clients:
  location:
    x: {distribution: uniform, params: [0, 100]}
    y: {distribution: uniform, params: [0, 50]}
  usage_frequency: {distribution: randint, params: [0, 100], divide_scale: 50}
`

func parseMinimal(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	return cfg
}

func TestLoad_ExampleScenario(t *testing.T) {
	// GIVEN the bundled example scenario
	// WHEN it is loaded
	cfg, err := Load(filepath.Join("testdata", "example.yaml"))

	// THEN it parses, validates, and keeps mapping order
	require.NoError(t, err)
	assert.Equal(t, []string{"x_eMBB", "x_mMTC", "x_URLLC"}, cfg.Slices.Names())
	assert.Equal(t, []string{"car", "walk", "stationary", "tram", "slackperson"}, cfg.MobilityPatterns.Names())
	assert.Equal(t, 200.0, cfg.Horizon())
	assert.Len(t, cfg.BaseStations, 4)
	assert.NotNil(t, cfg.Clients.HoldTime)
	assert.Equal(t, geo.Rect{MinX: 0, MaxX: 1980, MinY: 0, MaxY: 1980}, cfg.StatsArea())
}

func TestLoad_MissingFile_IsNotExistConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParse_Defaults(t *testing.T) {
	cfg := parseMinimal(t)

	assert.Equal(t, 1.0, cfg.Tick())
	assert.Equal(t, 1.0, cfg.StatsInterval())
	assert.Equal(t, trace.TraceLevelNone, cfg.TraceLevel())
	assert.Equal(t, int64(7), cfg.Seed(7))
	assert.Nil(t, cfg.Clients.HoldTime)
}

func TestParse_OptionalSettings(t *testing.T) {
	doc := strings.Replace(minimalYAML, "  log_file: test.log\n",
		"  log_file: test.log\n  seed: 99\n  tick: 0.5\n  stats_interval: 2\n  trace: decisions\n", 1)

	cfg, err := Parse([]byte(doc))

	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed(7))
	assert.Equal(t, 0.5, cfg.Tick())
	assert.Equal(t, 2.0, cfg.StatsInterval())
	assert.Equal(t, trace.TraceLevelDecisions, cfg.TraceLevel())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"top level", "clients:\n", "bogus: 1\nclients:\n"},
		{"inside a slice", "    qos_class: 1\n", "    qos_class: 1\n    threshold: 0\n"},
		{"inside a mobility pattern", "client_weight: 0.7}", "client_weight: 0.7, speed: 3}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(minimalYAML, tt.from, tt.to, 1)
			require.NotEqual(t, minimalYAML, doc)

			_, err := Parse([]byte(doc))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestParse_DuplicateSliceName(t *testing.T) {
	doc := strings.Replace(minimalYAML, "  a_slice:\n", "  b_slice:\n", 1)

	_, err := Parse([]byte(doc))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestParse_UnknownDistributionFailsEagerly(t *testing.T) {
	// GIVEN a usage pattern naming an unsupported family
	doc := strings.Replace(minimalYAML, "distribution: uniform, params: [1, 3]", "distribution: zipf, params: [1, 3]", 1)

	// WHEN parsed
	_, err := Parse([]byte(doc))

	// THEN loading fails before any simulation is built
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.True(t, errors.Is(err, distribution.ErrUnknownDistribution))
	assert.Contains(t, err.Error(), "a_slice")
}

func TestValidate_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero horizon", func(c *Config) { c.Settings.SimulationTime = 0 }},
		{"negative clients", func(c *Config) { c.Settings.NumClients = -1 }},
		{"zero K", func(c *Config) { c.Settings.LimitClosestBaseStations = 0 }},
		{"negative tick", func(c *Config) { c.Settings.Tick = -1 }},
		{"bad trace level", func(c *Config) { c.Settings.Trace = "verbose" }},
		{"inverted stats area", func(c *Config) { c.Settings.StatisticsParams.X = Range{Min: 5, Max: 1} }},
		{"warm window empty", func(c *Config) { c.Settings.StatisticsParams.WarmupRatio = 0.6; c.Settings.StatisticsParams.CooldownRatio = 0.4 }},
		{"no slices", func(c *Config) { c.Slices = nil }},
		{"negative slice weight", func(c *Config) { c.Slices[0].Value.ClientWeight = -0.1 }},
		{"all zero slice weights", func(c *Config) { c.Slices[0].Value.ClientWeight = 0; c.Slices[1].Value.ClientWeight = 0 }},
		{"guaranteed above max", func(c *Config) { c.Slices[0].Value.BandwidthGuaranteed = 10 }},
		{"no mobility patterns", func(c *Config) { c.MobilityPatterns = nil }},
		{"bad mobility params", func(c *Config) { c.MobilityPatterns[0].Value.Params = []float64{1} }},
		{"no base stations", func(c *Config) { c.BaseStations = nil }},
		{"negative coverage", func(c *Config) { c.BaseStations[0].Coverage = -1 }},
		{"ratio for unknown slice", func(c *Config) { c.BaseStations[0].Ratios["nope"] = 0.1 }},
		{"ratio above one", func(c *Config) { c.BaseStations[1].Ratios["b_slice"] = 1.5 }},
		{"ratios sum above one", func(c *Config) { c.BaseStations[0].Ratios["a_slice"] = 0.6 }},
		{"bad location distribution", func(c *Config) { c.Clients.Location.X = distribution.Spec{Distribution: "nope"} }},
		{"bad hold time", func(c *Config) { c.Clients.HoldTime = &distribution.Spec{Distribution: "expo", Params: []float64{-1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parseMinimal(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestValidate_WeightsNotSummingToOneAreAccepted(t *testing.T) {
	cfg := parseMinimal(t)
	cfg.Slices[0].Value.ClientWeight = 0.2

	assert.NoError(t, cfg.Validate())
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "", OutputPath("/work", ""))
	assert.Equal(t, "/var/log/x.log", OutputPath("/work", "/var/log/x.log"))
	assert.Equal(t, filepath.Join("/work", "output", "x.log"), OutputPath("/work", "x.log"))
}
