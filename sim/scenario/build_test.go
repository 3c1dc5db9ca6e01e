package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/cellular"
	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
)

func build(t *testing.T, cfg *Config, seed int64) *cellular.Network {
	t.Helper()
	n, err := cfg.Build(sim.NewPartitionedRNG(sim.NewSimulationKey(seed)))
	require.NoError(t, err)
	return n
}

func TestBuild_ConstructsArenasFromConfig(t *testing.T) {
	// GIVEN the minimal scenario
	cfg := parseMinimal(t)

	// WHEN built
	n := build(t, cfg, 1)

	// THEN stations, slices and clients follow the configuration
	require.Len(t, n.Stations, 2)
	require.Len(t, n.Profiles, 2)
	assert.Equal(t, "b_slice", n.Profiles[0].Name)
	assert.Equal(t, 5.0, n.Profiles[0].BandwidthMax)
	assert.InDelta(t, 10, n.Stations[0].Slices[0].Capacity(), 1e-12)
	assert.InDelta(t, 10, n.Stations[0].Slices[1].Capacity(), 1e-12)
	assert.InDelta(t, 10, n.Stations[1].Slices[0].Capacity(), 1e-12)
	assert.Nil(t, n.Stations[1].Slices[1], "zero ratio means the slice is not offered")
	assert.Equal(t, 2, n.K)
	assert.Equal(t, 1.0, n.Tick)
	assert.Nil(t, n.HoldTime)
	assert.Nil(t, n.Trace)
	require.Len(t, n.Clients, 5)
	area := geo.Rect{MinX: 0, MaxX: 100, MinY: 0, MaxY: 50}
	for i, c := range n.Clients {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, -1, c.Station)
		assert.True(t, area.Contains(c.Location), "client %d at %v", i, c.Location)
		assert.Contains(t, []string{"walk", "still"}, c.Mobility.Name())
		assert.Equal(t, distribution.RandInt, c.UsageFrequency.Kind())
	}
}

func TestBuild_SameSeedSamePlacement(t *testing.T) {
	cfg := parseMinimal(t)

	a, b, c := build(t, cfg, 3), build(t, cfg, 3), build(t, cfg, 4)

	differs := false
	for i := range a.Clients {
		assert.Equal(t, a.Clients[i].Location, b.Clients[i].Location)
		assert.Equal(t, a.Clients[i].Slice, b.Clients[i].Slice)
		if a.Clients[i].Location != c.Clients[i].Location {
			differs = true
		}
	}
	assert.True(t, differs, "a different seed should move at least one client")
}

func TestBuild_HoldTimeAndTrace(t *testing.T) {
	cfg := parseMinimal(t)
	cfg.Clients.HoldTime = &distribution.Spec{Distribution: "expo", Params: []float64{2}}
	cfg.Settings.Trace = "decisions"

	n := build(t, cfg, 1)

	require.NotNil(t, n.HoldTime)
	assert.Equal(t, distribution.Exponential, n.HoldTime.Kind())
	require.NotNil(t, n.Trace)
}

func TestBuild_AffinityFollowsWeights(t *testing.T) {
	// GIVEN all weight on the second slice
	cfg := parseMinimal(t)
	cfg.Slices[0].Value.ClientWeight = 0
	cfg.Slices[1].Value.ClientWeight = 1
	cfg.Settings.NumClients = 50

	n := build(t, cfg, 9)

	for _, c := range n.Clients {
		assert.Equal(t, 1, c.Slice)
	}
}

func TestBuild_RunsToHorizon(t *testing.T) {
	// GIVEN the minimal scenario built and started
	cfg := parseMinimal(t)
	n := build(t, cfg, 5)
	s := sim.NewSimulator(cfg.Horizon())
	n.Start(s)

	// WHEN run to the horizon
	s.Run(cfg.Horizon())
	n.Finish(s)

	// THEN every client's time is accounted for
	assert.Equal(t, cfg.Horizon(), s.Clock())
	for _, c := range n.Clients {
		assert.InDelta(t, cfg.Horizon(), c.ConnectedTime+c.UnconnectedTime, 1e-6)
	}
}
