package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/cellular"
	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
	"github.com/slice-sim/slice-sim/sim/trace"
)

// Build constructs the network described by c. Every random draw comes
// from a stream of rngs: slice usage patterns and hold times from
// SubsystemUsage, initial locations from SubsystemPlacement, pattern and
// affinity slice choice from SubsystemAssignment, and each client's
// movement and request timing from its own SubsystemClient stream.
func (c *Config) Build(rngs *sim.PartitionedRNG) (*cellular.Network, error) {
	n, err := c.build(rngs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return n, nil
}

func (c *Config) build(rngs *sim.PartitionedRNG) (*cellular.Network, error) {
	usageRNG := rngs.ForSubsystem(sim.SubsystemUsage)

	profiles := make([]*cellular.SliceProfile, len(c.Slices))
	sliceWeights := make([]float64, len(c.Slices))
	for i, e := range c.Slices {
		usage, err := distribution.New(e.Name, e.Value.UsagePattern, usageRNG)
		if err != nil {
			return nil, err
		}
		profiles[i] = &cellular.SliceProfile{
			Name:                e.Name,
			ClientWeight:        e.Value.ClientWeight,
			DelayTolerance:      e.Value.DelayTolerance,
			QoSClass:            e.Value.QoSClass,
			BandwidthGuaranteed: e.Value.BandwidthGuaranteed,
			BandwidthMax:        e.Value.BandwidthMax,
			Usage:               usage,
		}
		sliceWeights[i] = e.Value.ClientWeight
	}

	stations := make([]*cellular.BaseStation, len(c.BaseStations))
	for i, b := range c.BaseStations {
		area, err := geo.NewCoverageArea(geo.Coordinate{X: b.X, Y: b.Y}, b.Coverage)
		if err != nil {
			return nil, fmt.Errorf("base_stations[%d]: %w", i, err)
		}
		ratios := make(map[string]float64, len(b.Ratios))
		for name, r := range b.Ratios {
			if r > 0 {
				ratios[name] = r
			}
		}
		bs, err := cellular.NewBaseStation(i, area, b.CapacityBandwidth, profiles, ratios)
		if err != nil {
			return nil, err
		}
		stations[i] = bs
	}
	logrus.Infof("Base stations initialized: %d", len(stations))

	placement := rngs.ForSubsystem(sim.SubsystemPlacement)
	locX, err := distribution.New("location.x", c.Clients.Location.X, placement)
	if err != nil {
		return nil, err
	}
	locY, err := distribution.New("location.y", c.Clients.Location.Y, placement)
	if err != nil {
		return nil, err
	}

	assignment := rngs.ForSubsystem(sim.SubsystemAssignment)
	sliceCum := distribution.CumulativeWeights(sliceWeights)
	mobilityWeights := make([]float64, len(c.MobilityPatterns))
	for i, e := range c.MobilityPatterns {
		mobilityWeights[i] = e.Value.ClientWeight
	}
	mobilityCum := distribution.CumulativeWeights(mobilityWeights)

	clients := make([]*cellular.Client, c.Settings.NumClients)
	for i := range clients {
		loc := geo.Coordinate{X: locX.Generate(), Y: locY.Generate()}
		pattern := c.MobilityPatterns[distribution.Pick(mobilityCum, assignment)]
		slice := distribution.Pick(sliceCum, assignment)

		own := rngs.ForSubsystem(sim.SubsystemClient(i))
		mobility, err := distribution.New(pattern.Name, pattern.Value.Spec(), own)
		if err != nil {
			return nil, err
		}
		freq, err := distribution.New("usage_frequency", c.Clients.UsageFrequency, own)
		if err != nil {
			return nil, err
		}
		clients[i] = cellular.NewClient(i, loc, mobility, freq, slice)
		logrus.Debugf("client %d at %v: mobility %s, slice %s", i, loc, pattern.Name, profiles[slice].Name)
	}
	logrus.Infof("Clients initialized: %d", len(clients))

	n := cellular.NewNetwork(profiles, stations, clients, c.Settings.LimitClosestBaseStations, c.Tick())
	if c.Clients.HoldTime != nil {
		hold, err := distribution.New("hold_time", *c.Clients.HoldTime, usageRNG)
		if err != nil {
			return nil, err
		}
		n.HoldTime = hold
	}
	if c.TraceLevel() != trace.TraceLevelNone {
		n.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: c.TraceLevel()})
	}
	return n, nil
}

// Seed returns settings.seed when present, else fallback.
func (c *Config) Seed(fallback int64) int64 {
	if c.Settings.Seed != nil {
		return *c.Settings.Seed
	}
	return fallback
}
