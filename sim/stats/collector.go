// Package stats samples network-wide aggregates at a fixed interval and
// reduces them over a warm window once the run is over.
package stats

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/geo"
)

// Observation is an instantaneous view of the network. Utilization is
// indexed [station][slice] and holds NaN where a station does not offer the
// slice. The three counters are cumulative since t=0.
type Observation struct {
	Utilization   [][]float64
	Connected     int
	Disconnected  int
	UsedBandwidth float64
	SliceClients  []int
	InArea        int
	CoveredInArea int

	ConnectAttempts int64
	Blocked         int64
	Handovers       int64
}

// Source is anything that can be observed; cellular.Network implements it.
type Source interface {
	Observe(area geo.Rect) Observation
}

// Sample is one StatSample: an Observation stamped with its time, with the
// cumulative counters turned into per-interval deltas.
type Sample struct {
	Time          float64
	Utilization   [][]float64
	Connected     int
	Disconnected  int
	UsedBandwidth float64
	SliceClients  []int
	// CoverageRatio is the fraction of clients inside the statistics area
	// that are served. 0 when the area is empty.
	CoverageRatio float64

	ConnectAttempts int64
	Blocked         int64
	Handovers       int64
	// BlockRatio is Blocked/ConnectAttempts for the interval.
	BlockRatio float64
	// HandoverRatio is Handovers per connected client for the interval.
	HandoverRatio float64
}

// Collector is the periodic statistics process.
type Collector struct {
	Interval float64
	Area     geo.Rect

	source  Source
	samples []Sample
	last    Observation
}

// NewCollector creates a collector sampling src every interval time units.
// A non-positive interval defaults to 1.
func NewCollector(src Source, interval float64, area geo.Rect) *Collector {
	if !(interval > 0) {
		interval = 1
	}
	return &Collector{Interval: interval, Area: area, source: src}
}

// Start schedules the first sample at the current clock. Later samples
// follow every Interval until the simulator stops.
func (c *Collector) Start(s *sim.Simulator) {
	if err := s.ScheduleFunc(0, c.collect); err != nil {
		panic(err)
	}
}

func (c *Collector) collect(s *sim.Simulator) {
	c.Record(s.Clock(), c.source.Observe(c.Area))
	if err := s.ScheduleFunc(c.Interval, c.collect); err != nil {
		panic(err)
	}
}

// Record appends a sample built from obs at time t.
func (c *Collector) Record(t float64, obs Observation) {
	smp := Sample{
		Time:            t,
		Utilization:     obs.Utilization,
		Connected:       obs.Connected,
		Disconnected:    obs.Disconnected,
		UsedBandwidth:   obs.UsedBandwidth,
		SliceClients:    obs.SliceClients,
		ConnectAttempts: obs.ConnectAttempts - c.last.ConnectAttempts,
		Blocked:         obs.Blocked - c.last.Blocked,
		Handovers:       obs.Handovers - c.last.Handovers,
	}
	if obs.InArea > 0 {
		smp.CoverageRatio = float64(obs.CoveredInArea) / float64(obs.InArea)
	}
	if smp.ConnectAttempts > 0 {
		smp.BlockRatio = float64(smp.Blocked) / float64(smp.ConnectAttempts)
	}
	if obs.Connected > 0 {
		smp.HandoverRatio = float64(smp.Handovers) / float64(obs.Connected)
	}
	c.last = obs
	c.samples = append(c.samples, smp)
	logrus.Tracef("[t %10.4f] stats: connected=%d disconnected=%d used=%.2f", t, smp.Connected, smp.Disconnected, smp.UsedBandwidth)
}

// Samples returns every sample in time order.
func (c *Collector) Samples() []Sample {
	return c.samples
}

// Last returns the most recent sample, or false if none was taken.
func (c *Collector) Last() (Sample, bool) {
	if len(c.samples) == 0 {
		return Sample{}, false
	}
	return c.samples[len(c.samples)-1], true
}

// Window returns the warm window [lo, hi] of a run of the given horizon,
// excluding the warm-up and cool-down fractions.
func Window(horizon, warmup, cooldown float64) (lo, hi float64) {
	lo = horizon * clamp01(warmup)
	hi = horizon * (1 - clamp01(cooldown))
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

// Between returns the samples with lo <= Time <= hi.
func (c *Collector) Between(lo, hi float64) []Sample {
	var out []Sample
	for _, smp := range c.samples {
		if smp.Time >= lo && smp.Time <= hi {
			out = append(out, smp)
		}
	}
	return out
}
