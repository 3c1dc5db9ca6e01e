package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/cellular"
	"github.com/slice-sim/slice-sim/sim/scenario"
	"github.com/slice-sim/slice-sim/sim/stats"
	"github.com/slice-sim/slice-sim/sim/trace"
)

type runOptions struct {
	Seed        int64
	MetricsFile string
}

// result is a finished run.
type result struct {
	Config    *scenario.Config
	Simulator *sim.Simulator
	Network   *cellular.Network
	Collector *stats.Collector
	Summary   stats.Summary
}

// runScenario builds the network, runs it to the horizon and summarizes
// the warm window.
func runScenario(cfg *scenario.Config, opts runOptions) (*result, error) {
	rngs := sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed))
	network, err := cfg.Build(rngs)
	if err != nil {
		return nil, err
	}

	horizon := cfg.Horizon()
	s := sim.NewSimulator(horizon)
	collector := stats.NewCollector(network, cfg.StatsInterval(), cfg.StatsArea())
	network.Start(s)
	collector.Start(s)

	logrus.Infof("Starting simulation: seed=%d, horizon=%v, clients=%d, base stations=%d",
		opts.Seed, horizon, len(network.Clients), len(network.Stations))
	s.Run(horizon)
	network.Finish(s)

	sp := cfg.Settings.StatisticsParams
	lo, hi := stats.Window(horizon, sp.WarmupRatio, sp.CooldownRatio)
	return &result{
		Config:    cfg,
		Simulator: s,
		Network:   network,
		Collector: collector,
		Summary:   collector.Summarize(lo, hi),
	}, nil
}

// Report logs the per-client totals, the warm-window statistics and, when
// tracing was on, the trace summary.
func (r *result) Report() {
	for _, c := range r.Network.Clients {
		for _, line := range c.Summary() {
			logrus.Info(line)
		}
	}
	for _, line := range r.Summary.Report(r.Network.StationLabels(), r.Network.SliceNames()) {
		logrus.Info(line)
	}
	logrus.Infof("Totals: %d bind attempts, %d blocked, %d handovers, %d events",
		r.Network.ConnectAttempts, r.Network.Blocked, r.Network.Handovers, r.Simulator.Steps)
	if r.Network.Trace != nil {
		ts := trace.Summarize(r.Network.Trace)
		logrus.Info("=== Trace Summary ===")
		logrus.Infof("Binds: %d admitted, %d rejected", ts.AdmittedCount, ts.RejectedCount)
		logrus.Infof("Handovers: %d (%d interrupted a request)", ts.Handovers, ts.InterruptedHandover)
		logrus.Infof("Queued acquires: %d (mean wait %.3f, max %.3f)", ts.QueuedAcquires, ts.MeanQueueWait, ts.MaxQueueWait)
	}
}

// ExportMetrics writes the run's gauges to path on a private registry.
func (r *result) ExportMetrics(path string) error {
	reg := prometheus.NewRegistry()
	exp, err := stats.NewExporter(reg)
	if err != nil {
		return err
	}
	exp.Publish(r.Summary, r.Network.Observe(r.Config.StatsArea()), r.Network.StationLabels(), r.Network.SliceNames())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	return exp.WriteTextfile(path)
}
