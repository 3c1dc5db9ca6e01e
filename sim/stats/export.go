package stats

import (
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

// Exporter publishes the final state of a run and its warm-window summary
// as Prometheus gauges, for writing to a node_exporter textfile.
type Exporter struct {
	gatherer prometheus.Gatherer

	SliceUtilization  *prometheus.GaugeVec
	SliceClients      *prometheus.GaugeVec
	ClientsConnected  prometheus.Gauge
	ClientsUnattached prometheus.Gauge
	UsedBandwidth     prometheus.Gauge
	CoverageRatio     prometheus.Gauge
	BlockRatio        prometheus.Gauge
	HandoverRatio     prometheus.Gauge
	ConnectAttempts   prometheus.Gauge
	Blocked           prometheus.Gauge
	Handovers         prometheus.Gauge
}

// NewExporter registers the gauges against reg, defaulting to the global
// registry when nil.
func NewExporter(reg prometheus.Registerer) (*Exporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	util, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "slicesim_slice_utilization_ratio",
		Help: "Mean allocated/capacity ratio over the warm window, by station and slice.",
	}, []string{"station", "slice"}), "slicesim_slice_utilization_ratio")
	if err != nil {
		return nil, err
	}
	sliceClients, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "slicesim_slice_clients",
		Help: "Mean number of bound clients over the warm window, by slice.",
	}, []string{"slice"}), "slicesim_slice_clients")
	if err != nil {
		return nil, err
	}

	e := &Exporter{gatherer: gatherer, SliceUtilization: util, SliceClients: sliceClients}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&e.ClientsConnected, "slicesim_clients_connected", "Mean connected clients over the warm window."},
		{&e.ClientsUnattached, "slicesim_clients_disconnected", "Mean disconnected clients over the warm window."},
		{&e.UsedBandwidth, "slicesim_used_bandwidth", "Mean bandwidth held across all slices over the warm window."},
		{&e.CoverageRatio, "slicesim_coverage_ratio", "Mean fraction of clients in the statistics area that are served."},
		{&e.BlockRatio, "slicesim_block_ratio", "Mean fraction of bind attempts refused per sample."},
		{&e.HandoverRatio, "slicesim_handover_ratio", "Mean handovers per connected client per sample."},
		{&e.ConnectAttempts, "slicesim_connect_attempts", "Bind attempts over the whole run."},
		{&e.Blocked, "slicesim_blocked", "Refused bind attempts over the whole run."},
		{&e.Handovers, "slicesim_handovers", "Handovers over the whole run."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return e, nil
}

// Publish sets every gauge from a warm-window summary and the run's
// cumulative counters.
func (e *Exporter) Publish(sum Summary, totals Observation, stations, slices []string) {
	if e == nil {
		return
	}
	for i, row := range sum.MeanUtilization {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			e.SliceUtilization.WithLabelValues(label(stations, i), label(slices, j)).Set(v)
		}
	}
	for j, v := range sum.MeanSliceClients {
		e.SliceClients.WithLabelValues(label(slices, j)).Set(v)
	}
	e.ClientsConnected.Set(sum.MeanConnected)
	e.ClientsUnattached.Set(sum.MeanDisconnected)
	e.UsedBandwidth.Set(sum.MeanUsedBandwidth)
	e.CoverageRatio.Set(sum.MeanCoverageRatio)
	e.BlockRatio.Set(sum.MeanBlockRatio)
	e.HandoverRatio.Set(sum.MeanHandoverRatio)
	e.ConnectAttempts.Set(float64(totals.ConnectAttempts))
	e.Blocked.Set(float64(totals.Blocked))
	e.Handovers.Set(float64(totals.Handovers))
}

// WriteTextfile writes every metric gathered from the exporter's registry
// to path in the Prometheus text format.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
