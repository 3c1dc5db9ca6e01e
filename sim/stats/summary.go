package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregates of the samples inside one window.
type Summary struct {
	From, To float64
	Samples  int

	MeanConnected     float64
	MeanDisconnected  float64
	MeanCoverageRatio float64
	MeanBlockRatio    float64
	MeanHandoverRatio float64
	MeanUsedBandwidth float64
	StdUsedBandwidth  float64

	// MeanSliceClients is indexed by slice.
	MeanSliceClients []float64
	// MeanUtilization is indexed [station][slice]; NaN where the station
	// does not offer the slice.
	MeanUtilization [][]float64
}

// Summarize aggregates the samples in [lo, hi]. An empty window yields a
// Summary with Samples == 0 and zero means.
func (c *Collector) Summarize(lo, hi float64) Summary {
	window := c.Between(lo, hi)
	sum := Summary{From: lo, To: hi, Samples: len(window)}
	if len(window) == 0 {
		return sum
	}

	column := func(f func(Sample) float64) []float64 {
		xs := make([]float64, len(window))
		for i, smp := range window {
			xs[i] = f(smp)
		}
		return xs
	}
	sum.MeanConnected = stat.Mean(column(func(s Sample) float64 { return float64(s.Connected) }), nil)
	sum.MeanDisconnected = stat.Mean(column(func(s Sample) float64 { return float64(s.Disconnected) }), nil)
	sum.MeanCoverageRatio = stat.Mean(column(func(s Sample) float64 { return s.CoverageRatio }), nil)
	sum.MeanBlockRatio = stat.Mean(column(func(s Sample) float64 { return s.BlockRatio }), nil)
	sum.MeanHandoverRatio = stat.Mean(column(func(s Sample) float64 { return s.HandoverRatio }), nil)
	sum.MeanUsedBandwidth, sum.StdUsedBandwidth = stat.MeanStdDev(column(func(s Sample) float64 { return s.UsedBandwidth }), nil)
	if len(window) == 1 {
		sum.StdUsedBandwidth = 0
	}

	first := window[0]
	sum.MeanSliceClients = make([]float64, len(first.SliceClients))
	for j := range sum.MeanSliceClients {
		sum.MeanSliceClients[j] = stat.Mean(column(func(s Sample) float64 { return float64(s.SliceClients[j]) }), nil)
	}
	sum.MeanUtilization = make([][]float64, len(first.Utilization))
	for i, row := range first.Utilization {
		sum.MeanUtilization[i] = make([]float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				sum.MeanUtilization[i][j] = math.NaN()
				continue
			}
			sum.MeanUtilization[i][j] = stat.Mean(column(func(s Sample) float64 { return s.Utilization[i][j] }), nil)
		}
	}
	return sum
}

// Report renders the summary as log lines. stations and slices label the
// utilization matrix.
func (s Summary) Report(stations, slices []string) []string {
	lines := []string{
		fmt.Sprintf("Statistics over [%.2f, %.2f] (%d samples):", s.From, s.To, s.Samples),
		fmt.Sprintf("\tAvg connected clients: %10.2f", s.MeanConnected),
		fmt.Sprintf("\tAvg unconnected clients: %8.2f", s.MeanDisconnected),
		fmt.Sprintf("\tAvg coverage ratio: %13.4f", s.MeanCoverageRatio),
		fmt.Sprintf("\tAvg block ratio: %16.4f", s.MeanBlockRatio),
		fmt.Sprintf("\tAvg handover ratio: %13.4f", s.MeanHandoverRatio),
		fmt.Sprintf("\tAvg used bandwidth: %13.2f (stddev %.2f)", s.MeanUsedBandwidth, s.StdUsedBandwidth),
	}
	for j, v := range s.MeanSliceClients {
		lines = append(lines, fmt.Sprintf("\tAvg clients on %s: %.2f", label(slices, j), v))
	}
	for i, row := range s.MeanUtilization {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\t%s utilization:", label(stations, i))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			fmt.Fprintf(&sb, " %s=%.4f", label(slices, j), v)
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func label(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("#%d", i)
}
