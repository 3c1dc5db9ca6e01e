package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSeries(c *Collector, used []float64) {
	for i, u := range used {
		c.Record(float64(i), Observation{
			Utilization:   [][]float64{{u / 10, math.NaN()}},
			Connected:     i,
			Disconnected:  10 - i,
			UsedBandwidth: u,
			SliceClients:  []int{i, 1},
		})
	}
}

func TestSummarize_WarmWindowMeans(t *testing.T) {
	// GIVEN samples at t=0..4 with used bandwidth 0, 2, 4, 6, 8
	c := NewCollector(nil, 1, rectAll())
	recordSeries(c, []float64{0, 2, 4, 6, 8})

	// WHEN summarizing the window [1, 3]
	sum := c.Summarize(1, 3)

	// THEN only the three inner samples count
	assert.Equal(t, 3, sum.Samples)
	assert.InDelta(t, 4, sum.MeanUsedBandwidth, 1e-12)
	assert.InDelta(t, 2, sum.StdUsedBandwidth, 1e-12)
	assert.InDelta(t, 2, sum.MeanConnected, 1e-12)
	assert.InDelta(t, 8, sum.MeanDisconnected, 1e-12)
	require.Len(t, sum.MeanSliceClients, 2)
	assert.InDelta(t, 2, sum.MeanSliceClients[0], 1e-12)
	assert.InDelta(t, 1, sum.MeanSliceClients[1], 1e-12)
	assert.InDelta(t, 0.4, sum.MeanUtilization[0][0], 1e-12)
	assert.True(t, math.IsNaN(sum.MeanUtilization[0][1]), "absent slice stays NaN")
}

func TestSummarize_EmptyWindow(t *testing.T) {
	c := NewCollector(nil, 1, rectAll())
	recordSeries(c, []float64{1, 2})

	sum := c.Summarize(50, 60)

	assert.Equal(t, 0, sum.Samples)
	assert.Zero(t, sum.MeanUsedBandwidth)
	assert.Nil(t, sum.MeanUtilization)
}

func TestSummarize_SingleSample_ZeroStdDev(t *testing.T) {
	c := NewCollector(nil, 1, rectAll())
	recordSeries(c, []float64{3})

	sum := c.Summarize(0, 0)

	assert.Equal(t, 1, sum.Samples)
	assert.Zero(t, sum.StdUsedBandwidth)
}

func TestSummary_Report_LabelsSlicesAndSkipsAbsent(t *testing.T) {
	c := NewCollector(nil, 1, rectAll())
	recordSeries(c, []float64{5, 5})

	lines := c.Summarize(0, 1).Report([]string{"BS_0"}, []string{"x_eMBB"})

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Avg clients on x_eMBB")
	assert.Contains(t, joined, "BS_0 utilization: x_eMBB=0.5000")
	assert.Contains(t, joined, "Avg clients on #1")
	assert.NotContains(t, joined, "#1=")
}
