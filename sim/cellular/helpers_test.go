package cellular

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// fixed returns a distributor that always yields v.
func fixed(t *testing.T, v float64) *distribution.Distributor {
	t.Helper()
	d, err := distribution.New("fixed", distribution.Spec{Distribution: "triangular", Params: []float64{v, v}}, testRNG())
	require.NoError(t, err)
	return d
}

func profile(t *testing.T, name string, usage float64) *SliceProfile {
	t.Helper()
	return &SliceProfile{Name: name, ClientWeight: 1, Usage: fixed(t, usage)}
}

func station(t *testing.T, id int, x, y, radius, capacity float64, profiles []*SliceProfile, ratios map[string]float64) *BaseStation {
	t.Helper()
	area, err := geo.NewCoverageArea(geo.Coordinate{X: x, Y: y}, radius)
	require.NoError(t, err)
	bs, err := NewBaseStation(id, area, capacity, profiles, ratios)
	require.NoError(t, err)
	return bs
}

// client builds a client moving by (step, step) every tick and waiting
// freq between requests.
func client(t *testing.T, id int, x, y, step, freq float64) *Client {
	t.Helper()
	return NewClient(id, geo.Coordinate{X: x, Y: y}, fixed(t, step), fixed(t, freq), 0)
}
