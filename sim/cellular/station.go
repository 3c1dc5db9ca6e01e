package cellular

import (
	"fmt"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
)

// SliceProfile is the network-wide definition of a named slice. Every base
// station offering the slice shares the profile and its usage distributor.
type SliceProfile struct {
	Name                string
	ClientWeight        float64
	DelayTolerance      float64
	QoSClass            int
	BandwidthGuaranteed float64
	BandwidthMax        float64
	Usage               *distribution.Distributor
}

// Slice is one profile's share of one base station's capacity.
type Slice struct {
	Profile *SliceProfile
	Ratio   float64
	Pool    *sim.Container
	// Bound counts clients currently bound to this slice, consuming or not.
	Bound int
}

// Capacity returns the slice's fixed bandwidth ceiling.
func (sl *Slice) Capacity() float64 {
	return sl.Pool.Capacity()
}

// Admits reports whether one more client can be bound while every bound
// client is still owed its guaranteed bandwidth. The usable share is the
// slice capacity, capped at the profile's bandwidth_max when that is set.
func (sl *Slice) Admits() bool {
	g := sl.Profile.BandwidthGuaranteed
	if g <= 0 {
		return true
	}
	share := sl.Pool.Capacity()
	if m := sl.Profile.BandwidthMax; m > 0 && m < share {
		share = m
	}
	return share/float64(sl.Bound+1) >= g
}

// RequestCap returns the largest request the slice will serve in one
// acquire: bandwidth_max when set, never more than capacity.
func (sl *Slice) RequestCap() float64 {
	c := sl.Pool.Capacity()
	if m := sl.Profile.BandwidthMax; m > 0 && m < c {
		return m
	}
	return c
}

// BaseStation owns a coverage area and a fixed partition of its capacity
// into slices. Slices is indexed by profile index; a nil entry means the
// station does not offer that slice.
type BaseStation struct {
	ID       int
	Coverage geo.CoverageArea
	Capacity float64
	Slices   []*Slice
}

// NewBaseStation partitions capacity by ratios (profile name to fraction).
// Profiles without a ratio are not offered. Returns an error if a ratio is
// outside (0, 1], names an unknown slice, or the ratios sum above 1.
func NewBaseStation(id int, coverage geo.CoverageArea, capacity float64, profiles []*SliceProfile, ratios map[string]float64) (*BaseStation, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("base station %d: capacity must be >= 0, got %v", id, capacity)
	}
	known := make(map[string]int, len(profiles))
	for i, p := range profiles {
		known[p.Name] = i
	}
	for name := range ratios {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("base station %d: ratio for unknown slice %q", id, name)
		}
	}
	bs := &BaseStation{
		ID:       id,
		Coverage: coverage,
		Capacity: capacity,
		Slices:   make([]*Slice, len(profiles)),
	}
	total := 0.0
	for i, p := range profiles {
		r, ok := ratios[p.Name]
		if !ok {
			continue
		}
		if r <= 0 || r > 1 {
			return nil, fmt.Errorf("base station %d: ratio for slice %q must be in (0, 1], got %v", id, p.Name, r)
		}
		total += r
		bs.Slices[i] = &Slice{
			Profile: p,
			Ratio:   r,
			Pool:    sim.NewContainer(fmt.Sprintf("bs%d/%s", id, p.Name), capacity*r),
		}
	}
	if total > 1+1e-9 {
		return nil, fmt.Errorf("base station %d: slice ratios sum to %v, above 1", id, total)
	}
	return bs, nil
}

// SliceByName returns the named slice, or nil if the station does not
// offer it.
func (bs *BaseStation) SliceByName(name string) *Slice {
	for _, sl := range bs.Slices {
		if sl != nil && sl.Profile.Name == name {
			return sl
		}
	}
	return nil
}

// Site returns the station's entry for the spatial index.
func (bs *BaseStation) Site() geo.Site {
	return geo.Site{ID: bs.ID, Area: bs.Coverage}
}

func (bs *BaseStation) String() string {
	return fmt.Sprintf("BS_%d%v r=%.1f", bs.ID, bs.Coverage.Center, bs.Coverage.Radius)
}
