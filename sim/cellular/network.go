package cellular

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
	"github.com/slice-sim/slice-sim/sim/stats"
	"github.com/slice-sim/slice-sim/sim/trace"
)

// Network owns the station and client arenas and the spatial index over
// the stations. Stations[i].ID == i.
type Network struct {
	Stations []*BaseStation
	Clients  []*Client
	Profiles []*SliceProfile
	Index    *geo.Index
	// K bounds each spatial query to the K nearest stations.
	K int
	// Tick is the mobility period and the fallback delay.
	Tick float64
	// HoldTime samples how long a granted request is held. Nil holds for
	// one tick.
	HoldTime *distribution.Distributor
	// Trace is nil when decision tracing is off.
	Trace *trace.SimulationTrace

	// Cumulative counters.
	ConnectAttempts int64
	Blocked         int64
	Handovers       int64
}

// NewNetwork indexes the stations. Panics if station IDs do not match
// their arena positions.
func NewNetwork(profiles []*SliceProfile, stations []*BaseStation, clients []*Client, k int, tick float64) *Network {
	sites := make([]geo.Site, len(stations))
	for i, bs := range stations {
		if bs.ID != i {
			panic(fmt.Sprintf("NewNetwork: station at position %d has ID %d", i, bs.ID))
		}
		sites[i] = bs.Site()
	}
	if tick <= 0 {
		tick = 1
	}
	return &Network{
		Stations: stations,
		Clients:  clients,
		Profiles: profiles,
		Index:    geo.NewIndex(sites),
		K:        k,
		Tick:     tick,
	}
}

// Start binds every client that is covered at t=0 and launches the client
// processes, in client order.
func (n *Network) Start(s *sim.Simulator) {
	for _, c := range n.Clients {
		c.start(n, s)
	}
	logrus.Infof("Network started: %d base stations, %d clients, %d slices", len(n.Stations), len(n.Clients), len(n.Profiles))
}

// Finish accrues every client's counters up to the current clock. Holds
// still in progress count toward consume time but not usage.
func (n *Network) Finish(s *sim.Simulator) {
	now := s.Clock()
	for _, c := range n.Clients {
		c.accrue(now)
		if c.held > 0 {
			c.ConsumeTime += now - c.heldSince
			c.heldSince = now
		}
	}
}

// connect binds c to the first station, in nearest-first order among the K
// nearest covering stations, that offers c's slice and admits another
// client. Every station offering the slice that is tried counts as an
// attempt; a refusal counts as blocked.
func (n *Network) connect(c *Client, s *sim.Simulator) bool {
	for _, id := range n.Index.Nearest(c.Location, n.K) {
		sl := n.Stations[id].Slices[c.Slice]
		if sl == nil {
			continue
		}
		n.ConnectAttempts++
		admitted := sl.Admits()
		if n.Trace != nil {
			rec := trace.BindRecord{
				ClientID:  c.ID,
				Clock:     s.Clock(),
				StationID: id,
				Slice:     sl.Profile.Name,
				Admitted:  admitted,
				Reason:    "guaranteed bandwidth available",
			}
			if !admitted {
				rec.Reason = fmt.Sprintf("guaranteed bandwidth %.2f exhausted by %d clients", sl.Profile.BandwidthGuaranteed, sl.Bound)
			}
			n.Trace.RecordBind(rec)
		}
		if !admitted {
			n.Blocked++
			c.Blocked++
			logrus.Tracef("[t %10.4f] client %d: blocked at BS_%d/%s", s.Clock(), c.ID, id, sl.Profile.Name)
			continue
		}
		c.accrue(s.Clock())
		sl.Bound++
		c.Station = id
		logrus.Tracef("[t %10.4f] client %d: bound to BS_%d/%s", s.Clock(), c.ID, id, sl.Profile.Name)
		return true
	}
	return false
}

func (n *Network) unbind(c *Client, s *sim.Simulator) {
	if c.Station < 0 {
		return
	}
	c.accrue(s.Clock())
	n.slice(c).Bound--
	c.Station = -1
}

func (n *Network) slice(c *Client) *Slice {
	return n.Stations[c.Station].Slices[c.Slice]
}

func (n *Network) holdTime() float64 {
	if n.HoldTime == nil {
		return n.Tick
	}
	if h := n.HoldTime.Generate(); h > 0 {
		return h
	}
	return n.Tick
}

// Observe reports the network's instantaneous state for the statistics
// collector. Coverage is computed over clients inside area.
func (n *Network) Observe(area geo.Rect) stats.Observation {
	obs := stats.Observation{
		Utilization:     make([][]float64, len(n.Stations)),
		SliceClients:    make([]int, len(n.Profiles)),
		ConnectAttempts: n.ConnectAttempts,
		Blocked:         n.Blocked,
		Handovers:       n.Handovers,
	}
	for i, bs := range n.Stations {
		row := make([]float64, len(bs.Slices))
		for j, sl := range bs.Slices {
			if sl == nil {
				row[j] = math.NaN()
				continue
			}
			row[j] = sl.Pool.Utilization()
			obs.UsedBandwidth += sl.Pool.Level()
		}
		obs.Utilization[i] = row
	}
	for _, c := range n.Clients {
		if c.Station >= 0 {
			obs.Connected++
			obs.SliceClients[c.Slice]++
		} else {
			obs.Disconnected++
		}
		if area.Contains(c.Location) {
			obs.InArea++
			if c.Station >= 0 && n.Stations[c.Station].Coverage.Contains(c.Location) {
				obs.CoveredInArea++
			}
		}
	}
	return obs
}

// StationLabels names the stations in arena order.
func (n *Network) StationLabels() []string {
	out := make([]string, len(n.Stations))
	for i, bs := range n.Stations {
		out[i] = fmt.Sprintf("BS_%d", bs.ID)
	}
	return out
}

// SliceNames returns the profile names in profile-index order.
func (n *Network) SliceNames() []string {
	out := make([]string, len(n.Profiles))
	for i, p := range n.Profiles {
		out[i] = p.Name
	}
	return out
}
