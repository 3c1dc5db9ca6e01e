package cellular

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim"
	"github.com/slice-sim/slice-sim/sim/distribution"
	"github.com/slice-sim/slice-sim/sim/geo"
	"github.com/slice-sim/slice-sim/sim/trace"
)

// State is a client's connection state.
type State int

const (
	// Disconnected: not bound to any base station.
	Disconnected State = iota
	// Connected: bound, not holding bandwidth.
	Connected
	// Consuming: bound and holding bandwidth from the bound slice.
	Consuming
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Consuming:
		return "consuming"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Client is a simulated mobile user. It runs two processes on the
// simulator: a mobility process that moves it every tick and re-evaluates
// its binding, and a usage process that issues bandwidth requests against
// the bound slice.
//
// The client refers to its station and slice by index into the Network's
// arenas. gen is bumped whenever a binding change interrupts an active
// request or hold; continuations captured under an older gen are stale and
// do nothing except hand back bandwidth granted to them.
type Client struct {
	ID             int
	Location       geo.Coordinate
	Mobility       *distribution.Distributor
	UsageFrequency *distribution.Distributor
	// Slice is the affinity slice's profile index, fixed for the run.
	Slice int
	// Station is the bound base station ID, or -1.
	Station int

	gen       uint64
	since     float64 // last connected/unconnected accrual
	held      float64
	heldSince float64
	acquiring bool
	waiter    *sim.Waiter

	ConnectedTime   float64
	UnconnectedTime float64
	RequestCount    int
	ConsumeTime     float64
	TotalUsage      float64
	Handovers       int
	Blocked         int
}

// NewClient creates a disconnected client.
func NewClient(id int, loc geo.Coordinate, mobility, usageFrequency *distribution.Distributor, slice int) *Client {
	return &Client{
		ID:             id,
		Location:       loc,
		Mobility:       mobility,
		UsageFrequency: usageFrequency,
		Slice:          slice,
		Station:        -1,
	}
}

// State derives the connection state from the binding and held bandwidth.
func (c *Client) State() State {
	switch {
	case c.Station < 0:
		return Disconnected
	case c.held > 0:
		return Consuming
	default:
		return Connected
	}
}

// Held returns the bandwidth the client currently holds.
func (c *Client) Held() float64 {
	return c.held
}

// Waiting reports whether the client is parked on a slice's wait queue.
func (c *Client) Waiting() bool {
	return c.waiter != nil && c.waiter.Queued()
}

func (c *Client) String() string {
	return fmt.Sprintf("Client_%d%v %s", c.ID, c.Location, c.State())
}

// accrue charges the time since the last accrual to connected or
// unconnected time according to the current binding.
func (c *Client) accrue(now float64) {
	if c.Station >= 0 {
		c.ConnectedTime += now - c.since
	} else {
		c.UnconnectedTime += now - c.since
	}
	c.since = now
}

// start binds the client (if anything covers it) and launches both
// processes. Called once at t=0.
func (c *Client) start(n *Network, s *sim.Simulator) {
	c.since = s.Clock()
	n.connect(c, s)
	c.scheduleRequest(n, s)
	mustSchedule(s.ScheduleFunc(n.Tick, func(s *sim.Simulator) { c.move(n, s) }))
}

// move is the mobility process: one displacement per tick, then a binding
// re-evaluation.
func (c *Client) move(n *Network, s *sim.Simulator) {
	dx, dy := c.Mobility.GenerateScaled(), c.Mobility.GenerateScaled()
	c.Location = c.Location.Add(dx, dy)
	c.evaluate(n, s)
	mustSchedule(s.ScheduleFunc(n.Tick, func(s *sim.Simulator) { c.move(n, s) }))
}

// evaluate keeps the binding valid for the current location. A bound
// client that left its station's coverage is handed over to the nearest
// admitting station covering it, or disconnected when there is none. A
// disconnected client tries to connect.
func (c *Client) evaluate(n *Network, s *sim.Simulator) {
	if c.Station < 0 {
		n.connect(c, s)
		return
	}
	bs := n.Stations[c.Station]
	if bs.Coverage.Contains(c.Location) {
		return
	}
	from := c.Station
	interrupted := c.interrupt(n, s)
	n.unbind(c, s)
	if n.connect(c, s) {
		c.Handovers++
		n.Handovers++
		logrus.Debugf("[t %10.4f] client %d: handover BS_%d -> BS_%d", s.Clock(), c.ID, from, c.Station)
		if n.Trace != nil {
			n.Trace.RecordHandover(trace.HandoverRecord{
				ClientID:    c.ID,
				Clock:       s.Clock(),
				From:        from,
				To:          c.Station,
				Interrupted: interrupted,
			})
		}
	} else {
		logrus.Debugf("[t %10.4f] client %d: left coverage of BS_%d, disconnected", s.Clock(), c.ID, from)
	}
	if interrupted {
		c.scheduleRequest(n, s)
	}
}

// interrupt abandons the client's in-flight request or hold on its current
// slice: held bandwidth is released (consume time accrues, usage does not),
// a parked request is withdrawn, and pending continuations go stale.
// Returns false if there was nothing to interrupt.
func (c *Client) interrupt(n *Network, s *sim.Simulator) bool {
	if c.held <= 0 && !c.acquiring {
		return false
	}
	pool := n.slice(c).Pool
	if c.held > 0 {
		c.ConsumeTime += s.Clock() - c.heldSince
		mustRelease(pool.Release(s, c.held))
		c.held = 0
	}
	if c.waiter != nil {
		pool.Cancel(s, c.waiter)
		c.waiter = nil
	}
	c.acquiring = false
	c.gen++
	return true
}

// scheduleRequest waits one inter-arrival delay and then issues the next
// request. A non-positive delay waits one tick.
func (c *Client) scheduleRequest(n *Network, s *sim.Simulator) {
	delay := c.UsageFrequency.GenerateScaled()
	if !(delay > 0) {
		delay = n.Tick
	}
	gen := c.gen
	mustSchedule(s.ScheduleFunc(delay, func(s *sim.Simulator) {
		if c.gen != gen {
			return
		}
		c.request(n, s)
	}))
}

// request samples a request size from the slice's usage pattern and
// acquires it, possibly parking until capacity frees.
func (c *Client) request(n *Network, s *sim.Simulator) {
	if c.Station < 0 {
		c.scheduleRequest(n, s)
		return
	}
	sl := n.slice(c)
	amount := sl.Profile.Usage.Generate()
	if limit := sl.RequestCap(); amount > limit {
		amount = limit
	}
	if !(amount > 0) {
		c.scheduleRequest(n, s)
		return
	}
	c.RequestCount++
	c.acquiring = true
	gen := c.gen
	pool := sl.Pool
	station := c.Station
	w, err := pool.Acquire(s, amount, sim.ProcessFunc(func(s *sim.Simulator) {
		if c.gen != gen {
			// Granted after the client moved on.
			mustRelease(pool.Release(s, amount))
			return
		}
		c.consume(n, s, station, amount)
	}))
	if err != nil {
		panic(fmt.Sprintf("client %d: %v", c.ID, err))
	}
	if w != nil {
		c.waiter = w
	}
}

// consume runs once a request is granted and holds the bandwidth.
func (c *Client) consume(n *Network, s *sim.Simulator, station int, amount float64) {
	if c.waiter != nil {
		logrus.Tracef("[t %10.4f] client %d: granted %.3f after waiting %.3f", s.Clock(), c.ID, amount, s.Clock()-c.waiter.Since)
		if n.Trace != nil {
			n.Trace.RecordQueued(trace.QueueRecord{
				ClientID:  c.ID,
				Clock:     s.Clock(),
				StationID: station,
				Slice:     n.Profiles[c.Slice].Name,
				Amount:    amount,
				Waited:    s.Clock() - c.waiter.Since,
			})
		}
		c.waiter = nil
	}
	c.acquiring = false
	c.held = amount
	c.heldSince = s.Clock()
	gen := c.gen
	mustSchedule(s.ScheduleFunc(n.holdTime(), func(s *sim.Simulator) {
		if c.gen != gen {
			return
		}
		c.finish(n, s)
	}))
}

// finish releases a completed hold and schedules the next request.
func (c *Client) finish(n *Network, s *sim.Simulator) {
	amount := c.held
	c.held = 0
	c.TotalUsage += amount
	c.ConsumeTime += s.Clock() - c.heldSince
	mustRelease(n.slice(c).Pool.Release(s, amount))
	c.scheduleRequest(n, s)
}

// Summary returns the per-client report lines.
func (c *Client) Summary() []string {
	return []string{
		fmt.Sprintf("Client_%d totals:", c.ID),
		fmt.Sprintf("\tTotal connected time: %10.2f", c.ConnectedTime),
		fmt.Sprintf("\tTotal unconnected time: %8.2f", c.UnconnectedTime),
		fmt.Sprintf("\tTotal request count: %11d", c.RequestCount),
		fmt.Sprintf("\tTotal consume time: %12.2f", c.ConsumeTime),
		fmt.Sprintf("\tTotal usage: %19.2f", c.TotalUsage),
	}
}

// Kernel contract violations are bugs in this package, never runtime
// conditions.
func mustSchedule(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRelease(err error) {
	if err != nil {
		panic(err)
	}
}
