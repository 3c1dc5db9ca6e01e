package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// levelEpsilon absorbs floating-point drift when comparing the allocated
// level against capacity or zero.
const levelEpsilon = 1e-9

// Container is a renewable quantity with a fixed capacity ceiling: one
// slice's bandwidth at one base station. Processes Acquire part of it,
// hold it, and Release it.
//
// Admission is head-of-line FIFO: a request is granted immediately only if
// it fits and nobody is already waiting; otherwise it parks behind earlier
// requests and is granted, in arrival order, as releases free capacity. A
// parked request waits indefinitely. There is no timeout; the only way out
// of the queue other than a grant is an explicit Cancel by the owner.
//
// Invariant: 0 <= Level() <= Capacity().
type Container struct {
	name     string
	capacity float64
	level    float64
	waiters  WaitQueue

	// Granted counts acquire requests that obtained capacity.
	Granted int64
	// Queued counts acquire requests that had to park.
	Queued int64
}

// NewContainer creates an empty container. Panics if capacity is negative
// or not finite.
func NewContainer(name string, capacity float64) *Container {
	if capacity < 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		panic(fmt.Sprintf("NewContainer(%s): capacity must be finite and >= 0, got %v", name, capacity))
	}
	return &Container{name: name, capacity: capacity}
}

// Name returns the container's label.
func (c *Container) Name() string { return c.name }

// Capacity returns the fixed ceiling.
func (c *Container) Capacity() float64 { return c.capacity }

// Level returns the currently allocated quantity.
func (c *Container) Level() float64 { return c.level }

// Available returns Capacity() - Level().
func (c *Container) Available() float64 { return c.capacity - c.level }

// Waiting returns the number of parked requests.
func (c *Container) Waiting() int { return c.waiters.Len() }

// Utilization returns Level()/Capacity(), or 0 for a zero-capacity container.
func (c *Container) Utilization() float64 {
	if c.capacity == 0 {
		return 0
	}
	return c.level / c.capacity
}

func (c *Container) fits(amount float64) bool {
	return c.level+amount <= c.capacity+levelEpsilon
}

func (c *Container) take(amount float64) {
	c.level = math.Min(c.level+amount, c.capacity)
	c.Granted++
}

// Acquire requests amount units for the calling process. then is the
// continuation that runs once the request is granted.
//
// If the request is granted immediately, then runs inline before Acquire
// returns and the returned waiter is nil. Otherwise the request parks, the
// returned waiter identifies it, and then is scheduled (zero delay) by the
// Release that grants it.
//
// amount must be positive and no larger than Capacity(). A larger request
// is rejected with ErrInvalidAmount rather than parked: it could never be
// granted, and as head of the queue it would block every request behind
// it forever. Apart from this, a request that does not fit always parks.
func (c *Container) Acquire(s *Simulator, amount float64, then Process) (*Waiter, error) {
	if amount <= 0 || math.IsNaN(amount) {
		return nil, fmt.Errorf("acquire %v from %s: %w", amount, c.name, ErrInvalidAmount)
	}
	if amount > c.capacity+levelEpsilon {
		return nil, fmt.Errorf("acquire %v from %s above capacity %v: %w", amount, c.name, c.capacity, ErrInvalidAmount)
	}
	if then == nil {
		panic("Acquire: continuation must not be nil")
	}
	if c.waiters.Len() == 0 && c.fits(amount) {
		c.take(amount)
		logrus.Tracef("[t %10.4f] %s: granted %.3f (level %.3f/%.3f)", s.Clock(), c.name, amount, c.level, c.capacity)
		then.Resume(s)
		return nil, nil
	}
	w := &Waiter{Amount: amount, Since: s.Clock(), then: then}
	c.waiters.Enqueue(w)
	c.Queued++
	logrus.Tracef("[t %10.4f] %s: parked %.3f behind %d (level %.3f/%.3f)", s.Clock(), c.name, amount, c.waiters.Len()-1, c.level, c.capacity)
	return w, nil
}

// Release returns amount units and then grants parked requests, oldest
// first, for as long as the oldest one fits.
func (c *Container) Release(s *Simulator, amount float64) error {
	if amount <= 0 || math.IsNaN(amount) {
		return fmt.Errorf("release %v to %s: %w", amount, c.name, ErrInvalidAmount)
	}
	if c.level-amount < -levelEpsilon {
		return fmt.Errorf("release %v to %s with level %v: %w", amount, c.name, c.level, ErrOverRelease)
	}
	c.level = math.Max(c.level-amount, 0)
	c.grant(s)
	return nil
}

// Cancel withdraws a parked request. Returns false if w was already granted
// or cancelled. Removing a blocked head may let the requests behind it in.
func (c *Container) Cancel(s *Simulator, w *Waiter) bool {
	if w == nil || !c.waiters.Remove(w) {
		return false
	}
	c.grant(s)
	return true
}

func (c *Container) grant(s *Simulator) {
	for {
		head := c.waiters.Peek()
		if head == nil || !c.fits(head.Amount) {
			return
		}
		c.waiters.Dequeue()
		c.take(head.Amount)
		logrus.Tracef("[t %10.4f] %s: granted parked %.3f after %.3f (level %.3f/%.3f)",
			s.Clock(), c.name, head.Amount, s.Clock()-head.Since, c.level, c.capacity)
		if err := s.Schedule(0, head.then); err != nil {
			panic(err)
		}
	}
}
