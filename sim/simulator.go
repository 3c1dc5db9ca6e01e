// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Simulator is the discrete-event kernel: it holds the virtual clock and the
// queue of pending process resumptions.
//
// The model is cooperative and single-threaded. Exactly one process runs
// between suspension points, so processes never need locks to share state.
// A Simulator must not be used from more than one goroutine.
type Simulator struct {
	clock   float64
	horizon float64
	queue   eventHeap
	seq     uint64
	// Steps counts resumptions executed so far.
	Steps int64
}

// NewSimulator creates a simulator whose clock starts at zero. horizon is
// informational (processes may consult it); Run takes the actual bound.
func NewSimulator(horizon float64) *Simulator {
	return &Simulator{
		horizon: horizon,
		queue:   make(eventHeap, 0),
	}
}

// Clock returns the current virtual time.
func (s *Simulator) Clock() float64 {
	return s.clock
}

// Horizon returns the configured simulation horizon.
func (s *Simulator) Horizon() float64 {
	return s.horizon
}

// Pending returns the number of queued resumptions.
func (s *Simulator) Pending() int {
	return len(s.queue)
}

// Schedule enqueues p to resume delay time units after the current clock.
// Resumptions due at the same instant run in the order they were scheduled.
func (s *Simulator) Schedule(delay float64, p Process) error {
	if delay < 0 || math.IsNaN(delay) {
		return fmt.Errorf("schedule at %.4f with delay %v: %w", s.clock, delay, ErrInvalidDelay)
	}
	if p == nil {
		panic("Schedule: process must not be nil")
	}
	heap.Push(&s.queue, event{at: s.clock + delay, seq: s.seq, proc: p})
	s.seq++
	return nil
}

// ScheduleFunc is Schedule for a plain function.
func (s *Simulator) ScheduleFunc(delay float64, fn func(*Simulator)) error {
	return s.Schedule(delay, ProcessFunc(fn))
}

// Step resumes the earliest pending process. Returns false if the queue
// is empty.
func (s *Simulator) Step() bool {
	if len(s.queue) == 0 {
		return false
	}
	ev := heap.Pop(&s.queue).(event)
	s.clock = ev.at
	s.Steps++
	logrus.Tracef("[t %10.4f] resuming %T", s.clock, ev.proc)
	ev.proc.Resume(s)
	return true
}

// Run resumes processes in (time, insertion) order until the queue is empty
// or the next resumption is due at or after until. When stopped by the
// bound the clock is advanced to until; resumptions still queued are
// abandoned in place.
func (s *Simulator) Run(until float64) {
	for len(s.queue) > 0 {
		if s.queue[0].at >= until {
			break
		}
		s.Step()
	}
	if s.clock < until && !math.IsInf(until, 1) {
		s.clock = until
	}
	logrus.Debugf("[t %10.4f] simulation stopped after %d steps, %d pending", s.clock, s.Steps, len(s.queue))
}
