package sim

// Process is a suspended simulation activity. The scheduler calls Resume
// when the process' wake-up time is reached; the process then runs until
// its next suspension point, which it expresses by scheduling another
// continuation (a timer) or by parking on a Container.
type Process interface {
	Resume(s *Simulator)
}

// ProcessFunc adapts a plain function to the Process interface.
type ProcessFunc func(s *Simulator)

// Resume calls f(s).
func (f ProcessFunc) Resume(s *Simulator) {
	f(s)
}

// event is a pending resumption held by the event heap.
type event struct {
	at   float64 // virtual wake-up time
	seq  uint64  // insertion order, breaks timestamp ties
	proc Process
}

// eventHeap implements heap.Interface and orders events by (at, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []event

func (h eventHeap) Len() int { return len(h) }

// Less orders by wake time, then FIFO by insertion sequence.
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = event{}
	*h = old[0 : n-1]
	return item
}
