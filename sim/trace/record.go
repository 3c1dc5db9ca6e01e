// Package trace provides decision-trace recording for post-run analysis of
// admission and mobility behavior.
// This package has no dependencies on sim/ or its other sub-packages; it stores pure data types.
package trace

// BindRecord captures one attempt to bind a client to a station's slice.
type BindRecord struct {
	ClientID  int
	Clock     float64
	StationID int
	Slice     string
	Admitted  bool
	Reason    string
}

// HandoverRecord captures a client moving its binding between stations.
type HandoverRecord struct {
	ClientID int
	Clock    float64
	From     int
	To       int
	// Interrupted is true when bandwidth was held or queued at From.
	Interrupted bool
}

// QueueRecord captures an acquire that parked before being granted.
// Waited is the virtual time spent parked.
type QueueRecord struct {
	ClientID  int
	Clock     float64
	StationID int
	Slice     string
	Amount    float64
	Waited    float64
}
