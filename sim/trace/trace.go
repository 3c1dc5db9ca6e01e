package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every bind, handover and queued acquire.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a simulation.
type SimulationTrace struct {
	Config    TraceConfig
	Binds     []BindRecord
	Handovers []HandoverRecord
	Queued    []QueueRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Binds:     make([]BindRecord, 0),
		Handovers: make([]HandoverRecord, 0),
		Queued:    make([]QueueRecord, 0),
	}
}

// RecordBind appends a bind admission decision.
func (st *SimulationTrace) RecordBind(record BindRecord) {
	st.Binds = append(st.Binds, record)
}

// RecordHandover appends a handover.
func (st *SimulationTrace) RecordHandover(record HandoverRecord) {
	st.Handovers = append(st.Handovers, record)
}

// RecordQueued appends an acquire that had to wait for capacity.
func (st *SimulationTrace) RecordQueued(record QueueRecord) {
	st.Queued = append(st.Queued, record)
}
