package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	BindAttempts        int
	AdmittedCount       int
	RejectedCount       int
	Handovers           int
	InterruptedHandover int
	QueuedAcquires      int
	MeanQueueWait       float64
	MaxQueueWait        float64
	StationDistribution map[int]int // station ID → count of admitted binds
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StationDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.BindAttempts = len(st.Binds)
	for _, b := range st.Binds {
		if b.Admitted {
			summary.AdmittedCount++
			summary.StationDistribution[b.StationID]++
		} else {
			summary.RejectedCount++
		}
	}

	summary.Handovers = len(st.Handovers)
	for _, h := range st.Handovers {
		if h.Interrupted {
			summary.InterruptedHandover++
		}
	}

	if len(st.Queued) > 0 {
		total := 0.0
		for _, q := range st.Queued {
			total += q.Waited
			if q.Waited > summary.MaxQueueWait {
				summary.MaxQueueWait = q.Waited
			}
		}
		summary.QueuedAcquires = len(st.Queued)
		summary.MeanQueueWait = total / float64(len(st.Queued))
	}

	return summary
}
