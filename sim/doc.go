// Package sim provides the discrete-event simulation kernel for slice-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Process (a suspended activity) and the event heap ordering
//   - simulator.go: the virtual clock, Schedule and the Run loop
//   - container.go: the slice resource pool with blocking FIFO admission
//
// # Architecture
//
// The kernel knows nothing about radio networks; the domain lives in
// sub-packages:
//   - sim/distribution/: random variate families and weighted selection
//   - sim/geo/: coordinates, coverage areas and the k-d tree index
//   - sim/cellular/: base stations, slices and the client state machine
//   - sim/stats/: periodic sampling, warm-window aggregates, export
//   - sim/trace/: decision trace recording
//   - sim/scenario/: YAML configuration and network construction
//
// # Concurrency model
//
// Everything runs on one goroutine. A process runs until it reaches a
// suspension point, and there are exactly two kinds: a timer
// (Simulator.Schedule) and a blocking Container.Acquire. Resumptions due at
// the same virtual time run in the order they were scheduled, so a run is
// fully determined by its seed (see PartitionedRNG).
package sim
