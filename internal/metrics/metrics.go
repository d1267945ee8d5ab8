// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures operation counts for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User record operations
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Metric record operations
	IncMetricCreated()
	IncMetricUpdated()
	IncMetricDeleted()

	// Aggregation
	IncSummaryComputed()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
