package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated      uint64
	UsersUpdated      uint64
	UsersDeleted      uint64
	MetricsCreated    uint64
	MetricsUpdated    uint64
	MetricsDeleted    uint64
	SummariesComputed uint64
}

// InMemoryRecorder stores counters in memory.
type InMemoryRecorder struct {
	usersCreated      uint64
	usersUpdated      uint64
	usersDeleted      uint64
	metricsCreated    uint64
	metricsUpdated    uint64
	metricsDeleted    uint64
	summariesComputed uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:      atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:      atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:      atomic.LoadUint64(&m.usersDeleted),
		MetricsCreated:    atomic.LoadUint64(&m.metricsCreated),
		MetricsUpdated:    atomic.LoadUint64(&m.metricsUpdated),
		MetricsDeleted:    atomic.LoadUint64(&m.metricsDeleted),
		SummariesComputed: atomic.LoadUint64(&m.summariesComputed),
	}
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncMetricCreated increments the metric created counter.
func (m *InMemoryRecorder) IncMetricCreated() {
	atomic.AddUint64(&m.metricsCreated, 1)
}

// IncMetricUpdated increments the metric updated counter.
func (m *InMemoryRecorder) IncMetricUpdated() {
	atomic.AddUint64(&m.metricsUpdated, 1)
}

// IncMetricDeleted increments the metric deleted counter.
func (m *InMemoryRecorder) IncMetricDeleted() {
	atomic.AddUint64(&m.metricsDeleted, 1)
}

// IncSummaryComputed increments the summary computed counter.
func (m *InMemoryRecorder) IncSummaryComputed() {
	atomic.AddUint64(&m.summariesComputed, 1)
}
