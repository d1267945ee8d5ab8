package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserUpdated is a no-op.
func (n *NoopRecorder) IncUserUpdated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncMetricCreated is a no-op.
func (n *NoopRecorder) IncMetricCreated() {}

// IncMetricUpdated is a no-op.
func (n *NoopRecorder) IncMetricUpdated() {}

// IncMetricDeleted is a no-op.
func (n *NoopRecorder) IncMetricDeleted() {}

// IncSummaryComputed is a no-op.
func (n *NoopRecorder) IncSummaryComputed() {}
