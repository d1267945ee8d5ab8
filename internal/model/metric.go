package model

import "time"

// MetricStatus represents the reported state of a device metric.
type MetricStatus string

const (
	MetricStatusActive      MetricStatus = "active"
	MetricStatusInactive    MetricStatus = "inactive"
	MetricStatusError       MetricStatus = "error"
	MetricStatusMaintenance MetricStatus = "maintenance"
)

// IsValid checks if the status is a known value.
func (s MetricStatus) IsValid() bool {
	switch s {
	case MetricStatusActive, MetricStatusInactive, MetricStatusError, MetricStatusMaintenance:
		return true
	}
	return false
}

// Metric represents a single device metric observation.
//
// Timestamp is the business timestamp the device index sorts on. It
// may differ from CreatedAt for backfilled data, though creation
// currently always sets both to the same instant.
type Metric struct {
	ID         string            `json:"metric_id"`
	DeviceID   string            `json:"device_id"`
	MetricName string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Status     MetricStatus      `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// StoredMetric is the metric representation persisted in the store.
// The timestamp string doubles as the device index sort key, so it
// must stay in the fixed TimestampLayout format.
type StoredMetric struct {
	ID         string            `dynamodbav:"metric_id"`
	DeviceID   string            `dynamodbav:"device_id"`
	MetricName string            `dynamodbav:"metric_name"`
	Value      float64           `dynamodbav:"value"`
	Unit       string            `dynamodbav:"unit"`
	Status     string            `dynamodbav:"status"`
	Metadata   map[string]string `dynamodbav:"metadata,omitempty"`
	Timestamp  string            `dynamodbav:"timestamp"`
	CreatedAt  string            `dynamodbav:"created_at"`
	UpdatedAt  string            `dynamodbav:"updated_at"`
}

// ToMetric converts the stored form back into the domain model.
func (s *StoredMetric) ToMetric() *Metric {
	metric := &Metric{
		ID:         s.ID,
		DeviceID:   s.DeviceID,
		MetricName: s.MetricName,
		Value:      s.Value,
		Unit:       s.Unit,
		Status:     MetricStatus(s.Status),
		Metadata:   s.Metadata,
	}
	if t, err := ParseTimestamp(s.Timestamp); err == nil {
		metric.Timestamp = t
	}
	if t, err := ParseTimestamp(s.CreatedAt); err == nil {
		metric.CreatedAt = t
	}
	if t, err := ParseTimestamp(s.UpdatedAt); err == nil {
		metric.UpdatedAt = t
	}
	return metric
}

// ToStoredMetric converts the domain model into its persisted form.
func (m *Metric) ToStoredMetric() *StoredMetric {
	return &StoredMetric{
		ID:         m.ID,
		DeviceID:   m.DeviceID,
		MetricName: m.MetricName,
		Value:      m.Value,
		Unit:       m.Unit,
		Status:     string(m.Status),
		Metadata:   m.Metadata,
		Timestamp:  FormatTimestamp(m.Timestamp),
		CreatedAt:  FormatTimestamp(m.CreatedAt),
		UpdatedAt:  FormatTimestamp(m.UpdatedAt),
	}
}

// MetricSummary is a per-device aggregate computed on demand.
// It is never persisted; every request recomputes it from the current
// record set.
type MetricSummary struct {
	DeviceID        string    `json:"device_id"`
	TotalCount      int       `json:"total_count"`
	ActiveCount     int       `json:"active_count"`
	LatestTimestamp time.Time `json:"latest_timestamp"`
	MetricTypes     []string  `json:"metric_types"`
}
