package model

import (
	"testing"
	"time"
)

func TestMetricStatus_IsValid(t *testing.T) {
	t.Parallel()

	valid := []MetricStatus{
		MetricStatusActive,
		MetricStatusInactive,
		MetricStatusError,
		MetricStatusMaintenance,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []MetricStatus{"", "unknown", "Active", "ACTIVE"}
	for _, s := range invalid {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestMetric_StoredRoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 7, 4, 15, 0, 30, 125_000_000, time.UTC)
	metric := &Metric{
		ID:         "metric-1",
		DeviceID:   "device-7",
		MetricName: "temperature",
		Value:      21.75,
		Unit:       "celsius",
		Status:     MetricStatusActive,
		Metadata:   map[string]string{"room": "lab"},
		Timestamp:  ts,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}

	stored := metric.ToStoredMetric()
	if stored.Timestamp != "2025-07-04T15:00:30.125Z" {
		t.Errorf("stored Timestamp = %q", stored.Timestamp)
	}
	if stored.Status != "active" {
		t.Errorf("stored Status = %q", stored.Status)
	}

	back := stored.ToMetric()
	if back.Value != metric.Value {
		t.Errorf("round trip changed value: %v != %v", back.Value, metric.Value)
	}
	if back.Status != MetricStatusActive {
		t.Errorf("round trip changed status: %q", back.Status)
	}
	if back.Metadata["room"] != "lab" {
		t.Errorf("round trip lost metadata: %v", back.Metadata)
	}
	if !back.Timestamp.Equal(ts) {
		t.Errorf("round trip changed timestamp: %v", back.Timestamp)
	}
}
