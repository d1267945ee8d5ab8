package dto

import (
	"time"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
)

// CreateMetricRequest represents the request body for recording a metric.
type CreateMetricRequest struct {
	DeviceID   string            `json:"device_id"`
	MetricName string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Status     string            `json:"status,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// UpdateMetricRequest represents the request body for a partial metric update.
type UpdateMetricRequest struct {
	Value    *float64          `json:"value,omitempty"`
	Unit     *string           `json:"unit,omitempty"`
	Status   *string           `json:"status,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MetricResponse represents a metric observation in API responses.
type MetricResponse struct {
	MetricID   string            `json:"metric_id"`
	DeviceID   string            `json:"device_id"`
	MetricName string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// MetricListResponse represents one page of metrics.
type MetricListResponse struct {
	Metrics    []MetricResponse `json:"metrics"`
	TotalCount int              `json:"total_count"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// MetricSummaryResponse represents a per-device aggregate.
type MetricSummaryResponse struct {
	DeviceID        string    `json:"device_id"`
	TotalCount      int       `json:"total_count"`
	ActiveCount     int       `json:"active_count"`
	LatestTimestamp time.Time `json:"latest_timestamp"`
	MetricTypes     []string  `json:"metric_types"`
}

// ToMetricResponse converts a Metric model to MetricResponse DTO.
func ToMetricResponse(metric *model.Metric) *MetricResponse {
	return &MetricResponse{
		MetricID:   metric.ID,
		DeviceID:   metric.DeviceID,
		MetricName: metric.MetricName,
		Value:      metric.Value,
		Unit:       metric.Unit,
		Status:     string(metric.Status),
		Metadata:   metric.Metadata,
		Timestamp:  metric.Timestamp,
		CreatedAt:  metric.CreatedAt,
		UpdatedAt:  metric.UpdatedAt,
	}
}

// ToMetricListResponse converts a repository page to MetricListResponse.
func ToMetricListResponse(page *repository.MetricPage) *MetricListResponse {
	responses := make([]MetricResponse, len(page.Metrics))
	for i, metric := range page.Metrics {
		responses[i] = *ToMetricResponse(metric)
	}
	return &MetricListResponse{
		Metrics:    responses,
		TotalCount: page.TotalCount,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
}

// ToMetricResponses converts a metric slice for list-style endpoints.
func ToMetricResponses(metrics []*model.Metric) []MetricResponse {
	responses := make([]MetricResponse, len(metrics))
	for i, metric := range metrics {
		responses[i] = *ToMetricResponse(metric)
	}
	return responses
}

// ToMetricSummaryResponses converts summaries for the summary endpoint.
func ToMetricSummaryResponses(summaries []*model.MetricSummary) []MetricSummaryResponse {
	responses := make([]MetricSummaryResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = MetricSummaryResponse{
			DeviceID:        s.DeviceID,
			TotalCount:      s.TotalCount,
			ActiveCount:     s.ActiveCount,
			LatestTimestamp: s.LatestTimestamp,
			MetricTypes:     s.MetricTypes,
		}
	}
	return responses
}
