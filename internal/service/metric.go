package service

import (
	"context"
	"errors"
	"sort"

	"github.com/metrichub/metrichub/internal/metrics"
	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
)

// Metric service errors.
var (
	ErrMetricNotFound    = errors.New("metric not found")
	ErrMissingDeviceID   = errors.New("device_id is required")
	ErrMissingMetricName = errors.New("metric_name is required")
	ErrInvalidStatus     = errors.New("invalid metric status")
)

// MetricService handles metric business logic.
type MetricService struct {
	repo    *repository.MetricRepository
	metrics metrics.Recorder
}

// NewMetricService creates a new MetricService.
func NewMetricService(repo *repository.MetricRepository, recorder metrics.Recorder) *MetricService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &MetricService{repo: repo, metrics: recorder}
}

// CreateMetricInput defines input for recording a metric.
type CreateMetricInput struct {
	DeviceID   string
	MetricName string
	Value      float64
	Unit       string
	Status     model.MetricStatus
	Metadata   map[string]string
}

// CreateMetric validates input and persists a new observation.
// An empty status defaults to active.
func (s *MetricService) CreateMetric(ctx context.Context, input CreateMetricInput) (*model.Metric, error) {
	if input.DeviceID == "" {
		return nil, ErrMissingDeviceID
	}
	if input.MetricName == "" {
		return nil, ErrMissingMetricName
	}

	status := input.Status
	if status == "" {
		status = model.MetricStatusActive
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	metric, err := s.repo.Create(ctx, repository.CreateMetricInput{
		DeviceID:   input.DeviceID,
		MetricName: input.MetricName,
		Value:      input.Value,
		Unit:       input.Unit,
		Status:     status,
		Metadata:   input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMetricCreated()
	return metric, nil
}

// GetMetric retrieves a metric by id.
func (s *MetricService) GetMetric(ctx context.Context, id string) (*model.Metric, error) {
	metric, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMetricNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return metric, nil
}

// UpdateMetricInput defines the partial update; only non-nil fields change.
type UpdateMetricInput struct {
	Value    *float64
	Unit     *string
	Status   *model.MetricStatus
	Metadata map[string]string
}

// UpdateMetric validates and applies a partial update.
func (s *MetricService) UpdateMetric(ctx context.Context, id string, input UpdateMetricInput) (*model.Metric, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	metric, err := s.repo.Update(ctx, id, repository.UpdateMetricInput{
		Value:    input.Value,
		Unit:     input.Unit,
		Status:   input.Status,
		Metadata: input.Metadata,
	})
	if err != nil {
		if errors.Is(err, repository.ErrMetricNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}

	s.metrics.IncMetricUpdated()
	return metric, nil
}

// DeleteMetric removes a metric. Deleting an id that never existed
// succeeds.
func (s *MetricService) DeleteMetric(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.IncMetricDeleted()
	return nil
}

// ListMetrics returns one page of metrics with optional device/status
// filters.
func (s *MetricService) ListMetrics(ctx context.Context, input repository.ListMetricsInput) (*repository.MetricPage, error) {
	return s.repo.List(ctx, input)
}

// LatestMetrics returns the newest observations, newest first.
//
// With a device id the device index already yields descending
// timestamp order. Without one the scan carries no ordering guarantee,
// so the full set is sorted here before truncating to limit.
func (s *MetricService) LatestMetrics(ctx context.Context, deviceID string, limit int) ([]*model.Metric, error) {
	if deviceID != "" {
		return s.repo.LatestByDevice(ctx, deviceID, limit)
	}

	all, err := s.repo.All(ctx, "")
	if err != nil {
		return nil, err
	}
	sortByTimestampDesc(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Summary folds the (optionally device-filtered) metric set into one
// aggregate per device: total count, active count, latest observation
// timestamp, and the set of distinct metric names. Summaries are
// recomputed from the current record set on every call and never
// persisted.
func (s *MetricService) Summary(ctx context.Context, deviceID string) ([]*model.MetricSummary, error) {
	all, err := s.repo.All(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		summary *model.MetricSummary
		latest  string
		names   map[string]struct{}
	}

	byDevice := make(map[string]*accumulator)
	var order []string

	for _, m := range all {
		acc, ok := byDevice[m.DeviceID]
		if !ok {
			acc = &accumulator{
				summary: &model.MetricSummary{DeviceID: m.DeviceID},
				names:   make(map[string]struct{}),
			}
			byDevice[m.DeviceID] = acc
			order = append(order, m.DeviceID)
		}

		acc.summary.TotalCount++
		if m.Status == model.MetricStatusActive {
			acc.summary.ActiveCount++
		}
		// Timestamps are fixed-format UTC strings, so the lexical
		// comparison is the chronological one.
		if ts := model.FormatTimestamp(m.Timestamp); ts > acc.latest {
			acc.latest = ts
			acc.summary.LatestTimestamp = m.Timestamp
		}
		acc.names[m.MetricName] = struct{}{}
	}

	summaries := make([]*model.MetricSummary, 0, len(order))
	for _, device := range order {
		acc := byDevice[device]
		acc.summary.MetricTypes = sortedNames(acc.names)
		summaries = append(summaries, acc.summary)
	}

	s.metrics.IncSummaryComputed()
	return summaries, nil
}

func sortByTimestampDesc(metrics []*model.Metric) {
	sort.SliceStable(metrics, func(i, j int) bool {
		return model.FormatTimestamp(metrics[i].Timestamp) > model.FormatTimestamp(metrics[j].Timestamp)
	})
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
