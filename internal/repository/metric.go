package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/store"
)

// ErrMetricNotFound indicates the metric id matched no record.
var ErrMetricNotFound = errors.New("metric not found")

// Metric table schema. The device index sorts on the stored timestamp
// string, so descending queries return newest observations first.
const (
	MetricKeyAttr = "metric_id"
	DeviceIndex   = "device-timestamp-index"
)

// MetricRepository provides store access for metric records.
type MetricRepository struct {
	store store.Store
	table string
}

// NewMetricRepository creates a MetricRepository over the given table.
func NewMetricRepository(s store.Store, table string) *MetricRepository {
	return &MetricRepository{store: s, table: table}
}

// Get retrieves a metric by id.
func (r *MetricRepository) Get(ctx context.Context, id string) (*model.Metric, error) {
	item, err := r.store.GetItem(ctx, r.table, store.StringKey(MetricKeyAttr, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get metric: %w", err)
	}
	if item == nil {
		return nil, ErrMetricNotFound
	}
	return decodeMetric(item)
}

// CreateMetricInput holds the fields the caller supplies for a new metric.
type CreateMetricInput struct {
	DeviceID   string
	MetricName string
	Value      float64
	Unit       string
	Status     model.MetricStatus
	Metadata   map[string]string
}

// Create assigns a fresh id and timestamps, persists the record, and
// returns the stored representation. The business timestamp is set to
// the creation instant; backfilled data could diverge, but creation
// always sets them equal.
func (r *MetricRepository) Create(ctx context.Context, input CreateMetricInput) (*model.Metric, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	metric := &model.Metric{
		ID:         uuid.NewString(),
		DeviceID:   input.DeviceID,
		MetricName: input.MetricName,
		Value:      input.Value,
		Unit:       input.Unit,
		Status:     input.Status,
		Metadata:   input.Metadata,
		Timestamp:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	item, err := marshalItem(metric.ToStoredMetric())
	if err != nil {
		return nil, err
	}
	if err := r.store.PutItem(ctx, r.table, item); err != nil {
		return nil, fmt.Errorf("failed to create metric: %w", err)
	}
	return metric, nil
}

// UpdateMetricInput holds the partial update; only non-nil fields change.
type UpdateMetricInput struct {
	Value    *float64
	Unit     *string
	Status   *model.MetricStatus
	Metadata map[string]string
}

// Update applies the supplied fields and refreshes updated_at, then
// re-reads the id to produce the result. Missing records surface as
// ErrMetricNotFound only through that re-read; see UserRepository.Update
// for the concurrent-delete caveat.
func (r *MetricRepository) Update(ctx context.Context, id string, input UpdateMetricInput) (*model.Metric, error) {
	set := store.Item{
		"updated_at": &types.AttributeValueMemberS{
			Value: model.FormatTimestamp(time.Now().UTC().Truncate(time.Millisecond)),
		},
	}
	if input.Value != nil {
		av, err := attributevalue.Marshal(*input.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		set["value"] = av
	}
	if input.Unit != nil {
		set["unit"] = &types.AttributeValueMemberS{Value: *input.Unit}
	}
	if input.Status != nil {
		set["status"] = &types.AttributeValueMemberS{Value: string(*input.Status)}
	}
	if input.Metadata != nil {
		av, err := attributevalue.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		set["metadata"] = av
	}

	if _, err := r.store.UpdateItem(ctx, r.table, store.StringKey(MetricKeyAttr, id), set); err != nil {
		return nil, fmt.Errorf("failed to update metric: %w", err)
	}

	return r.Get(ctx, id)
}

// Delete removes a metric unconditionally. Deleting an id that never
// existed succeeds.
func (r *MetricRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteItem(ctx, r.table, store.StringKey(MetricKeyAttr, id)); err != nil {
		return fmt.Errorf("failed to delete metric: %w", err)
	}
	return nil
}

// ListMetricsInput holds list filters and the page window.
type ListMetricsInput struct {
	Limit    int
	Offset   int
	DeviceID string
	Status   model.MetricStatus
}

// MetricPage is one window of the metric list.
type MetricPage struct {
	Metrics    []*model.Metric
	TotalCount int
	Limit      int
	Offset     int
}

// List returns a limit/offset window over the filtered metric set.
//
// An exact device id filter takes the indexed query path (newest
// first); everything else is a scan with the filters pushed into the
// store. With a zero offset and no post-filtering the limit goes into
// the single store call and the reported total is whatever that call
// returned. Any other combination retrieves the full filtered set and
// slices it in memory - O(table size) per call.
func (r *MetricRepository) List(ctx context.Context, input ListMetricsInput) (*MetricPage, error) {
	page := &MetricPage{Limit: input.Limit, Offset: input.Offset}

	if input.DeviceID != "" {
		// The store query carries no filter predicate, so a status
		// filter on top of the device key is applied here after the
		// query, which forces the full-set path.
		limit := int32(0)
		if input.Offset == 0 && input.Status == "" {
			limit = int32(input.Limit)
		}
		items, err := r.store.Query(ctx, r.table, DeviceIndex, "device_id",
			&types.AttributeValueMemberS{Value: input.DeviceID}, true, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list metrics: %w", err)
		}
		metrics, err := decodeMetrics(items)
		if err != nil {
			return nil, err
		}
		if input.Status != "" {
			metrics = filterByStatus(metrics, input.Status)
		}
		if limit > 0 {
			page.Metrics = metrics
			page.TotalCount = len(metrics)
			return page, nil
		}
		page.Metrics = pageWindow(metrics, input.Limit, input.Offset)
		page.TotalCount = len(metrics)
		return page, nil
	}

	filters := store.Item{}
	if input.Status != "" {
		filters["status"] = &types.AttributeValueMemberS{Value: string(input.Status)}
	}

	if input.Offset == 0 {
		items, err := r.store.Scan(ctx, r.table, filters, int32(input.Limit))
		if err != nil {
			return nil, fmt.Errorf("failed to list metrics: %w", err)
		}
		metrics, err := decodeMetrics(items)
		if err != nil {
			return nil, err
		}
		page.Metrics = metrics
		page.TotalCount = len(metrics)
		return page, nil
	}

	items, err := r.store.Scan(ctx, r.table, filters, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	metrics, err := decodeMetrics(items)
	if err != nil {
		return nil, err
	}
	page.Metrics = pageWindow(metrics, input.Limit, input.Offset)
	page.TotalCount = len(metrics)
	return page, nil
}

// LatestByDevice returns the newest observations for one device via a
// descending indexed query.
func (r *MetricRepository) LatestByDevice(ctx context.Context, deviceID string, limit int) ([]*model.Metric, error) {
	items, err := r.store.Query(ctx, r.table, DeviceIndex, "device_id",
		&types.AttributeValueMemberS{Value: deviceID}, true, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest metrics: %w", err)
	}
	return decodeMetrics(items)
}

// All returns the full metric set via a scan, optionally filtered to
// one device. Scans have no ordering guarantee; callers that need an
// order must sort. O(table size) per call.
func (r *MetricRepository) All(ctx context.Context, deviceID string) ([]*model.Metric, error) {
	filters := store.Item{}
	if deviceID != "" {
		filters["device_id"] = &types.AttributeValueMemberS{Value: deviceID}
	}
	items, err := r.store.Scan(ctx, r.table, filters, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to scan metrics: %w", err)
	}
	return decodeMetrics(items)
}

func filterByStatus(metrics []*model.Metric, status model.MetricStatus) []*model.Metric {
	filtered := metrics[:0]
	for _, m := range metrics {
		if m.Status == status {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func decodeMetric(item store.Item) (*model.Metric, error) {
	var stored model.StoredMetric
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("decode metric item: %w", err)
	}
	return stored.ToMetric(), nil
}

func decodeMetrics(items []store.Item) ([]*model.Metric, error) {
	metrics := make([]*model.Metric, 0, len(items))
	for _, item := range items {
		metric, err := decodeMetric(item)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, nil
}
