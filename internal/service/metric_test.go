package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
	"github.com/metrichub/metrichub/internal/store"
	"github.com/metrichub/metrichub/internal/testutil"
)

func newMetricService(t *testing.T) (*MetricService, *store.MemoryStore) {
	t.Helper()
	st := testutil.NewMemoryStore(t)
	repo := repository.NewMetricRepository(st, testutil.MetricsTable)
	return NewMetricService(repo, nil), st
}

// seedMetric writes a fully-formed metric straight into the store so
// tests control the business timestamp.
func seedMetric(t *testing.T, st *store.MemoryStore, m *model.Metric) {
	t.Helper()
	item, err := attributevalue.MarshalMap(m.ToStoredMetric())
	if err != nil {
		t.Fatalf("marshal metric: %v", err)
	}
	if err := st.PutItem(context.Background(), testutil.MetricsTable, item); err != nil {
		t.Fatalf("PutItem: %v", err)
	}
}

func TestMetricService_CreateMetric(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newMetricService(t)

	metric, err := svc.CreateMetric(ctx, CreateMetricInput{
		DeviceID:   "device-001",
		MetricName: "temperature",
		Value:      21.5,
		Unit:       "celsius",
	})
	if err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}
	if metric.Status != model.MetricStatusActive {
		t.Errorf("empty status should default to active, got %q", metric.Status)
	}
	if metric.ID == "" {
		t.Error("expected generated id")
	}
}

func TestMetricService_CreateMetricValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newMetricService(t)

	_, err := svc.CreateMetric(ctx, CreateMetricInput{MetricName: "temperature"})
	if !errors.Is(err, ErrMissingDeviceID) {
		t.Errorf("expected ErrMissingDeviceID, got %v", err)
	}

	_, err = svc.CreateMetric(ctx, CreateMetricInput{DeviceID: "device-001"})
	if !errors.Is(err, ErrMissingMetricName) {
		t.Errorf("expected ErrMissingMetricName, got %v", err)
	}

	_, err = svc.CreateMetric(ctx, CreateMetricInput{
		DeviceID:   "device-001",
		MetricName: "temperature",
		Status:     model.MetricStatus("bogus"),
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestMetricService_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newMetricService(t)

	created, err := svc.CreateMetric(ctx, CreateMetricInput{
		DeviceID:   "device-001",
		MetricName: "humidity",
		Value:      55,
		Unit:       "percent",
	})
	if err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}

	got, err := svc.GetMetric(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMetric: %v", err)
	}
	if got.MetricName != "humidity" {
		t.Errorf("metric_name = %q", got.MetricName)
	}

	bad := model.MetricStatus("nonsense")
	if _, err := svc.UpdateMetric(ctx, created.ID, UpdateMetricInput{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	maint := model.MetricStatusMaintenance
	updated, err := svc.UpdateMetric(ctx, created.ID, UpdateMetricInput{Status: &maint})
	if err != nil {
		t.Fatalf("UpdateMetric: %v", err)
	}
	if updated.Status != model.MetricStatusMaintenance {
		t.Errorf("status = %q, want maintenance", updated.Status)
	}

	if _, err := svc.UpdateMetric(ctx, "no-such-id", UpdateMetricInput{Status: &maint}); !errors.Is(err, ErrMetricNotFound) {
		t.Errorf("expected ErrMetricNotFound, got %v", err)
	}

	if err := svc.DeleteMetric(ctx, created.ID); err != nil {
		t.Fatalf("DeleteMetric: %v", err)
	}
	if _, err := svc.GetMetric(ctx, created.ID); !errors.Is(err, ErrMetricNotFound) {
		t.Errorf("expected ErrMetricNotFound after delete, got %v", err)
	}
	if err := svc.DeleteMetric(ctx, created.ID); err != nil {
		t.Errorf("second delete returned error: %v", err)
	}
}

func TestMetricService_LatestMetricsNoDevice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newMetricService(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	// Inserted out of chronological order on purpose.
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base.Add(time.Minute)))
	newest := testutil.NewTestMetricAt(t, "device-b", "humidity", base.Add(3*time.Minute))
	seedMetric(t, st, newest)
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base))

	latest, err := svc.LatestMetrics(ctx, "", 2)
	if err != nil {
		t.Fatalf("LatestMetrics: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(latest))
	}
	if latest[0].ID != newest.ID {
		t.Errorf("first result should be the newest observation")
	}
	if latest[1].Timestamp.After(latest[0].Timestamp) {
		t.Error("results not in descending timestamp order")
	}
}

func TestMetricService_LatestMetricsByDevice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newMetricService(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base))
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-b", "humidity", base.Add(time.Minute)))
	wantNewest := testutil.NewTestMetricAt(t, "device-a", "temperature", base.Add(2*time.Minute))
	seedMetric(t, st, wantNewest)

	latest, err := svc.LatestMetrics(ctx, "device-a", 10)
	if err != nil {
		t.Fatalf("LatestMetrics: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 metrics for device-a, got %d", len(latest))
	}
	if latest[0].ID != wantNewest.ID {
		t.Errorf("first result should be the newest device-a observation")
	}
}

func TestMetricService_Summary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newMetricService(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base))
	latestA := testutil.NewTestMetricAt(t, "device-a", "humidity", base.Add(2*time.Minute))
	seedMetric(t, st, latestA)
	inactive := testutil.NewTestMetricAt(t, "device-a", "temperature", base.Add(time.Minute))
	inactive.Status = model.MetricStatusInactive
	seedMetric(t, st, inactive)
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-b", "pressure", base.Add(3*time.Minute)))

	summaries, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 device summaries, got %d", len(summaries))
	}

	// Devices appear in first-seen scan order.
	a, b := summaries[0], summaries[1]
	if a.DeviceID != "device-a" || b.DeviceID != "device-b" {
		t.Fatalf("unexpected device order: %q, %q", a.DeviceID, b.DeviceID)
	}

	if a.TotalCount != 3 {
		t.Errorf("device-a total = %d, want 3", a.TotalCount)
	}
	if a.ActiveCount != 2 {
		t.Errorf("device-a active = %d, want 2", a.ActiveCount)
	}
	if !a.LatestTimestamp.Equal(latestA.Timestamp) {
		t.Errorf("device-a latest = %v, want %v", a.LatestTimestamp, latestA.Timestamp)
	}
	if !reflect.DeepEqual(a.MetricTypes, []string{"humidity", "temperature"}) {
		t.Errorf("device-a metric types = %v, want sorted [humidity temperature]", a.MetricTypes)
	}

	if b.TotalCount != 1 || b.ActiveCount != 1 {
		t.Errorf("device-b counts = %d/%d, want 1/1", b.TotalCount, b.ActiveCount)
	}
	if !reflect.DeepEqual(b.MetricTypes, []string{"pressure"}) {
		t.Errorf("device-b metric types = %v", b.MetricTypes)
	}
}

func TestMetricService_SummaryDeviceFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newMetricService(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base))
	seedMetric(t, st, testutil.NewTestMetricAt(t, "device-b", "humidity", base))

	summaries, err := svc.Summary(ctx, "device-b")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].DeviceID != "device-b" {
		t.Errorf("device = %q, want device-b", summaries[0].DeviceID)
	}
}

func TestMetricService_SummaryEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := newMetricService(t)

	summaries, err := svc.Summary(context.Background(), "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries for empty table, got %d", len(summaries))
	}
}

func TestMetricService_ListMetrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newMetricService(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		seedMetric(t, st, testutil.NewTestMetricAt(t, "device-a", "temperature", base.Add(time.Duration(i)*time.Minute)))
	}

	page, err := svc.ListMetrics(ctx, repository.ListMetricsInput{Limit: 3, DeviceID: "device-a"})
	if err != nil {
		t.Fatalf("ListMetrics: %v", err)
	}
	if len(page.Metrics) != 3 {
		t.Errorf("expected 3 metrics, got %d", len(page.Metrics))
	}
}
