package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/store"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// Table names used by the in-memory store in tests.
const (
	UsersTable   = "metrichub-users"
	MetricsTable = "metrichub-metrics"
)

// NewMemoryStore creates an in-memory store with the users and metrics
// tables and their secondary indexes already defined.
func NewMemoryStore(t testing.TB) *store.MemoryStore {
	t.Helper()
	s := store.NewMemory()
	s.CreateTable(UsersTable, "user_id",
		store.Index{Name: "username-index", KeyAttr: "username"},
		store.Index{Name: "email-index", KeyAttr: "email"},
	)
	s.CreateTable(MetricsTable, "metric_id",
		store.Index{Name: "device-timestamp-index", KeyAttr: "device_id", SortAttr: "timestamp"},
	)
	return s
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test User",
		IsActive:     true,
		PasswordHash: "hash-" + username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestMetric creates a test metric with sensible defaults.
func NewTestMetric(t testing.TB, deviceID, metricName string) *model.Metric {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Metric{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		MetricName: metricName,
		Value:      42.5,
		Unit:       "celsius",
		Status:     model.MetricStatusActive,
		Timestamp:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTestMetricAt creates a test metric with an explicit timestamp.
func NewTestMetricAt(t testing.TB, deviceID, metricName string, ts time.Time) *model.Metric {
	t.Helper()
	m := NewTestMetric(t, deviceID, metricName)
	m.Timestamp = ts.UTC().Truncate(time.Millisecond)
	return m
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
