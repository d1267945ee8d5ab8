package handler

import (
	"fmt"
	"net/http"

	"github.com/metrichub/metrichub/internal/metrics"
)

// OpsMetricsHandler exposes in-memory operation counters.
type OpsMetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewOpsMetricsHandler creates a new OpsMetricsHandler.
func NewOpsMetricsHandler(snapshotter metrics.Snapshotter) *OpsMetricsHandler {
	return &OpsMetricsHandler{snapshotter: snapshotter}
}

// Metrics returns counters in Prometheus exposition format.
func (h *OpsMetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "metrichub_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "metrichub_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "metrichub_users_deleted_total %d\n", snap.UsersDeleted)

	writeMetric(w, "metrichub_metrics_created_total %d\n", snap.MetricsCreated)
	writeMetric(w, "metrichub_metrics_updated_total %d\n", snap.MetricsUpdated)
	writeMetric(w, "metrichub_metrics_deleted_total %d\n", snap.MetricsDeleted)

	writeMetric(w, "metrichub_summaries_computed_total %d\n", snap.SummariesComputed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
