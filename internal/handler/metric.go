package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/metrichub/metrichub/internal/handler/dto"
	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/repository"
	"github.com/metrichub/metrichub/internal/service"
)

// maxLatestLimit bounds the /metrics/latest page size.
const maxLatestLimit = 50

// MetricHandler handles HTTP requests for metric operations.
type MetricHandler struct {
	svc    *service.MetricService
	logger *slog.Logger
}

// NewMetricHandler creates a new MetricHandler.
func NewMetricHandler(svc *service.MetricService, logger *slog.Logger) *MetricHandler {
	return &MetricHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/metrics.
func (h *MetricHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parseListWindow(w, r, defaultListLimit, maxListLimit)
	if !ok {
		return
	}

	query := r.URL.Query()
	status := model.MetricStatus(query.Get("status"))
	if status != "" && !status.IsValid() {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown metric status")
		return
	}

	page, err := h.svc.ListMetrics(r.Context(), repository.ListMetricsInput{
		Limit:    limit,
		Offset:   offset,
		DeviceID: query.Get("device_id"),
		Status:   status,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMetricListResponse(page))
}

// Latest handles GET /api/v1/metrics/latest.
func (h *MetricHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit, _, ok := parseListWindow(w, r, defaultListLimit, maxLatestLimit)
	if !ok {
		return
	}

	latest, err := h.svc.LatestMetrics(r.Context(), r.URL.Query().Get("device_id"), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMetricResponses(latest))
}

// Summary handles GET /api/v1/metrics/summary.
func (h *MetricHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.Summary(r.Context(), r.URL.Query().Get("device_id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMetricSummaryResponses(summaries))
}

// Get handles GET /api/v1/metrics/{id}.
func (h *MetricHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Metric ID is required")
		return
	}

	metric, err := h.svc.GetMetric(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMetricResponse(metric))
}

// Create handles POST /api/v1/metrics.
func (h *MetricHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	metric, err := h.svc.CreateMetric(r.Context(), service.CreateMetricInput{
		DeviceID:   req.DeviceID,
		MetricName: req.MetricName,
		Value:      req.Value,
		Unit:       req.Unit,
		Status:     model.MetricStatus(req.Status),
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("metric_created",
		"metric_id", metric.ID,
		"device_id", metric.DeviceID,
		"metric_name", metric.MetricName,
	)

	writeJSON(w, http.StatusCreated, dto.ToMetricResponse(metric))
}

// Update handles PUT /api/v1/metrics/{id}.
func (h *MetricHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Metric ID is required")
		return
	}

	var req dto.UpdateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateMetricInput{
		Value:    req.Value,
		Unit:     req.Unit,
		Metadata: req.Metadata,
	}
	if req.Status != nil {
		status := model.MetricStatus(*req.Status)
		input.Status = &status
	}

	metric, err := h.svc.UpdateMetric(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("metric_updated", "metric_id", metric.ID)

	writeJSON(w, http.StatusOK, dto.ToMetricResponse(metric))
}

// Delete handles DELETE /api/v1/metrics/{id}.
// Deletion is unconditional: removing an id that never existed still
// succeeds.
func (h *MetricHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Metric ID is required")
		return
	}

	if err := h.svc.DeleteMetric(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("metric_deleted", "metric_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *MetricHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMetricNotFound):
		writeError(w, http.StatusNotFound, "METRIC_NOT_FOUND", "Metric not found")
	case errors.Is(err, service.ErrMissingDeviceID):
		writeError(w, http.StatusBadRequest, "MISSING_DEVICE_ID", "device_id is required")
	case errors.Is(err, service.ErrMissingMetricName):
		writeError(w, http.StatusBadRequest, "MISSING_METRIC_NAME", "metric_name is required")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown metric status")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
