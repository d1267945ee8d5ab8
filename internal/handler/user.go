package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/metrichub/metrichub/internal/handler/dto"
	"github.com/metrichub/metrichub/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parseListWindow(w, r, defaultListLimit, maxListLimit)
	if !ok {
		return
	}

	page, err := h.svc.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(page))
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// GetByUsername handles GET /api/v1/users/by-username/{username}.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "Username is required")
		return
	}

	user, err := h.svc.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.CreateUser(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"username", user.Username,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Update handles PUT /api/v1/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users/{id}.
// Deletion is unconditional: removing an id that never existed still
// succeeds.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "User ID is required")
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrUsernameExists):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already exists")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "Username must be 3-50 characters")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrInvalidFullName):
		writeError(w, http.StatusBadRequest, "INVALID_FULL_NAME", "Full name exceeds maximum length")
	case errors.Is(err, service.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "INVALID_PASSWORD", "Password must be at least 8 characters")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
