package transport

import (
	"errors"
	"net/http"

	"book-catalog/internal/middleware"
	"book-catalog/internal/repository"
	"book-catalog/internal/service"

	"go.uber.org/zap"
)

// Meta carries pagination metadata for list responses
type Meta struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Envelope is the uniform response shape for successful requests
type Envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    *Meta       `json:"meta,omitempty"`
}

func newMeta(page, size, total int) *Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}
	return &Meta{Page: page, Size: size, Total: total, TotalPages: totalPages}
}

func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	middleware.RespondWithJSON(w, statusCode, Envelope{
		Status:  "success",
		Data:    data,
		Message: message,
	})
}

func respondPage(w http.ResponseWriter, data interface{}, message string, meta *Meta) {
	middleware.RespondWithJSON(w, http.StatusOK, Envelope{
		Status:  "success",
		Data:    data,
		Message: message,
		Meta:    meta,
	})
}

// respondServiceError maps service outcomes onto HTTP statuses: NotFound to
// 404, business-rule violations to 400, uniqueness conflicts to 409 and
// anything else to a generic 500. Raw store errors are logged, never leaked.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var validationErr *service.ValidationError
	var conflictErr *service.ConflictError

	switch {
	case errors.Is(err, repository.ErrBookNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "book not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.As(err, &validationErr):
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Reason)
	case errors.As(err, &conflictErr):
		middleware.RespondWithError(w, http.StatusConflict, conflictErr.Reason)
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
