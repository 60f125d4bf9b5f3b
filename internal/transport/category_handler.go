package transport

import (
	"fmt"
	"net/http"
	"time"

	"book-catalog/internal/domain"
	"book-catalog/internal/middleware"
	"book-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Name        *string                 `json:"name" validate:"omitempty,min=1,max=50"`
	Description domain.Optional[string] `json:"description"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	BookCount   int       `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		BookCount:   category.BookCount,
		CreatedAt:   category.CreatedAt,
	}
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all categories with their book counts
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, newCategoryResponse(category))
	}

	respondSuccess(w, http.StatusOK, responses, "categories retrieved")
}

// Get handles single category lookup
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, newCategoryResponse(category), "category retrieved")
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", category.Name))
	respondSuccess(w, http.StatusCreated, newCategoryResponse(category), "category created")
}

// Update handles partial category updates
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, newCategoryResponse(category), "category updated")
}

// Delete removes a category and its books
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	booksDeleted, err := h.categoryService.Delete(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Category deleted",
		zap.String("category_id", id.String()),
		zap.Int("books_deleted", booksDeleted),
	)
	respondSuccess(w, http.StatusOK, nil, fmt.Sprintf("category deleted along with %d books", booksDeleted))
}
