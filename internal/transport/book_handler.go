package transport

import (
	"net/http"
	"strconv"
	"time"

	"book-catalog/internal/domain"
	"book-catalog/internal/middleware"
	"book-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// CreateBookRequest represents the book creation payload
type CreateBookRequest struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Author        string     `json:"author" validate:"required,max=100"`
	ISBN          string     `json:"isbn" validate:"required,len=13,numeric"`
	Price         int64      `json:"price" validate:"gte=0"`
	StockQuantity int        `json:"stock_quantity" validate:"gte=0"`
	PublishedDate *string    `json:"published_date" validate:"omitempty,datetime=2006-01-02"`
	CategoryID    *uuid.UUID `json:"category_id"`
}

// UpdateBookRequest represents a partial update. Omitted fields keep their
// current value; published_date and category_id accept explicit null.
type UpdateBookRequest struct {
	Title         *string                   `json:"title" validate:"omitempty,min=1,max=200"`
	Author        *string                   `json:"author" validate:"omitempty,min=1,max=100"`
	ISBN          *string                   `json:"isbn" validate:"omitempty,len=13,numeric"`
	Price         *int64                    `json:"price" validate:"omitempty,gte=0"`
	StockQuantity *int                      `json:"stock_quantity" validate:"omitempty,gte=0"`
	PublishedDate domain.Optional[string]   `json:"published_date"`
	CategoryID    domain.Optional[uuid.UUID] `json:"category_id"`
}

// AdjustStockRequest represents the stock adjustment payload
type AdjustStockRequest struct {
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Operation string `json:"operation" validate:"required,oneof=add subtract"`
}

// BookResponse represents a book in API responses
type BookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	PublishedDate *string   `json:"published_date"`
	CategoryID    *string   `json:"category_id"`
	CategoryName  *string   `json:"category_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newBookResponse(book *domain.Book) BookResponse {
	resp := BookResponse{
		ID:            book.ID.String(),
		Title:         book.Title,
		Author:        book.Author,
		ISBN:          book.ISBN,
		Price:         book.Price,
		StockQuantity: book.StockQuantity,
		CategoryName:  book.CategoryName,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
	if book.PublishedDate != nil {
		d := book.PublishedDate.Format(dateLayout)
		resp.PublishedDate = &d
	}
	if book.CategoryID != nil {
		id := book.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}

func newBookListResponse(books []*domain.Book) []BookResponse {
	responses := make([]BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, newBookResponse(book))
	}
	return responses
}

// BookHandler handles HTTP requests for book operations
type BookHandler struct {
	bookService service.BookService
	logger      *zap.Logger
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(bookService service.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// RegisterRoutes registers all book routes
func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/stock", h.AdjustStock)
	})
}

// List handles the paginated catalog search
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	input, err := parseSearchQuery(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	books, total, err := h.bookService.Search(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondPage(w, newBookListResponse(books), "books retrieved", newMeta(input.Page, input.Size, total))
}

// Get handles single book lookup
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	book, err := h.bookService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, newBookResponse(book), "book retrieved")
}

// Create handles book creation
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	publishedDate, err := parseDate(req.PublishedDate)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "published_date must be a date in the form YYYY-MM-DD")
		return
	}

	book, err := h.bookService.Create(r.Context(), service.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		PublishedDate: publishedDate,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Book created", zap.String("book_id", book.ID.String()), zap.String("isbn", book.ISBN))
	respondSuccess(w, http.StatusCreated, newBookResponse(book), "book created")
}

// Update handles partial book updates
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}

	if req.PublishedDate.Set {
		if req.PublishedDate.Valid {
			date, err := time.Parse(dateLayout, req.PublishedDate.Value)
			if err != nil {
				middleware.RespondWithError(w, http.StatusBadRequest, "published_date must be a date in the form YYYY-MM-DD")
				return
			}
			input.PublishedDate = domain.NewOptional(date)
		} else {
			input.PublishedDate = domain.Null[time.Time]()
		}
	}

	book, err := h.bookService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, newBookResponse(book), "book updated")
}

// AdjustStock handles guarded stock add/subtract operations
func (h *BookHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.bookService.AdjustStock(r.Context(), id, req.Quantity, req.Operation)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, newBookResponse(book), "stock updated")
}

// Delete handles book deletion
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.bookService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "book deleted")
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// parseSearchQuery translates the list query string into typed search input.
// Bounds on page and size are enforced by the service.
func parseSearchQuery(r *http.Request) (service.SearchBooksInput, error) {
	input := service.SearchBooksInput{
		Search: r.URL.Query().Get("search"),
		Page:   1,
		Size:   10,
	}

	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return input, &service.ValidationError{Reason: "page must be an integer"}
		}
		input.Page = page
	}

	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return input, &service.ValidationError{Reason: "size must be an integer"}
		}
		input.Size = size
	}

	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return input, &service.ValidationError{Reason: "category_id must be a valid UUID"}
		}
		input.CategoryID = &categoryID
	}

	if raw := q.Get("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return input, &service.ValidationError{Reason: "min_price must be an integer"}
		}
		input.MinPrice = &minPrice
	}

	if raw := q.Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return input, &service.ValidationError{Reason: "max_price must be an integer"}
		}
		input.MaxPrice = &maxPrice
	}

	input.Descending = q.Get("order") == "desc"

	return input, nil
}
