package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"book-catalog/internal/domain"
	"book-catalog/internal/repository"

	"github.com/google/uuid"
)

const (
	MaxPageSize = 100

	MaxTitleLength  = 200
	MaxAuthorLength = 100
)

const (
	StockOperationAdd      = "add"
	StockOperationSubtract = "subtract"
)

var isbnPattern = regexp.MustCompile(`^[0-9]{13}$`)

// SearchBooksInput holds the filter criteria and pagination window for a
// catalog search.
type SearchBooksInput struct {
	Search     string
	CategoryID *uuid.UUID
	MinPrice   *int64
	MaxPrice   *int64
	Page       int
	Size       int
	Descending bool
}

// CreateBookInput holds the fields for a new book.
type CreateBookInput struct {
	Title         string
	Author        string
	ISBN          string
	Price         int64
	StockQuantity int
	PublishedDate *time.Time
	CategoryID    *uuid.UUID
}

// UpdateBookInput is a partial update. Nil pointers and unset optionals mean
// "leave the current value alone"; explicitly null optionals clear the field.
type UpdateBookInput struct {
	Title         *string
	Author        *string
	ISBN          *string
	Price         *int64
	StockQuantity *int
	PublishedDate domain.Optional[time.Time]
	CategoryID    domain.Optional[uuid.UUID]
}

// BookService defines the business logic for the book catalog
type BookService interface {
	Search(ctx context.Context, input SearchBooksInput) ([]*domain.Book, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Create(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*domain.Book, error)
	AdjustStock(ctx context.Context, id uuid.UUID, quantity int, operation string) (*domain.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookService struct {
	bookRepo     repository.BookRepository
	categoryRepo repository.CategoryRepository
}

// NewBookService creates a new instance of BookService
func NewBookService(bookRepo repository.BookRepository, categoryRepo repository.CategoryRepository) BookService {
	return &bookService{
		bookRepo:     bookRepo,
		categoryRepo: categoryRepo,
	}
}

// Search returns a page of books matching the filters plus the total match
// count. Pagination bounds are validated before the store is touched, and an
// inverted price range (min > max) is rejected rather than silently
// returning an empty result.
func (s *bookService) Search(ctx context.Context, input SearchBooksInput) ([]*domain.Book, int, error) {
	if input.Page < 1 {
		return nil, 0, validationErr("page must be 1 or greater")
	}
	if input.Size < 1 || input.Size > MaxPageSize {
		return nil, 0, validationErr(fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
	}
	if input.MinPrice != nil && *input.MinPrice < 0 {
		return nil, 0, validationErr("min_price must not be negative")
	}
	if input.MaxPrice != nil && *input.MaxPrice < 0 {
		return nil, 0, validationErr("max_price must not be negative")
	}
	if input.MinPrice != nil && input.MaxPrice != nil && *input.MinPrice > *input.MaxPrice {
		return nil, 0, validationErr("max_price must be greater than or equal to min_price")
	}

	books, total, err := s.bookRepo.Search(ctx, repository.SearchParams{
		Search:     strings.TrimSpace(input.Search),
		CategoryID: input.CategoryID,
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		Page:       input.Page,
		Size:       input.Size,
		Descending: input.Descending,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}

	return books, total, nil
}

// Get retrieves a single book by ID
func (s *bookService) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.bookRepo.FindByID(ctx, id)
}

// Create validates the input, checks the category reference and persists a
// new book. ISBN uniqueness is enforced by the store's constraint, so two
// concurrent creates with the same ISBN cannot both succeed.
func (s *bookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateAuthor(author); err != nil {
		return nil, err
	}
	if !isbnPattern.MatchString(input.ISBN) {
		return nil, validationErr("isbn must be a 13-digit number")
	}
	if input.Price < 0 {
		return nil, validationErr("price must not be negative")
	}
	if input.StockQuantity < 0 {
		return nil, validationErr("stock_quantity must not be negative")
	}
	if err := validatePublishedDate(input.PublishedDate); err != nil {
		return nil, err
	}
	if err := s.checkCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &domain.Book{
		ID:            uuid.New(),
		Title:         title,
		Author:        author,
		ISBN:          input.ISBN,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		PublishedDate: input.PublishedDate,
		CategoryID:    input.CategoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, conflictErr("isbn already exists")
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	// Reload to resolve the category name for the response.
	return s.bookRepo.FindByID(ctx, book.ID)
}

// Update applies a partial update. Only supplied fields change; updated_at
// is refreshed on every successful call even when no business field moved.
func (s *bookService) Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		book.Title = title
	}
	if input.Author != nil {
		author := strings.TrimSpace(*input.Author)
		if err := validateAuthor(author); err != nil {
			return nil, err
		}
		book.Author = author
	}
	if input.ISBN != nil {
		if !isbnPattern.MatchString(*input.ISBN) {
			return nil, validationErr("isbn must be a 13-digit number")
		}
		book.ISBN = *input.ISBN
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, validationErr("price must not be negative")
		}
		book.Price = *input.Price
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, validationErr("stock_quantity must not be negative")
		}
		book.StockQuantity = *input.StockQuantity
	}
	if input.PublishedDate.Set {
		date := input.PublishedDate.Ptr()
		if err := validatePublishedDate(date); err != nil {
			return nil, err
		}
		book.PublishedDate = date
	}
	if input.CategoryID.Set {
		categoryID := input.CategoryID.Ptr()
		if err := s.checkCategoryExists(ctx, categoryID); err != nil {
			return nil, err
		}
		book.CategoryID = categoryID
	}

	book.UpdatedAt = time.Now()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, conflictErr("isbn already exists")
		}
		return nil, err
	}

	return s.bookRepo.FindByID(ctx, id)
}

// AdjustStock adds or subtracts a positive quantity from a book's stock.
// Subtracting below zero fails with a validation error and leaves the book
// unchanged; serialization against concurrent adjustments happens in the
// repository under a row lock.
func (s *bookService) AdjustStock(ctx context.Context, id uuid.UUID, quantity int, operation string) (*domain.Book, error) {
	if quantity <= 0 {
		return nil, validationErr("quantity must be a positive integer")
	}

	var delta int
	switch operation {
	case StockOperationAdd:
		delta = quantity
	case StockOperationSubtract:
		delta = -quantity
	default:
		return nil, validationErr(fmt.Sprintf("invalid operation: %s", operation))
	}

	book, err := s.bookRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, validationErr("insufficient stock")
		}
		return nil, err
	}

	return book, nil
}

// Delete removes a book from the catalog
func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.bookRepo.Delete(ctx, id)
}

// checkCategoryExists validates a non-nil category reference. A missing
// category is a caller error, not a NotFound on the book operation.
func (s *bookService) checkCategoryExists(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return validationErr("category not found")
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" || len(title) > MaxTitleLength {
		return validationErr(fmt.Sprintf("title must be between 1 and %d characters", MaxTitleLength))
	}
	return nil
}

func validateAuthor(author string) error {
	if author == "" || len(author) > MaxAuthorLength {
		return validationErr(fmt.Sprintf("author must be between 1 and %d characters", MaxAuthorLength))
	}
	return nil
}

func validatePublishedDate(date *time.Time) error {
	if date != nil && date.After(time.Now()) {
		return validationErr("published_date must not be in the future")
	}
	return nil
}
