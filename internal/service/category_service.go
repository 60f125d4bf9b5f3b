package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-catalog/internal/domain"
	"book-catalog/internal/repository"

	"github.com/google/uuid"
)

const MaxCategoryNameLength = 50

// CreateCategoryInput holds the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	Description *string
}

// UpdateCategoryInput is a partial update; an explicitly null description
// clears it.
type UpdateCategoryInput struct {
	Name        *string
	Description domain.Optional[string]
}

// CategoryService defines the business logic for categories
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (int, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// List retrieves all categories with their derived book counts
func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// Get retrieves a single category by ID
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// Create persists a new category. Name uniqueness is enforced by the
// store's constraint, not a racy pre-check.
func (s *categoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return nil, conflictErr("category name already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update applies a partial update to a category
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateCategoryName(name); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if input.Description.Set {
		category.Description = input.Description.Ptr()
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return nil, conflictErr("category name already exists")
		}
		return nil, err
	}

	return s.categoryRepo.FindByID(ctx, id)
}

// Delete removes a category, cascading to its books. Returns the number of
// books deleted with it.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	return s.categoryRepo.Delete(ctx, id)
}

func validateCategoryName(name string) error {
	if name == "" || len(name) > MaxCategoryNameLength {
		return validationErr(fmt.Sprintf("name must be between 1 and %d characters", MaxCategoryNameLength))
	}
	return nil
}
