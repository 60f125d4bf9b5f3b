package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"book-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) (int, error)
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category. A duplicate name surfaces as
// ErrDuplicateCategory via the unique constraint.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update writes the name and description of an existing category
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category and cascades to its books in one transaction.
// Returns the number of books deleted alongside the category.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booksResult, err := tx.ExecContext(ctx, `DELETE FROM books WHERE category_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete category books: %w", err)
	}
	booksDeleted, err := booksResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return 0, ErrCategoryNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit category delete: %w", err)
	}

	return int(booksDeleted), nil
}

// List retrieves all categories with their book counts in a single query
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_at, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		GROUP BY c.id, c.name, c.description, c.created_at
		ORDER BY c.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category with its book count
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_at, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, c.name, c.description, c.created_at
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category    domain.Category
		description sql.NullString
	)

	err := row.Scan(
		&category.ID,
		&category.Name,
		&description,
		&category.CreatedAt,
		&category.BookCount,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d := description.String
		category.Description = &d
	}

	return &category, nil
}
