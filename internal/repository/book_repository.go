package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrDuplicateISBN     = errors.New("isbn already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SearchParams holds the filter and pagination window for a catalog search.
// All filters are optional; Page and Size must already be validated.
type SearchParams struct {
	Search     string
	CategoryID *uuid.UUID
	MinPrice   *int64
	MaxPrice   *int64
	Page       int
	Size       int
	Descending bool
}

// BookRepository defines the interface for book data access
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Search(ctx context.Context, params SearchParams) ([]*domain.Book, int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Book, error)
}

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new instance of BookRepository
func NewBookRepository(db *sql.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `b.id, b.title, b.author, b.isbn, b.price, b.stock_quantity,
		b.published_date, b.category_id, c.name, b.created_at, b.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		book          domain.Book
		publishedDate sql.NullTime
		categoryID    uuid.NullUUID
		categoryName  sql.NullString
	)

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Price,
		&book.StockQuantity,
		&publishedDate,
		&categoryID,
		&categoryName,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if publishedDate.Valid {
		d := publishedDate.Time
		book.PublishedDate = &d
	}
	if categoryID.Valid {
		id := categoryID.UUID
		book.CategoryID = &id
	}
	if categoryName.Valid {
		name := categoryName.String
		book.CategoryName = &name
	}

	return &book, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new book. A duplicate ISBN surfaces as ErrDuplicateISBN
// via the unique constraint, so concurrent creates cannot both succeed.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, price, stock_quantity, published_date, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Price,
		book.StockQuantity,
		book.PublishedDate,
		book.CategoryID,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// Update writes all mutable columns of an existing book
func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, price = $5, stock_quantity = $6,
		    published_date = $7, category_id = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Price,
		book.StockQuantity,
		book.PublishedDate,
		book.CategoryID,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Delete removes a book from the catalog
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBookNotFound
	}

	return nil
}

// FindByID retrieves a book with its category name resolved in one query
func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`, bookColumns)

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	return book, nil
}

// Search retrieves a page of books matching the given filters along with the
// total number of matching rows. The total is counted before the offset and
// limit are applied so pagination metadata stays accurate on every page.
// Category names are resolved by the join, never per row.
func (r *bookRepository) Search(ctx context.Context, params SearchParams) ([]*domain.Book, int, error) {
	clauses := []string{}
	args := []any{}
	argIndex := 1

	if s := strings.TrimSpace(params.Search); s != "" {
		clauses = append(clauses, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+s+"%")
		argIndex++
	}

	if params.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("b.category_id = $%d", argIndex))
		args = append(args, *params.CategoryID)
		argIndex++
	}

	if params.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("b.price >= $%d", argIndex))
		args = append(args, *params.MinPrice)
		argIndex++
	}

	if params.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("b.price <= $%d", argIndex))
		args = append(args, *params.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books b %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	// Insertion order: created_at with id as a deterministic tiebreaker.
	order := "ASC"
	if params.Descending {
		order = "DESC"
	}

	offset := (params.Page - 1) * params.Size

	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		%s
		ORDER BY b.created_at %s, b.id %s
		LIMIT $%d OFFSET $%d
	`, bookColumns, whereClause, order, order, argIndex, argIndex+1)

	args = append(args, params.Size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating books: %w", err)
	}

	return books, total, nil
}

// AdjustStock applies a stock delta under a row-level lock. The current
// quantity is read with SELECT ... FOR UPDATE so concurrent adjustments on
// the same book serialize instead of losing updates. A delta that would
// drive the stock negative rolls back with ErrInsufficientStock.
func (r *bookRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT stock_quantity FROM books WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock book row: %w", err)
	}

	newQuantity := current + delta
	if newQuantity < 0 {
		return nil, ErrInsufficientStock
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET stock_quantity = $2, updated_at = $3 WHERE id = $1`,
		id, newQuantity, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`, bookColumns)

	book, err := scanBook(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	return book, nil
}
