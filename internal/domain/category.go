package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups books. BookCount is derived from the books referencing the
// category and is never persisted.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	BookCount   int       `json:"book_count" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
