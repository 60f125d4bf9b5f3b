package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a book in the catalog. CategoryName is resolved at read
// time from the joined category row and is never persisted.
type Book struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Author        string     `json:"author" db:"author"`
	ISBN          string     `json:"isbn" db:"isbn"`
	Price         int64      `json:"price" db:"price"`
	StockQuantity int        `json:"stock_quantity" db:"stock_quantity"`
	PublishedDate *time.Time `json:"published_date,omitempty" db:"published_date"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	CategoryName  *string    `json:"category_name,omitempty" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
