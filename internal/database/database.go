package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"book-catalog/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the database handle and its lifecycle
type Service struct {
	db *sql.DB
}

// New opens a connection pool against the configured Postgres instance
func New(cfg config.DatabaseConfig) (*Service, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Service{db: db}, nil
}

// DB exposes the underlying handle for repositories and migrations
func (s *Service) DB() *sql.DB {
	return s.db
}

// Health pings the database and reports pool statistics
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

// Close releases the connection pool
func (s *Service) Close() error {
	return s.db.Close()
}
