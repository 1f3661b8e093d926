package postgres

import (
	"context"
	"fmt"
	"time"

	"emlak-scraper/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New opens a pool and waits for the database to answer, retrying while it boots.
func New(ctx context.Context, dsn string) (*Service, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	log := logger.New("Postgres")

	for attempt := 1; attempt <= 10; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			break
		}
		log.LogWarnf("ping failed (attempt %d/10): %v", attempt, err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}
	return &Service{pool: pool, log: log}, nil
}

func (s *Service) Pool() *pgxpool.Pool { return s.pool }
func (s *Service) Close()              { s.pool.Close() }

func (s *Service) HealthCheck(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres query failed: %w", err)
	}
	return nil
}
