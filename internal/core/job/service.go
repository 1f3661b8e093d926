package job

import (
	"context"
	"errors"
)

// Subscriber is implemented by stores that can push change notifications.
type Subscriber interface {
	Subscribe(ctx context.Context, id string) (<-chan string, func(), error)
}

// ErrStreamUnsupported is returned by Subscribe when the backing store has no notifications.
var ErrStreamUnsupported = errors.New("job store does not support update streams")

// JobService is the read/write surface shared by handlers and the orchestrator.
type JobService struct {
	store Store
}

func NewJobService(store Store) *JobService { return &JobService{store: store} }

func (s *JobService) Create(ctx context.Context, rec *Record) error {
	return s.store.Insert(ctx, rec)
}

func (s *JobService) Get(ctx context.Context, id string) (*Record, error) {
	return s.store.Get(ctx, id)
}

func (s *JobService) ListRecent(ctx context.Context) ([]*Record, error) {
	return s.store.ListRecent(ctx, RecentLimit)
}

func (s *JobService) Update(ctx context.Context, id string, f Fields) error {
	return s.store.UpdateFields(ctx, id, f)
}

// Subscribe forwards to the store when it supports notifications.
func (s *JobService) Subscribe(ctx context.Context, id string) (<-chan string, func(), error) {
	sub, ok := s.store.(Subscriber)
	if !ok {
		return nil, nil, ErrStreamUnsupported
	}
	return sub.Subscribe(ctx, id)
}

// HealthCheck pings the store when it exposes a probe.
func (s *JobService) HealthCheck(ctx context.Context) error {
	type checker interface {
		HealthCheck(ctx context.Context) error
	}
	if c, ok := s.store.(checker); ok {
		return c.HealthCheck(ctx)
	}
	_, err := s.store.ListRecent(ctx, 1)
	return err
}
