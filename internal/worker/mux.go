package worker

import (
	"context"
	"time"

	"emlak-scraper/internal/logger"

	"github.com/hibiken/asynq"
)

// Mux routes task types to handlers and logs every task run.
type Mux struct {
	mux *asynq.ServeMux
	log *logger.Logger
}

func NewMux() *Mux {
	m := &Mux{mux: asynq.NewServeMux(), log: logger.New("Worker")}
	m.mux.Use(m.logging)
	return m
}

func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, h)
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }

func (m *Mux) logging(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, t)
		if err != nil {
			m.log.LogErrorf("task %s failed after %v: %v", t.Type(), time.Since(start), err)
			return err
		}
		m.log.LogDebugf("task %s done in %v", t.Type(), time.Since(start))
		return nil
	})
}

// NewServer builds the asynq worker pool that consumes the default queue.
func NewServer(opt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	log := logger.New("Worker")
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{"default": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.LogErrorf("task %s gave up: %v", task.Type(), err)
		}),
	})
}
