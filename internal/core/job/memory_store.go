package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Records are copied on the way
// in and out so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	subs    map[string][]chan string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record), subs: make(map[string][]chan string)}
}

func (m *MemoryStore) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[rec.ID]; exists {
		return fmt.Errorf("job %s already exists", rec.ID)
	}
	m.records[rec.ID] = rec.Clone()
	m.notify(rec.ID)
	return nil
}

func (m *MemoryStore) UpdateFields(_ context.Context, id string, f Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	f.Apply(rec)
	m.notify(id)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Subscribe delivers "updated" after every write to id until cancel is called.
func (m *MemoryStore) Subscribe(_ context.Context, id string) (<-chan string, func(), error) {
	ch := make(chan string, 16)
	m.mu.Lock()
	m.subs[id] = append(m.subs[id], ch)
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			list := m.subs[id]
			for i, c := range list {
				if c == ch {
					m.subs[id] = append(list[:i], list[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// notify must be called with mu held.
func (m *MemoryStore) notify(id string) {
	for _, ch := range m.subs[id] {
		select {
		case ch <- "updated":
		default:
		}
	}
}
