package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/park285/playpad-server/internal/domain"
)

// memrepo keeps tasks in process memory. Used when no database is configured.
type memrepo struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Task
}

func NewMemoryRepository() Repository {
	return &memrepo{byID: make(map[string]*domain.Task)}
}

func (m *memrepo) List(ctx context.Context) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneTask(m.byID[id]))
	}
	return out, nil
}

func (m *memrepo) Get(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.byID[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (m *memrepo) Insert(ctx context.Context, tasks ...*domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range tasks {
		if task == nil {
			return fmt.Errorf("nil task payload")
		}
		if _, exists := m.byID[task.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ID)
		}
	}
	for _, task := range tasks {
		m.byID[task.ID] = cloneTask(task)
		m.order = append(m.order, task.ID)
	}
	return nil
}

func (m *memrepo) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return fmt.Errorf("nil task payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[task.ID]; !ok {
		return ErrTaskNotFound
	}
	m.byID[task.ID] = cloneTask(task)
	return nil
}

func (m *memrepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrTaskNotFound
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	c := *t
	c.RepeatDays = append([]string(nil), t.RepeatDays...)
	if len(c.RepeatDays) == 0 {
		c.RepeatDays = nil
	}
	return &c
}
