// Package scheduler manages calendar tasks: CRUD, prompt-driven generation
// and CSV/ICS/PDF export.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/playpad-server/internal/domain"
	"github.com/park285/playpad-server/internal/msgcat"
	"go.uber.org/zap"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrEmptyPatch   = errors.New("no data provided")
	ErrEmptyPrompt  = errors.New("empty prompt provided")
)

// FieldError names the missing field. It matches ErrMissingField.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "Missing required field: " + e.Field }

func (e *FieldError) Is(target error) bool { return target == ErrMissingField }

type Service struct {
	repo    Repository
	catalog *msgcat.Catalog
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the uuid generator, for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(repo Repository, catalog *msgcat.Catalog, logger *zap.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Task, error) {
	return s.repo.List(ctx)
}

// Create stores a new task with a fresh id. Title, date, times and category
// are required.
func (s *Service) Create(ctx context.Context, in domain.Task) (*domain.Task, error) {
	required := []struct {
		name  string
		value string
	}{
		{"title", in.Title},
		{"date", in.Date},
		{"startTime", in.StartTime},
		{"endTime", in.EndTime},
		{"category", in.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &FieldError{Field: f.name}
		}
	}

	now := s.now()
	task := in
	task.ID = s.newID()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := s.repo.Insert(ctx, &task); err != nil {
		return nil, err
	}
	s.logger.Info("task_created", zap.String("id", task.ID), zap.String("category", task.Category))
	return &task, nil
}

// Update merges patch into the stored task. The id is preserved.
func (s *Service) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(task)
	task.ID = id
	task.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task_updated", zap.String("id", id))
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task_deleted", zap.String("id", id))
	return nil
}

// Generate builds tasks from a prompt and stores them.
func (s *Service) Generate(ctx context.Context, prompt string) ([]*domain.Task, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	tasks := GenerateTasks(prompt, s.now(), s.newID)
	if len(tasks) == 0 {
		return tasks, nil
	}
	if err := s.repo.Insert(ctx, tasks...); err != nil {
		return nil, err
	}
	s.logger.Info("tasks_generated", zap.Int("count", len(tasks)), zap.Bool("repeating", tasks[0].Repeating))
	return tasks, nil
}
