package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/park285/playpad-server/internal/domain"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrDuplicateTask = errors.New("task already exists")
)

// Repository persists tasks. List returns tasks in insertion order.
type Repository interface {
	List(ctx context.Context) ([]*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Insert(ctx context.Context, tasks ...*domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

const schema = `
	CREATE TABLE IF NOT EXISTS scheduler_tasks (
		id           TEXT PRIMARY KEY,
		title        TEXT        NOT NULL,
		start_time   TEXT        NOT NULL,
		end_time     TEXT        NOT NULL,
		category     TEXT        NOT NULL,
		task_date    TEXT        NOT NULL,
		color        TEXT        NOT NULL DEFAULT '',
		completed    BOOLEAN     NOT NULL DEFAULT FALSE,
		ai_generated BOOLEAN     NOT NULL DEFAULT FALSE,
		repeating    BOOLEAN     NOT NULL DEFAULT FALSE,
		repeat_days  JSONB       NOT NULL DEFAULT '[]'::jsonb,
		seq          BIGSERIAL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const selectColumns = `
		id,
		title,
		start_time,
		end_time,
		category,
		task_date,
		color,
		completed,
		ai_generated,
		repeating,
		repeat_days,
		created_at,
		updated_at`

type repository struct {
	db *sql.DB
}

// NewRepository returns the PostgreSQL repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// EnsureSchema creates the tasks table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create scheduler_tasks: %w", err)
	}
	return nil
}

// OpenPostgres opens and pings a pooled connection.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (r *repository) List(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT` + selectColumns + `
		FROM scheduler_tasks
		ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *repository) Get(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT` + selectColumns + `
		FROM scheduler_tasks
		WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *repository) Insert(ctx context.Context, tasks ...*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tasks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO scheduler_tasks (
			id,
			title,
			start_time,
			end_time,
			category,
			task_date,
			color,
			completed,
			ai_generated,
			repeating,
			repeat_days,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)`

	for _, task := range tasks {
		if task == nil {
			return fmt.Errorf("nil task payload")
		}
		days, err := marshalDays(task.RepeatDays)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			task.ID,
			task.Title,
			task.StartTime,
			task.EndTime,
			task.Category,
			task.Date,
			task.Color,
			task.Completed,
			task.AIGenerated,
			task.Repeating,
			days,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ID)
			}
			return fmt.Errorf("insert task: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tasks: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return fmt.Errorf("nil task payload")
	}
	days, err := marshalDays(task.RepeatDays)
	if err != nil {
		return err
	}
	const query = `
		UPDATE scheduler_tasks
		SET
			title = $2,
			start_time = $3,
			end_time = $4,
			category = $5,
			task_date = $6,
			color = $7,
			completed = $8,
			ai_generated = $9,
			repeating = $10,
			repeat_days = $11::jsonb,
			updated_at = $12
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.StartTime,
		task.EndTime,
		task.Category,
		task.Date,
		task.Color,
		task.Completed,
		task.AIGenerated,
		task.Repeating,
		days,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduler_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		daysJSON []byte
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.StartTime,
		&task.EndTime,
		&task.Category,
		&task.Date,
		&task.Color,
		&task.Completed,
		&task.AIGenerated,
		&task.Repeating,
		&daysJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &task.RepeatDays); err != nil {
			return nil, fmt.Errorf("unmarshal repeat_days: %w", err)
		}
	}
	if len(task.RepeatDays) == 0 {
		task.RepeatDays = nil
	}
	return &task, nil
}

func marshalDays(days []string) ([]byte, error) {
	if days == nil {
		days = []string{}
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("marshal repeat_days: %w", err)
	}
	return raw, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
