package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync/internal/model"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and fills its ID.
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `
        INSERT INTO tasks (user_id, title, is_completed, completed_at, due_date, priority, category, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
        RETURNING id
    `
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	return observe(ctx, "insert", "tasks", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query,
			t.UserID, t.Title, t.IsCompleted, t.CompletedAt, t.DueDate, t.Priority, t.Category, t.CreatedAt,
		).Scan(&t.ID)
	})
}

// ListForRange returns the user's tasks that touch [from, to]: due in range,
// undated and created in range, or completed in range. Timestamp bounds are
// padded by a day on each side so callers can resolve days in any timezone.
func (r *TaskRepository) ListForRange(ctx context.Context, userID int, from, to time.Time) ([]model.Task, error) {
	query := `
        SELECT id, user_id, title, is_completed, completed_at, due_date, priority, COALESCE(category, ''), created_at
        FROM tasks
        WHERE user_id = $1
          AND (
                due_date BETWEEN $2 AND $3
             OR (due_date IS NULL AND created_at >= $4 AND created_at < $5)
             OR (completed_at >= $4 AND completed_at < $5)
          )
        ORDER BY id
    `
	lo, hi := from.AddDate(0, 0, -1), to.AddDate(0, 0, 2)

	var tasks []model.Task
	err := observe(ctx, "select", "tasks", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID, from, to, lo, hi)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t model.Task
			if err := rows.Scan(
				&t.ID, &t.UserID, &t.Title, &t.IsCompleted, &t.CompletedAt,
				&t.DueDate, &t.Priority, &t.Category, &t.CreatedAt,
			); err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	return tasks, err
}
