package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync/internal/model"
)

// ErrNotFound is returned when a habit does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

type HabitRepository struct {
	db *pgxpool.Pool
}

func NewHabitRepository(db *pgxpool.Pool) *HabitRepository {
	return &HabitRepository{db: db}
}

// Create inserts a habit and fills its ID.
func (r *HabitRepository) Create(ctx context.Context, h *model.Habit) error {
	query := `
        INSERT INTO habits (user_id, name, is_active, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return observe(ctx, "insert", "habits", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, h.UserID, h.Name, h.IsActive, h.CreatedAt).Scan(&h.ID)
	})
}

// ListActiveByUser returns the user's active habits ordered by id.
func (r *HabitRepository) ListActiveByUser(ctx context.Context, userID int) ([]model.Habit, error) {
	query := `
        SELECT id, user_id, name, is_active, created_at
        FROM habits
        WHERE user_id = $1 AND is_active
        ORDER BY id
    `
	var habits []model.Habit
	err := observe(ctx, "select", "habits", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var h model.Habit
			if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.IsActive, &h.CreatedAt); err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	return habits, err
}

// CompletionDates returns the days in [from, to] the habit was completed, ascending.
func (r *HabitRepository) CompletionDates(ctx context.Context, habitID int, from, to time.Time) ([]time.Time, error) {
	query := `
        SELECT completed_date
        FROM habit_logs
        WHERE habit_id = $1 AND completed_date BETWEEN $2 AND $3
        ORDER BY completed_date
    `
	var dates []time.Time
	err := observe(ctx, "select", "habit_logs", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, habitID, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var d time.Time
			if err := rows.Scan(&d); err != nil {
				return err
			}
			dates = append(dates, d)
		}
		return rows.Err()
	})
	return dates, err
}

// IsOwned reports whether habitID exists and belongs to userID.
func (r *HabitRepository) IsOwned(ctx context.Context, userID, habitID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM habits WHERE id = $1 AND user_id = $2)`
	var ok bool
	err := observe(ctx, "select", "habits", func(ctx context.Context) error {
		return r.db.QueryRow(ctx, query, habitID, userID).Scan(&ok)
	})
	return ok, err
}

// MarkComplete records a completion. changed is false when the day was already logged.
func (r *HabitRepository) MarkComplete(ctx context.Context, userID, habitID int, day time.Time) (bool, error) {
	query := `
        INSERT INTO habit_logs (habit_id, completed_date)
        SELECT id, $3 FROM habits WHERE id = $1 AND user_id = $2
        ON CONFLICT (habit_id, completed_date) DO NOTHING
    `
	return r.mutate(ctx, "insert", query, userID, habitID, day)
}

// Unmark removes a completion. changed is false when the day was not logged.
func (r *HabitRepository) Unmark(ctx context.Context, userID, habitID int, day time.Time) (bool, error) {
	query := `
        DELETE FROM habit_logs l
        USING habits h
        WHERE l.habit_id = h.id AND h.id = $1 AND h.user_id = $2 AND l.completed_date = $3
    `
	return r.mutate(ctx, "delete", query, userID, habitID, day)
}

func (r *HabitRepository) mutate(ctx context.Context, op, query string, userID, habitID int, day time.Time) (bool, error) {
	var affected int64
	err := observe(ctx, op, "habit_logs", func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, habitID, userID, day)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	owned, err := r.IsOwned(ctx, userID, habitID)
	if err != nil {
		return false, err
	}
	if !owned {
		return false, ErrNotFound
	}
	return false, nil
}
