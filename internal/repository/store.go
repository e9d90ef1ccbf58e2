package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync/internal/model"
	"lifesync/pkg/circuitbreaker"
)

// Store serves the analytics read side from PostgreSQL. When a breaker is set,
// reads fail fast with circuitbreaker.ErrOpen while the database is down.
type Store struct {
	habits  *HabitRepository
	tasks   *TaskRepository
	breaker *circuitbreaker.CircuitBreaker
}

// NewStore builds the store; breaker may be nil.
func NewStore(db *pgxpool.Pool, breaker *circuitbreaker.CircuitBreaker) *Store {
	return &Store{habits: NewHabitRepository(db), tasks: NewTaskRepository(db), breaker: breaker}
}

func (s *Store) ActiveHabits(ctx context.Context, ownerID int) ([]model.Habit, error) {
	var habits []model.Habit
	err := s.guard(func() (err error) {
		habits, err = s.habits.ListActiveByUser(ctx, ownerID)
		return err
	})
	return habits, err
}

func (s *Store) CompletionDates(ctx context.Context, habitID int, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := s.guard(func() (err error) {
		dates, err = s.habits.CompletionDates(ctx, habitID, from, to)
		return err
	})
	return dates, err
}

func (s *Store) Tasks(ctx context.Context, ownerID int, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := s.guard(func() (err error) {
		tasks, err = s.tasks.ListForRange(ctx, ownerID, from, to)
		return err
	})
	return tasks, err
}

func (s *Store) guard(fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Execute(fn)
}
