package model

import "time"

type Habit struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitLog is presence-only: a row means the habit was completed on CompletedDate.
type HabitLog struct {
	HabitID       int       `json:"habit_id"`
	CompletedDate time.Time `json:"completed_date"`
}
