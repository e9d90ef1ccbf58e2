package mq

import "time"

// ReportRequestedPayload asks the analytics service to compose a progress report.
type ReportRequestedPayload struct {
	RequestID string `json:"request_id"`
	UserID    int    `json:"user_id"`
	Period    string `json:"period"` // weekly / monthly
}

// ReportGeneratedPayload carries the composed report to the notification side.
type ReportGeneratedPayload struct {
	RequestID   string    `json:"request_id"`
	UserID      int       `json:"user_id"`
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
	Report      any       `json:"report"`
}

// HabitLogChangedPayload is emitted after a completion is marked or unmarked.
type HabitLogChangedPayload struct {
	UserID        int    `json:"user_id"`
	HabitID       int    `json:"habit_id"`
	CompletedDate string `json:"completed_date"`
	Action        string `json:"action"` // mark / unmark
}
