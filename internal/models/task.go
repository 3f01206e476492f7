package models

import "time"

const (
	StatusNotStarted = "Not started"
	StatusInProgress = "In progress"
	StatusComplete   = "Complete"
	StatusBlocked    = "Blocked"
	StatusClosed     = "Closed"
)

// Statuses returns the fixed status vocabulary in display order.
func Statuses() []string {
	return []string{
		StatusNotStarted,
		StatusInProgress,
		StatusComplete,
		StatusBlocked,
		StatusClosed,
	}
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusComplete,
		StatusBlocked, StatusClosed:
		return true
	}
	return false
}

type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
	CreatedBy   int64
	AssignedTo  int64
	CreatedAt   time.Time
}

// TaskView is a task row joined with creator and assignee usernames,
// as rendered on the dashboard.
type TaskView struct {
	ID          int64
	Title       string
	Description string
	Status      string
	CreatedBy   string
	AssignedTo  string
	CreatedAt   time.Time
}
