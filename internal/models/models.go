package models

import "time"

// Task represents a single to-do item. Optional fields use nil pointers for
// "no value"; due and scheduled dates are calendar dates carried as
// "YYYY-MM-DD" strings with no time component.
type Task struct {
	ID            string
	Title         string
	Notes         *string
	DueDate       *string
	ScheduledDate *string
	Priority      int
	Completed     bool
	CompletedAt   *time.Time // set iff Completed
	ListID        *string    // nil means the task lives in the inbox
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// List is a user-defined grouping of tasks
type List struct {
	ID        string
	Name      string
	Color     *string
	CreatedAt time.Time
}
