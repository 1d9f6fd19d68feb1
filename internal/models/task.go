package models

import "time"

// Task statuses are free-form strings; these two are what the UI writes.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task is a billable unit of work belonging to a client.
// Tasks are read-only from the invoice workflow's perspective: invoicing
// aggregates them but never mutates them.
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint   `gorm:"index;not null" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client"`

	Title  string  `gorm:"size:255" json:"title,omitempty"`
	Price  float64 `gorm:"not null" json:"price"`
	Status string  `gorm:"size:50;index" json:"status"`
}
