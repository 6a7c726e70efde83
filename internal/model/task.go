package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Importance string

const (
	ImportanceNormal    Importance = "Normal"
	ImportanceImportant Importance = "Important"
)

func (i Importance) Valid() bool {
	return i == ImportanceNormal || i == ImportanceImportant
}

// ParseImportance matches s against the closed set, ignoring case.
func ParseImportance(s string) (Importance, error) {
	for _, i := range []Importance{ImportanceNormal, ImportanceImportant} {
		if strings.EqualFold(strings.TrimSpace(s), string(i)) {
			return i, nil
		}
	}
	return "", fmt.Errorf("invalid importance %q, expected Normal or Important", s)
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus matches s against the closed set, ignoring case.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusPending, StatusCompleted} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q, expected Pending or Completed", s)
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title" validate:"required"`
	Description string     `gorm:"not null" json:"description" validate:"required"`
	Importance  Importance `gorm:"type:varchar(16);not null;default:Normal" json:"importance" validate:"oneof=Normal Important"`
	Status      Status     `gorm:"type:varchar(16);not null;default:Pending;index" json:"status" validate:"oneof=Pending Completed"`
	DueDate     Date       `gorm:"not null" json:"dueDate" validate:"required"`
	CreatedAt   time.Time  `gorm:"not null;index;autoCreateTime:false" json:"createdAt"`
}

// Overdue reports whether the task is still pending after its due date.
// It is derived on every call and never stored.
func (t Task) Overdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate.Before(now)
}

func (t *Task) Validate() error {
	return validateStruct(t)
}
