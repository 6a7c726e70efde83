// Package report derives summary counts from a task list.
package report

import (
	"time"

	"notes/internal/model"
)

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Important int `json:"important"`
	Overdue   int `json:"overdue"`
}

// ComputeStats counts tasks by status and importance. A task is overdue when
// it is pending and its due date lies before now.
func ComputeStats(tasks []model.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusCompleted:
			s.Completed++
		}
		if t.Importance == model.ImportanceImportant {
			s.Important++
		}
		if t.Overdue(now) {
			s.Overdue++
		}
	}
	return s
}
