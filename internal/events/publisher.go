// Package events publishes task lifecycle notifications.
package events

import (
	"context"
	"time"

	"notes/internal/model"
)

type Type string

const (
	TaskCreated Type = "created"
	TaskUpdated Type = "updated"
	TaskDeleted Type = "deleted"
)

type Event struct {
	Type    Type        `json:"type"`
	TaskID  string      `json:"taskId"`
	Changed []string    `json:"changed,omitempty"`
	Task    *model.Task `json:"task,omitempty"`
	At      time.Time   `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
