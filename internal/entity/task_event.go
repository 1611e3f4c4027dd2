package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionCreate ActionType = "created"
	ActionUpdate ActionType = "updated"
	ActionDelete ActionType = "deleted"
)

// TaskEvent - сообщение об изменении задачи, публикуется в RabbitMQ.
type TaskEvent struct {
	ID        string         `json:"id"`
	Action    ActionType     `json:"action"`
	TaskID    int            `json:"task_id"`
	OldValues *Task          `json:"old_values,omitempty"`
	NewValues *Task          `json:"new_values,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewTaskEvent собирает событие для action. old равен nil при создании, updated равен nil при удалении.
func NewTaskEvent(action ActionType, taskID int, old, updated *Task, at time.Time) *TaskEvent {
	event := &TaskEvent{
		ID:        uuid.NewString(),
		Action:    action,
		TaskID:    taskID,
		Timestamp: at.UTC(),
	}
	if old != nil {
		o := old.Clone()
		event.OldValues = &o
	}
	if updated != nil {
		n := updated.Clone()
		event.NewValues = &n
	}
	if action == ActionUpdate && old != nil && updated != nil {
		event.Changes = Changes(old, updated)
	}
	return event
}
