package entity

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 500
)

// Valid сообщает, является ли s известным статусом.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	Status       TaskStatus `json:"status"`
	CreationDate time.Time  `json:"creation_date"`
}

// Clone возвращает копию без общих указателей с t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// CreateTaskRequest - тело POST /tasks
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=500"`
	DueDate     *time.Time `json:"due_date"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

// Normalize обрезает пробелы в текстовых полях, ставит статус по умолчанию и переводит срок в UTC.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		r.DueDate = &due
	}
}

// UpdateTaskRequest - тело PATCH /tasks/{id}. Применяются только поля, присутствующие в запросе.
type UpdateTaskRequest struct {
	Title       Optional[string]     `json:"title,omitzero"`
	Description Optional[string]     `json:"description,omitzero"`
	DueDate     Optional[*time.Time] `json:"due_date,omitzero"`
	Status      Optional[TaskStatus] `json:"status,omitzero"`
}

// Empty сообщает, что в запросе нет ни одного поля.
func (r *UpdateTaskRequest) Empty() bool {
	return !r.Title.Set && !r.Description.Set && !r.DueDate.Set && !r.Status.Set
}

// Normalize обрезает пробелы в текстовых полях и переводит срок в UTC.
func (r *UpdateTaskRequest) Normalize() {
	if r.Title.Set && !r.Title.Null {
		r.Title.Value = strings.TrimSpace(r.Title.Value)
	}
	if r.Description.Set && !r.Description.Null {
		r.Description.Value = strings.TrimSpace(r.Description.Value)
	}
	if r.DueDate.Set && r.DueDate.Value != nil {
		due := r.DueDate.Value.UTC()
		r.DueDate.Value = &due
	}
}

// Apply записывает присутствующие поля в t. ID и CreationDate не меняются.
func (r *UpdateTaskRequest) Apply(t *Task) {
	if r.Title.Set {
		t.Title = r.Title.Value
	}
	if r.Description.Set {
		// null очищает описание
		t.Description = r.Description.Value
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			t.DueDate = nil
		} else {
			due := *r.DueDate.Value
			t.DueDate = &due
		}
	}
	if r.Status.Set {
		t.Status = r.Status.Value
	}
}

// Changes перечисляет поля, различающиеся между old и updated, парами {"old": ..., "new": ...}.
func Changes(old, updated *Task) map[string]any {
	changes := make(map[string]any)
	if old.Title != updated.Title {
		changes["title"] = map[string]any{"old": old.Title, "new": updated.Title}
	}
	if old.Description != updated.Description {
		changes["description"] = map[string]any{"old": old.Description, "new": updated.Description}
	}
	if !sameTime(old.DueDate, updated.DueDate) {
		changes["due_date"] = map[string]any{"old": old.DueDate, "new": updated.DueDate}
	}
	if old.Status != updated.Status {
		changes["status"] = map[string]any{"old": old.Status, "new": updated.Status}
	}
	return changes
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
