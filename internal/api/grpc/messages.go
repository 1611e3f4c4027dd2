package grpc

import "github.com/St1cky1/task-service/internal/entity"

type GetTaskRequest struct {
	ID int `json:"id"`
}

// UpdateTaskRequest - id задачи и частичное обновление; отсутствующие поля не меняются.
type UpdateTaskRequest struct {
	ID     int                      `json:"id"`
	Fields entity.UpdateTaskRequest `json:"fields"`
}

type DeleteTaskRequest struct {
	ID int `json:"id"`
}

type DeleteTaskResponse struct{}

// ListTasksRequest повторяет параметры GET /tasks.
type ListTasksRequest struct {
	Status    string `json:"status,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     *int   `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type ListTasksResponse struct {
	Tasks []entity.Task `json:"tasks"`
}

// SuggestTasksRequest - Limit 0 означает значение по умолчанию.
type SuggestTasksRequest struct {
	Limit int `json:"limit,omitempty"`
}

type SuggestTasksResponse struct {
	Suggestions []entity.Suggestion `json:"suggestions"`
}
