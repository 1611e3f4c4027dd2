package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/St1cky1/task-service/internal/query"
	"github.com/St1cky1/task-service/internal/suggest"
	"github.com/St1cky1/task-service/internal/usecase"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TaskHandler реализует tasks.v1.TaskService поверх usecase.ITaskService
type TaskHandler struct {
	taskService usecase.ITaskService
	logger      *slog.Logger
}

var _ TaskServiceServer = (*TaskHandler)(nil)

func NewTaskServiceServer(taskService usecase.ITaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask - создание задачи
func (h *TaskHandler) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	task, err := h.taskService.CreateTask(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "CreateTask", err)
	}
	return task, nil
}

// GetTask - получение задачи
func (h *TaskHandler) GetTask(ctx context.Context, req *GetTaskRequest) (*entity.Task, error) {
	task, err := h.taskService.GetTask(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(ctx, "GetTask", err)
	}
	return task, nil
}

// UpdateTask - частичное обновление задачи
func (h *TaskHandler) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*entity.Task, error) {
	task, err := h.taskService.UpdateTask(ctx, req.ID, &req.Fields)
	if err != nil {
		return nil, h.toStatus(ctx, "UpdateTask", err)
	}
	return task, nil
}

// DeleteTask - удаление задачи
func (h *TaskHandler) DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error) {
	if err := h.taskService.DeleteTask(ctx, req.ID); err != nil {
		return nil, h.toStatus(ctx, "DeleteTask", err)
	}
	return &DeleteTaskResponse{}, nil
}

// ListTasks - список задач с фильтрами, сортировкой и пагинацией
func (h *TaskHandler) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	params := query.Params{
		SortBy:    query.SortBy(req.SortBy),
		SortOrder: query.SortOrder(req.SortOrder),
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	if req.Status != "" {
		st := entity.TaskStatus(req.Status)
		params.Filter.Status = &st
	}
	if req.DueDate != "" {
		due, err := query.ParseDueDate(req.DueDate)
		if err != nil {
			return nil, h.toStatus(ctx, "ListTasks", err)
		}
		params.Filter.DueDate = &due
	}

	tasks, err := h.taskService.ListTasks(ctx, params)
	if err != nil {
		return nil, h.toStatus(ctx, "ListTasks", err)
	}
	return &ListTasksResponse{Tasks: tasks}, nil
}

// SuggestTasks - подсказки новых задач
func (h *TaskHandler) SuggestTasks(ctx context.Context, req *SuggestTasksRequest) (*SuggestTasksResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = suggest.DefaultLimit
	}
	suggestions, err := h.taskService.SuggestTasks(ctx, limit)
	if err != nil {
		return nil, h.toStatus(ctx, "SuggestTasks", err)
	}
	return &SuggestTasksResponse{Suggestions: suggestions}, nil
}

// toStatus переводит ошибку сервиса в gRPC статус; детали внутренних ошибок остаются в логе.
func (h *TaskHandler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, entity.ErrTaskNotFound):
		return status.Error(codes.NotFound, "Task not found")
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrMalformedRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.ErrorContext(ctx, "grpc call failed", "method", method, "error", err)
		return status.Error(codes.Internal, "Internal server error")
	}
}
