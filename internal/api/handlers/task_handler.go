package handlers

import (
	"net/http"
	"strconv"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/St1cky1/task-service/internal/query"
	"github.com/St1cky1/task-service/internal/suggest"
	"github.com/St1cky1/task-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService usecase.ITaskService
}

func NewTaskHandler(taskService usecase.ITaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// частичное обновление: меняются только поля, присутствующие в теле
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req entity.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /tasks?status=&due_date=&sort_by=&sort_order=&limit=&offset=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// GET /tasks/suggest?limit=
func (h *TaskHandler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	limit := suggest.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, entity.MalformedError("limit must be an integer"))
			return
		}
		limit = n
	}

	suggestions, err := h.taskService.SuggestTasks(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestions)
}

func taskIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, entity.MalformedError("task id must be an integer")
	}
	return id, nil
}

func listParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	var params query.Params

	if raw := q.Get("status"); raw != "" {
		status := entity.TaskStatus(raw)
		params.Filter.Status = &status
	}
	if raw := q.Get("due_date"); raw != "" {
		due, err := query.ParseDueDate(raw)
		if err != nil {
			return params, err
		}
		params.Filter.DueDate = &due
	}

	params.SortBy = query.SortBy(q.Get("sort_by"))
	params.SortOrder = query.SortOrder(q.Get("sort_order"))

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, entity.MalformedError("limit must be an integer")
		}
		params.Limit = &limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return params, entity.MalformedError("offset must be an integer")
		}
		params.Offset = offset
	}

	return params, params.Validate()
}
