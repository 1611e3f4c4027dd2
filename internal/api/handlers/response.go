package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// ErrorResponse - тело любого ответа с ошибкой.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// StatusFor сопоставляет ошибку сервиса HTTP статусу.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrMalformedRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет {"detail": ...}. Внутренние ошибки логируются и заменяются общим сообщением.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	detail := err.Error()
	switch status {
	case http.StatusNotFound:
		detail = "Task not found"
	case http.StatusInternalServerError:
		detail = "Internal server error"
	}

	attrs := []any{
		"status_code", status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		slog.DebugContext(r.Context(), "request rejected", attrs...)
	}

	respondJSON(w, status, ErrorResponse{Detail: detail})
}

// decodeJSON читает из тела один JSON объект.
// Неразбираемый ввод - ErrMalformedRequest; корректный JSON с неверными типами значений - ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return entity.MalformedError("request body is empty")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return entity.MalformedError("request body is truncated")
	case errors.As(err, &syntaxErr):
		return entity.MalformedError("invalid JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return entity.MalformedError("request body must be a JSON object")
		}
		return entity.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", jsonKind(typeErr.Type.Kind().String())))
	default:
		return entity.NewValidationError("", fmt.Sprintf("invalid request body: %v", err))
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "int", "int64", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "struct", "map":
		return "object"
	default:
		return goKind
	}
}
