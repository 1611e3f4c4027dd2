package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/St1cky1/task-service/internal/repository"
)

// Chain вызывает обработчики по порядку и останавливается на первой ошибке.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, event *entity.TaskEvent) error {
		for _, h := range handlers {
			if err := h.HandleTaskEvent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

// LogHandler пишет журнал действий в структурированный лог.
func LogHandler(logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event *entity.TaskEvent) error {
		attrs := []any{
			"event_id", event.ID,
			"action", event.Action,
			"task_id", event.TaskID,
			"occurred_at", event.Timestamp,
		}
		if len(event.Changes) > 0 {
			attrs = append(attrs, "changes", event.Changes)
		}
		logger.InfoContext(ctx, "task activity", attrs...)
		return nil
	})
}

// StoreHandler сохраняет события в журнал событий задач.
func StoreHandler(repo repository.ITaskEventRepository) Handler {
	return HandlerFunc(func(ctx context.Context, event *entity.TaskEvent) error {
		if err := repo.Create(ctx, event); err != nil {
			return fmt.Errorf("store task event %s: %w", event.ID, err)
		}
		return nil
	})
}
