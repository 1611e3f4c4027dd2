package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ITaskEventRepository - журнал событий задач.
type ITaskEventRepository interface {
	Create(ctx context.Context, event *entity.TaskEvent) error
	ListByTaskID(ctx context.Context, taskID int) ([]entity.TaskEvent, error)
}

// TaskEventRepository хранит события задач в PostgreSQL. Повторная запись события с тем же id игнорируется.
type TaskEventRepository struct {
	db *pgxpool.Pool
}

var _ ITaskEventRepository = (*TaskEventRepository)(nil)

func NewTaskEventRepository(db *pgxpool.Pool) *TaskEventRepository {
	return &TaskEventRepository{
		db: db,
	}
}

func (r *TaskEventRepository) Create(ctx context.Context, event *entity.TaskEvent) error {
	id, err := uuid.Parse(event.ID)
	if err != nil {
		return fmt.Errorf("event id %q: %w", event.ID, err)
	}

	oldValues, err := jsonOrNil(event.OldValues)
	if err != nil {
		return err
	}
	newValues, err := jsonOrNil(event.NewValues)
	if err != nil {
		return err
	}
	var changes []byte
	if len(event.Changes) > 0 {
		if changes, err = json.Marshal(event.Changes); err != nil {
			return fmt.Errorf("encode changes: %w", err)
		}
	}

	query := `
	INSERT INTO task_events (id, action, task_id, old_values, new_values, changes, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.Exec(ctx, query,
		id,
		string(event.Action),
		event.TaskID,
		oldValues,
		newValues,
		changes,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert task event: %w", err)
	}
	return nil
}

func (r *TaskEventRepository) ListByTaskID(ctx context.Context, taskID int) ([]entity.TaskEvent, error) {
	query := `
	SELECT id, action, task_id, old_values, new_values, changes, occurred_at
	FROM task_events
	WHERE task_id = $1
	ORDER BY occurred_at, recorded_at
	`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("select task events: %w", err)
	}
	defer rows.Close()

	events := make([]entity.TaskEvent, 0)
	for rows.Next() {
		var (
			event                       entity.TaskEvent
			id                          uuid.UUID
			action                      string
			oldValues, newValues, delta []byte
		)
		if err := rows.Scan(&id, &action, &event.TaskID, &oldValues, &newValues, &delta, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan task event: %w", err)
		}
		event.ID = id.String()
		event.Action = entity.ActionType(action)
		event.Timestamp = event.Timestamp.UTC()

		if oldValues != nil {
			event.OldValues = &entity.Task{}
			if err := json.Unmarshal(oldValues, event.OldValues); err != nil {
				return nil, fmt.Errorf("decode old values: %w", err)
			}
		}
		if newValues != nil {
			event.NewValues = &entity.Task{}
			if err := json.Unmarshal(newValues, event.NewValues); err != nil {
				return nil, fmt.Errorf("decode new values: %w", err)
			}
		}
		if delta != nil {
			if err := json.Unmarshal(delta, &event.Changes); err != nil {
				return nil, fmt.Errorf("decode changes: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func jsonOrNil(task *entity.Task) ([]byte, error) {
	if task == nil {
		return nil, nil
	}
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	return data, nil
}
