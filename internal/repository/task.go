package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, due_date, status, creation_date`

// TaskRepository - хранилище задач в PostgreSQL.
type TaskRepository struct {
	db *pgxpool.Pool
}

var _ ITaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {

	query := `
	INSERT INTO tasks (title, description, due_date, status, creation_date)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + taskColumns

	createdTask, err := scanTask(r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status,
		task.CreationDate,
	))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return createdTask, nil
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, fmt.Errorf("select task %d: %w", taskId, err)
	}

	return task, nil
}

// Update - частичное обновление в одной транзакции: строка блокируется SELECT ... FOR UPDATE,
// поэтому старые значения соответствуют именно той версии, к которой применено изменение
func (r *TaskRepository) Update(ctx context.Context, id int, req *entity.UpdateTaskRequest) (*entity.Task, *entity.Task, error) {
	// динамически строим SET часть запроса
	var sets []string
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if req.Title.Set {
		add("title", req.Title.Value)
	}
	if req.Description.Set {
		add("description", req.Description.Value)
	}
	if req.DueDate.Set {
		add("due_date", req.DueDate.Value)
	}
	if req.Status.Set {
		add("status", req.Status.Value)
	}

	var old, updated *entity.Task
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		old, err = scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			updated = old
			return nil
		}

		query := `
        UPDATE tasks
        SET ` + strings.Join(sets, ", ") + `
        WHERE id = $` + strconv.Itoa(len(args)+1) + `
        RETURNING ` + taskColumns

		updated, err = scanTask(tx.QueryRow(ctx, query, append(args, id)...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, entity.ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("update task %d: %w", id, err)
	}

	return old, updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) (*entity.Task, error) {
	task, err := scanTask(r.db.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task %d: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Status,
		&task.CreationDate,
	)
	if err != nil {
		return nil, err
	}
	task.CreationDate = task.CreationDate.UTC()
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		task.DueDate = &due
	}
	return &task, nil
}
