package repository

import (
	"context"

	"github.com/St1cky1/task-service/internal/entity"
)

// ITaskRepository - хранилище задач.
//
// Create назначает ID; CreationDate берется из переданной задачи и больше не меняется.
// GetByTaskId, Update и Delete возвращают entity.ErrTaskNotFound для неизвестного id.
// Update применяет запрос атомарно: записываются либо все переданные поля, либо ни одно.
// Возвращает строку до записи и после нее, прочитанные под одной блокировкой.
// Delete возвращает удаленную строку.
// ListAll возвращает согласованный снимок в порядке вставки (по id).
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error)
	Update(ctx context.Context, id int, req *entity.UpdateTaskRequest) (old, updated *entity.Task, err error)
	Delete(ctx context.Context, id int) (*entity.Task, error)
	ListAll(ctx context.Context) ([]entity.Task, error)
}
