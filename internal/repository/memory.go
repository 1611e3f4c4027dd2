package repository

import (
	"context"
	"sync"

	"github.com/St1cky1/task-service/internal/entity"
)

// MemoryTaskRepository хранит задачи в памяти процесса. Все записи и снимки идут под одной блокировкой.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int
	tasks  map[int]entity.Task
	order  []int
}

var _ ITaskRepository = (*MemoryTaskRepository)(nil)

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		nextID: 1,
		tasks:  make(map[int]entity.Task),
	}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := task.Clone()
	created.ID = r.nextID
	r.nextID++

	r.tasks[created.ID] = created
	r.order = append(r.order, created.ID)

	out := created.Clone()
	return &out, nil
}

func (r *MemoryTaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[taskId]
	if !ok {
		return nil, entity.ErrTaskNotFound
	}
	out := task.Clone()
	return &out, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id int, req *entity.UpdateTaskRequest) (*entity.Task, *entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, nil, entity.ErrTaskNotFound
	}

	updated := task.Clone()
	req.Apply(&updated)
	r.tasks[id] = updated

	old := task.Clone()
	out := updated.Clone()
	return &old, &out, nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id int) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, entity.ErrTaskNotFound
	}
	delete(r.tasks, id)

	for i, taskID := range r.order {
		if taskID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &task, nil
}

func (r *MemoryTaskRepository) ListAll(ctx context.Context) ([]entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]entity.Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id].Clone())
	}
	return tasks, nil
}
