package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"gorm.io/gorm"
)

// taskRecord - строка таблицы tasks для gorm.
type taskRecord struct {
	ID           int        `gorm:"primaryKey;autoIncrement"`
	Title        string     `gorm:"size:200;not null"`
	Description  string     `gorm:"size:500;not null;default:''"`
	DueDate      *time.Time `gorm:"index"`
	Status       string     `gorm:"size:20;not null;index"`
	CreationDate time.Time  `gorm:"not null;index"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func (r taskRecord) toEntity() entity.Task {
	task := entity.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       entity.TaskStatus(r.Status),
		CreationDate: r.CreationDate.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}

func recordFromEntity(t *entity.Task) taskRecord {
	return taskRecord{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		DueDate:      t.DueDate,
		Status:       string(t.Status),
		CreationDate: t.CreationDate,
	}
}

// GormTaskRepository - хранилище задач через gorm (SQLite).
type GormTaskRepository struct {
	db *gorm.DB
}

var _ ITaskRepository = (*GormTaskRepository)(nil)

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// AutoMigrate создает или обновляет таблицу tasks.
func (r *GormTaskRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("failed to migrate tasks table: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	record := recordFromEntity(task)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	created := record.toEntity()
	return &created, nil
}

func (r *GormTaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	var record taskRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", taskId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	task := record.toEntity()
	return &task, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, id int, req *entity.UpdateTaskRequest) (*entity.Task, *entity.Task, error) {
	var old, updated entity.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrTaskNotFound
			}
			return err
		}

		old = record.toEntity()
		updated = old.Clone()
		req.Apply(&updated)

		// Save пишет все колонки, включая обнулённые due_date и description
		next := recordFromEntity(&updated)
		return tx.Save(&next).Error
	})
	if err != nil {
		if errors.Is(err, entity.ErrTaskNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &old, &updated, nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, id int) (*entity.Task, error) {
	var deleted entity.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrTaskNotFound
			}
			return err
		}
		deleted = record.toEntity()
		return tx.Delete(&taskRecord{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, entity.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return &deleted, nil
}

func (r *GormTaskRepository) ListAll(ctx context.Context) ([]entity.Task, error) {
	var records []taskRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := make([]entity.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.toEntity())
	}
	return tasks, nil
}
