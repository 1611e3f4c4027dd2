package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/St1cky1/task-service/internal/query"
	"github.com/St1cky1/task-service/internal/repository"
	"github.com/St1cky1/task-service/internal/suggest"
	"golang.org/x/sync/singleflight"
)

const (
	publishTimeout = 5 * time.Second

	// DefaultClockResolution - шаг часов для подсказок при включенном кэше.
	DefaultClockResolution = time.Minute
)

// EventPublisher интерфейс для публикации событий задач (RabbitMQ)
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, event *entity.TaskEvent) error
}

// SuggestionCache хранит посчитанные подсказки по паре (limit, момент расчета).
// at уже округлено до шага часов, поэтому все запросы внутри одного окна попадают в одну запись.
type SuggestionCache interface {
	Get(ctx context.Context, limit int, at time.Time) ([]entity.Suggestion, bool, error)
	Set(ctx context.Context, limit int, at time.Time, suggestions []entity.Suggestion) error
	Invalidate(ctx context.Context) error
}

// ITaskService - операции над задачами, которые вызывают транспорты (REST, gRPC).
type ITaskService interface {
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	GetTask(ctx context.Context, taskID int) (*entity.Task, error)
	UpdateTask(ctx context.Context, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, taskID int) error
	ListTasks(ctx context.Context, params query.Params) ([]entity.Task, error)
	SuggestTasks(ctx context.Context, limit int) ([]entity.Suggestion, error)
}

var _ ITaskService = (*TaskService)(nil)

type Option func(*TaskService)

func WithPublisher(p EventPublisher) Option {
	return func(s *TaskService) { s.publisher = p }
}

// WithSuggestionCache включает кэш. Подсказки тогда считаются на текущее время, округленное до
// resolution, и ответ из кэша совпадает со свежим в пределах окна.
func WithSuggestionCache(c SuggestionCache, resolution time.Duration) Option {
	return func(s *TaskService) {
		s.cache = c
		s.resolution = resolution
		if s.resolution <= 0 {
			s.resolution = DefaultClockResolution
		}
	}
}

// WithClock подменяет time.Now; тесты фиксируют им даты создания и проверку сроков.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) { s.logger = l }
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	engine    *suggest.Engine
	publisher EventPublisher
	cache      SuggestionCache
	resolution time.Duration
	now        func() time.Time
	logger     *slog.Logger
	group      singleflight.Group

	// version растет при каждой мутации; cacheMu упорядочивает запись в кэш и его сброс
	version atomic.Uint64
	cacheMu sync.Mutex
}

func NewTaskService(taskRepo repository.ITaskRepository, engine *suggest.Engine, opts ...Option) *TaskService {
	s := &TaskService{
		taskRepo: taskRepo,
		engine:   engine,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = suggest.NewEngine(suggest.Config{})
	}
	return s
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	now := s.now().UTC()

	// 1. Нормализуем и валидируем запрос
	req.Normalize()
	if err := entity.ValidateCreate(req, now); err != nil {
		return nil, err
	}

	// 2. Создаем задачу
	task, err := s.taskRepo.Create(ctx, &entity.Task{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		Status:       req.Status,
		CreationDate: now,
	})
	if err != nil {
		return nil, err
	}

	// 3. Сбрасываем кэш подсказок и асинхронно публикуем событие
	s.afterMutation(ctx, entity.NewTaskEvent(entity.ActionCreate, task.ID, nil, task, now))

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID int) (*entity.Task, error) {
	return s.taskRepo.GetByTaskId(ctx, taskID)
}

// UpdateTask применяет только поля, присутствующие в req. Пустой запрос возвращает задачу без изменений.
func (s *TaskService) UpdateTask(ctx context.Context, taskID int, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	now := s.now().UTC()

	req.Normalize()
	if err := entity.ValidateUpdate(req, now); err != nil {
		return nil, err
	}
	if req.Empty() {
		return s.taskRepo.GetByTaskId(ctx, taskID)
	}

	// старая версия читается хранилищем под той же блокировкой, что и запись
	oldTask, updatedTask, err := s.taskRepo.Update(ctx, taskID, req)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, entity.NewTaskEvent(entity.ActionUpdate, taskID, oldTask, updatedTask, now))

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int) error {
	oldTask, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return err
	}

	s.afterMutation(ctx, entity.NewTaskEvent(entity.ActionDelete, taskID, oldTask, nil, s.now().UTC()))

	return nil
}

// ListTasks выполняет запрос над одним снимком хранилища.
func (s *TaskService) ListTasks(ctx context.Context, params query.Params) ([]entity.Task, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.Run(tasks, params)
}

// SuggestTasks отдает подсказки из кэша, если они есть. Одновременные промахи с одним limit делят один расчет,
// не привязанный к контексту одного вызова: отмена одного вызова не ломает остальные.
func (s *TaskService) SuggestTasks(ctx context.Context, limit int) ([]entity.Suggestion, error) {
	if err := suggest.ValidateLimit(limit); err != nil {
		return nil, err
	}

	at := s.suggestionTime()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, limit, at)
		if err != nil {
			s.logger.WarnContext(ctx, "suggestion cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	// версия читается до снимка задач: результат, начатый до мутации, не попадет в кэш
	version := s.version.Load()
	key := fmt.Sprintf("%d:%d:%d", version, at.UnixNano(), limit)
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (any, error) {
		tasks, err := s.taskRepo.ListAll(shared)
		if err != nil {
			return nil, err
		}
		suggestions, err := s.engine.Suggest(tasks, limit, suggest.Context{Now: at})
		if err != nil {
			return nil, err
		}
		s.storeSuggestions(shared, version, limit, at, suggestions)
		return suggestions, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]entity.Suggestion), nil
	}
}

// suggestionTime - время для движка: точное без кэша, округленное до шага с кэшем.
func (s *TaskService) suggestionTime() time.Time {
	now := s.now().UTC()
	if s.cache == nil {
		return now
	}
	return now.Truncate(s.resolution)
}

// storeSuggestions пишет результат, только если после снимка не было изменений.
func (s *TaskService) storeSuggestions(ctx context.Context, version uint64, limit int, at time.Time, suggestions []entity.Suggestion) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.version.Load() != version {
		s.logger.DebugContext(ctx, "suggestions outdated by a concurrent mutation, not cached", "limit", limit)
		return
	}
	if err := s.cache.Set(ctx, limit, at, suggestions); err != nil {
		s.logger.WarnContext(ctx, "suggestion cache write failed", "error", err)
	}
}

// afterMutation сбрасывает кэш подсказок и публикует событие в фоне.
func (s *TaskService) afterMutation(ctx context.Context, event *entity.TaskEvent) {
	s.cacheMu.Lock()
	s.version.Add(1)
	if s.cache != nil {
		// запись уже в хранилище, поэтому сброс не должен зависеть от отмены запроса
		if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "suggestion cache invalidation failed", "error", err)
		}
	}
	s.cacheMu.Unlock()

	if s.publisher == nil {
		return
	}

	// Асинхронная отправка в RabbitMQ, ошибка не влияет на результат запроса
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.PublishTaskEvent(pubCtx, event); err != nil {
			s.logger.Error("failed to publish task event",
				"action", event.Action, "task_id", event.TaskID, "error", err)
			return
		}
		s.logger.Debug("task event published", "action", event.Action, "task_id", event.TaskID)
	}()
}

