package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/St1cky1/task-service/internal/api"
	grpcapi "github.com/St1cky1/task-service/internal/api/grpc"
	"github.com/St1cky1/task-service/internal/api/handlers"
	"github.com/St1cky1/task-service/internal/config"
	"github.com/St1cky1/task-service/internal/infrastructure/cache"
	"github.com/St1cky1/task-service/internal/infrastructure/client"
	"github.com/St1cky1/task-service/internal/infrastructure/logger"
	"github.com/St1cky1/task-service/internal/infrastructure/migrations"
	"github.com/St1cky1/task-service/internal/repository"
	"github.com/St1cky1/task-service/internal/suggest"
	"github.com/St1cky1/task-service/internal/usecase"
	"github.com/St1cky1/task-service/internal/worker"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and gRPC, event worker when enabled)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Server.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

// app собирает зависимости и освобождает их в обратном порядке.
type app struct {
	log     *slog.Logger
	closers []func()
	checks  map[string]handlers.Checker
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a := &app{log: log, checks: map[string]handlers.Checker{}}
	defer a.close()

	// 1. Хранилище задач
	taskRepo, pg, err := a.openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	opts := []usecase.Option{usecase.WithLogger(log)}

	// 2. RabbitMQ: публикация событий и воркер журнала
	var wg sync.WaitGroup
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer func() {
		stopWorker()
		wg.Wait()
	}()

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		a.onClose(func() {
			if err := rabbitMQ.Close(); err != nil {
				log.Warn("failed to close RabbitMQ client", "error", err)
			}
		})
		opts = append(opts, usecase.WithPublisher(rabbitMQ))

		handler := worker.LogHandler(log)
		if pg != nil {
			handler = worker.Chain(handler, worker.StoreHandler(repository.NewTaskEventRepository(pg.GetPool())))
		}
		eventWorker := worker.NewEventWorker(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, handler, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			eventWorker.Start(workerCtx)
		}()
		log.Info("RabbitMQ connected", "queue", cfg.RabbitMQ.Queue)
	}

	// 3. Redis кэш подсказок
	if cfg.Redis.Enabled {
		rdb, err := client.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		a.onClose(func() { _ = rdb.Close() })

		suggestionCache := cache.NewSuggestionCache(rdb, cache.DefaultPrefix, cfg.Redis.TTL)
		opts = append(opts, usecase.WithSuggestionCache(suggestionCache, cfg.Redis.ClockResolution))
		a.checks["redis"] = suggestionCache.Ping
		log.Info("Redis connected", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL, "clock_resolution", cfg.Redis.ClockResolution)
	}

	engine := suggest.NewEngine(suggest.Config{
		PerSource:     cfg.Suggest.PerSource,
		DueSoonWindow: cfg.Suggest.DueSoonWindow,
	})
	taskService := usecase.NewTaskService(taskRepo, engine, opts...)

	// 4. Транспорты
	errCh := make(chan error, 2)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(taskService, api.RouterConfig{Logger: log, Checks: a.checks}),
	}
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *grpcapi.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = grpcapi.NewGRPCServer(taskService, log)
		go func() {
			if err := grpcServer.Start(cfg.GRPC.Port); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// 5. Ждем сигнал или падение сервера
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}
	log.Info("server stopped")

	return runErr
}

// openStorage возвращает хранилище задач для выбранного драйвера; pg не nil только для postgres.
func (a *app) openStorage(ctx context.Context, cfg config.StorageConfig) (repository.ITaskRepository, *client.PostgresClient, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.MigrateOnStart {
			if err := migrations.Up(cfg.PostgresURL); err != nil {
				return nil, nil, err
			}
			a.log.Info("migrations applied")
		}
		pg, err := client.NewPostgresClient(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		a.onClose(pg.Close)
		a.checks["postgres"] = pg.HealthCheck
		a.log.Info("storage ready", "driver", cfg.Driver)
		return repository.NewTaskRepository(pg.GetPool()), pg, nil

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open SQLite %s: %w", cfg.SQLitePath, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("open SQLite %s: %w", cfg.SQLitePath, err)
		}
		a.onClose(func() { _ = sqlDB.Close() })
		a.checks["sqlite"] = sqlDB.PingContext

		repo := repository.NewGormTaskRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			return nil, nil, err
		}
		a.log.Info("storage ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return repo, nil, nil

	default:
		a.log.Info("storage ready", "driver", "memory")
		return repository.NewMemoryTaskRepository(), nil, nil
	}
}
