package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerTag       = "task_event_worker"
	defaultRetryDelay = 5 * time.Second
)

// Handler обрабатывает одно событие задачи.
type Handler interface {
	HandleTaskEvent(ctx context.Context, event *entity.TaskEvent) error
}

type HandlerFunc func(ctx context.Context, event *entity.TaskEvent) error

func (f HandlerFunc) HandleTaskEvent(ctx context.Context, event *entity.TaskEvent) error {
	return f(ctx, event)
}

// EventWorker читает события задач из RabbitMQ через отдельное соединение и переподключается при сбое.
type EventWorker struct {
	url        string
	queue      string
	handler    Handler
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewEventWorker(url, queue string, handler Handler, logger *slog.Logger) *EventWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWorker{
		url:        url,
		queue:      queue,
		handler:    handler,
		logger:     logger.With("component", "event_worker", "queue", queue),
		retryDelay: defaultRetryDelay,
	}
}

// Start блокируется до отмены ctx.
func (w *EventWorker) Start(ctx context.Context) {
	w.logger.Info("event worker started")
	for {
		err := w.runOnce(ctx)
		if ctx.Err() != nil {
			w.logger.Info("event worker stopped")
			return
		}
		w.logger.Error("event worker failed, reconnecting", "error", err, "retry_in", w.retryDelay)

		select {
		case <-ctx.Done():
			w.logger.Info("event worker stopped")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *EventWorker) runOnce(ctx context.Context) error {
	// Отдельное соединение для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	_, err = channel.QueueDeclare(
		w.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := channel.Consume(
		w.queue,     // queue
		consumerTag, // consumer tag
		false,       // auto-ack (подтверждаем вручную)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return w.Run(ctx, msgs)
}

// Run обрабатывает сообщения, пока ctx не отменен или канал не закрыт.
func (w *EventWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *EventWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим сообщение
	var event entity.TaskEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.logger.Error("failed to decode task event", "error", err, "message_id", msg.MessageId)
		w.nack(msg, false) // Не возвращаем в очередь
		return
	}

	// 2. Обрабатываем; повторно доставленное сообщение второй раз в очередь не возвращаем
	if err := w.handler.HandleTaskEvent(ctx, &event); err != nil {
		requeue := !msg.Redelivered
		w.logger.Error("failed to handle task event",
			"error", err, "event_id", event.ID, "task_id", event.TaskID, "requeue", requeue)
		w.nack(msg, requeue)
		return
	}

	// 3. Подтверждаем обработку
	if err := msg.Ack(false); err != nil {
		w.logger.Error("failed to ack task event", "error", err, "event_id", event.ID)
	}
}

func (w *EventWorker) nack(msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		w.logger.Error("failed to nack task event", "error", err)
	}
}
