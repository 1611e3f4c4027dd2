package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-service/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQClient(url, queueName string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Объявляем очередь для событий задач
	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		queue:   queue,
	}, nil
}

// GetChannel возвращает AMQP channel для использования в consumer'ах
func (c *RabbitMQClient) GetChannel() *amqp.Channel {
	return c.channel
}

// GetQueueName возвращает имя очереди
func (c *RabbitMQClient) GetQueueName() string {
	return c.queue.Name
}

func (c *RabbitMQClient) PublishTaskEvent(ctx context.Context, event *entity.TaskEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode task event: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Timestamp:    event.Timestamp,
			Type:         string(event.Action),
			Body:         body,
			DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	slog.DebugContext(ctx, "task event sent to rabbitmq", "action", event.Action, "task_id", event.TaskID)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
