// Package config загружает настройки сервиса из необязательного файла и переменных окружения TASKS_*.
package config

import "time"

// Config - вся конфигурация приложения.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Suggest  SuggestConfig  `mapstructure:"suggest"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"required_if=Enabled true,omitempty,gt=0,lt=65536"`
}

// StorageConfig - выбор хранилища задач.
type StorageConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=memory postgres sqlite"`
	PostgresURL    string `mapstructure:"postgres_url" validate:"required_if=Driver postgres"`
	SQLitePath     string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type RabbitMQConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
	Queue   string `mapstructure:"queue" validate:"required_if=Enabled true"`
}

type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`

	// ClockResolution - шаг, до которого округляется время расчета подсказок при включенном кэше.
	ClockResolution time.Duration `mapstructure:"clock_resolution" validate:"gte=0"`
}

type SuggestConfig struct {
	PerSource     int           `mapstructure:"per_source" validate:"gt=0"`
	DueSoonWindow time.Duration `mapstructure:"due_soon_window" validate:"gt=0"`
}
