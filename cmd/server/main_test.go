package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/St1cky1/task-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	var sub []string
	for _, cmd := range migrate.Commands() {
		sub = append(sub, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "version"}, sub)
}

func TestMigrateRequiresPostgresURL(t *testing.T) {
	t.Setenv("TASKS_STORAGE_POSTGRES_URL", "")

	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetOut(io.Discard)
	root.SetErr(&stderr)
	root.SetArgs([]string{"migrate", "up"})

	err := root.Execute()
	assert.EqualError(t, err, "storage.postgres_url is not set")
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Port = 0
	cfg.Storage.Driver = "memory"
	cfg.RabbitMQ.Enabled = false
	cfg.Redis.Enabled = false
	cfg.GRPC.Enabled = false

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
