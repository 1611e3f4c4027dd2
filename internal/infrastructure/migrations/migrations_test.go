package migrations

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, identifier, err := source.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "create_tasks", identifier)
	assert.True(t, strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS tasks"))
}

func TestEmbeddedMigrationsAreSequential(t *testing.T) {
	source, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer source.Close()

	next, err := source.Next(1)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	r, identifier, err := source.ReadDown(next)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_task_events", identifier)
}
