package main

import (
	"bytes"
	"testing"

	"yatube/internal/config"
	"yatube/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteTarget(t *testing.T) (func() (*target, error), *int) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	calls := 0
	return func() (*target, error) {
		calls++
		return &target{cfg: &config.Config{DBDriver: "sqlite", Env: "test"}, db: db}, nil
	}, &calls
}

func execute(t *testing.T, connect func() (*target, error), args ...string) (string, error) {
	t.Helper()
	root := rootCmd(connect)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SilenceErrors = true
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStatusAndAuto_SQLite(t *testing.T) {
	connect, _ := sqliteTarget(t)

	out, err := execute(t, connect, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "driver=sqlite")
	assert.Contains(t, out, "plan: sqlite ignores DB_SCHEMA_MODE")
	assert.NotContains(t, out, "pending=")
	assert.Contains(t, out, "schema incomplete")

	out, err = execute(t, connect, "auto")
	require.NoError(t, err)
	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.Regexp(t, `(?m)^`+table+`\s+true\s+0$`, out)
	}
	assert.Contains(t, out, "schema ready")
}

func TestDown_ValidatesVersion(t *testing.T) {
	connect, calls := sqliteTarget(t)

	_, err := execute(t, connect, "down")
	assert.Error(t, err)

	_, err = execute(t, connect, "down", "latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")

	_, err = execute(t, connect, "down", "0")
	assert.Error(t, err)
	assert.Zero(t, *calls, "bad arguments never touch the database")
}

func TestWriteStatus_ListsPending(t *testing.T) {
	var out bytes.Buffer
	writeStatus(&out, &database.SchemaStatus{
		SchemaPlan:        database.SchemaPlan{Mode: "sql", Driver: "postgres", RunSQL: true, Reason: "sql mode applies embedded migrations only"},
		Environment:       "production",
		PendingMigrations: []database.Migration{{Version: 1, Name: "init"}},
		Tables:            []database.TableStatus{{Name: "users"}},
	})
	assert.Contains(t, out.String(), "applied=0 pending=1")
	assert.Contains(t, out.String(), "pending: 000001_init")
	assert.Contains(t, out.String(), "schema incomplete")
}
