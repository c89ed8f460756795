package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskly/config"
	"taskly/models"
	"taskly/services"
	"taskly/store"
)

// runRoot executes the root command with args and returns stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// seedSQLite points the config at a fresh sqlite file holding two tasks.
func seedSQLite(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "tasks.db")
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", path)

	s, err := store.OpenSQLite(path)
	require.NoError(t, err)
	ts := services.NewTaskStore(s)
	ctx := context.Background()
	_, err = ts.AddTask(ctx, "a@x.com", models.TaskInput{Title: "Write report", Priority: "high"})
	require.NoError(t, err)
	_, err = ts.AddTask(ctx, "a@x.com", models.TaskInput{Title: "Book flights", Priority: "low", Deadline: "2024-06-01"})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "taskly "+version+"\n", out)
}

func TestTasksCommandTable(t *testing.T) {
	seedSQLite(t)

	out, err := runRoot(t, "tasks", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "a@x.com")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "Book flights")
	assert.Contains(t, out, "task3")
	assert.Contains(t, out, "2024-06-01")
}

func TestTasksCommandJSON(t *testing.T) {
	seedSQLite(t)

	out, err := runRoot(t, "tasks", "a@x.com", "--json")
	require.NoError(t, err)

	var body struct {
		Tasks []models.TaskDocument `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Tasks, 1)
	assert.Len(t, body.Tasks[0].Todo, 2)
}

func TestTasksCommandUnknownOwner(t *testing.T) {
	seedSQLite(t)

	_, err := runRoot(t, "tasks", "nobody@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tasks for nobody@x.com")
}

func TestTasksCommandRequiresEmail(t *testing.T) {
	seedSQLite(t)

	_, err := runRoot(t, "tasks")
	assert.Error(t, err)
}

func TestPingCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "memory")

	out, err := runRoot(t, "ping")
	require.NoError(t, err)
	assert.Equal(t, "memory store reachable\n", out)
}

func TestInvalidStoreConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "redis")

	_, err := runRoot(t, "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRenderTasksEmptyBuckets(t *testing.T) {
	var out bytes.Buffer
	renderTasks(&out, []models.TaskDocument{{Email: "a@x.com"}})
	assert.Contains(t, out.String(), "a@x.com")
	assert.Contains(t, out.String(), "0 TASKS")
}

func TestServeStopsDuringStartup(t *testing.T) {
	a := &app{cfg: config.Config{
		Port:           "0",
		Store:          config.StoreSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "tasks.db"),
		RequestTimeout: time.Second,
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.serve(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "ping store")
}

func TestServeShutsDownWhenContextEnds(t *testing.T) {
	a := &app{cfg: config.Config{
		Port:           "0",
		Store:          config.StoreMemory,
		RequestTimeout: time.Second,
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, a.serve(ctx))
}
