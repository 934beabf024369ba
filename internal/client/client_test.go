package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/db"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/web"
)

func TestRoundTripAgainstRealAPI(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()
	ctx := context.Background()

	created, err := c.CreateTask(ctx, model.CreateTaskInput{Title: "Buy milk", Description: "2%"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.IsCompleted)

	tasks, err := c.GetTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	snapshot, err := c.CompleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, snapshot.ID)

	tasks, err = c.GetTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateTaskValidationError(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()

	_, err := c.CreateTask(context.Background(), model.CreateTaskInput{Title: "  "})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.FieldErrors["title"])
	assert.NotEmpty(t, apiErr.Message)
}

func TestCompleteTaskNotFound(t *testing.T) {
	c, cleanup := newTestClient(t)
	defer cleanup()

	_, err := c.CompleteTask(context.Background(), 999999)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "Task not found.", apiErr.Message)
}

func newTestClient(t *testing.T) (Client, func()) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)

	server := web.NewServer(task.NewService(db.NewStore(conn)), false)
	ts := httptest.NewServer(server.Echo())

	return New(ts.URL + "/api"), func() {
		ts.Close()
		_ = conn.Close()
	}
}
