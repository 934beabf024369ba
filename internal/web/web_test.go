package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/db"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/task"
)

func TestCreateThenCompleteThenList(t *testing.T) {
	server, store, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	rec := request(e, http.MethodPost, "/api/tasks", `{"title":"Buy milk","description":"2%"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "2%", created.Description)
	assert.False(t, created.IsCompleted)

	stored, found, err := store.FindTask(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, stored.IsCompleted)

	rec = request(e, http.MethodPut, "/api/tasks/"+itoa(created.ID)+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		Data    model.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Task marked as completed successfully.", envelope.Message)
	assert.Equal(t, created.ID, envelope.Data.ID)
	// The envelope carries the pre-update snapshot.
	assert.False(t, envelope.Data.IsCompleted)

	rec = request(e, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	for _, item := range listed {
		assert.NotEqual(t, created.ID, item.ID)
	}
}

func TestCreateTaskIgnoresCallerCompletedFlag(t *testing.T) {
	server, _, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	rec := request(e, http.MethodPost, "/api/tasks", `{"title":"Sneaky","is_completed":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.False(t, created.IsCompleted)
}

func TestCreateTaskValidation(t *testing.T) {
	server, store, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	cases := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":""}`},
		{"missing title", `{"description":"no title"}`},
		{"blank title", `{"title":"   "}`},
		{"overlong title", `{"title":"` + strings.Repeat("x", 256) + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := request(e, http.MethodPost, "/api/tasks", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp struct {
				Errors map[string][]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Errors["title"])
		})
	}

	all, err := store.AllTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "validation failures must not create records")
}

func TestListTasksCapsAtFiveNewestFirst(t *testing.T) {
	server, _, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	for i := 0; i < 7; i++ {
		rec := request(e, http.MethodPost, "/api/tasks", `{"title":"task"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := request(e, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 5)
	for _, item := range listed {
		assert.False(t, item.IsCompleted)
	}
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt))
	}
}

func TestListTasksEmptyIsBareArray(t *testing.T) {
	server, _, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	rec := request(e, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCompleteMissingTaskReturns404(t *testing.T) {
	server, store, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	rec := request(e, http.MethodPut, "/api/tasks/999999/complete", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Task not found.", resp.Message)

	all, err := store.AllTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCompleteNonNumericIDReturns404(t *testing.T) {
	server, _, cleanup := newTestServer(t, false)
	defer cleanup()
	e := server.Echo()

	rec := request(e, http.MethodPut, "/api/tasks/abc/complete", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFailureBodyRedactsDetailUnlessDebug(t *testing.T) {
	redacted := NewServer(nil, false).failure("Failed to update task.", assert.AnError)
	assert.False(t, redacted.Success)
	assert.Nil(t, redacted.Error)

	verbose := NewServer(nil, true).failure("Failed to update task.", assert.AnError)
	require.NotNil(t, verbose.Error)
	assert.Equal(t, assert.AnError.Error(), *verbose.Error)
}

func request(e http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newTestServer(t *testing.T, debug bool) (*Server, *db.Store, func()) {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	store := db.NewStore(conn)
	return NewServer(task.NewService(store), debug), store, func() {
		_ = conn.Close()
	}
}
