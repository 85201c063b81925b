package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/agent"
	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/datastore"
	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/event"
	"github.com/kazz187/pomofocus/internal/eventbus"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/internal/llm"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) Complete(context.Context, llm.Request) (string, error) {
	return f.reply, nil
}

type countingUsers struct {
	user.Repository
	writes int
}

func (c *countingUsers) Create(ctx context.Context, u *user.User) error {
	c.writes++
	return c.Repository.Create(ctx, u)
}

func (c *countingUsers) UpdateName(ctx context.Context, email, name string) error {
	c.writes++
	return c.Repository.UpdateName(ctx, email, name)
}

type countingTasks struct {
	task.Repository
	writes    int
	createErr error
}

func (c *countingTasks) Create(ctx context.Context, t *task.Task) error {
	c.writes++
	if c.createErr != nil {
		return c.createErr
	}
	return c.Repository.Create(ctx, t)
}

func (c *countingTasks) Update(ctx context.Context, t *task.Task) error {
	c.writes++
	return c.Repository.Update(ctx, t)
}

type harness struct {
	handler   http.Handler
	users     *countingUsers
	tasks     *countingTasks
	lifecycle *lifecycle.Manager
	completer *fakeCompleter
}

func newHarness(t *testing.T, env *config.Env) *harness {
	t.Helper()
	db, err := datastore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := datastore.NewSQLiteStore(db)

	h := &harness{
		users:     &countingUsers{Repository: store.Users},
		tasks:     &countingTasks{Repository: store.Tasks},
		completer: &fakeCompleter{},
	}
	bus := eventbus.New()
	h.lifecycle = lifecycle.NewManager(h.users, h.tasks, bus)

	srv := NewServer(
		env,
		agent.NewServer(&env.AgentEnv, h.lifecycle),
		chat.NewServer(chat.NewService(h.completer)),
		enhance.NewServer(enhance.NewService(h.completer, h.lifecycle)),
		task.NewServer(h.tasks),
		event.NewServer(bus),
	)
	h.handler = srv.Handler()
	return h
}

func (h *harness) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestAgentCreateTaskRejectsBadToken(t *testing.T) {
	env := &config.Env{AgentEnv: config.AgentEnv{AgentToken: "s3cret"}}
	h := newHarness(t, env)

	body := `{"title":"Write report","userEmail":"a@b.com","userName":"Ann"}`
	for _, token := range []string{"", "wrong"} {
		rec := h.do(http.MethodPost, "/api/agent/create-task", body, map[string]string{agent.TokenHeader: token})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	assert.Zero(t, h.users.writes)
	assert.Zero(t, h.tasks.writes)

	rec := h.do(http.MethodPost, "/api/agent/create-task", body, map[string]string{agent.TokenHeader: "s3cret"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAgentCreateTask(t *testing.T) {
	h := newHarness(t, &config.Env{})
	ctx := context.Background()

	rec := h.do(http.MethodPost, "/api/agent/create-task",
		`{"title":"Write report","userEmail":" A@B.com ","userName":"Ann","estimatedPomodoros":"0"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp agent.CreateTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Task)
	assert.NotEmpty(t, resp.Task.ID)
	assert.Equal(t, "Write report", resp.Task.Title)
	assert.Equal(t, "a@b.com", resp.Task.UserEmail)
	assert.Equal(t, 1, resp.Task.EstimatedPomodoros)

	assert.Equal(t, 1, h.users.writes)
	assert.Equal(t, 1, h.tasks.writes)
	u, err := h.users.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	list, err := h.tasks.ListByOwner(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAgentCreateTaskValidation(t *testing.T) {
	h := newHarness(t, &config.Env{})

	for _, body := range []string{
		`{"title":"","userEmail":"a@b.com","userName":"Ann"}`,
		`{"title":"x","userEmail":"   ","userName":"Ann"}`,
		`{"title":"x","userEmail":"a@b.com"}`,
		`not json`,
	} {
		rec := h.do(http.MethodPost, "/api/agent/create-task", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, h.tasks.writes)
}

func TestAgentOptions(t *testing.T) {
	h := newHarness(t, &config.Env{})
	rec := h.do(http.MethodOptions, "/api/agent/create-task", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), agent.TokenHeader)
}

func TestChatEndpoint(t *testing.T) {
	h := newHarness(t, &config.Env{})

	rec := h.do(http.MethodPost, "/api/chat", `{"message":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.completer.reply = "Here is an improved version of your task."
	rec = h.do(http.MethodPost, "/api/chat",
		`{"message":"help with my task","conversationHistory":[{"type":"user","content":"hi"}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here is an improved version of your task.", resp.Response)
	require.NotNil(t, resp.SuggestedTask)
	assert.Equal(t, "Enhanced Task Title", resp.SuggestedTask.Title)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestEnhanceEndpoint(t *testing.T) {
	h := newHarness(t, &config.Env{})
	ctx := context.Background()

	created, err := h.lifecycle.CreateTask(ctx, "report", "", 1, "ann@example.com")
	require.NoError(t, err)

	rec := h.do(http.MethodPost, "/api/enhance-task", `{"taskId":"`+created.ID+`","userEmail":"ann@example.com"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.completer.reply = "I think the task is fine as it is."
	rec = h.do(http.MethodPost, "/api/enhance-task",
		`{"taskId":"`+created.ID+`","title":"report","userEmail":"ann@example.com"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	unchanged, err := h.tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, unchanged.Title)
	assert.True(t, created.UpdatedAt.Equal(unchanged.UpdatedAt))

	h.completer.reply = `{"enhancedTitle":"Draft Q3 report","enhancedDescription":"1. numbers","estimatedPomodoros":3,"reasoning":"clearer"}`
	rec = h.do(http.MethodPost, "/api/enhance-task",
		`{"taskId":"`+created.ID+`","title":"report","userEmail":"bob@example.com"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/api/enhance-task",
		`{"taskId":"`+created.ID+`","title":"report","userEmail":"ann@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp enhance.HTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Draft Q3 report", resp.EnhancedTask.Title)
	assert.Equal(t, 3, resp.EnhancedTask.EstimatedPomodoros)
	assert.Equal(t, "clearer", resp.EnhancedTask.Reasoning)

	stored, err := h.tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft Q3 report", stored.Title)
}

func TestTaskReadEndpoints(t *testing.T) {
	h := newHarness(t, &config.Env{})
	ctx := context.Background()
	created, err := h.lifecycle.CreateTask(ctx, "report", "", 2, "ann@example.com")
	require.NoError(t, err)

	rec := h.do(http.MethodGet, "/api/tasks?userEmail=Ann@Example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list task.ListTasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, created.ID, list.Tasks[0].ID)

	rec = h.do(http.MethodGet, "/api/tasks?userEmail=nobody@example.com", "", nil)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/tasks/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodGet, "/api/tasks/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKey(t *testing.T) {
	env := &config.Env{BaseEnv: config.BaseEnv{APIKey: "k"}}
	h := newHarness(t, env)
	h.completer.reply = "hi"

	rec := h.do(http.MethodPost, "/api/chat", `{"message":"hello"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.do(http.MethodPost, "/api/chat", `{"message":"hello"}`, map[string]string{"X-API-Key": "k"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodPost, "/api/chat", `{"message":"hello"}`, map[string]string{"Authorization": "Bearer k"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// the agent endpoint is guarded by its own token only
	rec = h.do(http.MethodPost, "/api/agent/create-task", `{"title":"x","userEmail":"a@b.com","userName":"A"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t, &config.Env{})
	rec := h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"not_found","message":"not found"}`, rec.Body.String())
}

func TestAgentCreateTaskStoreFailure(t *testing.T) {
	h := newHarness(t, &config.Env{})
	h.tasks.createErr = cerr.WrapDatabaseError("insert", "task", errors.New("database is locked"))

	rec := h.do(http.MethodPost, "/api/agent/create-task",
		`{"title":"Write report","userEmail":"a@b.com","userName":"Ann"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"internal","message":"database is locked"}`, rec.Body.String())
}
