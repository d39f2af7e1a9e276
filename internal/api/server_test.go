package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/mission-control/internal/activity"
	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/config"
	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/health"
	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/metrics"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
	"github.com/p-blackswan/mission-control/internal/persist"
	"github.com/p-blackswan/mission-control/internal/upstream"
	"github.com/p-blackswan/mission-control/pkg/kvstore"
)

var testNow = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

// flakyKV fails every Set while fail is true.
type flakyKV struct {
	*kvstore.MemoryStore
	fail atomic.Bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail.Load() {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fakeAgents struct {
	enabled bool
	err     error
}

func (f *fakeAgents) Enabled() bool { return f.enabled }

func (f *fakeAgents) ListAgents(context.Context) (*upstream.AgentList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &upstream.AgentList{Agents: []upstream.Agent{{ID: "atlas", Name: "Atlas", Status: "active"}}}, nil
}

func (f *fakeAgents) AgentFiles(_ context.Context, id string) (*upstream.AgentFiles, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &upstream.AgentFiles{
		Agent: upstream.Agent{ID: id},
		Files: []upstream.FileNode{{Name: "SOUL.md", Path: "SOUL.md", Type: "file"}},
	}, nil
}

type fixture struct {
	app      *fiber.App
	kv       *flakyKV
	tasks    *board.Controller[*models.Task, models.TaskStatus]
	activity *activity.Log
	feed     *notify.Feed
	agents   *fakeAgents
}

func storeOpts[T board.Entity[T]](kv kvstore.Store, name string) []board.StoreOption[T] {
	return []board.StoreOption[T]{
		board.WithPersister[T](persist.NewJSON[T](kv, name)),
		board.WithClock[T](func() time.Time { return testNow }),
	}
}

// testApp creates a Fiber app with all routes for testing.
func testApp(t *testing.T, rl RateLimitConfig) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()
	kv := &flakyKV{MemoryStore: kvstore.NewMemoryStore()}

	log := activity.New(activity.NewStore(100, logger, storeOpts[*models.Activity](kv, "activity")...), logger)
	opts := []board.EditorOption{board.WithActivity(log)}

	tasks := board.NewController(board.TaskKind, board.NewStore[*models.Task]("tasks", logger, storeOpts[*models.Task](kv, "tasks")...), logger, opts...)
	content := board.NewController(board.ContentKind, board.NewStore[*models.ContentItem]("content", logger, storeOpts[*models.ContentItem](kv, "content")...), logger, opts...)
	calendar := board.NewController(board.CalendarKind, board.NewStore[*models.CalendarEvent]("calendar", logger, storeOpts[*models.CalendarEvent](kv, "calendar")...), logger, opts...)
	feed := notify.NewFeed(20)
	mems := memories.NewService(board.NewStore[*models.MemoryEntry]("memories", logger, storeOpts[*models.MemoryEntry](kv, "memories")...), nil, feed, logger, opts...)

	require.NoError(t, log.Load(ctx))
	require.NoError(t, tasks.Load(ctx))
	require.NoError(t, content.Load(ctx))
	require.NoError(t, calendar.Load(ctx))
	require.NoError(t, mems.Load(ctx))

	checker := health.NewChecker(logger)
	checker.Register("tasks", func(context.Context) health.Status {
		if tasks.Store().Loaded() {
			return health.StatusOK
		}
		return health.StatusDown
	})

	agents := &fakeAgents{}
	srv := NewServer(ServerConfig{
		ListenAddr: ":0",
		RateLimit:  rl,
		Version:    "test",
		Public:     config.Public{Environment: "test", ActivityRetention: 100},
	}, Deps{
		Tasks:    tasks,
		Content:  content,
		Calendar: calendar,
		Memories: mems,
		Activity: log,
		Agents:   agents,
		Feed:     feed,
		Checker:  checker,
		Metrics:  metrics.New(),
		Clock:    func() time.Time { return testNow },
	}, logger)
	t.Cleanup(func() { _ = srv.Shutdown() })

	return &fixture{app: srv.App(), kv: kv, tasks: tasks, activity: log, feed: feed, agents: agents}
}

func newFixture(t *testing.T) *fixture {
	return testApp(t, RateLimitConfig{RPS: 100, Burst: 200})
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *fixture) createTask(t *testing.T, title string, extra string) *models.Task {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"assignee":"Luna"%s}`, title, extra)
	resp := f.do(t, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[RecordResponse[*models.Task]](t, resp)
	require.NotNil(t, out.Record)
	return out.Record
}

func TestServer_HealthzEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ReadyzEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RequestIDPropagated(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-abc", resp.Header.Get("X-Request-ID"))

	resp = f.do(t, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_CreateTask(t *testing.T) {
	f := newFixture(t)

	tk := f.createTask(t, "  Ship report ", `,"tags":["ops"]`)
	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "Ship report", tk.Title)
	assert.Equal(t, models.TaskTodo, tk.Status)
	assert.Equal(t, models.PriorityMedium, tk.Priority)
	assert.Equal(t, testNow.UnixMilli(), tk.CreatedAt)
	assert.Equal(t, tk.CreatedAt, tk.UpdatedAt)

	resp := f.do(t, http.MethodGet, "/api/v1/tasks/"+tk.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Task](t, resp)
	assert.Equal(t, tk.ID, got.ID)

	entries := f.activity.List(board.Criteria{}, testNow)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCreate, entries[0].Action)
}

func TestServer_CreateTask_Validation(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"   ","assignee":"Luna"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	p := decode[ProblemDetail](t, resp)
	assert.Equal(t, "validation_failed", p.Type)
	assert.Equal(t, "title", p.Field)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"x","assignee":"Zed"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	assert.Equal(t, 0, f.tasks.Store().Len(), "nothing is created on validation failure")
	assert.Equal(t, 0, f.activity.Store().Len())
}

func TestServer_InvalidBody(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	p := decode[ProblemDetail](t, resp)
	assert.Equal(t, "invalid_body", p.Type)
}

func TestServer_GetUnknownTask(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/tasks/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_EditTask(t *testing.T) {
	f := newFixture(t)
	tk := f.createTask(t, "Draft", "")

	resp := f.do(t, http.MethodPut, "/api/v1/tasks/"+tk.ID, `{"title":"Final","assignee":"Atlas","priority":"high"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[RecordResponse[*models.Task]](t, resp)
	assert.True(t, out.Applied)
	assert.Equal(t, "Final", out.Record.Title)
	assert.Equal(t, models.AgentAtlas, out.Record.Assignee)
	assert.Equal(t, tk.CreatedAt, out.Record.CreatedAt)
	assert.Greater(t, out.Record.UpdatedAt, tk.UpdatedAt)
}

func TestServer_EditUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "Keep", "")
	version := f.tasks.Store().Version()

	resp := f.do(t, http.MethodPut, "/api/v1/tasks/ghost", `{"title":"x","assignee":"Luna"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[RecordResponse[*models.Task]](t, resp)
	assert.False(t, out.Applied)
	assert.Nil(t, out.Record)
	assert.Equal(t, version, f.tasks.Store().Version())
}

func TestServer_DeleteTask(t *testing.T) {
	f := newFixture(t)
	tk := f.createTask(t, "Temp", "")

	resp := f.do(t, http.MethodDelete, "/api/v1/tasks/"+tk.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[MutationResponse](t, resp).Applied)

	resp = f.do(t, http.MethodDelete, "/api/v1/tasks/"+tk.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[MutationResponse](t, resp).Applied)
	assert.Equal(t, 0, f.tasks.Store().Len())
}

func TestServer_DropMovesCard(t *testing.T) {
	f := newFixture(t)
	a := f.createTask(t, "A", "")
	f.createTask(t, "B", "")

	body := fmt.Sprintf(`{"draggableId":%q,"source":{"droppableId":"todo","index":0},"destination":{"droppableId":"done","index":0}}`, a.ID)
	resp := f.do(t, http.MethodPost, "/api/v1/tasks/drop", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[MutationResponse](t, resp).Applied)

	resp = f.do(t, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[BoardResponse[*models.Task, models.TaskStatus]](t, resp)
	assert.Equal(t, "tasks", view.Kind)
	require.Len(t, view.Columns, 3)
	assert.Equal(t, "todo", string(view.Columns[0].Status))
	assert.Len(t, view.Columns[0].Items, 1)
	require.Len(t, view.Columns[2].Items, 1)
	assert.Equal(t, a.ID, view.Columns[2].Items[0].ID)
	assert.Equal(t, 50, view.Stats.CompletionRate)

	moves := f.activity.List(board.Criteria{Actions: []string{"move"}}, testNow)
	require.Len(t, moves, 1)
	assert.Contains(t, moves[0].Details, "todo")
	assert.Contains(t, moves[0].Details, "done")
}

func TestServer_DropOutsideIsNoop(t *testing.T) {
	f := newFixture(t)
	a := f.createTask(t, "A", "")
	version := f.tasks.Store().Version()

	for _, body := range []string{
		fmt.Sprintf(`{"draggableId":%q,"source":{"droppableId":"todo","index":0},"destination":null}`, a.ID),
		fmt.Sprintf(`{"draggableId":%q,"source":{"droppableId":"todo","index":0},"destination":{"droppableId":"todo","index":0}}`, a.ID),
		fmt.Sprintf(`{"draggableId":%q,"source":{"droppableId":"todo","index":0},"destination":{"droppableId":"archive","index":0}}`, a.ID),
		`{"draggableId":"ghost","source":{"droppableId":"todo","index":0},"destination":{"droppableId":"done","index":0}}`,
	} {
		resp := f.do(t, http.MethodPost, "/api/v1/tasks/drop", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decode[MutationResponse](t, resp).Applied, body)
	}
	assert.Equal(t, version, f.tasks.Store().Version())
}

func TestServer_DropOnFilteredBoard(t *testing.T) {
	f := newFixture(t)
	alpha := f.createTask(t, "Alpha", "")
	beta := f.createTask(t, "Beta report", "")
	version := f.tasks.Store().Version()

	body := fmt.Sprintf(`{"draggableId":%q,"source":{"droppableId":"todo","index":0},"destination":{"droppableId":"todo","index":0}}`, beta.ID)
	resp := f.do(t, http.MethodPost, "/api/v1/tasks/drop?search=report", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[MutationResponse](t, resp).Applied)
	assert.Equal(t, version, f.tasks.Store().Version())

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/drop", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[MutationResponse](t, resp).Applied, "unfiltered, index 0 is ahead of alpha")
	view := f.tasks.View(board.Criteria{}, testNow)
	assert.Equal(t, beta.ID, view.ByStatus(models.TaskTodo)[0].ID)
	assert.Equal(t, alpha.ID, view.ByStatus(models.TaskTodo)[1].ID)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/drop?range=fortnight", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_ViewFilters(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "Ship report", "")
	f.createTask(t, "Fix login", `,"tags":["report"]`)
	f.createTask(t, "Plan sprint", `,"priority":"high"`)

	resp := f.do(t, http.MethodGet, "/api/v1/tasks?search=REPORT", "")
	view := decode[BoardResponse[*models.Task, models.TaskStatus]](t, resp)
	assert.True(t, view.Filtering)
	assert.Equal(t, 2, view.Stats.Total)

	resp = f.do(t, http.MethodGet, "/api/v1/tasks?importance=high&assignee=all", "")
	view = decode[BoardResponse[*models.Task, models.TaskStatus]](t, resp)
	assert.Equal(t, 1, view.Stats.Total)

	resp = f.do(t, http.MethodGet, "/api/v1/tasks?range=today", "")
	view = decode[BoardResponse[*models.Task, models.TaskStatus]](t, resp)
	assert.Equal(t, 3, view.Stats.Total)

	resp = f.do(t, http.MethodGet, "/api/v1/tasks?range=fortnight", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_Bulk(t *testing.T) {
	f := newFixture(t)
	a := f.createTask(t, "A", "")
	b := f.createTask(t, "B", "")

	body := fmt.Sprintf(`{"action":"status","ids":[%q,%q,"ghost"],"status":"in-progress"}`, a.ID, b.ID)
	resp := f.do(t, http.MethodPost, "/api/v1/tasks/bulk", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[BulkResponse](t, resp).Affected)
	got, _ := f.tasks.Store().Get(a.ID)
	assert.Equal(t, models.TaskInProgress, got.Status)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/bulk", fmt.Sprintf(`{"action":"status","ids":[%q],"status":"archived"}`, a.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/bulk", fmt.Sprintf(`{"action":"priority","ids":[%q],"priority":"high"}`, a.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[BulkResponse](t, resp).Affected)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/bulk", `{"action":"archive","ids":["x"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/bulk", `{"action":"delete","ids":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/tasks/bulk", fmt.Sprintf(`{"action":"delete","ids":[%q,%q]}`, a.ID, b.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[BulkResponse](t, resp).Affected)
	assert.Equal(t, 0, f.tasks.Store().Len())
}

func TestServer_CalendarBulkPriorityUnsupported(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/calendar", `{"title":"Standup","scheduledTime":1760529600000,"duration":15}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ev := decode[RecordResponse[*models.CalendarEvent]](t, resp)
	assert.Equal(t, models.EventPending, ev.Record.Status)
	assert.Equal(t, models.RecurNone, ev.Record.Recurrence)

	resp = f.do(t, http.MethodPost, "/api/v1/calendar/bulk", fmt.Sprintf(`{"action":"priority","ids":[%q],"priority":"high"}`, ev.Record.ID))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unsupported", decode[ProblemDetail](t, resp).Type)
}

func TestServer_ContentPipeline(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/content", `{"title":"Launch video","assignee":"Nova","platform":"youtube"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[RecordResponse[*models.ContentItem]](t, resp).Record
	assert.Equal(t, models.StageIdea, item.Stage)

	resp = f.do(t, http.MethodGet, "/api/v1/content", "")
	view := decode[BoardResponse[*models.ContentItem, models.ContentStage]](t, resp)
	require.Len(t, view.Columns, 5)
	assert.Len(t, view.Columns[0].Items, 1)
}

func TestServer_PersistFailureKeepsChange(t *testing.T) {
	f := newFixture(t)
	f.kv.fail.Store(true)

	resp := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"Offline","assignee":"Luna"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[RecordResponse[*models.Task]](t, resp)
	assert.True(t, out.Applied)
	assert.NotEmpty(t, out.Warning)
	assert.Equal(t, 1, f.tasks.Store().Len())
}

func TestServer_Memories(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/memories", `{"title":"Deploy notes","content":"use blue green","category":"ops"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[RecordResponse[*models.MemoryEntry]](t, resp).Record
	assert.Equal(t, 3, first.WordCount)

	resp = f.do(t, http.MethodPost, "/api/v1/memories", `{"title":"Later"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[RecordResponse[*models.MemoryEntry]](t, resp).Record
	assert.Equal(t, models.DefaultMemoryCategory, second.Category)

	resp = f.do(t, http.MethodPost, "/api/v1/memories/"+first.ID+"/pin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[RecordResponse[*models.MemoryEntry]](t, resp).Record.Pinned)

	resp = f.do(t, http.MethodGet, "/api/v1/memories", "")
	list := decode[MemoryListResponse](t, resp)
	require.Len(t, list.Memories, 2)
	assert.Equal(t, first.ID, list.Memories[0].ID, "pinned first")
	assert.Equal(t, 1, list.Stats.Pinned)
	assert.Equal(t, 3, list.Stats.TotalWords)

	resp = f.do(t, http.MethodGet, "/api/v1/memories?category=ops", "")
	list = decode[MemoryListResponse](t, resp)
	assert.Len(t, list.Memories, 1)
	assert.True(t, list.Filtering)

	resp = f.do(t, http.MethodPut, "/api/v1/memories/"+second.ID, `{"title":"Later, edited","content":"one two"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[RecordResponse[*models.MemoryEntry]](t, resp).Record.WordCount)

	resp = f.do(t, http.MethodDelete, "/api/v1/memories/"+second.ID, "")
	assert.True(t, decode[MutationResponse](t, resp).Applied)

	resp = f.do(t, http.MethodPost, "/api/v1/memories/ghost/pin", "")
	assert.False(t, decode[RecordResponse[*models.MemoryEntry]](t, resp).Applied)
}

func TestServer_Activity(t *testing.T) {
	f := newFixture(t)
	tk := f.createTask(t, "A", "")
	f.do(t, http.MethodDelete, "/api/v1/tasks/"+tk.ID, "")

	resp := f.do(t, http.MethodGet, "/api/v1/activity", "")
	list := decode[ActivityListResponse](t, resp)
	require.Len(t, list.Activity, 2)
	assert.Equal(t, models.ActionDelete, list.Activity[0].Action, "newest first")
	assert.Equal(t, map[string]int{"create": 1, "delete": 1}, list.Summary.ByAction)

	resp = f.do(t, http.MethodGet, "/api/v1/activity?action=create", "")
	assert.Len(t, decode[ActivityListResponse](t, resp).Activity, 1)

	resp = f.do(t, http.MethodGet, "/api/v1/activity/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "mission-control-activity-2026-10-15.json")
	doc := decode[activity.Document](t, resp)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, testNow.UnixMilli(), doc.ExportedAt)
}

func TestServer_ClearActivityNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "A", "")

	resp := f.do(t, http.MethodDelete, "/api/v1/activity", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "confirmation_required", decode[ProblemDetail](t, resp).Type)
	assert.Equal(t, 1, f.activity.Store().Len())

	resp = f.do(t, http.MethodDelete, "/api/v1/activity?confirm=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[ClearResponse](t, resp).Removed)
	assert.Equal(t, 0, f.activity.Store().Len())
}

func TestServer_Agents(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/agents", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	f.agents.enabled = true
	resp = f.do(t, http.MethodGet, "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[upstream.AgentList](t, resp)
	require.Len(t, list.Agents, 1)
	assert.Equal(t, "Atlas", list.Agents[0].Name)

	resp = f.do(t, http.MethodGet, "/api/v1/agents/atlas/files", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	files := decode[upstream.AgentFiles](t, resp)
	assert.Equal(t, 1, files.CountFiles())

	f.agents.err = fmt.Errorf("agent files: %w", perrors.ErrNotFound)
	resp = f.do(t, http.MethodGet, "/api/v1/agents/ghost/files", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.agents.err = perrors.NewAPIError("upstream", 500, "boom")
	resp = f.do(t, http.MethodGet, "/api/v1/agents", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServer_Notifications(t *testing.T) {
	f := newFixture(t)
	f.feed.Notify(context.Background(), notify.Infof("tasks", "created %d", 1))
	f.feed.Notify(context.Background(), notify.Warn("tasks", "save failed", errors.New("quota")))

	resp := f.do(t, http.MethodGet, "/api/v1/notifications?limit=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string][]notify.Notice](t, resp)
	require.Len(t, body["notifications"], 1)
	assert.Equal(t, notify.LevelWarning, body["notifications"][0].Level)
}

func TestServer_HealthDetailAndConfig(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "A", "")

	resp := f.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[HealthDetailResponse](t, resp)
	assert.Equal(t, health.StatusOK, h.Status)
	assert.Equal(t, "test", h.Version)
	assert.Equal(t, 1, h.Records["tasks"])

	resp = f.do(t, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[config.Public](t, resp)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 100, cfg.ActivityRetention)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/tasks", "")

	resp := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `mission_control_http_requests_total{method="GET",route="/api/v1/tasks",status="200"} 1`)
}

func TestServer_UnknownRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	p := decode[ProblemDetail](t, resp)
	assert.Equal(t, http.StatusNotFound, p.Status)
}

func TestServer_RateLimited(t *testing.T) {
	f := testApp(t, RateLimitConfig{RPS: 1, Burst: 1})

	resp := f.do(t, http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "probes are never limited")
}
