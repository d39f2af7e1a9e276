// Package app wires the boards, their persistence and the outer surfaces
// together. No board logic lives here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/mission-control/internal/activity"
	"github.com/p-blackswan/mission-control/internal/api"
	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/config"
	"github.com/p-blackswan/mission-control/internal/health"
	"github.com/p-blackswan/mission-control/internal/mcptools"
	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/metrics"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
	"github.com/p-blackswan/mission-control/internal/persist"
	"github.com/p-blackswan/mission-control/internal/retry"
	"github.com/p-blackswan/mission-control/internal/seed"
	"github.com/p-blackswan/mission-control/internal/store"
	"github.com/p-blackswan/mission-control/internal/upstream"
)

// App holds every long-lived component.
type App struct {
	Config   *config.Config
	DB       *store.Store
	Metrics  *metrics.Metrics
	Checker  *health.Checker
	Feed     *notify.Feed
	Notifier notify.Notifier
	Upstream *upstream.Client
	Activity *activity.Log
	Tasks    *board.Controller[*models.Task, models.TaskStatus]
	Content  *board.Controller[*models.ContentItem, models.ContentStage]
	Calendar *board.Controller[*models.CalendarEvent, models.EventStatus]
	Memories *memories.Service

	slack       *notify.SlackNotifier
	logger      zerolog.Logger
	unsubscribe []func()
	clock       func() time.Time
}

// Option customizes New.
type Option func(*App)

// WithClock overrides the wall clock used by every store.
func WithClock(clock func() time.Time) Option {
	return func(a *App) { a.clock = clock }
}

// New opens the database and builds every component. Nothing is loaded
// until Load is called.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config: cfg,
		logger: logger.With().Str("component", "app").Logger(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(a)
	}

	db, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	a.Metrics = metrics.New()
	a.Checker = health.NewChecker(logger)

	a.Feed = notify.NewFeed(cfg.NotifyHistory)
	notifiers := notify.Multi{a.Feed, notify.NewLogNotifier(logger), errorCounter{a.Metrics}}
	if cfg.SlackEnabled() {
		a.slack = notify.NewSlackNotifier(cfg.SlackWebhookURL, logger)
		notifiers = append(notifiers, a.slack)
	}
	a.Notifier = notifiers

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.UpstreamRetries
	a.Upstream = upstream.NewClient(upstream.Config{
		BaseURL:  cfg.UpstreamURL,
		Timeout:  cfg.UpstreamTimeout,
		Retry:    retryCfg,
		FilesTTL: cfg.AgentFilesTTL,
	}, logger)

	a.Activity = activity.New(activity.NewStore(cfg.ActivityRetention, logger, storeOptions[*models.Activity](a, "activity")...), logger)

	editorOpts := []board.EditorOption{
		board.WithActivity(a.Activity),
		board.WithMemoSize(cfg.ViewCacheSize),
	}
	a.Tasks = board.NewController(board.TaskKind,
		board.NewStore[*models.Task]("tasks", logger, storeOptions[*models.Task](a, "tasks")...), logger, editorOpts...)
	a.Content = board.NewController(board.ContentKind,
		board.NewStore[*models.ContentItem]("content", logger, storeOptions[*models.ContentItem](a, "content")...), logger, editorOpts...)
	a.Calendar = board.NewController(board.CalendarKind,
		board.NewStore[*models.CalendarEvent]("calendar", logger, storeOptions[*models.CalendarEvent](a, "calendar")...), logger, editorOpts...)

	mirror := persist.NewJSON[*models.MemoryEntry](db, "memories")
	memStore := board.NewStore[*models.MemoryEntry]("memories", logger,
		board.WithPersister[*models.MemoryEntry](memories.NewPersister(a.Upstream, mirror, a.Notifier, logger)),
		board.WithClock[*models.MemoryEntry](a.clock),
		board.WithObserver[*models.MemoryEntry](a.Metrics),
	)
	a.Memories = memories.NewService(memStore, a.Upstream, a.Notifier, logger, editorOpts...)

	watch(a, a.Tasks.Store())
	watch(a, a.Content.Store())
	watch(a, a.Calendar.Store())
	watch(a, a.Memories.Store())
	watch(a, a.Activity.Store())

	a.registerChecks()
	return a, nil
}

func storeOptions[T board.Entity[T]](a *App, collection string) []board.StoreOption[T] {
	return []board.StoreOption[T]{
		board.WithPersister[T](persist.NewJSON[T](a.DB, collection)),
		board.WithClock[T](a.clock),
		board.WithObserver[T](a.Metrics),
	}
}

// watch turns committed changes on s into user-visible notices.
func watch[T board.Entity[T]](a *App, s *board.Store[T]) {
	a.unsubscribe = append(a.unsubscribe, s.Subscribe(func(c board.Change) {
		ctx := context.Background()
		switch {
		case c.SaveErr != nil:
			a.Notifier.Notify(ctx, notify.Warn(c.Kind, "Changes could not be saved", c.SaveErr))
		case c.Op == board.OpDelete && c.Kind != "activity":
			a.Notifier.Notify(ctx, notify.Infof(c.Kind, "Deleted %d %s", len(c.IDs), c.Kind))
		}
	}))
}

func (a *App) registerChecks() {
	a.Checker.Register("database", func(ctx context.Context) health.Status {
		if err := a.DB.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	a.Checker.Register("stores", func(context.Context) health.Status {
		if a.Tasks.Store().Loaded() && a.Content.Store().Loaded() && a.Calendar.Store().Loaded() &&
			a.Memories.Store().Loaded() && a.Activity.Store().Loaded() {
			return health.StatusOK
		}
		return health.StatusDown
	})
	if a.Upstream.Enabled() {
		a.Checker.Register("upstream", func(ctx context.Context) health.Status {
			if err := a.Upstream.Ping(ctx); err != nil {
				return health.StatusDegraded
			}
			return health.StatusOK
		})
	}
}

// Load restores every collection and applies the seed file to the empty
// ones. A collection that fails to load starts empty; its error is
// reported and returned, but the others still load.
func (a *App) Load(ctx context.Context) error {
	var errs []error
	loaders := []struct {
		kind string
		load func(context.Context) error
	}{
		{"activity", a.Activity.Load},
		{"tasks", a.Tasks.Load},
		{"content", a.Content.Load},
		{"calendar", a.Calendar.Load},
		{"memories", a.Memories.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			a.logger.Error().Err(err).Str("kind", l.kind).Msg("load failed, starting empty")
			a.Notifier.Notify(ctx, notify.Warn(l.kind, "Saved data could not be loaded", err))
			errs = append(errs, err)
		}
	}

	if a.Config.SeedFile != "" {
		f, err := seed.Read(a.Config.SeedFile)
		if err != nil {
			errs = append(errs, err)
		} else if _, err := seed.Apply(ctx, f, seed.Targets{
			Tasks:    a.Tasks,
			Content:  a.Content,
			Calendar: a.Calendar,
			Memories: a.Memories.Editor,
		}, a.logger); err != nil {
			errs = append(errs, fmt.Errorf("apply seed: %w", err))
		}
	}

	a.logger.Info().
		Int("tasks", a.Tasks.Store().Len()).
		Int("content", a.Content.Store().Len()).
		Int("calendar", a.Calendar.Store().Len()).
		Int("memories", a.Memories.Store().Len()).
		Int("activity", a.Activity.Store().Len()).
		Msg("collections loaded")
	return errors.Join(errs...)
}

// Server builds the HTTP API over the loaded components.
func (a *App) Server(version string) *api.Server {
	cfg := a.Config
	return api.NewServer(api.ServerConfig{
		ListenAddr:  cfg.ListenAddr,
		RateLimit:   api.RateLimitConfig{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		CORSOrigins: cfg.CORSOriginList(),
		TLSCert:     cfg.TLSCert,
		TLSKey:      cfg.TLSKey,
		Version:     version,
		Public:      cfg.Public(),
	}, api.Deps{
		Tasks:    a.Tasks,
		Content:  a.Content,
		Calendar: a.Calendar,
		Memories: a.Memories,
		Activity: a.Activity,
		Agents:   a.Upstream,
		Feed:     a.Feed,
		Checker:  a.Checker,
		Metrics:  a.Metrics,
		Clock:    a.clock,
	}, a.logger)
}

// MCPBoards exposes the controllers to the MCP tools.
func (a *App) MCPBoards() mcptools.Boards {
	return mcptools.Boards{
		Tasks:    a.Tasks,
		Content:  a.Content,
		Calendar: a.Calendar,
		Memories: a.Memories,
		Clock:    a.clock,
	}
}

// Close waits for pending notifications and closes the database.
func (a *App) Close() error {
	for _, fn := range a.unsubscribe {
		fn()
	}
	if a.slack != nil {
		a.slack.Wait()
	}
	return a.DB.Close()
}

// errorCounter counts warning and error notices per source.
type errorCounter struct {
	m *metrics.Metrics
}

func (e errorCounter) Notify(_ context.Context, n notify.Notice) {
	if n.Level == notify.LevelWarning || n.Level == notify.LevelError {
		e.m.RecordError(n.Source, string(n.Level))
	}
}
