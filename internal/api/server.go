// Package api serves the Mission Control boards over HTTP.
package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/mission-control/internal/activity"
	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/config"
	"github.com/p-blackswan/mission-control/internal/health"
	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/metrics"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
	"github.com/p-blackswan/mission-control/internal/requestid"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	RateLimit   RateLimitConfig
	CORSOrigins []string
	TLSCert     string
	TLSKey      string
	Version     string
	Public      config.Public
}

// Deps are the collaborators the handlers call into. Nil Agents, Feed or
// Metrics disable the matching routes.
type Deps struct {
	Tasks    *board.Controller[*models.Task, models.TaskStatus]
	Content  *board.Controller[*models.ContentItem, models.ContentStage]
	Calendar *board.Controller[*models.CalendarEvent, models.EventStatus]
	Memories *memories.Service
	Activity *activity.Log
	Agents   AgentDirectory
	Feed     *notify.Feed
	Checker  *health.Checker
	Metrics  *metrics.Metrics
	Clock    func() time.Time
}

// Server is the API Fiber application.
type Server struct {
	app      *fiber.App
	deps     Deps
	logger   zerolog.Logger
	config   ServerConfig
	started  time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates and configures a new API server.
func NewServer(cfg ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	s := &Server{
		app:     app,
		deps:    deps,
		logger:  logger.With().Str("component", "api_server").Logger(),
		config:  cfg,
		started: deps.Clock(),
		done:    make(chan struct{}),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

func (s *Server) now() time.Time { return s.deps.Clock() }

func (s *Server) setupMiddleware(cfg ServerConfig) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID
	s.app.Use(func(c *fiber.Ctx) error {
		ctx, reqID := requestid.Ensure(c.UserContext(), c.Get(requestid.Header))
		c.SetUserContext(ctx)
		c.Set(requestid.Header, reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if len(cfg.CORSOrigins) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, " + requestid.Header,
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}))
	}

	if cfg.RateLimit.RPS > 0 {
		s.app.Use(NewRateLimitMiddleware(cfg.RateLimit, s.done))
	}

	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}

	s.app.Use(func(c *fiber.Ctx) error {
		if isProbe(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("ip", c.IP()).
			Str("request_id", requestid.FromContext(c.UserContext())).
			Msg("api request")
		return err
	})
}

func metricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.RecordRequest(c.Route().Path, c.Method(), strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.liveness)
	s.app.Get("/readyz", s.readiness)
	if s.deps.Metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.deps.Metrics.Handler()))
	}

	v1 := s.app.Group("/api/v1")

	if s.deps.Tasks != nil {
		mountBoard[*models.Task, models.TaskStatus, models.TaskDraft](v1.Group("/tasks"), s.deps.Tasks, s.now)
	}
	if s.deps.Content != nil {
		mountBoard[*models.ContentItem, models.ContentStage, models.ContentDraft](v1.Group("/content"), s.deps.Content, s.now)
	}
	if s.deps.Calendar != nil {
		mountBoard[*models.CalendarEvent, models.EventStatus, models.EventDraft](v1.Group("/calendar"), s.deps.Calendar, s.now)
	}

	if s.deps.Memories != nil {
		m := v1.Group("/memories")
		m.Get("", s.listMemories)
		m.Post("", s.createMemory)
		m.Put("/:id", s.editMemory)
		m.Delete("/:id", s.deleteMemory)
		m.Post("/:id/pin", s.pinMemory)
	}

	v1.Get("/agents", s.listAgents)
	v1.Get("/agents/:id/files", s.agentFiles)

	if s.deps.Activity != nil {
		v1.Get("/activity", s.listActivity)
		v1.Get("/activity/export", s.exportActivity)
		v1.Delete("/activity", s.clearActivity)
	}

	if s.deps.Feed != nil {
		v1.Get("/notifications", s.notifications)
	}

	v1.Get("/health", s.healthDetail)
	v1.Get("/config", s.getConfig)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8090"
	}

	s.logger.Info().Str("addr", addr).Bool("tls", s.config.TLSCert != "").Msg("API server starting")

	if s.config.TLSCert != "" && s.config.TLSKey != "" {
		return s.app.ListenTLS(addr, s.config.TLSCert, s.config.TLSKey)
	}
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("API server shutting down")
	s.stopOnce.Do(func() { close(s.done) })
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		errType := "http_error"
		detail := err.Error()
		if code == fiber.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("request_id", requestid.FromContext(c.UserContext())).
				Msg("unhandled error")
			errType = "internal_error"
			detail = "An internal error occurred"
		}

		return c.Status(code).JSON(ProblemDetail{
			Type:     errType,
			Title:    fiberStatusText(code),
			Status:   code,
			Detail:   detail,
			Instance: c.Path(),
		})
	}
}

func fiberStatusText(code int) string {
	if code == fiber.StatusInternalServerError {
		return "Internal Server Error"
	}
	return strings.TrimSpace(fiber.NewError(code).Message)
}
