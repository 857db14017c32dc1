// Package server exposes one application per browser session over HTTP.
package server

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/application"
	"github.com/spigell/recruiter/internal/config"
	"github.com/spigell/recruiter/internal/extract"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/screening"
)

const (
	SessionCookie = "recruiter_session"

	// DefaultSessionTTL is how long an idle session keeps its application.
	DefaultSessionTTL = 30 * time.Minute

	machineKey = "machine"
	bodyLimit  = 10 * 1024 * 1024
)

// MachineFactory builds a fresh application for a new session.
type MachineFactory func() (*application.Machine, error)

// Option adjusts a Server.
type Option func(*Server)

// WithSessionTTL sets how long an idle session survives. Non-positive values
// keep the default.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

type session struct {
	machine  *application.Machine
	lastSeen time.Time
}

type Server struct {
	app     *fiber.App
	factory MachineFactory
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func New(factory MachineFactory, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		factory:  factory,
		logger:   logger,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "recruiter",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.routes()

	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/roles", s.listRoles)

	app := s.app.Group("/application", s.session)
	app.Get("/", s.getApplication)
	app.Post("/role", s.selectRole)
	app.Post("/resume", s.uploadResume)
	app.Post("/screening", s.requestScreening)
	app.Post("/decision", s.completeScreening)
	app.Post("/proceed", s.proceed)
	app.Post("/reset", s.reset)
}

// session attaches the caller's application. Unknown or expired cookies get
// a fresh server-issued id and a new application.
func (s *Server) session(c *fiber.Ctx) error {
	id := utils.CopyString(c.Cookies(SessionCookie))
	now := s.now()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		s.evictIdle(now)

		created, err := s.factory()
		if err != nil {
			s.mu.Unlock()
			return err
		}
		id = uuid.NewString()
		sess = &session{machine: created}
		s.sessions[id] = sess
		s.logger.Debug("session created", zap.String("session", id), zap.Int("sessions", len(s.sessions)))
	}
	sess.lastSeen = now
	s.mu.Unlock()

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(machineKey, sess.machine)

	return c.Next()
}

// evictIdle drops sessions idle for longer than the ttl. Callers hold s.mu.
func (s *Server) evictIdle(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			s.logger.Debug("session expired", zap.String("session", id))
		}
	}
}

// Sessions reports how many applications are held.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func machineFrom(c *fiber.Ctx) *application.Machine {
	m, _ := c.Locals(machineKey).(*application.Machine)
	return m
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	return err
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, application.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, application.ErrInvalidInput), errors.Is(err, roles.ErrNotFound):
		return fiber.StatusBadRequest
	case errors.Is(err, extract.ErrNoText), errors.Is(err, screening.ErrFormat):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, screening.ErrTransport):
		return fiber.StatusBadGateway
	case errors.Is(err, config.ErrIncomplete):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}
	if m := machineFrom(c); m != nil {
		body["application"] = newRecordView(m.Record())
	}

	return c.Status(code).JSON(body)
}
