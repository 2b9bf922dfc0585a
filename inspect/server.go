package inspect

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/lifecycle"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/registry"
	"github.com/skillsenselab/wirekit/version"
)

// startTime records process start for the uptime report.
var startTime = time.Now()

// HealthSource supplies aggregated managed-service health for the
// /health and /ready endpoints.
type HealthSource interface {
	HealthAll(ctx context.Context) lifecycle.Report
}

// Server is the diagnostics HTTP server. It implements
// lifecycle.Starter and lifecycle.Stopper so it can itself be managed.
type Server struct {
	cfg       Config
	engine    *gin.Engine
	httpSrv   *http.Server
	log       *logger.Logger
	reg       *registry.Registry
	health    HealthSource
	service   string
	boundAddr string
}

// Option adjusts server construction.
type Option func(*Server)

// WithServiceName sets the service identity reported by the endpoints.
func WithServiceName(name string) Option {
	return func(s *Server) { s.service = name }
}

// WithHealthSource attaches the health aggregate behind /health and
// /ready. Without one, both endpoints report a bare healthy service.
func WithHealthSource(src HealthSource) Option {
	return func(s *Server) { s.health = src }
}

// WithLogger substitutes the server's logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a diagnostics server over the given registry. Routes are
// registered immediately; nothing listens until Start.
func New(cfg Config, reg *registry.Registry, opts ...Option) *Server {
	cfg.ApplyDefaults()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		engine: gin.New(),
		log:    logger.Get("inspect"),
		reg:    reg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine.Use(gin.Recovery())
	s.registerRoutes()

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Engine returns the underlying gin engine, mainly for tests and for
// mounting extra diagnostic routes.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Addr returns the bound listen address once the server is serving,
// or the configured address before that. The two differ when the
// configuration asks for port 0.
func (s *Server) Addr() string {
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.cfg.Addr
}

// Start binds the listen address and serves in the background. It
// returns once the listener is bound. A disabled server starts as a
// no-op.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Debug("inspect server disabled")
		return nil
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.InspectUnavailable(s.cfg.Addr, err)
	}
	s.boundAddr = listener.Addr().String()

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("inspect server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("inspect server listening", map[string]interface{}{
		"addr": s.boundAddr,
	})
	return nil
}

// Stop drains the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.InspectUnavailable(s.cfg.Addr, err)
	}
	s.log.Info("inspect server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/registrations", s.handleRegistrations)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ready", s.handleReady)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/info", s.handleInfo)
}

func (s *Server) handleRegistrations(c *gin.Context) {
	infos := s.reg.Snapshot()

	registrations := make([]gin.H, 0, len(infos))
	for _, info := range infos {
		entry := gin.H{
			"key":      info.Key.String(),
			"scope":    info.Scope.String(),
			"cached":   info.Cached,
			"resolves": info.Resolves,
		}
		if group := info.Scope.Group(); group != "" {
			entry["group"] = group
		}
		registrations = append(registrations, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"registry":      s.reg.ID(),
		"count":         len(registrations),
		"registrations": registrations,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	report := s.report(c.Request.Context())

	httpStatus := http.StatusOK
	if report.Status == lifecycle.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    report.Status,
		"service":   s.service,
		"services":  report.Services,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	report := s.report(c.Request.Context())

	status := "ready"
	httpStatus := http.StatusOK
	if report.Status == lifecycle.StatusUnhealthy {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"service":   s.service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	v := version.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"git_branch": v.GitBranch,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"is_release": v.IsRelease,
		"is_dirty":   v.IsDirty,
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	v := version.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"service":       s.service,
		"version":       v.Version,
		"registry":      s.reg.ID(),
		"registrations": s.reg.Len(),
		"uptime":        time.Since(startTime).String(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// report returns the aggregated health, or an empty healthy report
// when no health source is attached.
func (s *Server) report(ctx context.Context) lifecycle.Report {
	if s.health == nil {
		return lifecycle.Report{Status: lifecycle.StatusHealthy}
	}
	return s.health.HealthAll(ctx)
}
