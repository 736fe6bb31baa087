package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/jobs"
	"github.com/fakturlu/faktur-accounting/internal/logging"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	Debug        bool
}

// Queue hands work to the background worker
type Queue interface {
	EnqueueExport(ctx context.Context, payload jobs.ExportPayload) (*asynq.TaskInfo, error)
	EnqueueTransmit(ctx context.Context, payload jobs.TransmitPayload) (*asynq.TaskInfo, error)
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server
type Server struct {
	config      *Config
	router      *gin.Engine
	resolver    *vat.Resolver
	exports     *export.Service
	transmitter *peppol.Transmitter
	queue       Queue
	gatherer    prometheus.Gatherer
	logger      *zap.Logger
}

// Option configures the server
type Option func(*Server)

// WithExportService sets the export service
func WithExportService(svc *export.Service) Option {
	return func(s *Server) {
		s.exports = svc
	}
}

// WithTransmitter enables the Peppol endpoints
func WithTransmitter(t *peppol.Transmitter) Option {
	return func(s *Server) {
		s.transmitter = t
	}
}

// WithQueue enables asynchronous exports and transmissions
func WithQueue(q Queue) Option {
	return func(s *Server) {
		s.queue = q
	}
}

// WithGatherer sets the registry served on /metrics
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(l)
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:   config,
		router:   gin.New(),
		resolver: vat.NewResolver(),
		exports:  export.NewService(),
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery(), s.requestLogger())
	if config.MaxBodyBytes > 0 {
		s.router.Use(limitBody(config.MaxBodyBytes))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/vat/scenario", s.handleScenario)
		v1.POST("/vat/validate-number", s.handleValidateNumber)

		v1.POST("/entries", s.handleEntries)
		v1.POST("/exports/:format", s.handleExport)

		v1.POST("/peppol/ubl", s.handleUBL)
		v1.POST("/peppol/send", s.handleSend)
		v1.GET("/peppol/status/:id", s.handleStatus)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.transmitter != nil {
		resp["peppol_provider"] = s.transmitter.AccessPoint().ProviderName()
		resp["peppol_configured"] = s.transmitter.AccessPoint().IsConfigured()
	}
	if s.queue != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.queue.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["queue"] = err.Error()
		} else {
			resp["queue"] = "ok"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		switch {
		case route == "/metrics" || route == "/health":
			s.logger.Debug("http request", fields...)
		case c.Writer.Status() >= http.StatusInternalServerError:
			s.logger.Error("http request", fields...)
		default:
			s.logger.Info("http request", fields...)
		}
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
