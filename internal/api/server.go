package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"gemmbench/internal/bench"
	"gemmbench/internal/logger"
	"gemmbench/internal/shapes"
)

// RunFunc executes a benchmark sweep. Injected so tests can stub out the
// multi-second (and multi-gigabyte) real runner.
type RunFunc func(ctx context.Context, cfg bench.Config, kernels []bench.Kernel, models []shapes.Model) (*bench.Report, error)

func defaultRun(ctx context.Context, cfg bench.Config, kernels []bench.Kernel, models []shapes.Model) (*bench.Report, error) {
	return bench.NewRunner(cfg, kernels, logger.FromContext(ctx)).Run(ctx, models)
}

// Server exposes the shape table and benchmark runs over HTTP.
type Server struct {
	store   *RunStore
	run     RunFunc
	log     logger.Logger
	clock   func() time.Time
	limiter *rate.Limiter
}

func NewServer(store *RunStore, run RunFunc, log logger.Logger) *Server {
	if store == nil {
		store = NewRunStore()
	}
	if run == nil {
		run = defaultRun
	}
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		store:   store,
		run:     run,
		log:     log,
		clock:   time.Now,
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.GET("/v1/shapes", s.handleListShapes, s.rateLimit)
	e.GET("/v1/shapes/:model", s.handleGetShape, s.rateLimit)
	e.POST("/v1/benchmarks", s.handleCreateRun, s.rateLimit)
	e.GET("/v1/benchmarks", s.handleListRuns, s.rateLimit)
	e.GET("/v1/benchmarks/:id", s.handleGetRun, s.rateLimit)
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if !s.limiter.Allow() {
			return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many requests")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListShapes(c *echo.Context) error {
	return c.JSON(http.StatusOK, shapes.Models())
}

func (s *Server) handleGetShape(c *echo.Context) error {
	name := c.Param("model")
	model, ok := shapes.ByName(name)
	if !ok {
		return writeNotFound(c, "unknown model "+name)
	}
	return c.JSON(http.StatusOK, model)
}

func (s *Server) handleCreateRun(c *echo.Context) error {
	req, err := decodeJSON[RunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	models, err := resolveModels(req.Models)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	cfg := bench.DefaultConfig()
	if len(req.MCases) > 0 {
		for _, m := range req.MCases {
			if m < 1 {
				return writeBadRequest(c, "m_cases entries must be positive")
			}
		}
		cfg.MCases = req.MCases
	}
	if req.Warmup != nil {
		if *req.Warmup < 0 {
			return writeBadRequest(c, "warmup must be non-negative")
		}
		cfg.Warmup = *req.Warmup
	}
	if req.Runs != nil {
		if *req.Runs < 1 {
			return writeBadRequest(c, "runs must be positive")
		}
		cfg.Runs = *req.Runs
	}
	if req.Workers != nil {
		cfg.Workers = *req.Workers
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	kernels, err := bench.KernelsByName(req.Kernels, cfg.Workers)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Autotune != nil && *req.Autotune {
		kernels = bench.WithAutotune(kernels)
	}

	rec := s.store.Create(s.clock())
	go s.execute(rec.ID, cfg, kernels, models)

	return c.JSON(http.StatusAccepted, rec)
}

// execute runs detached from the request context: the run must survive the
// client disconnecting.
func (s *Server) execute(id string, cfg bench.Config, kernels []bench.Kernel, models []shapes.Model) {
	s.store.MarkRunning(id)
	ctx := logger.WithContext(context.Background(), s.log)

	s.log.Info("benchmark run started", "run", id, "models", len(models))
	rep, err := s.run(ctx, cfg, kernels, models)
	if err != nil {
		s.log.Error("benchmark run failed", "run", id, "err", err)
		s.store.MarkFailed(id, err, s.clock())
		return
	}
	s.store.MarkCompleted(id, rep, s.clock())
	s.log.Info("benchmark run completed", "run", id, "cases", len(rep.Results))
}

func (s *Server) handleGetRun(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "unknown benchmark run")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListRuns(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func resolveModels(names []string) ([]shapes.Model, error) {
	if len(names) == 0 {
		return shapes.Models(), nil
	}
	out := make([]shapes.Model, 0, len(names))
	for _, name := range names {
		m, ok := shapes.ByName(name)
		if !ok {
			return nil, &unknownModelError{name: name}
		}
		out = append(out, m)
	}
	return out, nil
}

type unknownModelError struct {
	name string
}

func (e *unknownModelError) Error() string {
	return "unknown model " + e.name
}
