package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gemmbench/internal/logger"
	"gemmbench/internal/shapes"
)

// Config controls a benchmark sweep.
type Config struct {
	// MCases are the batch sizes to sweep. m=1 exercises the GEMV kernels.
	MCases []int `json:"m_cases"`
	Warmup int   `json:"warmup"`
	Runs   int   `json:"runs"`
	// Workers bounds GEMM parallelism; 0 means GOMAXPROCS.
	Workers int   `json:"workers"`
	Seed    int64 `json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		MCases: []int{1, 16, 128},
		Warmup: 1,
		Runs:   3,
		Seed:   42,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.MCases) == 0 {
		c.MCases = def.MCases
	}
	if c.Warmup < 0 {
		c.Warmup = def.Warmup
	}
	if c.Runs <= 0 {
		c.Runs = def.Runs
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}

// Result is one timed (model, role, shape, m, kernel) case.
type Result struct {
	Model  string        `json:"model"`
	Role   string        `json:"role"`
	N      int64         `json:"n"`
	K      int64         `json:"k"`
	M      int           `json:"m"`
	Kernel string        `json:"kernel"`
	Best   time.Duration `json:"best_ns"`
	Avg    time.Duration `json:"avg_ns"`
	GFLOPS float64       `json:"gflops"`
	GBps   float64       `json:"gbps"`
}

// Report is the outcome of one full sweep.
type Report struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Config    Config     `json:"config"`
	System    SystemInfo `json:"system"`
	Results   []Result   `json:"results"`
}

type Runner struct {
	cfg     Config
	kernels []Kernel
	log     logger.Logger
}

func NewRunner(cfg Config, kernels []Kernel, log logger.Logger) *Runner {
	cfg = cfg.withDefaults()
	if len(kernels) == 0 {
		kernels = Kernels(cfg.Workers)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		cfg:     cfg,
		kernels: kernels,
		log:     log,
	}
}

// Run sweeps every block, role, batch size, and kernel, timing each case.
// It honors ctx cancellation between cases; a cancelled run returns the
// context error and no report.
func (r *Runner) Run(ctx context.Context, models []shapes.Model) (*Report, error) {
	if len(models) == 0 {
		models = shapes.Models()
	}
	roles := shapes.Roles()

	report := &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    r.cfg,
		System:    CollectSystem(),
	}

	caseSeed := r.cfg.Seed
	for _, model := range models {
		for ri, s := range model.Shapes {
			for _, m := range r.cfg.MCases {
				for _, k := range r.kernels {
					if !k.Supports(m) {
						continue
					}
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					res, err := r.runCase(model.Name, roles[ri].String(), s, m, k, caseSeed)
					if err != nil {
						return nil, fmt.Errorf("case %s/%s m=%d kernel=%s: %w",
							model.Name, roles[ri], m, k.Name(), err)
					}
					caseSeed += 2
					report.Results = append(report.Results, res)
				}
			}
		}
	}

	r.log.Info("benchmark sweep complete", "id", report.ID, "cases", len(report.Results))
	return report, nil
}

func (r *Runner) runCase(model, role string, s shapes.Shape, m int, k Kernel, seed int64) (Result, error) {
	c, err := k.NewCase(s, m, seed)
	if err != nil {
		return Result{}, err
	}

	for i := 0; i < r.cfg.Warmup; i++ {
		c.Run()
	}

	best := time.Duration(0)
	var total time.Duration
	for i := 0; i < r.cfg.Runs; i++ {
		start := time.Now()
		c.Run()
		elapsed := time.Since(start)
		total += elapsed
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}

	res := Result{
		Model:  model,
		Role:   role,
		N:      s.N,
		K:      s.K,
		M:      m,
		Kernel: k.Name(),
		Best:   best,
		Avg:    total / time.Duration(r.cfg.Runs),
	}
	if sec := best.Seconds(); sec > 0 {
		res.GFLOPS = c.Flops / sec / 1e9
		res.GBps = float64(c.Bytes) / sec / 1e9
	}

	r.log.Debug("case complete",
		"model", model, "role", role, "n", s.N, "k", s.K, "m", m,
		"kernel", k.Name(), "best", best, "gflops", res.GFLOPS)
	return res, nil
}
