package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"gemmbench/internal/logger"
	"gemmbench/internal/shapes"
)

var (
	modelsFlag  string
	kernelsFlag string
	mCasesFlag  string
	warmupRuns  int64
	benchRuns   int64
	workers     int64
	seed        int64
	autotune    bool
	logLevel    string
	logFormat   string
	debug       bool
)

func benchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "models",
			Aliases:     []string{"m"},
			Usage:       "comma-separated architecture names (default: all)",
			Destination: &modelsFlag,
		},
		&cli.StringFlag{
			Name:        "kernels",
			Usage:       "comma-separated kernel names (default: all)",
			Destination: &kernelsFlag,
		},
		&cli.StringFlag{
			Name:        "m-cases",
			Usage:       "comma-separated batch sizes to sweep",
			Value:       "1,16,128",
			Destination: &mCasesFlag,
		},
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs per case",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of timed runs per case",
			Value:       3,
			Destination: &benchRuns,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Usage:       "GEMM worker count (0 = GOMAXPROCS)",
			Destination: &workers,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "seed for operand generation",
			Value:       42,
			Destination: &seed,
		},
		&cli.BoolFlag{
			Name:        "autotune",
			Usage:       "sweep GEMM tile configurations per shape before timing",
			Destination: &autotune,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func setupLogger() logger.Logger {
	level := logLevel
	if debug {
		level = "debug"
	}
	return logger.Setup(os.Stderr, level, logFormat)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMCases(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		v, err := strconv.Atoi(part)
		if err != nil || v < 1 {
			return nil, &badMCaseError{value: part}
		}
		out = append(out, v)
	}
	return out, nil
}

type badMCaseError struct {
	value string
}

func (e *badMCaseError) Error() string {
	return "invalid batch size " + strconv.Quote(e.value)
}

func resolveModelsFlag(s string) ([]shapes.Model, error) {
	names := splitList(s)
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
	return "unknown model " + strconv.Quote(e.name)
}
