package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gemmbench/internal/bench"
	"gemmbench/internal/logger"
	"gemmbench/internal/report"
)

func runCmd() *cli.Command {
	var (
		jsonOut    bool
		outputPath string
	)

	flags := append([]cli.Flag{}, benchFlags()...)
	flags = append(flags, loggingFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "write JSON to stdout instead of a table",
			Destination: &jsonOut,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "also write the JSON report to a file",
			Destination: &outputPath,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run the benchmark sweep",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyBenchConfig(cmd, LoadConfig())
			log := setupLogger()
			ctx = logger.WithContext(ctx, log)

			models, err := resolveModelsFlag(modelsFlag)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			mCases, err := parseMCases(mCasesFlag)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			kernels, err := bench.KernelsByName(splitList(kernelsFlag), int(workers))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if autotune {
				kernels = bench.WithAutotune(kernels)
			}

			cfg := bench.Config{
				MCases:  mCases,
				Warmup:  int(warmupRuns),
				Runs:    int(benchRuns),
				Workers: int(workers),
				Seed:    seed,
			}

			log.Info("starting benchmark sweep",
				"models", len(models), "kernels", len(kernels), "m_cases", mCases)

			runner := bench.NewRunner(cfg, kernels, log)
			rep, err := runner.Run(ctx, models)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: benchmark run: %v", err), 1)
			}

			if jsonOut {
				if err := report.WriteJSON(os.Stdout, rep); err != nil {
					return cli.Exit(fmt.Sprintf("error: write report: %v", err), 1)
				}
			} else {
				if err := report.WriteTable(os.Stdout, rep); err != nil {
					return cli.Exit(fmt.Sprintf("error: write report: %v", err), 1)
				}
			}

			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: create %s: %v", outputPath, err), 1)
				}
				defer func() { _ = f.Close() }()
				if err := report.WriteJSON(f, rep); err != nil {
					return cli.Exit(fmt.Sprintf("error: write %s: %v", outputPath, err), 1)
				}
				log.Info("report written", "path", outputPath, "id", rep.ID)
			}

			return nil
		},
	}
}
