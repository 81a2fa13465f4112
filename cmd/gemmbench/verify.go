package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gemmbench/internal/bench"
	"gemmbench/internal/logger"
)

func verifyCmd() *cli.Command {
	flags := append([]cli.Flag{}, benchFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:  "verify",
		Usage: "Check every kernel against a naive reference on shrunken table shapes",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyBenchConfig(cmd, LoadConfig())
			log := setupLogger()
			ctx = logger.WithContext(ctx, log)

			models, err := resolveModelsFlag(modelsFlag)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			results, err := bench.Verify(ctx, models, int(workers), log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: verification: %v", err), 1)
			}

			failures := 0
			fmt.Fprintf(os.Stdout, "%-24s %-9s %-11s %7s %7s %12s %s\n",
				"Model", "Role", "Kernel", "N", "K", "Error", "Status")
			for _, r := range results {
				status := "ok"
				if !r.OK {
					status = "FAIL"
					failures++
				}
				fmt.Fprintf(os.Stdout, "%-24s %-9s %-11s %7d %7d %12.3g %s\n",
					r.Model, r.Role, r.Kernel, r.N, r.K, r.Error, status)
			}

			if failures > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d checks failed", failures, len(results)), 1)
			}
			log.Info("all kernels verified", "checks", len(results))
			return nil
		},
	}
}
