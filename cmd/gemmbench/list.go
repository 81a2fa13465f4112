package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"gemmbench/internal/report"
	"gemmbench/internal/shapes"
)

func listCmd() *cli.Command {
	var (
		jsonOut bool
		model   string
	)

	return &cli.Command{
		Name:  "list",
		Usage: "Print the projection shape table",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit JSON instead of a table",
				Destination: &jsonOut,
			},
			&cli.StringFlag{
				Name:        "model",
				Usage:       "print a single architecture block",
				Destination: &model,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			models := shapes.Models()
			if model != "" {
				m, ok := shapes.ByName(model)
				if !ok {
					return cli.Exit(fmt.Sprintf("error: unknown model %q", model), 1)
				}
				models = []shapes.Model{m}
			}

			if jsonOut {
				return report.WriteShapesJSON(os.Stdout, models)
			}
			return report.WriteShapesTable(os.Stdout, models)
		},
	}
}
