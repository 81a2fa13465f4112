package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"gemmbench/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the gemmbench version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Println("gemmbench " + version.String())
			return nil
		},
	}
}
