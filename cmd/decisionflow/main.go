// Package main provides the DecisionFlow command line runner.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/decisionflow/decisionflow/pkg/log"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "decisionflow",
		Usage:                 "Run and validate decisioning workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "execute",
				Aliases: []string{"e"},
				Usage:   "Execute a workflow and print the resulting report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to a workflow definition JSON file",
					},
					&cli.StringFlag{
						Name:    "workflow",
						Aliases: []string{"w"},
						Usage:   "ID of a stored workflow to execute",
					},
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "Database connection URL for stored workflows",
						Value:   "file://./data",
						Sources: cli.EnvVars("DATABASE_URL"),
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Execution input as a JSON object",
					},
					&cli.StringFlag{
						Name:  "input-file",
						Usage: "Path to a JSON file with the execution input",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Abort the execution after this duration",
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Maximum number of node visits",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"), command.String("log-format"))

					return runExecute(ctx, logger, command)
				},
			},
			{
				Name:    "validate",
				Aliases: []string{"v"},
				Usage:   "Validate a workflow definition file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a workflow definition JSON file",
						Required: true,
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"), command.String("log-format"))

					return runValidate(command)
				},
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
