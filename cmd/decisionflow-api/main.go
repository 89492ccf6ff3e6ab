package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/decisionflow/decisionflow/pkg/cmd"
	"github.com/decisionflow/decisionflow/pkg/datasources"
	"github.com/decisionflow/decisionflow/pkg/engine"
	"github.com/decisionflow/decisionflow/pkg/log"
	"github.com/decisionflow/decisionflow/pkg/otelhelper"
	"github.com/decisionflow/decisionflow/pkg/registry"
)

const (
	defaultPort     = 9090
	defaultCacheTTL = 5 * time.Minute
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "decisionflow-api",
		Usage:                 "Manage and execute decisioning workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for data source caching (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				Value:   "json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger.InfoContext(ctx, "Initializing DecisionFlow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "decisionflow-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			sources, err := newDataSources(ctx, logger, command.String("redis-url"))
			if err != nil {
				return err
			}

			reg := registry.NewRegistry(logger)
			reg.RegisterDefaults(logger, persistence, sources)

			var tracer trace.Tracer
			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, "decisionflow-api")
				if err != nil {
					return err
				}
			}

			eng := engine.NewEngine(persistence, reg, eventBus, logger, tracer)

			api := NewAPI(logger, persistence, reg, eng)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

// newDataSources builds the connector registry, wrapping every connector
// with a redis read-through cache when a redis URL is configured.
func newDataSources(ctx context.Context, logger *slog.Logger, redisURL string) (*datasources.Registry, error) {
	sources := datasources.NewDefaultRegistry(logger)
	if redisURL == "" {
		return sources, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	cached := datasources.NewRegistry()

	for _, id := range sources.IDs() {
		source, ok := sources.Source(id)
		if !ok {
			continue
		}

		cached.Register(datasources.NewCachedSource(source, client, defaultCacheTTL, logger))
	}

	return cached, nil
}
