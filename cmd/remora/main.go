// remora: rule-triggered post removal daemon (attaches to the host and keeps it clean)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "remora",
		Usage:   "rule-triggered post removal daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "subreddit",
			Usage:    "subreddit this instance moderates",
			Required: true,
			EnvVars:  []string{"REMORA_SUBREDDIT"},
		},
		&cli.StringFlag{
			Name:    "reddit-client-id",
			EnvVars: []string{"REDDIT_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "reddit-client-secret",
			EnvVars: []string{"REDDIT_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "reddit-username",
			Usage:   "account the daemon authenticates and posts as",
			EnvVars: []string{"REDDIT_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "reddit-password",
			EnvVars: []string{"REDDIT_PASSWORD"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for event webhooks",
			Value:   ":3999",
			EnvVars: []string{"REMORA_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"REMORA_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL; in-process stores are used when empty",
			EnvVars: []string{"REMORA_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "settings-file",
			Usage:   "JSON file of feature settings, re-read per event (overrides redis settings)",
			EnvVars: []string{"REMORA_SETTINGS_FILE"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "incoming webhook for removal notifications (optional)",
			EnvVars: []string{"REMORA_SLACK_WEBHOOK_URL"},
		},
		&cli.StringSliceFlag{
			Name:    "ignore-account",
			Usage:   "username whose comments are never processed (repeatable)",
			Value:   cli.NewStringSlice("AutoModerator"),
			EnvVars: []string{"REMORA_IGNORE_ACCOUNTS"},
		},
		&cli.Float64Flag{
			Name:    "api-rate-limit",
			Usage:   "max requests per second to the reddit API",
			Value:   1.0,
			EnvVars: []string{"REMORA_API_RATE_LIMIT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				return fmt.Errorf("failed to create trace exporter: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("remora"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(ctx, Config{
			Logger:          logger,
			Subreddit:       cctx.String("subreddit"),
			ClientID:        cctx.String("reddit-client-id"),
			ClientSecret:    cctx.String("reddit-client-secret"),
			Username:        cctx.String("reddit-username"),
			Password:        cctx.String("reddit-password"),
			RedisURL:        cctx.String("redis-url"),
			SettingsFile:    cctx.String("settings-file"),
			SlackWebhookURL: cctx.String("slack-webhook-url"),
			IgnoreAccounts:  cctx.StringSlice("ignore-account"),
			APIRateLimit:    cctx.Float64("api-rate-limit"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(cctx.String("bind")); err != nil {
			return fmt.Errorf("failed to run removal service: %w", err)
		}
		return nil
	},
}
