package main

import (
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "wardend",
		Usage:   "rate-limit and spam moderation daemon for the Kingdom apps",
		Version: versioninfo.Short(),
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
			Usage:   "IP or address, and port, to listen on for the HTTP API",
			Value:   ":3985",
			EnvVars: []string{"WARDEND_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3986",
			EnvVars: []string{"WARDEND_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL; empty runs with in-process stores",
			EnvVars: []string{"WARDEND_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "cleanup-schedule",
			Usage:   "cron expression for the counter cleanup job",
			Value:   "@daily",
			EnvVars: []string{"WARDEND_CLEANUP_SCHEDULE"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"WARDEND_LOG_LEVEL"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(cctx.String("log-level")),
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			RedisURL:        cctx.String("redis-url"),
			CleanupSchedule: cctx.String("cleanup-schedule"),
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				panic(err)
			}
		}()

		return srv.RunAPI(cctx.String("bind"))
	},
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
