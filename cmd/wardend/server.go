package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	warden "github.com/kingdom-collective/warden"
	"github.com/kingdom-collective/warden/cachestore"
	"github.com/kingdom-collective/warden/classifier"
	"github.com/kingdom-collective/warden/countstore"
	"github.com/kingdom-collective/warden/flagstore"
	"github.com/kingdom-collective/warden/modstore"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	slogecho "github.com/samber/slog-echo"
)

type Server struct {
	logger *slog.Logger
	engine *warden.Engine
	echo   *echo.Echo
	cron   *cron.Cron
}

type Config struct {
	RedisURL        string
	CleanupSchedule string
	Logger          *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var counters countstore.CountStore
	var flagged flagstore.FlagStore
	var mods modstore.ModStore
	var cache cachestore.CacheStore
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %w", err)
		}
		counters = cnt

		flg, err := flagstore.NewRedisFlagStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis flagstore: %w", err)
		}
		flagged = flg

		mst, err := modstore.NewRedisModStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis modstore: %w", err)
		}
		mods = mst

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %w", err)
		}
		cache = csh
		logger.Info("using redis-backed stores", "url", config.RedisURL)
	} else {
		counters = countstore.NewMemCountStore()
		flagged = flagstore.NewMemFlagStore()
		mods = modstore.NewMemModStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
		logger.Info("using in-process stores")
	}

	cls := classifier.New(flagged, nil).WithCache(cache)
	eng := warden.NewEngine(logger, counters, flagged, mods, cls)

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	srv := &Server{
		logger: logger,
		engine: eng,
		echo:   e,
	}
	srv.registerRoutes()

	schedule := config.CleanupSchedule
	if schedule == "" {
		schedule = "@daily"
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, srv.runCleanup); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	srv.cron = c

	return srv, nil
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (s *Server) runCleanup() {
	ctx, cancel := contextWithTimeout()
	defer cancel()
	removed, err := s.engine.CleanupOldData(ctx)
	if err != nil {
		s.logger.Error("cleanup failed", "err", err)
		return
	}
	cleanupRuns.Inc()
	cleanupBucketsRemoved.Add(float64(removed))
}

func (s *Server) RunAPI(bind string) error {
	s.logger.Info("starting API server", "bind", bind)
	s.cron.Start()
	defer s.cron.Stop()
	return s.echo.Start(bind)
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
