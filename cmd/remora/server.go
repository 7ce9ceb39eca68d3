package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/remora-mod/remora/reddit"
	"github.com/remora-mod/remora/rulemod"
	"github.com/remora-mod/remora/rulemod/cachestore"
	"github.com/remora-mod/remora/rulemod/countstore"
	"github.com/remora-mod/remora/rulemod/engine"
	"github.com/remora-mod/remora/rulemod/settingstore"
)

type Server struct {
	echo   *echo.Echo
	logger *slog.Logger
	engine *rulemod.Engine
}

type Config struct {
	Logger          *slog.Logger
	Subreddit       string
	ClientID        string
	ClientSecret    string
	Username        string
	Password        string
	RedisURL        string
	SettingsFile    string
	SlackWebhookURL string
	IgnoreAccounts  []string
	APIRateLimit    float64
}

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	client := reddit.NewAPIClient(reddit.APIClientConfig{
		Subreddit:    config.Subreddit,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RateLimit:    config.APIRateLimit,
		Logger:       logger,
	})

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var settings settingstore.SettingsStore
	if config.RedisURL != "" {
		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, engine.SubredditNameTTL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh

		st, err := settingstore.NewRedisSettingsStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis settings store: %v", err)
		}
		settings = st
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(100, engine.SubredditNameTTL)
		settings = settingstore.NewMemSettingsStore()
	}
	if config.SettingsFile != "" {
		settings = settingstore.NewFileSettingsStore(config.SettingsFile)
		logger.Info("using settings from JSON file", "path", config.SettingsFile)
	}

	// resolve the service's own account so its comments get skipped
	self, err := client.AccountByName(ctx, config.Username)
	if err != nil {
		return nil, fmt.Errorf("resolving service account: %w", err)
	}
	logger.Info("resolved service account", "username", self.Name, "id", self.ID)

	eng := &rulemod.Engine{
		Logger:         logger,
		Client:         client,
		Settings:       settings,
		Cache:          cache,
		Counters:       counters,
		AppAccountID:   self.ID,
		IgnoreAccounts: config.IgnoreAccounts,
	}
	if config.SlackWebhookURL != "" {
		logger.Info("configuring slack removal notifications")
		eng.Notifier = &rulemod.SlackNotifier{SlackWebhookURL: config.SlackWebhookURL}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	srv := &Server{
		echo:   e,
		logger: logger,
		engine: eng,
	}

	e.GET("/_health", srv.HandleHealthCheck)
	e.POST("/webhook/comment-submit", srv.HandleCommentSubmit)

	return srv, nil
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// One POST per new comment in the monitored subreddit. Recognized abort
// conditions still consume the event (200); only platform call failures get a
// 5xx, so the delivery side can retry them.
func (srv *Server) HandleCommentSubmit(c echo.Context) error {
	var evt reddit.CommentSubmitEvent
	if err := c.Bind(&evt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	if err := srv.engine.ProcessCommentSubmit(c.Request().Context(), &evt); err != nil {
		srv.logger.Error("failed to process comment event", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "event processing failed")
	}
	return c.NoContent(http.StatusOK)
}

func (srv *Server) Run(bind string) error {
	srv.logger.Info("starting webhook listener", "bind", bind)
	return srv.echo.Start(bind)
}

func (srv *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}
