package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/xplorer/internal/api"
	"github.com/LJTian/xplorer/internal/bot"
	"github.com/LJTian/xplorer/internal/config"
	"github.com/LJTian/xplorer/internal/logger"
	"github.com/LJTian/xplorer/internal/publisher"
	"github.com/LJTian/xplorer/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const periodicRunTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	if cfg == nil {
		return
	}
	logger.Setup(cfg.LogLevel, os.Stderr)

	log.Info().Msg("starting xplorer bot")
	log.Info().Msgf("default query: %s", cfg.DefaultQuery)
	log.Info().Msgf("default max results: %d", cfg.DefaultMaxResults)
	log.Info().Msgf("collection schedule: %s", cfg.CronSpec)

	if err := scheduler.Validate(cfg.CronSpec); err != nil {
		log.Fatal().Err(err).Msgf("invalid collection schedule %q", cfg.CronSpec)
	}

	b, err := bot.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init bot failed")
	}

	// 定时任务与指令处理共用同一个 Bot
	pub, closePub := newPublisher(cfg)
	defer closePub()

	s, err := scheduler.New(cfg.CronSpec, cfg.ChannelID, b, pub, periodicRunTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("init scheduler failed")
	}
	s.Start()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	// 若配置了访问密码，则启用 Basic Auth（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}
	api.NewServer(b).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting interaction server at %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("received signal: %v", sig)
	case err := <-errCh:
		log.Error().Err(err).Msg("server exit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	// 等待正在执行的定时采集投递完成
	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown timed out")
	}
	log.Info().Msg("xplorer bot stopped")
}

// newPublisher 按配置选择投递方式；未配置目标频道时返回 nil
func newPublisher(cfg *config.Config) (scheduler.Publisher, func()) {
	if !cfg.PeriodicEnabled() {
		return nil, func() {}
	}

	switch cfg.Delivery {
	case config.DeliveryWebhook:
		return publisher.NewWebhookPublisher(cfg.WebhookURL), func() {}
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed")
		}
		return publisher.NewRedisPublisher(rdb), func() { _ = rdb.Close() }
	}
}
