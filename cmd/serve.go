package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/user-sync/handlers"
	"github.com/gogotex/gogotex/backend/user-sync/internal/config"
	"github.com/gogotex/gogotex/backend/user-sync/internal/webhook"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/metrics"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var startTime = time.Now()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook receiver and admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v kafka=%v clerk_key_set=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Enabled(), len(cfg.Kafka.Brokers) > 0, cfg.Clerk.SecretKey != "")

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(svc, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting user-sync on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newRouter mounts every route on a fresh engine. reg backs /metrics.
func newRouter(svc *services, reg *prometheus.Registry) *gin.Engine {
	cfg := svc.cfg
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	checks := []handlers.ReadinessCheck{
		{Name: "users", Required: true, Check: svc.users.Ping},
		{Name: "webhook_secret", Required: true, Check: func(context.Context) error {
			_, err := webhook.NewVerifier(cfg.Webhook.Secret)
			return handlers.SecretError(err)
		}},
	}
	if svc.redis != nil {
		checks = append(checks, handlers.ReadinessCheck{
			Name:     "redis",
			Required: cfg.RateLimit.UseRedis,
			Check:    func(ctx context.Context) error { return svc.redis.Ping(ctx).Err() },
		})
	}
	handlers.RegisterHealth(r, startTime, checks...)
	handlers.RegisterSwagger(r)

	var webhookMW []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && svc.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			webhookMW = append(webhookMW, middleware.RedisRateLimitMiddleware(svc.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			webhookMW = append(webhookMW, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.NewWebhookHandler(handlers.WebhookOptions{
		Secret:     cfg.Webhook.Secret,
		Tolerance:  cfg.Webhook.Tolerance,
		DedupeTTL:  cfg.Webhook.DedupeTTL,
		Deliveries: svc.deliveries,
		Archive:    svc.archive,
	}, svc.syncer).Register(r, webhookMW...)

	if svc.verifier != nil {
		handlers.NewUsersHandler(svc.users).Register(&r.RouterGroup, middleware.AuthMiddleware(svc.verifier))
	} else {
		logger.Warnf("admin routes not registered: set AUTH_JWT_SECRET or AUTH_OIDC_ISSUER")
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return r
}
