package cmd

import (
	"context"
	"fmt"

	"github.com/gogotex/gogotex/backend/user-sync/internal/archive"
	"github.com/gogotex/gogotex/backend/user-sync/internal/clerk"
	"github.com/gogotex/gogotex/backend/user-sync/internal/config"
	"github.com/gogotex/gogotex/backend/user-sync/internal/database"
	"github.com/gogotex/gogotex/backend/user-sync/internal/deliveries"
	"github.com/gogotex/gogotex/backend/user-sync/internal/events"
	"github.com/gogotex/gogotex/backend/user-sync/internal/oidc"
	"github.com/gogotex/gogotex/backend/user-sync/internal/tokens"
	"github.com/gogotex/gogotex/backend/user-sync/internal/users"
	"github.com/gogotex/gogotex/backend/user-sync/internal/usersync"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

const mongoConnectAttempts = 5

// services holds everything the HTTP layer and the one-shot commands share.
type services struct {
	cfg        *config.Config
	users      *users.Service
	redis      *redis.Client
	syncer     *usersync.Syncer
	deliveries deliveries.Store
	archive    archive.Archiver
	publisher  events.Publisher
	// verifier guards the admin routes; nil leaves them unregistered.
	verifier middleware.Verifier

	closers []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildServices connects to every configured backend. Optional backends
// (Redis, MinIO, Kafka, OIDC) degrade to no-ops with a warning; a configured
// MongoDB that stays unreachable is an error.
func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	s := &services{cfg: cfg}

	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = rc.Close()
		} else {
			logger.Infof("connected to Redis: %s", addr)
			s.redis = rc
			s.closers = append(s.closers, func() { _ = rc.Close() })
		}
	}

	repo, err := openUserRepository(ctx, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.users = users.NewService(repo)

	s.deliveries = deliveries.NopStore{}
	if s.redis != nil {
		s.deliveries = deliveries.NewRedisStore(s.redis, "")
	}

	s.archive = archive.Nop{}
	if cfg.MinIO.Enabled() {
		st, err := archive.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("payload archive disabled: %v", err)
		} else {
			logger.Infof("archiving webhook payloads to MinIO bucket %s", cfg.MinIO.Bucket)
			s.archive = st
		}
	}

	s.publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warnf("event publishing disabled: %v", err)
		} else {
			s.publisher = kp
			s.closers = append(s.closers, func() { _ = kp.Close() })
		}
	}

	s.syncer = usersync.NewSyncer(s.users, clerk.NewClient(cfg.Clerk.APIURL, cfg.Clerk.SecretKey, nil), s.publisher)
	s.verifier = buildVerifier(ctx, cfg.Auth)
	return s, nil
}

func openUserRepository(ctx context.Context, s *services) (users.UserRepository, error) {
	cfg := s.cfg.MongoDB
	if cfg.URI == "" {
		return users.NewMemoryUserRepository(), nil
	}
	client, err := database.ConnectMongoWithRetry(ctx, cfg.URI, cfg.Timeout, mongoConnectAttempts)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })

	repo := users.NewMongoUserRepository(client.Database(cfg.Database).Collection("users"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("user indexes: %w", err)
	}
	logger.Infof("using MongoDB database %s for users", cfg.Database)
	return repo, nil
}

func buildVerifier(ctx context.Context, cfg config.AuthConfig) middleware.Verifier {
	var chain middleware.Verifiers
	if cfg.JWTSecret != "" {
		hv, err := tokens.NewHMACVerifier(cfg.JWTSecret)
		if err == nil {
			chain = append(chain, hv)
		}
	}
	if cfg.OIDCIssuer != "" {
		ov, err := oidc.NewVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ov)
		}
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}
