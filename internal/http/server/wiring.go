// Package server arma el handler HTTP del servicio de perfiles a partir de la
// config. Lo usan el servidor standalone, el adapter de Lambda y los tests.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/userprofile/internal/config"
	healthctrl "github.com/dropDatabas3/userprofile/internal/http/controllers/health"
	profilectrl "github.com/dropDatabas3/userprofile/internal/http/controllers/profile"
	"github.com/dropDatabas3/userprofile/internal/http/router"
	healthsvc "github.com/dropDatabas3/userprofile/internal/http/services/health"
	profilesvc "github.com/dropDatabas3/userprofile/internal/http/services/profile"
	"github.com/dropDatabas3/userprofile/internal/identity"
	"github.com/dropDatabas3/userprofile/internal/identity/appwrite"
	"github.com/dropDatabas3/userprofile/internal/metrics"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
	"github.com/dropDatabas3/userprofile/internal/rate"
)

// Options permite reemplazar piezas del wiring (tests, hosts alternativos).
type Options struct {
	// Logger base; nil = singleton.
	Logger *zap.Logger
	// Fetcher reemplaza el cliente REST de Appwrite.
	Fetcher identity.UserFetcher
	// Registry para las métricas; nil = registry nuevo.
	Registry *prometheus.Registry
	Version  string
	Commit   string
}

// Credentials devuelve los valores por defecto del proceso para el servicio
// de identidad.
func Credentials(cfg *config.Config) identity.Credentials {
	return identity.Credentials{
		Endpoint:  cfg.Appwrite.Endpoint,
		ProjectID: cfg.Appwrite.ProjectID,
		APIKey:    cfg.Appwrite.APIKey,
	}
}

// Build crea el handler raíz y una función de cleanup que libera redis.
func Build(cfg *config.Config, opts Options) (http.Handler, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("server: nil config")
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	cleanup := func() error { return nil }

	// 1. Redis (opcional): rate limiting compartido + readiness
	var (
		redisClient *rdb.Client
		checkRedis  func(ctx context.Context) error
	)
	if cfg.Redis.Addr != "" {
		redisClient = rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		checkRedis = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		cleanup = redisClient.Close
	}

	// 2. Rate limiter
	var limiter rate.Limiter
	if cfg.Rate.Enabled && cfg.Rate.MaxRequests > 0 {
		backend := "memory"
		if redisClient != nil {
			backend = "redis"
			limiter = rate.NewRedisLimiter(redisClient, cfg.Redis.Prefix, cfg.Rate.MaxRequests, cfg.RateWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
		}
		log.Info("rate limiting enabled",
			logger.Component("rate"),
			logger.Int("max_requests", cfg.Rate.MaxRequests),
			logger.String("window", cfg.RateWindow().String()),
			logger.String("backend", backend),
		)
	}

	// 3. Métricas
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		h, err := metrics.Register(metrics.Config{Registry: opts.Registry})
		if err != nil {
			_ = cleanup()
			return nil, nil, fmt.Errorf("server: register metrics: %w", err)
		}
		metricsHandler = h
	}

	// 4. Services
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = appwrite.New()
	}
	creds := Credentials(cfg)
	profileService := profilesvc.NewProfileService(profilesvc.Deps{
		Fetcher:  fetcher,
		Defaults: creds,
	})
	healthService := healthsvc.NewHealthService(healthsvc.Deps{
		Credentials: creds,
		CheckRedis:  checkRedis,
		Version:     opts.Version,
		Commit:      opts.Commit,
	})

	// 5. Controllers + router
	handler := router.New(router.Deps{
		Profile:     profilectrl.NewProfileController(profileService, log),
		Health:      healthctrl.NewHealthController(healthService),
		Metrics:     metricsHandler,
		RateLimiter: limiter,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:      log,
	})

	if creds.APIKey == "" {
		log.Warn("no default API key configured; requests must send x-appwrite-key",
			logger.Component("server"))
	}
	return handler, cleanup, nil
}
