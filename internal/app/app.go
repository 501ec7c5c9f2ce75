// Package app contiene el arranque común de los binarios: config, logger y
// resolución de la API key por defecto.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropDatabas3/userprofile/internal/config"
	"github.com/dropDatabas3/userprofile/internal/observability/logger"
	"github.com/dropDatabas3/userprofile/internal/secrets"
	"github.com/dropDatabas3/userprofile/internal/util"
)

const serviceName = "userprofile"

// Version y Commit se setean con -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

// SecretResolver resuelve un secreto por ARN.
type SecretResolver interface {
	Resolve(ctx context.Context, arn string) (string, error)
}

// Container es lo que necesitan los hosts para construir el handler.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
}

// Options permite reemplazar el resolver de secretos (tests).
type Options struct {
	Secrets SecretResolver
}

// Bootstrap carga la config (CONFIG_PATH + env), inicializa el logger singleton
// y, si hay APPWRITE_FUNCTION_API_KEY_SECRET_ARN sin API key, la resuelve
// desde Secrets Manager.
func Bootstrap(ctx context.Context, opts Options) (*Container, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Version:     Version,
	})
	log := logger.L()

	if err := resolveAPIKey(ctx, cfg, opts.Secrets, log); err != nil {
		return nil, err
	}

	log.Info("config loaded",
		logger.String("env", cfg.App.Env),
		logger.String("endpoint", cfg.Appwrite.Endpoint),
		logger.ProjectID(cfg.Appwrite.ProjectID),
		logger.String("default_key", util.MaskSecret(cfg.Appwrite.APIKey)),
	)
	return &Container{Config: cfg, Logger: log}, nil
}

func resolveAPIKey(ctx context.Context, cfg *config.Config, r SecretResolver, log *zap.Logger) error {
	arn := cfg.Appwrite.APIKeySecretARN
	if cfg.Appwrite.APIKey != "" || arn == "" {
		return nil
	}
	if r == nil {
		dr, err := secrets.NewDefaultResolver(ctx)
		if err != nil {
			return err
		}
		r = dr
	}
	key, err := r.Resolve(ctx, arn)
	if err != nil {
		return fmt.Errorf("resolve api key: %w", err)
	}
	cfg.Appwrite.APIKey = key
	log.Info("default API key resolved from secrets manager", logger.Component("secrets"))
	return nil
}
