// Package logger provee el logger zap del servicio de perfiles.
//
// # Design Decisions
//
//   - Singleton: una instancia global inicializada con Init() desde cada binario.
//   - Inyección: los controllers reciben un *zap.Logger en su constructor; los
//     middlewares agregan campos del request (request_id, method, path) vía contexto.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON (Lambda/CloudWatch).
//   - Levels: debug, info, warn, error (LOG_LEVEL).
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "userprofile"})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Info("profile fetched", logger.UserID(id), logger.Status(200))
package logger
