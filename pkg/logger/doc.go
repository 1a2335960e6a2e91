// Package logger builds configured slog.Logger instances with optional
// context attribute injection.
//
// Handlers created here can pull request-scoped values (tenant id, request
// id) out of the context at log time, so call sites never have to repeat
// them:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "asoflow"),
//		logger.WithContextExtractors(tenantExtractor),
//	)
//	log.InfoContext(ctx, "certificate stored")  // tenant_id added automatically
package logger
