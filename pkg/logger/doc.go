// Package logger builds configured slog loggers and provides typed
// attribute helpers so the pipeline logs the same keys everywhere.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("alertfeed"),
//	)
//	logger.SetAsDefault(log)
//
//	log.LogAttrs(ctx, slog.LevelWarn, "publish skipped samples",
//	    logger.Component("poller"),
//	    logger.Error(err),
//	)
package logger
