// Package logger builds the *slog.Logger used by the session store and its
// command-line tooling.
//
// A single factory, New, applies functional options on top of production-safe
// defaults (JSON, INFO, stdout). Helper constructors in attr.go keep attribute
// keys consistent across the engine, the facade and the CLI, so that sweep
// results and storage failures can be filtered the same way everywhere:
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "sessionctl"))
//	log.Error("sweep failed", logger.Table("sessions"), logger.Error(err))
//
// Error and SID return an empty attribute for nil/empty input, which slog
// drops, so call sites need no nil checks.
package logger
