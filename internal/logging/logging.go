// Package logging attaches structured log subscribers to the eventbus.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/graphfeed/graphfeed/internal/eventbus"
	"github.com/graphfeed/graphfeed/internal/events"
	"github.com/graphfeed/graphfeed/internal/reqid"
)

// ParseLevel maps a flag value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Setup builds a JSON logger at the given level and subscribes it to the
// request lifecycle and storage events.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	register(logger)
	return logger
}

func register(logger *slog.Logger) {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		logger.Info("http request",
			"rid", rid,
			"method", e.Request.Method,
			"path", e.Request.URL.Path,
			"status", e.Status,
			"duration", e.Duration,
		)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		logger.Info("graphql operation",
			"rid", rid,
			"operation", e.OperationName,
			"type", e.OperationType,
			"errors", len(e.Errors),
			"duration", e.Duration,
		)
		for _, err := range e.Errors {
			logger.Warn("graphql error", "rid", rid, "error", err.Error())
		}
	})

	eventbus.Subscribe(func(ctx context.Context, e events.StoreQuery) {
		rid, _ := reqid.FromContext(ctx)
		if e.Err != nil {
			logger.Warn("store query failed",
				"rid", rid, "kind", e.Kind, "op", e.Op, "keys", e.Keys,
				"duration", e.Duration, "error", e.Err.Error(),
			)
			return
		}
		logger.Debug("store query",
			"rid", rid, "kind", e.Kind, "op", e.Op, "keys", e.Keys,
			"duration", e.Duration,
		)
	})
}
