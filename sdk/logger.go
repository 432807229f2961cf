package sdk

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the logging surface used by the engine. A *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
}

type contextLoggerValueT string

const ContextLoggerValue = contextLoggerValueT("timelock-logger")

// ContextWithLogger returns a copy of ctx carrying lggr.
func ContextWithLogger(ctx context.Context, lggr Logger) context.Context {
	return context.WithValue(ctx, ContextLoggerValue, lggr)
}

func LoggerFrom(ctx context.Context) Logger {
	value := ctx.Value(ContextLoggerValue)
	logger, ok := value.(Logger)
	if !ok {
		logger = zap.Must(zap.NewProduction()).Sugar()
	}

	return logger
}
