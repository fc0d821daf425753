package notify

import (
	"context"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Alert is an operator-facing message about a match.
type Alert struct {
	MatchID string
	Level   Level
	Title   string
	Message string
}

// Notifier delivers alerts outside the process. Implementations must not
// block callers for long; rooms call Notify from their own goroutine.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// Log writes alerts to a zap logger.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(_ context.Context, a Alert) error {
	fields := []zap.Field{zap.String("match_id", a.MatchID), zap.String("title", a.Title)}
	switch a.Level {
	case LevelError:
		l.Logger.Error(a.Message, fields...)
	case LevelWarn:
		l.Logger.Warn(a.Message, fields...)
	default:
		l.Logger.Info(a.Message, fields...)
	}
	return nil
}
