package audit

import (
	"context"
	"log/slog"
)

type LogSink struct {
	logger *slog.Logger
}

// NewLogSink writes events through logger, or slog.Default() when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, e Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("event_id", e.ID),
		slog.String("type", string(e.Type)),
		slog.String("actor", e.Actor),
		slog.String("link_id", e.LinkID),
		slog.String("url", e.URL),
		slog.String("request_id", e.RequestID),
		slog.String("client_ip", e.ClientIP),
		slog.Time("at", e.At),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

type NopSink struct{}

func (NopSink) Write(context.Context, Event) error { return nil }
func (NopSink) Close() error                       { return nil }
