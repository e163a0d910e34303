package middleware

import (
	"log/slog"
	"time"

	"shortener.local/gee"
)

func AccessLog() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()

		ctx.Next()

		level := slog.LevelInfo
		if ctx.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		slog.Log(ctx.Req.Context(), level, "access",
			"request_id", ctx.Req.Header.Get(RequestIDHeader),
			"method", ctx.Method,
			"path", ctx.Path,
			"route", ctx.RoutePattern,
			"status", ctx.Writer.Status(),
			"bytes", ctx.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
