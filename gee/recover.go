package gee

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery turns a panic in a later handler into a 500 and logs the stack.
func Recovery() HandlerFunc {
	return func(ctx *Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"request_id", ctx.Req.Header.Get("X-Request-ID"),
					"method", ctx.Method,
					"path", ctx.Path,
					"panic", err,
					"stack", string(debug.Stack()),
				)
				if ctx.Writer.Written() {
					ctx.Abort()
					return
				}
				ctx.AbortWithError(http.StatusInternalServerError, "internal")
			}
		}()
		ctx.Next()
	}
}
