package httpmiddleware

import (
	"go.opentelemetry.io/otel/trace"

	"shortener.local/gee"
)

// TraceName renames the server span opened by otelhttp to "METHOD /route"
// once the router has matched.
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		route := ctx.RoutePattern
		if route == "" {
			route = "UNMATCHED"
		}
		trace.SpanFromContext(ctx.Req.Context()).SetName(ctx.Method + " " + route)
		ctx.Next()
	}
}
