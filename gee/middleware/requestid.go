package middleware

import (
	"github.com/google/uuid"

	"shortener.local/gee"
)

const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds incoming ids so clients cannot bloat logs.
const maxRequestIDLen = 128

// ReqID propagates the caller's X-Request-ID or assigns a new one, on both
// the request (for handlers and logs) and the response.
func ReqID() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Req.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
			ctx.Req.Header.Set(RequestIDHeader, id)
		}
		ctx.SetHeader(RequestIDHeader, id)
		ctx.Next()
	}
}
