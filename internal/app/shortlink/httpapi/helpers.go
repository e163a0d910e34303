package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"shortener.local/gee"
	"shortener.local/gee/middleware"
	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/app/shortlink/audit"
	"shortener.local/internal/platform/auth"
	"shortener.local/internal/platform/httpmiddleware"
)

// writeError maps a service error to its status and reason. Anything not
// recognised is logged and reported as 500 internal.
func writeError(ctx *gee.Context, err error) {
	switch {
	case errors.Is(err, shortlink.ErrInvalidInput):
		ctx.AbortWithError(http.StatusBadRequest, "invalid_input")
	case errors.Is(err, shortlink.ErrForbidden), errors.Is(err, shortlink.ErrInvalidToken):
		ctx.AbortWithError(http.StatusForbidden, "forbidden")
	case errors.Is(err, shortlink.ErrNotFound):
		ctx.AbortWithError(http.StatusNotFound, "not_found")
	case errors.Is(err, shortlink.ErrDuplicateUser):
		ctx.AbortWithError(http.StatusConflict, "duplicate_user")
	default:
		slog.Error("request failed",
			"request_id", ctx.Req.Header.Get(middleware.RequestIDHeader),
			"method", ctx.Method,
			"route", ctx.RoutePattern,
			"err", err)
		ctx.AbortWithError(http.StatusInternalServerError, "internal")
	}
}

// owner is the username set by AuthRequired, or "" which the services
// reject as forbidden.
func owner(ctx *gee.Context) string {
	id, _ := auth.GetIdentity(ctx.Req.Context())
	return id.Username
}

func shortURL(ctx *gee.Context, publicBase, id string) string {
	if publicBase != "" {
		return strings.TrimRight(publicBase, "/") + "/" + id
	}
	scheme := ctx.Req.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if ctx.Req.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + ctx.Req.Host + "/" + id
}

// withAuditMeta stamps request id and client address onto the request
// context for audit events.
func withAuditMeta() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		meta := audit.Meta{
			RequestID: ctx.Req.Header.Get(middleware.RequestIDHeader),
			ClientIP:  httpmiddleware.ClientIP(ctx.Req),
		}
		ctx.Req = ctx.Req.WithContext(audit.WithMeta(ctx.Req.Context(), meta))
		ctx.Next()
	}
}
