package httpmiddleware

import (
	"context"
	"net/http"
	"strings"

	"shortener.local/gee"
	"shortener.local/internal/platform/auth"
)

// IdentityResolver maps a session token to the username it was issued for.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (string, error)
}

// BearerToken returns the token from "Bearer <token>", or "" when the header
// has any other shape.
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

// AuthRequired rejects requests without a valid session token. Every failure
// answers 403 with the same body so callers cannot tell the cases apart.
func AuthRequired(r IdentityResolver) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		token := BearerToken(ctx.Req.Header.Get("Authorization"))
		if token == "" {
			ctx.AbortWithError(http.StatusForbidden, "forbidden")
			return
		}
		username, err := r.ResolveIdentity(ctx.Req.Context(), token)
		if err != nil {
			ctx.AbortWithError(http.StatusForbidden, "forbidden")
			return
		}
		ctx.Req = ctx.Req.WithContext(auth.WithIdentity(ctx.Req.Context(), auth.Identity{Username: username}))
		ctx.Next()
	}
}
