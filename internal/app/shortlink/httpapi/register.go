// Package httpapi translates HTTP to the shortlink services: request
// decoding, error-to-status mapping and response shapes. Business rules live
// in package shortlink.
package httpapi

import (
	"net/http"

	"shortener.local/gee"
	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/platform/httpmiddleware"
)

type Deps struct {
	Accounts *shortlink.Accounts
	Links    *shortlink.Links
	// PublicBaseURL prefixes short_url; empty derives it from the request.
	PublicBaseURL string
}

// RegisterRoutes mounts the service on the engine root. Static routes win
// over /:id, and generated ids never collide with them.
func RegisterRoutes(engine *gee.Engine, d Deps) {
	authed := httpmiddleware.AuthRequired(d.Accounts)

	engine.Use(withAuditMeta())

	engine.GET("/healthz", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	users := engine.Group("/users")
	users.POST("", NewRegisterHandler(d.Accounts))
	users.PUT("", authed, NewUpdateCredentialHandler(d.Accounts))
	users.POST("/login", NewLoginHandler(d.Accounts))

	engine.GET("/", authed, NewListHandler(d.Links))
	engine.POST("/", authed, NewCreateHandler(d.Links, d.PublicBaseURL))
	engine.DELETE("/", authed, NewDeleteAllHandler(d.Links))

	engine.GET("/:id", NewRedirectHandler(d.Links))
	engine.PUT("/:id", authed, NewUpdateHandler(d.Links))
	engine.DELETE("/:id", authed, NewDeleteHandler(d.Links))
}
