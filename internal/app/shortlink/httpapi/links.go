package httpapi

import (
	"log/slog"
	"net/http"

	"shortener.local/gee"
	"shortener.local/internal/app/shortlink"
)

// LinkRequest accepts "value" as an older spelling of "url".
type LinkRequest struct {
	URL   string `json:"url"`
	Value string `json:"value,omitempty"`
}

func (r LinkRequest) target() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Value
}

// LinkResponse is the body of create and update. short_url is only set on
// create.
type LinkResponse struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url,omitempty"`
	URL      string `json:"url"`
}

// NewCreateHandler handles POST /: 201 with the new id, 400 on a bad URL.
func NewCreateHandler(links *shortlink.Links, publicBase string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req LinkRequest
		// BindJSON has already answered 400
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		// owner was set by AuthRequired
		l, err := links.Create(ctx.Req.Context(), owner(ctx), req.target())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, LinkResponse{
			ID:       l.ID,
			ShortURL: shortURL(ctx, publicBase, l.ID),
			URL:      l.URL,
		})
	}
}

// NewRedirectHandler handles GET /:id. Unknown and malformed ids both answer 404.
func NewRedirectHandler(links *shortlink.Links) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		l, err := links.Get(ctx.Req.Context(), ctx.Param("id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.Redirect(http.StatusMovedPermanently, l.URL)
	}
}

// NewUpdateHandler handles PUT /:id.
func NewUpdateHandler(links *shortlink.Links) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req LinkRequest
		// An unreadable body is reported as an invalid URL, after the id,
		// existence and ownership checks.
		if err := ctx.ShouldBindJSON(&req); err != nil {
			slog.Debug("update body rejected", "err", err)
			req = LinkRequest{}
		}
		l, err := links.Update(ctx.Req.Context(), owner(ctx), ctx.Param("id"), req.target())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, LinkResponse{ID: l.ID, URL: l.URL})
	}
}

// NewDeleteHandler handles DELETE /:id; success has no body.
func NewDeleteHandler(links *shortlink.Links) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if err := links.Delete(ctx.Req.Context(), owner(ctx), ctx.Param("id")); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.Status(http.StatusOK)
	}
}

func NewListHandler(links *shortlink.Links) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		// never null: an owner without links gets []
		ids, err := links.ListOwned(ctx.Req.Context(), owner(ctx))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, ids)
	}
}

// NewDeleteAllHandler handles DELETE /. Links.DeleteAll keeps every link and
// returns ErrNotFound, which maps to 404.
func NewDeleteAllHandler(links *shortlink.Links) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if err := links.DeleteAll(ctx.Req.Context(), owner(ctx)); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.Status(http.StatusOK)
	}
}
