package httpapi

import (
	"net/http"

	"shortener.local/gee"
	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/platform/httpmiddleware"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// NewRegisterHandler handles POST /users: 201, 400 on bad input, 409 when the
// name is taken.
func NewRegisterHandler(accounts *shortlink.Accounts) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req CredentialsRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		u, err := accounts.Register(ctx.Req.Context(), req.Username, req.Password)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, UserResponse{Username: u.Username})
	}
}

// NewLoginHandler handles POST /users/login. Unknown user and wrong password
// both answer 403.
func NewLoginHandler(accounts *shortlink.Accounts) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req CredentialsRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		token, err := accounts.Login(ctx.Req.Context(), req.Username, req.Password)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, TokenResponse{Token: token})
	}
}

type UpdateCredentialRequest struct {
	Username    string `json:"username,omitempty"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password,omitempty"`
}

// NewUpdateCredentialHandler runs behind AuthRequired, so a bad token has
// already been answered with 403.
func NewUpdateCredentialHandler(accounts *shortlink.Accounts) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req UpdateCredentialRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		// the token is passed on so the account checks it against the credentials
		token := httpmiddleware.BearerToken(ctx.Req.Header.Get("Authorization"))
		username, err := accounts.UpdateCredential(ctx.Req.Context(), token, shortlink.CredentialUpdate{
			Username:    req.Username,
			Password:    req.Password,
			NewPassword: req.NewPassword,
		})
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, UserResponse{Username: username})
	}
}
