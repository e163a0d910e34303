package shortlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shortener.local/internal/app/shortlink/audit"
	"shortener.local/internal/platform/auth"
	"shortener.local/internal/platform/metrics"
)

// Accounts registers users, changes passwords and issues session tokens.
type Accounts struct {
	users  UserStore
	tokens auth.TokenService
	audit  *audit.Recorder
	cost   int
	now    func() time.Time

	// dummyHash is compared for unknown users so login timing does not
	// reveal whether a username exists.
	dummyHash []byte
}

func NewAccounts(users UserStore, tokens auth.TokenService, rec *audit.Recorder, bcryptCost int) (*Accounts, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Accounts{
		users:     users,
		tokens:    tokens,
		audit:     rec,
		cost:      bcryptCost,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

func (a *Accounts) Register(ctx context.Context, username, password string) (u User, err error) {
	defer func() { metrics.Operations.WithLabelValues("register", outcome(err)).Inc() }()

	if err := ValidateCredentials(username, password); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u = User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	a.audit.Record(ctx, audit.UserRegistered, username, "", "")
	return u, nil
}

// Login returns a session token. Unknown user and wrong password both yield
// ErrForbidden.
func (a *Accounts) Login(ctx context.Context, username, password string) (token string, err error) {
	defer func() { metrics.Operations.WithLabelValues("login", outcome(err)).Inc() }()

	if err := a.checkPassword(ctx, username, password); err != nil {
		return "", err
	}
	token, err = a.tokens.Sign(username)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (a *Accounts) checkPassword(ctx context.Context, username, password string) error {
	u, err := a.users.FindUser(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return fmt.Errorf("%w: bad credentials", ErrForbidden)
	case err != nil:
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return fmt.Errorf("%w: bad credentials", ErrForbidden)
	}
	return nil
}

// ResolveIdentity verifies a session token and returns its username.
func (a *Accounts) ResolveIdentity(_ context.Context, token string) (string, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}

type CredentialUpdate struct {
	// Username, when set, must match the token subject.
	Username string
	// Password is the new password, or the current one when NewPassword is set.
	Password    string
	NewPassword string
}

// UpdateCredential replaces the password of the token's user.
func (a *Accounts) UpdateCredential(ctx context.Context, token string, req CredentialUpdate) (username string, err error) {
	defer func() { metrics.Operations.WithLabelValues("update_credential", outcome(err)).Inc() }()

	username, err = a.ResolveIdentity(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if req.Username != "" && req.Username != username {
		return "", fmt.Errorf("%w: username does not match token", ErrForbidden)
	}

	newPassword := req.Password
	if req.NewPassword != "" {
		if err := a.checkPassword(ctx, username, req.Password); err != nil {
			return "", err
		}
		newPassword = req.NewPassword
	}
	if err := ValidatePassword(newPassword); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := a.users.UpdatePasswordHash(ctx, username, string(hash)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: user no longer exists", ErrForbidden)
		}
		return "", err
	}
	a.audit.Record(ctx, audit.PasswordChanged, username, "", "")
	return username, nil
}
