package auth

import (
	"errors"
	"time"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer or algorithm, expiry, malformed or non-canonical encoding.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenService interface {
	Sign(subject string) (string, error)
	Verify(token string) (Claims, error)
}

func NewHS256Service(secret, issuer string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if issuer == "" {
		return nil, errors.New("jwt issuer is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be > 0")
	}
	return &hs256Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}
