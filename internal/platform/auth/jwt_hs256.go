package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type hs256Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func (h *hs256Service) Sign(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	now := h.now()
	claims := jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *hs256Service) Verify(tokenString string) (Claims, error) {
	var parsed jwt.RegisteredClaims
	// Strict decoding rejects base64 with non-zero padding bits, so every
	// byte of the token is covered by the signature check.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(h.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.Subject == "" {
		return Claims{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	c := Claims{Subject: parsed.Subject}
	if parsed.IssuedAt != nil {
		c.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		c.ExpiresAt = parsed.ExpiresAt.Time
	}
	return c, nil
}
