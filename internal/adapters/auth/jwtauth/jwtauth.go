// Package jwtauth implementa los ports de auth con JWT HS256.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-tag-registry/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretEmpty  = errors.New("jwt secret is empty")
	ErrInvalidToken = errors.New("invalid token")
)

const DefaultTTL = 24 * time.Hour

// Provider emite y verifica tokens. Implementa auth.TokenIssuer y
// auth.AuthVerifier.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewProvider(secret string, ttl time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, ErrSecretEmpty
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (p *Provider) Issue(_ context.Context, c auth.Claims) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"role":  string(c.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(p.ttl).Unix(),
	})
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(_ context.Context, tokenString string) (auth.Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return auth.Claims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return auth.Claims{
		UserID: sub,
		Email:  email,
		Role:   auth.Role(role),
	}, nil
}
