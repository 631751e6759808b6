package jwtutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime describes the validity window encoded in an access token.
type Lifetime struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (l Lifetime) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}

func (l Lifetime) Remaining(now time.Time) time.Duration {
	if l.ExpiresAt.IsZero() {
		return 0
	}
	return l.ExpiresAt.Sub(now)
}

// Expiry reads the exp/iat claims out of a JWT without verifying its
// signature. The CRM signs its tokens with keys we do not hold, all we
// need is the validity window.
func Expiry(token string) (Lifetime, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return Lifetime{}, fmt.Errorf("parse token: %w", err)
	}

	var out Lifetime
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Lifetime{}, fmt.Errorf("exp claim: %w", err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return Lifetime{}, fmt.Errorf("iat claim: %w", err)
	}
	if iat != nil {
		out.IssuedAt = iat.Time
	}

	if out.ExpiresAt.IsZero() {
		return out, fmt.Errorf("token carries no exp claim")
	}
	return out, nil
}
