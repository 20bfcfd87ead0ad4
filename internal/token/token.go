// Package token inspects the bearer credential locally. The client
// never verifies the signature (only the server can); it decodes the
// claims to show expiry and subject without a network round-trip.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info is the decoded, unverified view of a session credential.
type Info struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes the claims of a JWT without verifying it. An
// undecodable token yields an error; missing claims stay zero.
func Inspect(raw string) (*Info, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}

	info := &Info{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// Expired reports whether the credential's expiry has passed. Tokens
// without an exp claim are treated as unexpired.
func (i *Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// TimeLeft returns the remaining lifetime, or zero when expired or
// unknown.
func (i *Info) TimeLeft(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || now.After(i.ExpiresAt) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}
