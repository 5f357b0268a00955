package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the identity assertions carried in an issued token. The
// code claim binds the session to the auth code that produced it, for audit.
// Ban status is never encoded here; the authorization gate re-reads it from
// the live user store on every request.
type SessionClaims struct {
	jwt.RegisteredClaims
	Code         string `json:"code,omitempty"`
	Username     string `json:"username,omitempty"`
	IsPrivileged bool   `json:"pvl,omitempty"`
}

// Expires returns the expiration time, zero when unset.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued-at time, zero when unset.
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
