package token

import "time"

// Claims is the app-facing token payload of an admin session.
type Claims struct {
	Email string
	Admin bool

	Issuer    string
	TokenID   string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// GetEmail implements reqctx.AuthClaims.
func (c *Claims) GetEmail() string {
	return c.Email
}

// IsAdmin implements reqctx.AuthClaims.
func (c *Claims) IsAdmin() bool {
	return c.Admin
}

// IsExpired implements reqctx.AuthClaims.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
