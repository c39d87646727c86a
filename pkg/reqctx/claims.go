package reqctx

import "context"

// AuthClaims is what the auth guard attaches to an admitted request.
// Token implementations (JWT, PASETO) satisfy it through token.Claims.
type AuthClaims interface {
	// GetEmail returns the subject email the token was issued for.
	GetEmail() string

	// IsAdmin reports the embedded admin flag.
	IsAdmin() bool

	// IsExpired returns true if the token has expired.
	IsExpired() bool
}

// WithClaims stores authentication claims in the context.
func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext retrieves authentication claims from the context.
// Returns nil if the request is not authenticated.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	claims, _ := ctx.Value(keyClaims).(AuthClaims)
	return claims
}

// IsAdmin returns true if the context carries unexpired admin claims.
func IsAdmin(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && claims.IsAdmin() && !claims.IsExpired()
}
