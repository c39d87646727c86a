// Package reqctx provides centralized request context management.
//
// Request-scoped values (request metadata, admin claims) are stored under
// private key types and read back through typed accessors:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: "abc-123"})
//	ctx = reqctx.WithClaims(ctx, claims)
//
//	if reqctx.IsAdmin(ctx) {
//	    email := reqctx.ClaimsFromContext(ctx).GetEmail()
//	}
//
// # Contracts
//
//   - RequestMeta is set by the HTTP middleware for every request
//   - Claims are set only after the auth guard has accepted a token
package reqctx
