package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codecrest/codecrest_backend/pkg/token"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	Email     string
	IsAdmin   bool
	Token     string
	ExpiresAt time.Time
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	VerifyToken(ctx context.Context, raw string) (*token.Claims, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	creds  CredentialStore
	tokens *token.Manager
}

func New(creds CredentialStore, tokens *token.Manager) Service {
	return &authService{creds: creds, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if !s.creds.Configured() {
		slog.ErrorContext(ctx, "auth: admin credentials are not configured")
		return nil, ErrAdminNotConfigured
	}

	id, err := s.creds.Verify(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	raw, claims, err := s.tokens.Issue(id.Email, id.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "auth: admin logged in", "email", id.Email, "jti", claims.TokenID)
	return &LoginResult{
		Email:     id.Email,
		IsAdmin:   id.IsAdmin,
		Token:     raw,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *authService) VerifyToken(_ context.Context, raw string) (*token.Claims, error) {
	return s.tokens.Verify(raw)
}
