package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrest/codecrest_backend/pkg/password"
	"github.com/codecrest/codecrest_backend/pkg/token"
)

func newTokens(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.New(token.Config{Secret: "s3cret", Issuer: "codecrest"})
	require.NoError(t, err)
	return m
}

func TestLogin_Success(t *testing.T) {
	tokens := newTokens(t)
	svc := New(NewStaticAdmin(" admin@codecrest.dev ", "hunter2\n"), tokens)

	res, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  admin@codecrest.dev",
		Password: "hunter2  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@codecrest.dev", res.Email)
	assert.True(t, res.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.VerifyToken(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@codecrest.dev", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := New(NewStaticAdmin("admin@codecrest.dev", "hunter2"), newTokens(t))

	tests := []LoginRequest{
		{Email: "admin@codecrest.dev", Password: "wrong"},
		{Email: "other@codecrest.dev", Password: "hunter2"},
		{Email: "ADMIN@codecrest.dev", Password: "hunter2"},
		{},
	}
	for _, req := range tests {
		_, err := svc.Login(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "req=%+v", req)
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	for _, pair := range [][2]string{{"", "x"}, {"a@b.c", "   "}, {"", ""}} {
		svc := New(NewStaticAdmin(pair[0], pair[1]), newTokens(t))
		_, err := svc.Login(context.Background(), LoginRequest{Email: pair[0], Password: pair[1]})
		assert.ErrorIs(t, err, ErrAdminNotConfigured)
	}
}

func TestLogin_HashedPassword(t *testing.T) {
	hash, err := password.HashWithParams("hunter2", &password.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)

	svc := New(NewStaticAdmin("admin@codecrest.dev", hash), newTokens(t))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@codecrest.dev", Password: " hunter2 "})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@codecrest.dev", Password: hash})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
