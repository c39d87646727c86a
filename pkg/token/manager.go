package token

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codecrest/codecrest_backend/config"
)

type Format string

const (
	FormatJWT    Format = "jwt"    // HS256, readable by the site's jwt-decode
	FormatPaseto Format = "paseto" // v4.local (encrypted)
)

const DefaultTTL = 24 * time.Hour

type Config struct {
	Format Format
	Secret string
	Issuer string
	TTL    time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// codec signs and opens one token format.
type codec interface {
	encode(c *Claims) (string, error)
	decode(raw string, now time.Time) (*Claims, error)
}

type Manager struct {
	cfg   Config
	codec codec
}

func New(cfg Config) (*Manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrConfig{Msg: "Secret is required"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	var (
		c   codec
		err error
	)
	switch cfg.Format {
	case FormatJWT, "":
		cfg.Format = FormatJWT
		c = newJWTCodec(cfg.Secret, cfg.Issuer)
	case FormatPaseto:
		c, err = newPasetoCodec(cfg.Secret, cfg.Issuer)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrConfig{Msg: "unknown format (use jwt|paseto)"}
	}

	return &Manager{cfg: cfg, codec: c}, nil
}

// NewFromConfig builds a Manager from central config, falling back to
// config.FallbackTokenSecret when no secret is set.
func NewFromConfig(cfg *config.Config) (*Manager, error) {
	t := cfg.Authentication.Token

	secret := strings.TrimSpace(t.Secret)
	if secret == "" {
		slog.Warn("token secret not configured, using the insecure fallback secret")
		secret = config.FallbackTokenSecret
	}

	return New(Config{
		Format: Format(strings.ToLower(t.Format)),
		Secret: secret,
		Issuer: t.Issuer,
		TTL:    time.Duration(t.TTLHours) * time.Hour,
	})
}

// Issue signs a token for email valid for the configured TTL.
func (m *Manager) Issue(email string, admin bool) (string, *Claims, error) {
	now := m.cfg.Clock()

	claims := &Claims{
		Email:     email,
		Admin:     admin,
		Issuer:    m.cfg.Issuer,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}

	raw, err := m.codec.encode(claims)
	if err != nil {
		return "", nil, err
	}
	return raw, claims, nil
}

// Verify checks signature, issuer and expiry against the current time.
func (m *Manager) Verify(raw string) (*Claims, error) {
	claims, err := m.codec.decode(strings.TrimSpace(raw), m.cfg.Clock())
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	return claims, nil
}

func (m *Manager) Format() Format {
	return m.cfg.Format
}

func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}
