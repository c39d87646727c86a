package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/pkg/password"
)

// Identity is a principal allowed to log in.
type Identity struct {
	Email   string
	IsAdmin bool
}

// CredentialStore resolves and checks login credentials. The only
// implementation today is a single admin taken from configuration.
type CredentialStore interface {
	// Configured reports whether the store can answer at all.
	Configured() bool
	// Verify returns the identity for a matching email/password pair or
	// ErrInvalidCredentials.
	Verify(email, password string) (*Identity, error)
}

type staticAdmin struct {
	email    string
	password string
}

// NewStaticAdmin trims both values once; an empty one leaves the store
// unconfigured. The password may be plain text or an Argon2id PHC string.
func NewStaticAdmin(email, pass string) CredentialStore {
	return &staticAdmin{
		email:    strings.TrimSpace(email),
		password: strings.TrimSpace(pass),
	}
}

func NewStaticAdminFromConfig(cfg *config.Config) CredentialStore {
	return NewStaticAdmin(cfg.Admin.Email, cfg.Admin.Password)
}

func (s *staticAdmin) Configured() bool {
	return s.email != "" && s.password != ""
}

func (s *staticAdmin) Verify(email, pass string) (*Identity, error) {
	if !s.Configured() {
		return nil, ErrAdminNotConfigured
	}

	// Both sides are always compared so the response time does not say
	// which one was wrong.
	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(email)), []byte(s.email))
	passOK := s.checkPassword(strings.TrimSpace(pass))
	if emailOK&passOK != 1 {
		return nil, ErrInvalidCredentials
	}
	return &Identity{Email: s.email, IsAdmin: true}, nil
}

func (s *staticAdmin) checkPassword(pass string) int {
	if password.IsHash(s.password) {
		if password.Verify(s.password, pass) == nil {
			return 1
		}
		return 0
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(s.password))
}
