package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/repo"
	"github.com/codecrest/codecrest_backend/internal/service/auth"
	"github.com/codecrest/codecrest_backend/internal/service/contact"
	"github.com/codecrest/codecrest_backend/pkg/token"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideTokenManager,
		ProvideCredentialStore,
		ProvideAuthService,
		ProvideContactService,
	),
)

func ProvideTokenManager(cfg *config.Config) (*token.Manager, error) {
	m, err := token.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("token manager ready", "format", m.Format(), "ttl", m.TTL())
	return m, nil
}

func ProvideCredentialStore(cfg *config.Config) auth.CredentialStore {
	return auth.NewStaticAdminFromConfig(cfg)
}

func ProvideAuthService(creds auth.CredentialStore, tokens *token.Manager) auth.Service {
	return auth.New(creds, tokens)
}

func ProvideContactService(store *repo.ContactStore, nc *nats.Conn) contact.Service {
	return contact.New(store, contact.NewNATSNotifier(nc))
}
