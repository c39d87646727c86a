package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/fx"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/repo"
	"github.com/codecrest/codecrest_backend/pkg/database"
	"github.com/codecrest/codecrest_backend/pkg/email"
	"github.com/codecrest/codecrest_backend/pkg/logs"
	"github.com/codecrest/codecrest_backend/pkg/observability"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideMongoClient),
	fx.Provide(ProvideContactStore),
	fx.Provide(ProvideAudit),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

// ProvideMongoClient opens the client once for the process. An unreachable
// server does not stop startup: requests fail with 500 and /health reports
// "disconnected" until it comes back.
func ProvideMongoClient(lc fx.Lifecycle, cfg *config.Config) (*mongo.Client, error) {
	dbCfg := database.FromCentralConfig(cfg.Mongo)
	client, err := database.NewMongoClientFromConfig(dbCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := database.Ping(ctx, client, dbCfg); err != nil {
				slog.Warn("mongo not reachable at startup", "db", dbCfg.Database, "err", err)
				return nil
			}
			slog.Info("connected to mongo", "db", dbCfg.Database, "collection", dbCfg.Collection)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing mongo connection")
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}

func ProvideContactStore(client *mongo.Client, cfg *config.Config) *repo.ContactStore {
	dbCfg := database.FromCentralConfig(cfg.Mongo)
	return repo.NewContactStore(database.Collection(client, dbCfg), dbCfg.OperationTimeout())
}

func ProvideAudit(lc fx.Lifecycle, cfg *config.Config) *logs.Audit {
	audit := logs.NewAuditFromConfig(cfg.Logging.Audit)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return audit.Close()
		},
	})
	return audit
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

// ProvideNatsClient returns nil when no URL is configured; the submission
// notifier and the mail worker are then switched off.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name("codecrest"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.Setup(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
