package logs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/codecrest/codecrest_backend/config"
)

const lokiPushPath = "/loki/api/v1/push"

// newLokiHandler ships records to Loki in batches. Record attributes become
// stream labels; the returned func flushes and stops the client.
func newLokiHandler(cfg config.LokiConfig, level slog.Level) (slog.Handler, func(), error) {
	clientCfg, err := loki.NewDefaultConfig(lokiPushURL(cfg.Endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	clientCfg.TenantID = cfg.TenantID
	if cfg.Username != "" {
		clientCfg.Client.BasicAuth = &promconfig.BasicAuth{
			Username: cfg.Username,
			Password: promconfig.Secret(cfg.Password),
		}
	}

	client, err := loki.New(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}

	h := slogloki.Option{Level: level, Client: client}.NewLokiHandler()
	return h, client.Stop, nil
}

// lokiPushURL accepts either the Loki base URL or the full push URL.
func lokiPushURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if strings.HasSuffix(endpoint, lokiPushPath) {
		return endpoint
	}
	return endpoint + lokiPushPath
}
