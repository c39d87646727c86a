package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/internal/service/contact"
	"github.com/codecrest/codecrest_backend/pkg/email"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Cfg        *config.Config
	NC         *nats.Conn `optional:"true"`
	ContactSvc contact.Service
	Email      *email.Client
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil || !p.Email.Enabled() || strings.TrimSpace(p.Cfg.Admin.Email) == "" {
		slog.Debug("contact_mail_worker: disabled")
		return
	}

	w := &contactMailWorker{
		contacts: p.ContactSvc,
		mailer:   p.Email,
		to:       strings.TrimSpace(p.Cfg.Admin.Email),
		timeout:  time.Minute,
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = p.NC.Subscribe(contact.SubjectSubmitted, func(msg *nats.Msg) {
				w.handle(context.Background(), string(msg.Data))
			})
			if err != nil {
				slog.Error("contact_mail_worker: subscribe failed", "subject", contact.SubjectSubmitted, "err", err)
				return nil
			}
			slog.Info("contact_mail_worker: started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			if sub != nil {
				_ = sub.Unsubscribe()
			}
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// contact_mail_worker
// ---------------------------------------------------------------------------

type mailSender interface {
	Send(ctx context.Context, m email.Message) error
}

type contactMailWorker struct {
	contacts contact.Service
	mailer   mailSender
	to       string
	timeout  time.Duration
}

func (w *contactMailWorker) handle(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	m, err := w.contacts.Get(ctx, id)
	if err != nil {
		slog.Warn("contact_mail_worker: message not found", "id", id, "err", err)
		return
	}

	mail := email.BuildContactNotificationEmail(w.to, email.ContactNotificationData{
		ID:           m.ID,
		FullName:     m.FullName,
		Email:        m.Email,
		Mobile:       m.Mobile,
		ProjectTitle: m.ProjectTitle,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
		Extra:        m.Extra,
	})
	if err := w.mailer.Send(ctx, mail); err != nil {
		slog.Warn("contact_mail_worker: send failed", "id", id, "err", err)
		return
	}
	slog.Info("contact_mail_worker: admin notified", "id", id)
}
