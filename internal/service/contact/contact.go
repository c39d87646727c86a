package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/codecrest/codecrest_backend/pkg/observability"
)

// MetricSubmissions counts submissions by outcome (saved, invalid, failed).
const MetricSubmissions = "codecrest_contact_submissions_total"

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Store persists messages. Insert assigns Message.ID; List returns newest
// first; Get and Delete return ErrNotFound for unknown or malformed ids.
type Store interface {
	Insert(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]*Message, error)
	Get(ctx context.Context, id string) (*Message, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Submit(ctx context.Context, m *Message) (*Message, error)
	List(ctx context.Context) ([]*Message, error)
	Get(ctx context.Context, id string) (*Message, error)
	Delete(ctx context.Context, id string) error
	Healthy(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type contactService struct {
	store       Store
	notifier    Notifier
	clock       *monotonicClock
	meter       metric.MeterProvider
	submissions observability.Counter
}

type Option func(*contactService)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *contactService) { s.clock.now = now }
}

// WithMeterProvider records the submission counter on mp instead of the
// otel global.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *contactService) { s.meter = mp }
}

func New(store Store, notifier Notifier, opts ...Option) Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &contactService{
		store:    store,
		notifier: notifier,
		clock:    &monotonicClock{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.submissions = observability.NewCounter(s.meter, MetricSubmissions, "Contact form submissions")
	return s
}

func (s *contactService) Submit(ctx context.Context, m *Message) (*Message, error) {
	if m == nil || strings.TrimSpace(m.ProjectTitle) == "" {
		s.submissions.Inc(ctx, observability.OutcomeInvalid)
		return nil, ErrProjectTitleRequired
	}

	msg := *m
	msg.ID = ""
	msg.CreatedAt = s.clock.stamp()

	if err := s.store.Insert(ctx, &msg); err != nil {
		s.submissions.Inc(ctx, observability.OutcomeFailed)
		return nil, fmt.Errorf("save contact: %w", err)
	}
	s.submissions.Inc(ctx, observability.OutcomeSaved)

	if err := s.notifier.Submitted(ctx, &msg); err != nil {
		slog.WarnContext(ctx, "contact: submission notification failed", "id", msg.ID, "err", err)
	}

	return &msg, nil
}

func (s *contactService) List(ctx context.Context) ([]*Message, error) {
	msgs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

func (s *contactService) Get(ctx context.Context, id string) (*Message, error) {
	return s.store.Get(ctx, strings.TrimSpace(id))
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, strings.TrimSpace(id))
}

func (s *contactService) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// monotonicClock hands out millisecond timestamps that never go backwards
// within this process, even if the wall clock does.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *monotonicClock) stamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
