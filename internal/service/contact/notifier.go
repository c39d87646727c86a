package contact

import (
	"context"

	"github.com/nats-io/nats.go"
)

// SubjectSubmitted carries the id of every newly stored message.
const SubjectSubmitted = "codecrest.contact.submitted"

// Notifier is told about each stored submission. Failures never fail the
// submission itself.
type Notifier interface {
	Submitted(ctx context.Context, m *Message) error
}

type NopNotifier struct{}

func (NopNotifier) Submitted(context.Context, *Message) error { return nil }

type natsNotifier struct {
	nc *nats.Conn
}

// NewNATSNotifier publishes the message id on SubjectSubmitted.
func NewNATSNotifier(nc *nats.Conn) Notifier {
	if nc == nil {
		return NopNotifier{}
	}
	return &natsNotifier{nc: nc}
}

func (n *natsNotifier) Submitted(_ context.Context, m *Message) error {
	return n.nc.Publish(SubjectSubmitted, []byte(m.ID))
}
