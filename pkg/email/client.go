package email

import (
	"context"
	"crypto/tls"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/codecrest/codecrest_backend/config"
)

// Message is one outgoing mail. Text and HTML may both be set, in which
// case HTML is sent as the alternative part.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Client delivers mail over SMTP. A disabled client refuses every Send.
type Client struct {
	cfg Config
}

func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, &InvalidMessageError{Field: "smtp host"}
	}
	return &Client{cfg: cfg}, nil
}

// Enabled reports whether Send will attempt delivery.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled
}

// Send blocks until the server accepted m, ctx ends, or the configured
// SMTP timeout passes, whichever comes first.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	msg, err := compose(c.cfg.From, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SMTPTimeout())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.dialer().DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return &SendError{Host: c.cfg.SMTPHost, Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) dialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)

	// 465 is implicit TLS; other ports upgrade with STARTTLS.
	if c.cfg.SMTPUseTLS {
		d.SSL = c.cfg.SMTPPort == 465
		d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}
	return d
}

func compose(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	to := nonEmpty(m.To)
	subject := strings.TrimSpace(m.Subject)

	switch {
	case from == "":
		return nil, &InvalidMessageError{Field: "sender"}
	case len(to) == 0:
		return nil, &InvalidMessageError{Field: "recipient"}
	case subject == "":
		return nil, &InvalidMessageError{Field: "subject"}
	case strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.HTML) == "":
		return nil, &InvalidMessageError{Field: "body"}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	if r := strings.TrimSpace(m.ReplyTo); r != "" {
		msg.SetHeader("Reply-To", r)
	}

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}
	return msg, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
