package email

import (
	"errors"
	"fmt"
)

// ErrDisabled is returned by Send when delivery is switched off.
var ErrDisabled = errors.New("email: delivery disabled")

// InvalidMessageError names the part of a message that cannot be sent.
type InvalidMessageError struct {
	Field string
}

func (e *InvalidMessageError) Error() string {
	return "email: missing " + e.Field
}

// SendError wraps a failure reported by the SMTP server or the dial.
type SendError struct {
	Host string
	Err  error
}

func (e *SendError) Error() string { return fmt.Sprintf("email: smtp %s: %v", e.Host, e.Err) }

func (e *SendError) Unwrap() error { return e.Err }
