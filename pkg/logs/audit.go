package logs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codecrest/codecrest_backend/config"
	"github.com/codecrest/codecrest_backend/pkg/reqctx"
)

const stackBufSize = 8 << 10

// Audit is the durable trail of contact submissions and admin actions.
// Info lines and error lines go to separate files; every error line
// carries the goroutine stack of the call site.
type Audit struct {
	info    *slog.Logger
	err     *slog.Logger
	closers []io.Closer
}

// NewAudit writes info lines to info and error lines to errW.
func NewAudit(info, errW io.Writer) *Audit {
	return &Audit{
		info: slog.New(slog.NewJSONHandler(info, &slog.HandlerOptions{Level: slog.LevelInfo})),
		err:  slog.New(slog.NewJSONHandler(errW, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// NopAudit discards everything.
func NopAudit() *Audit {
	return NewAudit(io.Discard, io.Discard)
}

// NewAuditFromConfig opens the rotating audit files named in cfg.
func NewAuditFromConfig(cfg config.AuditConfig) *Audit {
	if !cfg.Enabled {
		return NopAudit()
	}

	info := &lumberjack.Logger{
		Filename:   cfg.InfoPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	errW := &lumberjack.Logger{
		Filename:   cfg.ErrorPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	a := NewAudit(info, errW)
	a.closers = []io.Closer{info, errW}
	return a
}

// Info records a successful or attempted action.
func (a *Audit) Info(ctx context.Context, action string, attrs ...any) {
	a.info.InfoContext(ctx, "INFO", a.withCommon(ctx, append([]any{slog.String("action", action)}, attrs...))...)
}

// Error records a failure together with where it happened and a stack.
func (a *Audit) Error(ctx context.Context, where string, err error, attrs ...any) {
	if err == nil {
		err = errors.New("unknown error")
	}

	buf := make([]byte, stackBufSize)
	n := runtime.Stack(buf, false)

	all := append([]any{
		slog.String("context", where),
		slog.String("error", err.Error()),
	}, attrs...)
	all = append(all, slog.String("stack", string(buf[:n])))

	a.err.ErrorContext(ctx, where, a.withCommon(ctx, all)...)
	slog.ErrorContext(ctx, where, "error", err)
}

func (a *Audit) withCommon(ctx context.Context, attrs []any) []any {
	attrs = append(attrs, slog.String("ts", time.Now().UTC().Format(time.RFC3339Nano)))
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, slog.String("request_id", rid))
	}
	return attrs
}

// Close flushes and closes the underlying files.
func (a *Audit) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
