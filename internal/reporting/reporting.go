// Package reporting forwards unexpected failures to Sentry.
package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
)

const flushTimeout = 2 * time.Second

// Init configures the Sentry client. Without a DSN reporting stays disabled and Capture
// is a no-op. The returned function flushes buffered events and must run before exit.
func Init(cfg *config.Config) (flush func(), err error) {
	if cfg.Sentry.DSN == "" {
		return func() {}, nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	})
	if err != nil {
		return func() {}, err
	}

	config.GetLogger().Info().Str("environment", cfg.Sentry.Environment).Msg("Error reporting enabled")
	return func() { sentry.Flush(flushTimeout) }, nil
}

// Capture reports err unless it is an expected outcome: cancellation or a control that
// no longer exists on the page.
func Capture(ctx context.Context, err error) {
	if !Reportable(err) {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	var remote *apperrors.ErrRemoteCall
	if errors.As(err, &remote) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("catalog.kind", string(remote.Kind))
			scope.SetTag("catalog.op", remote.Op)
			scope.SetContext("catalog", sentry.Context{"url": remote.URL, "status": remote.StatusCode})
			hub.CaptureException(err)
		})
		return
	}
	hub.CaptureException(err)
}

// Reportable reports whether err is worth sending to Sentry.
func Reportable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, &apperrors.ErrUnknownControl{}):
		return false
	}
	return true
}
