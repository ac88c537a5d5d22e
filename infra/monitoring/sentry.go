package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/iveel36/spacetime-sim-2020/config"
	coremon "github.com/iveel36/spacetime-sim-2020/core/monitoring"
)

// NewSentryReporter returns a Reporter backed by a dedicated Sentry hub, or
// a NopReporter when no DSN is configured.
func NewSentryReporter(cfg config.SentryConfig) (coremon.Reporter, error) {
	if cfg.DSN == "" {
		return coremon.NopReporter{}, nil
	}
	return newSentryReporter(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
		Debug:       cfg.Debug,
	})
}

func newSentryReporter(opts sentry.ClientOptions) (*sentryReporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &sentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryReporter struct {
	hub *sentry.Hub
}

func (s *sentryReporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *sentryReporter) Flush(timeout time.Duration) bool { return s.hub.Flush(timeout) }
