// Package telemetry wires Sentry error reporting.
//
// Usage in main.go:
//
//	telemetry.InitSentry(cfg.SentryDSN, cfg.Environment, constants.AppVersion)
//	defer telemetry.Flush()
package telemetry

import (
	"fmt"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// secretParams are query parameters scrubbed from reported request URLs.
var secretParams = []string{"apikey", "api_key", "key", "token"}

// InitSentry initializes the Sentry SDK. An empty dsn leaves Sentry disabled
// and every capture becomes a no-op.
func InitSentry(dsn, environment, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	if environment == "" {
		environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		return false, fmt.Errorf("sentry.Init: %w", err)
	}
	return true, nil
}

// CaptureError sends err to Sentry with the given tags.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent.
func Flush() {
	sentry.Flush(flushTimeout)
}

func scrub(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User.IPAddress = ""
	if event.Request != nil {
		event.Request.QueryString = ScrubQuery(event.Request.QueryString)
		event.Request.URL = scrubURL(event.Request.URL)
	}
	return event
}

// ScrubQuery redacts secret parameters from a raw query string.
func ScrubQuery(raw string) string {
	if raw == "" {
		return raw
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[redacted]"
	}
	changed := false
	for _, p := range secretParams {
		if values.Has(p) {
			values.Set(p, "[redacted]")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}

func scrubURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ScrubQuery(u.RawQuery)
	return u.String()
}
