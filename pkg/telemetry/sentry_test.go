package telemetry

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentryDisabledWithoutDSN(t *testing.T) {
	enabled, err := InitSentry("", "test", "1.0.0")
	require.NoError(t, err)
	assert.False(t, enabled)

	assert.NotPanics(t, func() {
		CaptureError(errors.New("boom"), map[string]string{"kind": "test"})
		CaptureError(nil, nil)
	})
}

func TestInitSentryRejectsBadDSN(t *testing.T) {
	_, err := InitSentry("not a dsn", "test", "1.0.0")
	assert.Error(t, err)
}

func TestScrubQuery(t *testing.T) {
	assert.Equal(t, "", ScrubQuery(""))
	assert.Equal(t, "title=Metropolis", ScrubQuery("title=Metropolis"))
	assert.Equal(t, "apikey=%5Bredacted%5D&t=Metropolis", ScrubQuery("t=Metropolis&apikey=abc12345"))
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{
		User: sentry.User{IPAddress: "10.0.0.1"},
		Request: &sentry.Request{
			URL:         "http://www.omdbapi.com/?apikey=abc12345&t=x",
			QueryString: "apikey=abc12345&t=x",
		},
	}
	out := scrub(event)
	assert.Empty(t, out.User.IPAddress)
	assert.NotContains(t, out.Request.URL, "abc12345")
	assert.NotContains(t, out.Request.QueryString, "abc12345")
	assert.Nil(t, scrub(nil))
}
