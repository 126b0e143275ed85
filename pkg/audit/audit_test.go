package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderWritesEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewRecorder(zap.New(core))

	r.Record(Event{
		Type:     TypeAuthenticationFailure,
		Endpoint: "/api/login",
		Outcome:  OutcomeDeny,
		Reason:   "no_token",
	})
	r.Close()

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, TypeAuthenticationFailure, fields["type"])
	assert.Equal(t, "/api/login", fields["endpoint"])
	assert.Equal(t, string(OutcomeDeny), fields["outcome"])
	assert.NotEmpty(t, fields["eventId"], "missing ids are filled in")
}

func TestRecorderNeverBlocks(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	r := NewRecorder(zap.New(core))

	// Far more events than the buffer holds; overflow is dropped, not
	// waited on.
	for i := 0; i < 10_000; i++ {
		r.Record(Event{Type: TypeAuthorizationSuccess, Endpoint: "/x", Outcome: OutcomeAllow})
	}
	r.Close()
}

func TestRecorderRecordAfterClose(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewRecorder(zap.New(core))
	r.Close()

	assert.NotPanics(t, func() {
		r.Record(Event{Type: TypeAuthentication, Endpoint: "/x", Outcome: OutcomeAllow})
	})
	assert.Equal(t, 0, logs.Len())
}
