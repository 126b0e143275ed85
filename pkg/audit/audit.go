// Package audit records every decision the authorization pipeline makes,
// allow and deny alike, as structured events for external monitoring.
// Nothing in this repo ever reads the events back.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event types. One is emitted per gate decision; store_error marks a
// degraded dependency rather than a blocked caller, so operators can tell
// "attack stopped" apart from "infrastructure down".
const (
	TypeAuthentication        = "authentication"
	TypeAuthenticationFailure = "authentication_failure"
	TypeAuthorizationSuccess  = "authorization_success"
	TypeAuthorizationFailure  = "authorization_failure"
	TypeRateLimitExceeded     = "rate_limit_exceeded"
	TypeStoreError            = "store_error"
)

type Outcome string

const (
	OutcomeAllow Outcome = "ALLOW"
	OutcomeDeny  Outcome = "DENY"
)

// Event is one authorization decision. Append-only.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SubjectID string    `json:"subjectId,omitempty"`
	Role      string    `json:"role,omitempty"`
	Endpoint  string    `json:"endpoint"`
	Outcome   Outcome   `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink accepts events. Implementations must not block or panic; the gates
// call Record on the request path.
type Sink interface {
	Record(Event)
}

func fill(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}
