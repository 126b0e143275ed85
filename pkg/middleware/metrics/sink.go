package metrics

import "github.com/lumenlearn/authcore/pkg/audit"

// decisionSink counts every authorization decision, then forwards the
// event to the real sink. Wrapping keeps the gates unaware of metrics.
type decisionSink struct {
	next audit.Sink
}

// WrapSink layers decision counting over an audit sink.
func WrapSink(next audit.Sink) audit.Sink {
	return &decisionSink{next: next}
}

func (s *decisionSink) Record(e audit.Event) {
	authzDecisions.WithLabelValues(e.Type, string(e.Outcome)).Inc()
	s.next.Record(e)
}
