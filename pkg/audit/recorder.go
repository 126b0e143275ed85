package audit

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder writes events to a zap logger from a dedicated goroutine.
// Record hands the event over through a buffered channel and returns
// immediately; when the buffer is full the event is dropped rather than
// stalling the request that produced it.
type Recorder struct {
	log  *zap.Logger
	ch   chan Event
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewRecorder(log *zap.Logger) *Recorder {
	r := &Recorder{
		log:  log,
		ch:   make(chan Event, 256),
		done: make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) Record(e Event) {
	e = fill(e)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- e:
	default:
		// sink saturated; the request must not wait on audit IO
	}
}

func (r *Recorder) drain() {
	defer close(r.done)
	for e := range r.ch {
		r.log.Info("",
			zap.String("eventId", e.ID),
			zap.String("type", e.Type),
			zap.String("subjectId", e.SubjectID),
			zap.String("role", e.Role),
			zap.String("endpoint", e.Endpoint),
			zap.String("outcome", string(e.Outcome)),
			zap.String("reason", e.Reason),
			zap.String("requestId", e.RequestID),
			zap.Time("timestamp", e.Timestamp),
		)
	}
	_ = r.log.Sync()
}

// Close flushes buffered events and stops the drain goroutine. Record
// calls after Close are dropped.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()
	<-r.done
}
