// Package watchdog implements the client-side session inactivity state
// machine for dependent sessions: ACTIVE until the inactivity timeout,
// then a 60-second WARNING the user must explicitly dismiss, then
// EXPIRED with a forced logout. It runs entirely in the client and is a
// UX safety net only; server-side token expiry remains the security
// boundary.
package watchdog

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Phase of the inactivity state machine. Expired is terminal: a fresh
// login builds a fresh watchdog.
type Phase int

const (
	Active Phase = iota
	Warning
	Expired
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "ACTIVE"
	case Warning:
		return "WARNING"
	case Expired:
		return "EXPIRED"
	}
	return "UNKNOWN"
}

const (
	// DefaultInactivityTimeout applies to guardian-facing surfaces.
	DefaultInactivityTimeout = 30 * time.Minute

	// ChildInactivityTimeout is the shorter budget for child dashboards.
	ChildInactivityTimeout = 20 * time.Minute

	// warningDuration is fixed: the countdown a user gets to prove
	// they are still there.
	warningDuration = 60 * time.Second
)

// ErrExpired is returned by StillHere once the session has already been
// terminated.
var ErrExpired = errors.New("session expired")

// Refresher renews the session credential when the user confirms
// presence.
type Refresher interface {
	RefreshAuth(ctx context.Context) error
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) RefreshAuth(ctx context.Context) error { return f(ctx) }

type Config struct {
	// InactivityTimeout before the warning fires. Zero means
	// DefaultInactivityTimeout.
	InactivityTimeout time.Duration

	// Clock defaults to the wall clock.
	Clock Clock

	// OnWarning surfaces the countdown to the user.
	OnWarning func(remaining time.Duration)

	// OnExpired performs the client-side logout and navigation to the
	// login surface.
	OnExpired func()

	// Refresher is called on an explicit "I'm still here" action.
	Refresher Refresher
}

// Watchdog is one per dependent session. All transitions run under its
// lock. Timer callbacks carry the generation they were armed under; a
// callback that fired before a reset could stop its timer sees a newer
// generation and becomes a no-op.
type Watchdog struct {
	timeout   time.Duration
	clock     Clock
	onWarning func(remaining time.Duration)
	onExpired func()
	refresher Refresher

	mu           sync.Mutex
	phase        Phase
	gen          uint64
	lastActivity time.Time
	inactivity   Timer
	expiry       Timer
	stopped      bool
}

func New(cfg Config) *Watchdog {
	timeout := cfg.InactivityTimeout
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock()
	}
	return &Watchdog{
		timeout:   timeout,
		clock:     clock,
		onWarning: cfg.OnWarning,
		onExpired: cfg.OnExpired,
		refresher: cfg.Refresher,
	}
}

// Start arms the inactivity timer. Calling Start on a stopped or
// expired watchdog does nothing.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.phase == Expired || w.inactivity != nil {
		return
	}
	w.phase = Active
	w.lastActivity = w.clock.Now()
	w.armInactivityLocked()
}

// armInactivityLocked starts a fresh inactivity countdown and bumps the
// generation so earlier timer callbacks cannot act. Callers hold the
// lock.
func (w *Watchdog) armInactivityLocked() {
	w.gen++
	gen := w.gen
	w.inactivity = w.clock.AfterFunc(w.timeout, func() { w.onInactive(gen) })
}

// Touch reports passive user input (pointer move, key press, click,
// touch). In ACTIVE it resets the inactivity timer. In WARNING it is
// deliberately ignored: only the explicit StillHere action dismisses
// the warning, so a window idling in the background cannot silently
// renew itself.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.phase != Active || w.inactivity == nil {
		return
	}
	w.lastActivity = w.clock.Now()
	w.inactivity.Stop()
	w.armInactivityLocked()
}

// StillHere is the explicit "I'm still here" action. From WARNING it
// cancels the pending expiry, returns to ACTIVE with a fresh inactivity
// budget, and renews the credential. In ACTIVE it just resets the
// budget (and still renews). After expiry it reports ErrExpired.
func (w *Watchdog) StillHere(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped || w.phase == Expired {
		w.mu.Unlock()
		return ErrExpired
	}

	if w.expiry != nil {
		w.expiry.Stop()
		w.expiry = nil
	}
	if w.inactivity != nil {
		w.inactivity.Stop()
	}
	w.phase = Active
	w.lastActivity = w.clock.Now()
	w.armInactivityLocked()
	refresher := w.refresher
	w.mu.Unlock()

	if refresher != nil {
		return refresher.RefreshAuth(ctx)
	}
	return nil
}

// Stop tears the watchdog down (logout, navigation, unmount): all
// pending timers are cancelled so nothing fires against a dead session.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.inactivity != nil {
		w.inactivity.Stop()
		w.inactivity = nil
	}
	if w.expiry != nil {
		w.expiry.Stop()
		w.expiry = nil
	}
}

func (w *Watchdog) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// LastActivity reports when the session last saw input.
func (w *Watchdog) LastActivity() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActivity
}

func (w *Watchdog) onInactive(gen uint64) {
	w.mu.Lock()
	if w.stopped || w.phase != Active || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.phase = Warning
	w.inactivity = nil
	w.expiry = w.clock.AfterFunc(warningDuration, func() { w.onExpiry(gen) })
	onWarning := w.onWarning
	w.mu.Unlock()

	if onWarning != nil {
		onWarning(warningDuration)
	}
}

func (w *Watchdog) onExpiry(gen uint64) {
	w.mu.Lock()
	if w.stopped || w.phase != Warning || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.phase = Expired
	w.expiry = nil
	onExpired := w.onExpired
	w.mu.Unlock()

	if onExpired != nil {
		onExpired()
	}
}
