package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// State of the controller's lock lifecycle.
type State int

// Controller states. WarningPending is still unlocked; it only signals
// that auto-lock is imminent unless activity or a dismissal arrives.
const (
	StateLocked State = iota
	StateUnlocked
	StateWarningPending
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case StateUnlocked:
		return "unlocked"
	case StateWarningPending:
		return "warning"
	default:
		return "locked"
	}
}

// WarningLead is how long before the idle deadline the controller moves
// to WarningPending.
const WarningLead = 30 * time.Second

// pollInterval is how often the watcher re-evaluates idle time. Locking
// happens within one interval of the deadline, never before it.
const pollInterval = 1 * time.Second

// ErrLocked is returned when an operation needs an unlocked session and
// none exists.
var ErrLocked = kerrors.New("SESSION_LOCKED", "no unlocked session")

// Unlocker produces an unlocked session from a password. Implemented by
// the wallet manager.
type Unlocker interface {
	Unlock(password string) (*Unlocked, error)
}

// Controller owns the single session and drives the idle auto-lock
// state machine. All state transitions happen under one mutex; the
// background watcher and foreground calls never race.
type Controller struct {
	mu           sync.Mutex
	state        State
	session      *Unlocked
	lastActivity time.Time
	policy       Policy

	unlocker Unlocker
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the controller's time source. Tests use this to
// step through the idle timeline without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a locked controller with the given policy.
func NewController(unlocker Unlocker, policy Policy, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Controller{
		state:    StateLocked,
		policy:   policy,
		unlocker: unlocker,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Policy returns the active idle-timeout policy.
func (c *Controller) Policy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// SetPolicy changes the idle-timeout policy. Takes effect at the next
// idle evaluation; it never retroactively locks a session that was
// within its old deadline.
func (c *Controller) SetPolicy(policy Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = policy
}

// Unlock obtains a session from the unlocker and adopts it. Any
// existing session is destroyed first, so failure leaves the controller
// locked rather than holding a stale session.
func (c *Controller) Unlock(password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked()

	session, err := c.unlocker.Unlock(password)
	if err != nil {
		return err
	}

	c.session = session
	c.state = StateUnlocked
	c.lastActivity = c.now()
	c.log.Info("session unlocked", zap.String("address", session.Address()))
	return nil
}

// Adopt installs an externally produced session, destroying any
// existing one. Used when unlock happened out of band, such as right
// after wallet creation.
func (c *Controller) Adopt(session *Unlocked) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLocked()
	c.session = session
	c.state = StateUnlocked
	c.lastActivity = c.now()
}

// Lock destroys the session and returns to Locked. Idempotent.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked {
		return
	}
	c.dropLocked()
	c.log.Info("session locked")
}

// RecordActivity marks the session as active now, pushing the idle
// deadline out. Clears a pending warning. No-op while locked.
func (c *Controller) RecordActivity() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked {
		return
	}
	c.lastActivity = c.now()
	c.state = StateUnlocked
}

// DismissWarning acknowledges the imminent-lock warning, which counts
// as activity and restarts the full idle window.
func (c *Controller) DismissWarning() {
	c.RecordActivity()
}

// Remaining returns the time left until auto-lock. ok is false when
// locked or when the policy is never.
func (c *Controller) Remaining() (remaining time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked {
		return 0, false
	}
	timeout, ok := c.policy.Timeout()
	if !ok {
		return 0, false
	}

	remaining = timeout - c.now().Sub(c.lastActivity)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// WithUnlocked runs fn against the current session under the
// controller's lock. The session pointer must not escape fn; this is
// the only sanctioned way to read secret material. Counts as activity.
func (c *Controller) WithUnlocked(fn func(*Unlocked) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked || c.session == nil {
		return ErrLocked
	}
	c.lastActivity = c.now()
	c.state = StateUnlocked
	return fn(c.session)
}

// Address returns the unlocked wallet's address, or false when locked.
func (c *Controller) Address() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked || c.session == nil {
		return "", false
	}
	return c.session.Address(), true
}

// CheckIdle evaluates the idle timeline once: past the deadline the
// session locks, within WarningLead of it the state becomes
// WarningPending. The watcher calls this every pollInterval; tests call
// it directly with a stepped clock.
func (c *Controller) CheckIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLocked {
		return
	}
	timeout, ok := c.policy.Timeout()
	if !ok {
		return
	}

	idle := c.now().Sub(c.lastActivity)
	switch {
	case idle >= timeout:
		c.dropLocked()
		c.log.Info("session auto-locked", zap.Duration("idle", idle))
	case idle >= timeout-WarningLead:
		c.state = StateWarningPending
	}
}

// Watch runs the idle watcher until ctx is done, then locks. The
// watcher only ever moves the state machine forward; it never unlocks.
func (c *Controller) Watch(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Lock()
			return
		case <-ticker.C:
			c.CheckIdle()
		}
	}
}

// dropLocked destroys the session and resets to Locked. Caller holds mu.
func (c *Controller) dropLocked() {
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	c.state = StateLocked
}
