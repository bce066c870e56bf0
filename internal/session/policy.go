package session

import (
	"time"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Policy is a named idle-timeout setting. The set is closed; free-form
// durations are not accepted so the stored preference stays portable.
type Policy string

// Idle-timeout policies.
const (
	Policy1Min  Policy = "1m"
	Policy5Min  Policy = "5m"
	Policy15Min Policy = "15m"
	Policy30Min Policy = "30m"
	PolicyNever Policy = "never"
)

// DefaultPolicy applies when no preference has been stored.
const DefaultPolicy = Policy5Min

var policyDurations = map[Policy]time.Duration{
	Policy1Min:  1 * time.Minute,
	Policy5Min:  5 * time.Minute,
	Policy15Min: 15 * time.Minute,
	Policy30Min: 30 * time.Minute,
}

// ParsePolicy validates a stored or user-supplied policy name. The empty
// string maps to DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return DefaultPolicy, nil
	}

	p := Policy(name)
	if p == PolicyNever {
		return p, nil
	}
	if _, ok := policyDurations[p]; !ok {
		return "", kerrors.WithDetails(
			kerrors.Wrap(kerrors.ErrInvalidData, "unknown idle timeout policy"),
			map[string]string{"policy": name},
		)
	}
	return p, nil
}

// Timeout returns the idle duration for the policy. ok is false for
// PolicyNever, which disables auto-lock entirely.
func (p Policy) Timeout() (timeout time.Duration, ok bool) {
	d, ok := policyDurations[p]
	return d, ok
}
