// Package presence keeps track of who has a project open and which panel
// they are looking at.
package presence

import (
	"time"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// Default liveness windows
const (
	DefaultActiveWindow = 30 * time.Second
	DefaultIdleWindow   = 2 * time.Minute
)

// Thresholds splits the age of last_seen into statuses.
type Thresholds struct {
	Active time.Duration
	Idle   time.Duration
}

// DefaultThresholds returns the 30s / 2m windows.
func DefaultThresholds() Thresholds {
	return Thresholds{Active: DefaultActiveWindow, Idle: DefaultIdleWindow}
}

// Classify derives the status of a record last seen at lastSeen.
// A lastSeen in the future counts as age zero.
func (t Thresholds) Classify(lastSeen, now time.Time) domain.PresenceStatus {
	age := now.Sub(lastSeen)
	switch {
	case age < t.Active:
		return domain.PresenceActive
	case age < t.Idle:
		return domain.PresenceIdle
	default:
		return domain.PresenceAway
	}
}

// Classify uses the default thresholds.
func Classify(lastSeen, now time.Time) domain.PresenceStatus {
	return DefaultThresholds().Classify(lastSeen, now)
}
