package match

import "time"

const (
	// startGrace keeps matches whose clock is marginally ahead of ours
	// from flapping into not_started.
	startGrace = 5 * time.Second

	// runningWindow bounds how long after its start a match without a
	// recorded duration is still considered live.
	runningWindow = 6 * time.Hour
)

// StatusHints carries whatever timing signals a provider exposed. Any
// field may be nil.
type StatusHints struct {
	ScheduledAt   *time.Time
	StartTimeUnix *int64
	Duration      *int64
	BeginAt       *time.Time
}

// InferStatus derives a status from timing signals alone. Providers that
// supply an explicit status bypass this entirely.
func InferStatus(hints StatusHints, now time.Time) Status {
	if hints.ScheduledAt != nil && hints.ScheduledAt.After(now.Add(startGrace)) {
		return StatusNotStarted
	}
	if hints.StartTimeUnix != nil {
		start := time.Unix(*hints.StartTimeUnix, 0)
		if start.After(now.Add(startGrace)) {
			return StatusNotStarted
		}
		if hints.Duration != nil && *hints.Duration > 0 {
			return StatusFinished
		}
		if now.Sub(start) <= runningWindow {
			return StatusRunning
		}
		return StatusFinished
	}
	if hints.BeginAt != nil {
		if hints.BeginAt.After(now.Add(startGrace)) {
			return StatusNotStarted
		}
		if now.Sub(*hints.BeginAt) <= runningWindow {
			return StatusRunning
		}
		return StatusFinished
	}
	if hints.Duration != nil && *hints.Duration > 0 {
		return StatusFinished
	}
	return StatusFinished
}
