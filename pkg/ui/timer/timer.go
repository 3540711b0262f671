// Package timer provides monotonic stage timing for CLI activities.
package timer

import "time"

// Timer tracks elapsed time for a whole run and for the current stage.
type Timer interface {
	// Start begins timing. Calling Start again resets the timer.
	Start()
	// NewStage marks the start of a new stage, resetting the stage clock.
	NewStage()
	// GetTiming returns the total elapsed time and the current stage's
	// elapsed time.
	GetTiming() (total, stage time.Duration)
}

type clockTimer struct {
	start      time.Time
	stageStart time.Time
}

// New creates a Timer. The timer is not running until Start is called.
func New() Timer {
	return &clockTimer{}
}

func (t *clockTimer) Start() {
	now := time.Now()
	t.start = now
	t.stageStart = now
}

func (t *clockTimer) NewStage() {
	t.stageStart = time.Now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	if t.start.IsZero() {
		return 0, 0
	}

	now := time.Now()

	return now.Sub(t.start).Round(time.Millisecond),
		now.Sub(t.stageStart).Round(time.Millisecond)
}
