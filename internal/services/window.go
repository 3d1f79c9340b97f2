package services

import (
	"time"

	"github.com/studyloop/reviewsync/internal/platform/logger"
)

// WindowFilter gates generation to events starting soon. Generation costs
// two agent calls, so anything outside the window is cleanup-only.
type WindowFilter interface {
	Eligible(startTime time.Time) bool
}

type windowFilter struct {
	log    *logger.Logger
	window time.Duration
	now    func() time.Time
}

func NewWindowFilter(log *logger.Logger, window time.Duration) WindowFilter {
	return NewWindowFilterWithClock(log, window, time.Now)
}

func NewWindowFilterWithClock(log *logger.Logger, window time.Duration, now func() time.Time) WindowFilter {
	return &windowFilter{
		log:    log.With("service", "WindowFilter"),
		window: window,
		now:    now,
	}
}

// Eligible reports now <= startTime <= now+window. Past events and events
// pushed beyond the window both fail, and their stale tasks get reconciled
// away by the caller.
func (f *windowFilter) Eligible(startTime time.Time) bool {
	now := f.now()
	if startTime.Before(now) {
		return false
	}
	return !startTime.After(now.Add(f.window))
}
