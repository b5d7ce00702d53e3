package engine

import "time"

// throttle decides when a long walk reports progress: on the first item, then on
// every nth item provided the minimum interval has passed since the last report.
type throttle struct {
	every    int
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

func newThrottle(every int, interval time.Duration, now func() time.Time) *throttle {
	if every < 1 {
		every = 1
	}
	return &throttle{every: every, interval: interval, now: now}
}

func (t *throttle) due(count int) bool {
	if count == 1 {
		t.last = t.now()
		return true
	}
	if count%t.every != 0 {
		return false
	}
	now := t.now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
