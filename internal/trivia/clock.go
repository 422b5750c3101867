package trivia

import (
	"sync"
	"time"
)

// Clock abstracts time so rounds can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type systemClock struct{}

// SystemClock is the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (t systemTimer) C() <-chan time.Time {
	return t.t.C
}

func (t systemTimer) Stop() bool {
	return t.t.Stop()
}

// RoundClock is the single-shot collection window of one round. Expired is
// closed exactly once, either when the window elapses or when ForceExpire
// overrides it.
type RoundClock struct {
	timer    Timer
	expired  chan struct{}
	done     chan struct{}
	fireOnce sync.Once
	stopOnce sync.Once
}

// StartRoundClock starts the window immediately.
func StartRoundClock(clock Clock, window time.Duration) *RoundClock {
	rc := &RoundClock{
		timer:   clock.NewTimer(window),
		expired: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rc.watch()
	return rc
}

func (rc *RoundClock) watch() {
	select {
	case <-rc.timer.C():
		rc.fire()
	case <-rc.done:
	}
}

func (rc *RoundClock) fire() {
	rc.fireOnce.Do(func() { close(rc.expired) })
}

func (rc *RoundClock) Expired() <-chan struct{} {
	return rc.expired
}

// ForceExpire closes the window early.
func (rc *RoundClock) ForceExpire() {
	rc.timer.Stop()
	rc.fire()
}

// Release stops the underlying timer once the round is closed. Late timer
// artifacts after this are no-ops.
func (rc *RoundClock) Release() {
	rc.stopOnce.Do(func() {
		rc.timer.Stop()
		close(rc.done)
	})
}
