package trivia

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeLock struct {
	mu       sync.Mutex
	deny     bool
	err      error
	held     map[int64]time.Duration
	released []int64
}

func (l *fakeLock) Acquire(_ context.Context, chatID int64, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.deny {
		return false, nil
	}
	if l.held == nil {
		l.held = make(map[int64]time.Duration)
	}
	l.held[chatID] = ttl
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, chatID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, chatID)
	l.released = append(l.released, chatID)
	return nil
}

func newTestManager(clk *manualClock, p *fakePresenter, lock SessionLock) *Manager {
	return NewManager(ManagerConfig{
		Source:     &fakeSource{questions: []Question{parisQuestion(), parisQuestion()}},
		Scores:     &fakeScores{},
		Recorder:   &fakeRecorder{},
		Presenters: func(int64) Presenter { return p },
		Lock:       lock,
		Clock:      clk,
		Settings:   Settings{AnswerWindow: 10 * time.Second, RoundDelay: 15 * time.Second},
	})
}

func TestManager_OneSessionPerChat(t *testing.T) {
	clk := newManualClock()
	p := newFakePresenter()
	lock := &fakeLock{}
	m := newTestManager(clk, p, lock)
	defer m.Shutdown()

	if err := m.Start(context.Background(), 42, 2, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background(), 42, 2, ""); !isErr(err, ErrSessionActive) {
		t.Errorf("second Start() error = %v, want ErrSessionActive", err)
	}
	if !m.Active(42) {
		t.Error("Active(42) = false, want true")
	}

	lock.mu.Lock()
	ttl := lock.held[42]
	lock.mu.Unlock()
	if want := 2*25*time.Second + time.Minute; ttl != want {
		t.Errorf("lock ttl = %v, want %v", ttl, want)
	}
}

func TestManager_RoutesSubmissions(t *testing.T) {
	clk := newManualClock()
	p := newFakePresenter()
	m := newTestManager(clk, p, nil)
	defer m.Shutdown()

	if err := m.Start(context.Background(), 42, 1, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	pub := p.nextPublication(t)
	window := clk.nextTimer(t)

	receipt, err := m.Submit(42, pub.handle.MessageID, Participant{ID: 1, DisplayName: "Ana"}, LabelB)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.Label != LabelB || !receipt.First {
		t.Errorf("receipt = %+v, want first submission of B", receipt)
	}

	if _, err := m.Submit(7, pub.handle.MessageID, Participant{ID: 1}, LabelB); !isErr(err, ErrRoundClosed) {
		t.Errorf("Submit(other chat) error = %v, want ErrRoundClosed", err)
	}

	window.Fire()
	p.nextFollowup(t)
	clk.nextTimer(t).Fire()
	m.Wait(42)

	if m.Active(42) {
		t.Error("Active(42) = true after session finished")
	}
}

func TestManager_Stop(t *testing.T) {
	clk := newManualClock()
	p := newFakePresenter()
	lock := &fakeLock{}
	m := newTestManager(clk, p, lock)
	defer m.Shutdown()

	if m.Stop(42) {
		t.Error("Stop() on idle chat = true, want false")
	}

	if err := m.Start(context.Background(), 42, 2, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p.nextPublication(t)

	if !m.Stop(42) {
		t.Fatal("Stop() = false, want true")
	}
	m.Wait(42)

	deadline := time.Now().Add(2 * time.Second)
	for m.Active(42) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Active(42) {
		t.Fatal("session still active after Stop")
	}

	lock.mu.Lock()
	released := len(lock.released)
	lock.mu.Unlock()
	if released != 1 {
		t.Errorf("lock releases = %d, want 1", released)
	}
}

func TestManager_LockDenied(t *testing.T) {
	tests := []struct {
		name string
		lock *fakeLock
	}{
		{name: "Held elsewhere", lock: &fakeLock{deny: true}},
		{name: "Lock error", lock: &fakeLock{err: fmt.Errorf("redis down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(newManualClock(), newFakePresenter(), tt.lock)
			defer m.Shutdown()

			if err := m.Start(context.Background(), 42, 1, ""); err == nil {
				t.Fatal("Start() error = nil, want failure")
			}
			if m.Active(42) {
				t.Error("Active(42) = true after failed Start")
			}
		})
	}
}
