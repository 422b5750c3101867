package trivia

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mroshb/trivia_bot/pkg/errors"
)

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers chan *manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{
		now:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		timers: make(chan *manualTimer, 32),
	}
}

// Now advances by a millisecond per call so submissions are strictly ordered.
func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *manualClock) NewTimer(d time.Duration) Timer {
	t := &manualTimer{d: d, c: make(chan time.Time, 1)}
	c.timers <- t
	return t
}

func (c *manualClock) nextTimer(t *testing.T) *manualTimer {
	t.Helper()
	select {
	case tm := <-c.timers:
		return tm
	case <-time.After(2 * time.Second):
		t.Fatal("no timer was started")
		return nil
	}
}

type manualTimer struct {
	d       time.Duration
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
	fired   bool
}

func (t *manualTimer) C() <-chan time.Time {
	return t.c
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *manualTimer) Fire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.c <- time.Time{}
}

type publication struct {
	view   QuestionView
	handle MessageHandle
}

type fakePresenter struct {
	mu         sync.Mutex
	nextID     int
	publishErr error
	onPublish  func()
	editErr    error
	edits      []QuestionView
	followups  []Followup

	published  chan publication
	followupCh chan Followup
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{
		published:  make(chan publication, 16),
		followupCh: make(chan Followup, 64),
	}
}

func (p *fakePresenter) Publish(ctx context.Context, view QuestionView) (MessageHandle, error) {
	if p.onPublish != nil {
		p.onPublish()
	}
	if err := ctx.Err(); err != nil {
		return MessageHandle{}, err
	}

	p.mu.Lock()
	if p.publishErr != nil {
		err := p.publishErr
		p.mu.Unlock()
		return MessageHandle{}, err
	}
	p.nextID++
	handle := MessageHandle{ChatID: 42, MessageID: 100 + p.nextID}
	p.mu.Unlock()

	p.published <- publication{view: view, handle: handle}
	return handle, nil
}

func (p *fakePresenter) Edit(_ context.Context, _ MessageHandle, view QuestionView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, view)
	return p.editErr
}

func (p *fakePresenter) SendFollowup(_ context.Context, msg Followup) error {
	p.mu.Lock()
	p.followups = append(p.followups, msg)
	p.mu.Unlock()
	p.followupCh <- msg
	return nil
}

func (p *fakePresenter) nextPublication(t *testing.T) publication {
	t.Helper()
	select {
	case pub := <-p.published:
		return pub
	case <-time.After(2 * time.Second):
		t.Fatal("question was not published")
		return publication{}
	}
}

func (p *fakePresenter) nextFollowup(t *testing.T) Followup {
	t.Helper()
	select {
	case f := <-p.followupCh:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no followup was sent")
		return Followup{}
	}
}

func (p *fakePresenter) lastEdit() (QuestionView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.edits) == 0 {
		return QuestionView{}, false
	}
	return p.edits[len(p.edits)-1], true
}

type awardCall struct {
	participantID int64
	displayName   string
	points        int
}

type fakeScores struct {
	mu    sync.Mutex
	err   error
	calls []awardCall
}

func (s *fakeScores) Award(_ context.Context, participantID int64, displayName string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, awardCall{participantID: participantID, displayName: displayName, points: points})
	return nil
}

func (s *fakeScores) snapshot() []awardCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]awardCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type fakeSource struct {
	questions []Question
	err       error
}

func (s *fakeSource) FetchQuestions(_ context.Context, count int, _ string) ([]Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	if count < len(s.questions) {
		return s.questions[:count], nil
	}
	return s.questions, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []RoundOutcome
}

func (r *fakeRecorder) RecordRound(_ context.Context, _ int64, outcome RoundOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

func parisQuestion() Question {
	return Question{
		Category:    "Geography",
		Difficulty:  DifficultyEasy,
		Prompt:      "What is the capital of France?",
		Correct:     "Paris",
		Distractors: []string{"Lyon", "Nice", "Rome"},
	}
}

func wrongLabel(set AnswerSet) Label {
	for _, l := range Labels {
		if l != set.CorrectLabel {
			return l
		}
	}
	return ""
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
