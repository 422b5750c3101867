package trivia

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/mroshb/trivia_bot/pkg/utils"
)

const (
	DefaultAnswerWindow = 10 * time.Second
	DefaultRoundDelay   = 15 * time.Second
)

// QuestionSource supplies the questions of a session.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, count int, category string) ([]Question, error)
}

// Presenter renders rounds into the chat.
type Presenter interface {
	Publish(ctx context.Context, view QuestionView) (MessageHandle, error)
	Edit(ctx context.Context, handle MessageHandle, view QuestionView) error
	SendFollowup(ctx context.Context, msg Followup) error
}

// ScoreLedger persists cumulative points. Implementations clamp totals at zero.
type ScoreLedger interface {
	Award(ctx context.Context, participantID int64, displayName string, points int) error
}

// RoundRecorder keeps a history of closed rounds. Failures are logged only.
type RoundRecorder interface {
	RecordRound(ctx context.Context, chatID int64, outcome RoundOutcome) error
}

// QuestionView is what a presenter needs to draw the question message.
type QuestionView struct {
	RoundID  string
	Number   int
	Total    int
	Question Question
	Answers  AnswerSet
	Window   time.Duration
	Answered int
	Closed   bool
}

type FollowupKind int

const (
	FollowupResult FollowupKind = iota
	FollowupSummary
	FollowupNotice
)

type Notice int

const (
	NoticeSourceUnavailable Notice = iota
	NoticeQuestionSkipped
	NoticeRoundAbandoned
	NoticeSessionAborted
)

// Followup is a message sent after the question message.
type Followup struct {
	Kind    FollowupKind
	Outcome *RoundOutcome
	Summary *SessionSummary
	Notice  Notice
}

type Settings struct {
	AnswerWindow time.Duration
	RoundDelay   time.Duration
	// LiveCount edits the question message with the number of participants
	// each time a new one answers.
	LiveCount bool
}

func (s Settings) withDefaults() Settings {
	if s.AnswerWindow <= 0 {
		s.AnswerWindow = DefaultAnswerWindow
	}
	if s.RoundDelay < 0 {
		s.RoundDelay = 0
	}
	return s
}

type Dependencies struct {
	Source    QuestionSource
	Presenter Presenter
	Scores    ScoreLedger
	Recorder  RoundRecorder
	Clock     Clock
	Rand      *rand.Rand
}

// Orchestrator drives the rounds of one chat, one round at a time.
type Orchestrator struct {
	chatID    int64
	source    QuestionSource
	presenter Presenter
	scores    ScoreLedger
	recorder  RoundRecorder
	clock     Clock
	rng       *rand.Rand
	settings  Settings
	log       *logger.Logger

	mu     sync.Mutex
	active *Round
}

func NewOrchestrator(chatID int64, deps Dependencies, settings Settings) *Orchestrator {
	o := &Orchestrator{
		chatID:    chatID,
		source:    deps.Source,
		presenter: deps.Presenter,
		scores:    deps.Scores,
		recorder:  deps.Recorder,
		clock:     deps.Clock,
		rng:       deps.Rand,
		settings:  settings.withDefaults(),
		log:       logger.With("chat_id", chatID),
	}
	if o.clock == nil {
		o.clock = SystemClock()
	}
	if o.rng == nil {
		o.rng = utils.NewRand()
	}
	return o
}

// ActiveRound returns the round currently presenting or collecting, if any.
func (o *Orchestrator) ActiveRound() *Round {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Submit records a participant's choice for the question published as messageID.
func (o *Orchestrator) Submit(messageID int, p Participant, label Label) (Receipt, error) {
	if _, ok := ParseLabel(string(label)); !ok {
		return Receipt{}, errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown label %q", label))
	}
	now := o.clock.Now()

	r := o.ActiveRound()
	if r == nil {
		return Receipt{}, ErrRoundClosed
	}
	return r.submit(messageID, Submission{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Label:         label,
		SubmittedAt:   now,
	})
}

// RunSession fetches count questions and plays them in order, pausing
// between rounds. A cancelled ctx stops after the current round closes.
func (o *Orchestrator) RunSession(ctx context.Context, count int, category string) (SessionSummary, error) {
	questions, err := o.source.FetchQuestions(ctx, count, category)
	if err == nil && len(questions) == 0 {
		err = errors.New(errors.ErrCodeSourceUnavailable, "no questions returned")
	}
	if err != nil {
		if !errors.Is(err, ErrSourceUnavailable) {
			err = errors.Wrap(err, errors.ErrCodeSourceUnavailable, "fetch questions")
		}
		o.log.Error("Failed to fetch questions", "category", category, "error", err)
		o.notify(ctx, NoticeSourceUnavailable)
		return SessionSummary{}, err
	}

	summary := SessionSummary{Rounds: len(questions)}
	for i, q := range questions {
		if ctx.Err() != nil {
			break
		}

		outcome, err := o.PlayRound(ctx, i+1, len(questions), q)
		switch {
		case err == nil:
			summary.add(outcome)
		case errors.Is(err, ErrMalformedQuestion):
			o.log.Warn("Skipping malformed question", "round", i+1, "error", err)
			summary.Skipped++
			o.notify(ctx, NoticeQuestionSkipped)
			continue
		case ctx.Err() != nil && errors.Is(err, context.Canceled):
			// stopped before the question went out
			continue
		case errors.Is(err, ErrScoringFailure):
			o.log.Error("Round abandoned", "round", i+1, "error", err)
			summary.Abandoned++
			o.notify(ctx, NoticeRoundAbandoned)
		default:
			o.log.Error("Session aborted", "round", i+1, "error", err)
			summary.Aborted = true
			o.notify(ctx, NoticeSessionAborted)
			return summary, err
		}

		if err := o.pause(ctx, o.settings.RoundDelay); err != nil {
			break
		}
	}

	if ctx.Err() != nil {
		summary.Aborted = true
	}

	if err := o.presenter.SendFollowup(context.WithoutCancel(ctx), Followup{Kind: FollowupSummary, Summary: &summary}); err != nil {
		o.log.Error("Failed to send session summary", "error", err)
		return summary, errors.Wrap(err, errors.ErrCodePresentationFailure, "send summary")
	}
	return summary, nil
}

// PlayRound runs one question through Presenting, Collecting and Closed.
func (o *Orchestrator) PlayRound(ctx context.Context, number, total int, q Question) (RoundOutcome, error) {
	if err := q.Validate(); err != nil {
		return RoundOutcome{}, err
	}
	answers, err := BuildAnswerSet(o.rng, q.Correct, q.Distractors)
	if err != nil {
		return RoundOutcome{}, err
	}

	r := newRound(number, total, q, answers)
	o.setActive(r)
	defer o.clearActive(r)

	handle, err := o.presenter.Publish(ctx, o.view(r, 0, false))
	if err != nil {
		_, _ = r.close()
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return RoundOutcome{}, err
		}
		return RoundOutcome{}, errors.Wrap(err, errors.ErrCodePresentationFailure, "publish question")
	}
	if err := r.open(handle); err != nil {
		return RoundOutcome{}, err
	}

	rc := StartRoundClock(o.clock, o.settings.AnswerWindow)
	defer rc.Release()

	subs, err := o.collect(ctx, r, rc)
	if err != nil {
		return RoundOutcome{}, err
	}

	outcome := r.Outcome(subs)
	o.log.Info("Round closed",
		"round", number,
		"round_id", r.ID,
		"submissions", len(outcome.Submissions),
		"winners", len(outcome.Awards),
	)

	// The round is closed; finish it even if the session was stopped meanwhile.
	finishCtx := context.WithoutCancel(ctx)

	for _, a := range outcome.Awards {
		if err := o.scores.Award(finishCtx, a.ParticipantID, a.DisplayName, a.Points); err != nil {
			if editErr := o.presenter.Edit(finishCtx, handle, o.view(r, len(subs), true)); editErr != nil {
				o.log.Warn("Failed to disable answers", "error", editErr)
			}
			return outcome, errors.Wrap(err, errors.ErrCodeScoringFailure,
				fmt.Sprintf("award %d points to participant %d", a.Points, a.ParticipantID))
		}
	}

	if err := o.presenter.Edit(finishCtx, handle, o.view(r, len(subs), true)); err != nil {
		return outcome, errors.Wrap(err, errors.ErrCodePresentationFailure, "disable answers")
	}
	if err := o.presenter.SendFollowup(finishCtx, Followup{Kind: FollowupResult, Outcome: &outcome}); err != nil {
		return outcome, errors.Wrap(err, errors.ErrCodePresentationFailure, "send result")
	}

	if o.recorder != nil {
		if err := o.recorder.RecordRound(finishCtx, o.chatID, outcome); err != nil {
			o.log.Warn("Failed to record round", "round_id", r.ID, "error", err)
		}
	}

	return outcome, nil
}

// collect is the only place the round's ledger is written. It returns once
// the clock expires; a cancelled ctx forces the expiry early.
func (o *Orchestrator) collect(ctx context.Context, r *Round, rc *RoundClock) ([]Submission, error) {
	cancelled := ctx.Done()
	for {
		select {
		case req := <-r.events:
			req.reply <- o.record(ctx, r, rc, req)
		case <-rc.Expired():
			return r.close()
		case <-cancelled:
			rc.ForceExpire()
			cancelled = nil
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, r *Round, rc *RoundClock, req submitRequest) submitResult {
	// expiry wins over a submission that raced it
	select {
	case <-rc.Expired():
		return submitResult{err: ErrRoundClosed}
	default:
	}

	handle := r.Message()
	if req.messageID != handle.MessageID {
		return submitResult{err: ErrRoundClosed}
	}

	first, total, err := r.ledger.RecordOrUpdate(req.sub)
	if err != nil {
		return submitResult{err: err}
	}

	if first && o.settings.LiveCount {
		if err := o.presenter.Edit(ctx, handle, o.view(r, total, false)); err != nil {
			o.log.Debug("Failed to update answer count", "error", err)
		}
	}

	return submitResult{receipt: Receipt{Label: req.sub.Label, First: first, Participants: total}}
}

func (o *Orchestrator) view(r *Round, answered int, closed bool) QuestionView {
	return QuestionView{
		RoundID:  r.ID,
		Number:   r.Number,
		Total:    r.Total,
		Question: r.Question,
		Answers:  r.Answers,
		Window:   o.settings.AnswerWindow,
		Answered: answered,
		Closed:   closed,
	}
}

func (o *Orchestrator) notify(ctx context.Context, n Notice) {
	if err := o.presenter.SendFollowup(context.WithoutCancel(ctx), Followup{Kind: FollowupNotice, Notice: n}); err != nil {
		o.log.Warn("Failed to send notice", "notice", n, "error", err)
	}
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := o.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) setActive(r *Round) {
	o.mu.Lock()
	o.active = r
	o.mu.Unlock()
}

func (o *Orchestrator) clearActive(r *Round) {
	o.mu.Lock()
	if o.active == r {
		o.active = nil
	}
	o.mu.Unlock()
}
