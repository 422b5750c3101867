package trivia

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mroshb/trivia_bot/pkg/errors"
)

type RoundState int

const (
	StatePresenting RoundState = iota
	StateCollecting
	StateClosed
)

func (s RoundState) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateCollecting:
		return "collecting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("RoundState(%d)", int(s))
	}
}

type submitRequest struct {
	messageID int
	sub       Submission
	reply     chan submitResult
}

type submitResult struct {
	receipt Receipt
	err     error
}

// Round is the lifecycle of one question. Its ledger is only mutated by the
// collecting loop, which receives submissions over an unbuffered channel.
type Round struct {
	ID       string
	Number   int
	Total    int
	Question Question
	Answers  AnswerSet

	mu      sync.Mutex
	state   RoundState
	message MessageHandle
	ledger  *SubmissionLedger
	events  chan submitRequest
	closed  chan struct{}
	outcome *RoundOutcome
}

func newRound(number, total int, q Question, answers AnswerSet) *Round {
	return &Round{
		ID:       uuid.NewString(),
		Number:   number,
		Total:    total,
		Question: q,
		Answers:  answers,
		state:    StatePresenting,
		ledger:   NewSubmissionLedger(),
		events:   make(chan submitRequest),
		closed:   make(chan struct{}),
	}
}

func (r *Round) State() RoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Round) Message() MessageHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// transition applies one guarded state change. Presenting may go straight to
// Closed when publishing fails.
func (r *Round) transition(to RoundState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	allowed := false
	switch r.state {
	case StatePresenting:
		allowed = to == StateCollecting || to == StateClosed
	case StateCollecting:
		allowed = to == StateClosed
	}
	if !allowed {
		return errors.New(errors.ErrCodeInvalidTransition,
			fmt.Sprintf("round %d: %s -> %s", r.Number, r.state, to))
	}

	r.state = to
	if to == StateClosed {
		close(r.closed)
	}
	return nil
}

// open records where the question was published and starts accepting submissions.
func (r *Round) open(handle MessageHandle) error {
	r.mu.Lock()
	r.message = handle
	r.mu.Unlock()
	return r.transition(StateCollecting)
}

// close moves the round to Closed and returns the frozen submissions.
func (r *Round) close() ([]Submission, error) {
	if err := r.transition(StateClosed); err != nil {
		return nil, err
	}
	return r.ledger.CloseAndGetAll(), nil
}

// submit hands sub to the collecting loop, or rejects it once the round closed.
func (r *Round) submit(messageID int, sub Submission) (Receipt, error) {
	req := submitRequest{messageID: messageID, sub: sub, reply: make(chan submitResult, 1)}
	select {
	case r.events <- req:
		res := <-req.reply
		return res.receipt, res.err
	case <-r.closed:
		return Receipt{}, ErrRoundClosed
	}
}

// Outcome computes the round result once; later calls return the same value.
func (r *Round) Outcome(subs []Submission) RoundOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != nil {
		return *r.outcome
	}

	points := r.Question.Difficulty.Points()
	outcome := RoundOutcome{
		RoundID:      r.ID,
		Number:       r.Number,
		Question:     r.Question,
		Answers:      r.Answers,
		CorrectLabel: r.Answers.CorrectLabel,
		CorrectText:  r.Answers.CorrectText(),
		ScoreAwarded: points,
		Submissions:  subs,
		Awards:       []Award{},
	}
	for _, s := range subs {
		if s.Label == outcome.CorrectLabel {
			outcome.Awards = append(outcome.Awards, Award{
				ParticipantID: s.ParticipantID,
				DisplayName:   s.DisplayName,
				Points:        points,
			})
		}
	}

	r.outcome = &outcome
	return outcome
}
