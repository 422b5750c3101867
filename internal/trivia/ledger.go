package trivia

import "sync"

// SubmissionLedger keeps one submission per participant for a single round.
// A later submission replaces the earlier one; a submission stamped earlier
// than the stored one (delivered out of order) is ignored.
type SubmissionLedger struct {
	mu       sync.Mutex
	entries  map[int64]Submission
	order    []int64
	closed   bool
	snapshot []Submission
}

func NewSubmissionLedger() *SubmissionLedger {
	return &SubmissionLedger{entries: make(map[int64]Submission)}
}

// RecordOrUpdate upserts sub by participant id.
func (l *SubmissionLedger) RecordOrUpdate(sub Submission) (isFirst bool, total int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, len(l.entries), ErrRoundClosed
	}

	prev, exists := l.entries[sub.ParticipantID]
	if !exists {
		l.order = append(l.order, sub.ParticipantID)
		l.entries[sub.ParticipantID] = sub
		return true, len(l.entries), nil
	}

	if !sub.SubmittedAt.Before(prev.SubmittedAt) {
		l.entries[sub.ParticipantID] = sub
	}
	return false, len(l.entries), nil
}

// Len returns the number of distinct participants recorded so far.
func (l *SubmissionLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// CloseAndGetAll freezes the ledger and returns its submissions in order of
// each participant's first submission. Repeated calls return the same snapshot.
func (l *SubmissionLedger) CloseAndGetAll() []Submission {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		l.closed = true
		l.snapshot = make([]Submission, 0, len(l.order))
		for _, id := range l.order {
			l.snapshot = append(l.snapshot, l.entries[id])
		}
	}

	out := make([]Submission, len(l.snapshot))
	copy(out, l.snapshot)
	return out
}
