package trivia

import (
	"sync"
	"testing"
	"time"
)

func sub(id int64, label Label, at time.Time) Submission {
	return Submission{ParticipantID: id, DisplayName: "p", Label: label, SubmittedAt: at}
}

func TestSubmissionLedger_LastSubmissionWins(t *testing.T) {
	l := NewSubmissionLedger()
	t0 := time.Now()

	first, total, err := l.RecordOrUpdate(sub(1, LabelA, t0))
	if err != nil || !first || total != 1 {
		t.Fatalf("RecordOrUpdate() = (%v, %d, %v), want (true, 1, nil)", first, total, err)
	}

	first, total, err = l.RecordOrUpdate(sub(1, LabelC, t0.Add(time.Second)))
	if err != nil || first || total != 1 {
		t.Fatalf("RecordOrUpdate() = (%v, %d, %v), want (false, 1, nil)", first, total, err)
	}

	got := l.CloseAndGetAll()
	if len(got) != 1 {
		t.Fatalf("len(snapshot) = %d, want 1", len(got))
	}
	if got[0].Label != LabelC {
		t.Errorf("stored label = %s, want %s", got[0].Label, LabelC)
	}
}

func TestSubmissionLedger_StaleSubmissionIgnored(t *testing.T) {
	l := NewSubmissionLedger()
	t0 := time.Now()

	_, _, _ = l.RecordOrUpdate(sub(1, LabelB, t0.Add(time.Second)))
	_, _, _ = l.RecordOrUpdate(sub(1, LabelA, t0))

	got := l.CloseAndGetAll()
	if got[0].Label != LabelB {
		t.Errorf("stored label = %s, want %s", got[0].Label, LabelB)
	}
}

func TestSubmissionLedger_DistinctParticipants(t *testing.T) {
	tests := []struct {
		name  string
		order []int64
		want  int
	}{
		{name: "Ascending", order: []int64{1, 2, 3, 4}, want: 4},
		{name: "Descending", order: []int64{4, 3, 2, 1}, want: 4},
		{name: "Repeats", order: []int64{1, 2, 1, 3, 2, 1}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewSubmissionLedger()
			at := time.Now()
			for _, id := range tt.order {
				at = at.Add(time.Millisecond)
				if _, _, err := l.RecordOrUpdate(sub(id, LabelA, at)); err != nil {
					t.Fatalf("RecordOrUpdate() error = %v", err)
				}
			}
			if got := len(l.CloseAndGetAll()); got != tt.want {
				t.Errorf("len(snapshot) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubmissionLedger_ConcurrentParticipants(t *testing.T) {
	l := NewSubmissionLedger()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _, _ = l.RecordOrUpdate(sub(id, LabelD, time.Now()))
		}(int64(i))
	}
	wg.Wait()

	if got := l.Len(); got != n {
		t.Errorf("Len() = %d, want %d", got, n)
	}
}

func TestSubmissionLedger_RejectsAfterClose(t *testing.T) {
	l := NewSubmissionLedger()
	t0 := time.Now()
	_, _, _ = l.RecordOrUpdate(sub(1, LabelA, t0))

	before := l.CloseAndGetAll()

	_, _, err := l.RecordOrUpdate(sub(2, LabelB, t0.Add(time.Second)))
	if !isErr(err, ErrRoundClosed) {
		t.Fatalf("RecordOrUpdate() after close error = %v, want ErrRoundClosed", err)
	}
	_, _, err = l.RecordOrUpdate(sub(1, LabelB, t0.Add(time.Second)))
	if !isErr(err, ErrRoundClosed) {
		t.Fatalf("RecordOrUpdate() after close error = %v, want ErrRoundClosed", err)
	}

	after := l.CloseAndGetAll()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("snapshot changed after close: %+v -> %+v", before, after)
	}
}
