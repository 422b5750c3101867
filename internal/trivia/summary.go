package trivia

import "sort"

type ParticipantTotal struct {
	ParticipantID int64
	DisplayName   string
	Points        int
	Correct       int
}

// SessionSummary is reported once the last round of a session is over.
type SessionSummary struct {
	Rounds    int
	Played    int
	Skipped   int
	Abandoned int
	Aborted   bool
	Totals    []ParticipantTotal
}

func (s *SessionSummary) add(outcome RoundOutcome) {
	s.Played++
	for _, a := range outcome.Awards {
		idx := -1
		for i := range s.Totals {
			if s.Totals[i].ParticipantID == a.ParticipantID {
				idx = i
				break
			}
		}
		if idx < 0 {
			s.Totals = append(s.Totals, ParticipantTotal{ParticipantID: a.ParticipantID, DisplayName: a.DisplayName})
			idx = len(s.Totals) - 1
		}
		s.Totals[idx].Points += a.Points
		s.Totals[idx].Correct++
		s.Totals[idx].DisplayName = a.DisplayName
	}
}

// Standings returns the totals by points, highest first. Ties keep the order
// in which participants first scored.
func (s SessionSummary) Standings() []ParticipantTotal {
	out := make([]ParticipantTotal, len(s.Totals))
	copy(out, s.Totals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out
}
