package trivia

import (
	"fmt"
	"strings"
	"time"
)

// Label identifies one of the four answer buttons.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists every label in presentation order.
var Labels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel accepts "A".."D" in either case.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return "", false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Points awarded for a correct answer per difficulty tier.
const (
	PointsEasy   = 5
	PointsMedium = 10
	PointsHard   = 20
)

// Points returns the score a correct answer is worth, or 0 for an unknown tier.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return PointsEasy
	case DifficultyMedium:
		return PointsMedium
	case DifficultyHard:
		return PointsHard
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d.Points() > 0
}

// Question is immutable for the lifetime of a round.
type Question struct {
	Category    string
	Difficulty  Difficulty
	Prompt      string
	Correct     string
	Distractors []string
}

// Validate checks the shape a round needs before anything is published.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Prompt) == "":
		return malformed("question has no prompt")
	case strings.TrimSpace(q.Correct) == "":
		return malformed("question has no correct answer")
	case !q.Difficulty.Valid():
		return malformed(fmt.Sprintf("unknown difficulty %q", q.Difficulty))
	case len(q.Distractors) != len(Labels)-1:
		return malformed(fmt.Sprintf("expected %d distractors, got %d", len(Labels)-1, len(q.Distractors)))
	}
	return nil
}

type AnswerOption struct {
	Label Label
	Text  string
}

// AnswerSet is the shuffled, labelled option list of one round.
type AnswerSet struct {
	Options      [4]AnswerOption
	CorrectLabel Label
}

func (s AnswerSet) CorrectText() string {
	for _, opt := range s.Options {
		if opt.Label == s.CorrectLabel {
			return opt.Text
		}
	}
	return ""
}

type Participant struct {
	ID          int64
	DisplayName string
}

// Submission is a participant's latest choice within a round.
type Submission struct {
	ParticipantID int64
	DisplayName   string
	Label         Label
	SubmittedAt   time.Time
}

type Award struct {
	ParticipantID int64
	DisplayName   string
	Points        int
}

// RoundOutcome is computed once when a round closes.
type RoundOutcome struct {
	RoundID      string
	Number       int
	Question     Question
	Answers      AnswerSet
	CorrectLabel Label
	CorrectText  string
	ScoreAwarded int
	Submissions  []Submission
	Awards       []Award
}

// NobodyAnswered reports the degenerate round where the window closed empty.
func (o RoundOutcome) NobodyAnswered() bool {
	return len(o.Submissions) == 0
}

// MessageHandle addresses a published question so it can be edited later.
type MessageHandle struct {
	ChatID    int64
	MessageID int
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	Label        Label
	First        bool
	Participants int
}
