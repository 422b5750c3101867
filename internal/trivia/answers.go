package trivia

import (
	"math/rand"

	"github.com/mroshb/trivia_bot/pkg/utils"
)

// BuildAnswerSet shuffles the correct answer together with exactly three
// distractors and labels the result A..D. The correct label is the first
// option whose text equals correct exactly, so a distractor differing only
// in spacing or case never takes it.
func BuildAnswerSet(rng *rand.Rand, correct string, distractors []string) (AnswerSet, error) {
	if len(distractors) != len(Labels)-1 {
		return AnswerSet{}, malformed("answer set needs exactly three distractors")
	}
	if rng == nil {
		rng = utils.NewRand()
	}

	texts := make([]string, 0, len(Labels))
	texts = append(texts, correct)
	texts = append(texts, distractors...)

	// Fisher-Yates
	for i := len(texts) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		texts[i], texts[j] = texts[j], texts[i]
	}

	var set AnswerSet
	for i, text := range texts {
		set.Options[i] = AnswerOption{Label: Labels[i], Text: text}
		if set.CorrectLabel == "" && text == correct {
			set.CorrectLabel = Labels[i]
		}
	}

	return set, nil
}
