package handlers

import (
	"fmt"
	"html"
	"strings"

	"github.com/mroshb/trivia_bot/internal/services"
	"github.com/mroshb/trivia_bot/internal/trivia"
)

// Messages use Telegram's HTML parse mode; dynamic text must go through html.EscapeString.
const (
	MsgHelp = "🎯 <b>Trivia</b>\n\n" +
		"/play [category] - start a game in this chat\n" +
		"/stop - stop after the current question\n" +
		"/score - show your total score\n" +
		"/categories - list the categories\n\n" +
		"Each question has four answers and a short timer. Tap a button to answer; " +
		"you can change your mind until time runs out."

	MsgSessionActive     = "⏳ A game is already running here. Use /stop to end it."
	MsgNoSession         = "There is no game running in this chat."
	MsgStopping          = "🛑 Stopping after the current question."
	MsgUnknownCategory   = "🤔 Unknown category. Use /categories to see the list."
	MsgCategoriesFailed  = "⚠️ Could not load the categories right now."
	MsgScoreFailed       = "⚠️ Could not load your score right now."
	MsgSomethingWrong    = "⚠️ Something went wrong. Please try again."
	MsgRoundClosed       = "This round is closed"
	MsgTooFast           = "Slow down!"
	MsgYouChose          = "You chose %s"
	MsgSourceUnavailable = "⚠️ Could not load questions right now. Try again later."
	MsgQuestionSkipped   = "⚠️ A question was broken and has been skipped."
	MsgRoundAbandoned    = "⚠️ Scores for this question could not be saved."
	MsgGameStopped       = "⏹ The game was stopped early."
	MsgSessionAborted    = "⚠️ The game was stopped because a message could not be delivered."
)

var labelEmoji = map[trivia.Label]string{
	trivia.LabelA: "🇦",
	trivia.LabelB: "🇧",
	trivia.LabelC: "🇨",
	trivia.LabelD: "🇩",
}

// FormatQuestion renders the question message in any of its states.
func FormatQuestion(view trivia.QuestionView) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "❓ <b>Question %d/%d</b>\n", view.Number, view.Total)
	fmt.Fprintf(&sb, "<b>%s</b>\n\n", html.EscapeString(view.Question.Prompt))

	for _, opt := range view.Answers.Options {
		line := fmt.Sprintf("%s %s", labelEmoji[opt.Label], html.EscapeString(opt.Text))
		if view.Closed && opt.Label == view.Answers.CorrectLabel {
			line = "<b>" + line + "</b> ✅"
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n📚 " + html.EscapeString(view.Question.Category))
	if d := view.Question.Difficulty; d.Valid() {
		fmt.Fprintf(&sb, " · %s (%d pts)", d, d.Points())
	}
	sb.WriteString("\n")

	switch {
	case view.Closed:
		sb.WriteString("⏱ Time's up!")
	case view.Answered > 0:
		fmt.Fprintf(&sb, "⏱ You have %ds to answer. 👥 %d answered", int(view.Window.Seconds()), view.Answered)
	default:
		fmt.Fprintf(&sb, "⏱ You have %ds to answer.", int(view.Window.Seconds()))
	}

	return sb.String()
}

// FormatResult renders the followup sent when a round closes.
func FormatResult(outcome trivia.RoundOutcome) string {
	answer := fmt.Sprintf("<b>%s: %s</b>", outcome.CorrectLabel, html.EscapeString(outcome.CorrectText))

	if outcome.NobodyAnswered() {
		return "🔴 Nobody answered. The right answer was " + answer
	}
	if len(outcome.Awards) == 0 {
		return fmt.Sprintf("🔴 Nobody got it right. The right answer was %s\n\n%d answered.", answer, len(outcome.Submissions))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🟢 Correct! It was indeed %s\n\n", answer)
	fmt.Fprintf(&sb, "<b>+%d pts</b>\n", outcome.ScoreAwarded)
	for _, a := range outcome.Awards {
		sb.WriteString("• " + html.EscapeString(a.DisplayName) + "\n")
	}
	fmt.Fprintf(&sb, "\n%d of %d answered correctly.", len(outcome.Awards), len(outcome.Submissions))
	return sb.String()
}

var medals = []string{"🥇", "🥈", "🥉"}

// FormatSummary renders the end of game standings.
func FormatSummary(summary trivia.SessionSummary) string {
	var sb strings.Builder
	sb.WriteString("🏁 <b>Game over!</b>\n\n")

	standings := summary.Standings()
	if len(standings) == 0 {
		sb.WriteString("Nobody scored this time.")
	}
	for i, t := range standings {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s: %d pts (%d correct)\n", prefix, html.EscapeString(t.DisplayName), t.Points, t.Correct)
	}

	if summary.Skipped > 0 || summary.Abandoned > 0 || summary.Aborted {
		fmt.Fprintf(&sb, "\n%d of %d questions played.", summary.Played, summary.Rounds)
	}
	if summary.Aborted {
		sb.WriteString("\n" + MsgGameStopped)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatNotice(n trivia.Notice) string {
	switch n {
	case trivia.NoticeSourceUnavailable:
		return MsgSourceUnavailable
	case trivia.NoticeQuestionSkipped:
		return MsgQuestionSkipped
	case trivia.NoticeRoundAbandoned:
		return MsgRoundAbandoned
	case trivia.NoticeSessionAborted:
		return MsgSessionAborted
	default:
		return MsgSomethingWrong
	}
}

// FormatFollowup renders any followup kind.
func FormatFollowup(f trivia.Followup) string {
	switch f.Kind {
	case trivia.FollowupResult:
		if f.Outcome != nil {
			return FormatResult(*f.Outcome)
		}
	case trivia.FollowupSummary:
		if f.Summary != nil {
			return FormatSummary(*f.Summary)
		}
	case trivia.FollowupNotice:
		return FormatNotice(f.Notice)
	}
	return MsgSomethingWrong
}

func FormatScore(name string, score int64) string {
	return fmt.Sprintf("🏆 %s, your score is <b>%d</b> pts.", html.EscapeString(name), score)
}

func FormatCategories(categories []services.Category) string {
	var sb strings.Builder
	sb.WriteString("📚 <b>Categories</b>\n\n")
	for _, c := range categories {
		if c.ID == c.Name {
			fmt.Fprintf(&sb, "• %s\n", html.EscapeString(c.Name))
			continue
		}
		fmt.Fprintf(&sb, "• <code>%s</code> %s\n", html.EscapeString(c.ID), html.EscapeString(c.Name))
	}
	sb.WriteString("\nStart one with /play &lt;category&gt; or tap below.")
	return sb.String()
}
