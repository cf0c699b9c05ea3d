package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional quiz author for %s.

Rules:
- Write one multiple-choice question with exactly four options keyed A, B, C and D, exactly one of them correct.
- Match the stage and difficulty range given. Difficulty is an integer from 1 to 5.
- Distractors should reflect common misconceptions, not random values.
- The question must be self-contained and unambiguous.
- If recent mistakes are listed, target the same misconception from a new angle instead of repeating the question.`

const topicsSystemPrompt = `You are a curriculum designer. List the core topics of a subject that a learner should practice, as short topic names.`

func buildUserMessage(input GenerateInput, cfg Config) string {
	band := BandFor(input.Score)

	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.Subject)
	if input.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	} else {
		b.WriteString("Topic: any topic of the subject\n")
	}
	fmt.Fprintf(&b, "Current score: %d/1000\n", input.Score)
	fmt.Fprintf(&b, "Stage: %s\n", band.Stage)
	fmt.Fprintf(&b, "Difficulty range: %d-%d\n", band.MinDifficulty, band.MaxDifficulty)

	if input.Topic != "" {
		b.WriteString("\nRecent mistakes on this topic:\n")
		b.WriteString(numbered(input.RecentErrors, cfg.MaxRecentErrors))
	} else {
		b.WriteString("\nWeak categories to focus on:\n")
		b.WriteString(numbered(input.WeakCategories, 0))
	}

	return b.String()
}

func buildTopicsMessage(subject string) string {
	return fmt.Sprintf("Subject: %s\nList exactly 5 core topics.", subject)
}

// numbered formats items as a numbered list, keeping the first max entries.
// Returns "None" for an empty list.
func numbered(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[:max]
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return strings.TrimRight(b.String(), "\n")
}
