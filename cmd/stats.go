package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/store"
	"github.com/abhisek/quiztutor/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats [username]",
	Short: "Show learner statistics",
	Long:  "Without a username, lists every learner ranked by average score. With a username, shows that learner's topic scores and mistakes.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 0 {
			rows, err := s.Users().Overview(ctx)
			if err != nil {
				return fmt.Errorf("query overview: %w", err)
			}
			printOverview(rows)
			return nil
		}

		u, err := s.Users().UserByUsername(ctx, args[0])
		if err != nil {
			return err
		}
		avg, err := s.Scores().GetAverageScore(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("query average: %w", err)
		}
		scores, err := s.Scores().GetAllScores(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("query scores: %w", err)
		}
		counts, err := s.WrongAnswers().CountByCategory(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("query mistakes: %w", err)
		}
		printLearner(u, avg, scores, counts)
		return nil
	},
}

func printOverview(rows []store.UserOverview) {
	if len(rows) == 0 {
		fmt.Println("No learners registered yet.")
		return
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			fmt.Sprint(r.ID),
			truncate(r.Username, 20),
			theme.ScoreBar(r.AvgScore, store.MaxScore, 20),
			fmt.Sprint(r.WrongCount),
		})
	}
	fmt.Println(theme.Title.Render("Learners"))
	fmt.Println(theme.Table([]string{"ID", "Username", "Average", "Wrong"}, table, 0, 3))
}

func printLearner(u *store.User, avg int, scores, counts map[string]int) {
	fmt.Println(theme.Title.Render(u.Username) + "  " + theme.Hint.Render(u.Role))
	fmt.Printf("Average  %s\n", theme.ScoreBar(avg, store.MaxScore, 30))
	fmt.Println()

	fmt.Println(theme.Heading.Render("Topic scores"))
	fmt.Println(theme.Rule(64))
	if len(scores) == 0 {
		fmt.Println(theme.Hint.Render("No topics answered yet."))
	}
	for _, topic := range slices.Sorted(maps.Keys(scores)) {
		fmt.Printf("%-28s  %s\n", truncate(topic, 28), theme.ScoreBar(scores[topic], store.MaxScore, 24))
	}

	fmt.Println()
	fmt.Println(theme.Heading.Render("Mistakes by category"))
	fmt.Println(theme.Rule(64))
	if len(counts) == 0 {
		fmt.Println(theme.Hint.Render("No mistakes recorded."))
	}
	for _, cat := range slices.Sorted(maps.Keys(counts)) {
		fmt.Printf("%-28s  %s\n", truncate(cat, 28), theme.Incorrect.Render(fmt.Sprintf("%d", counts[cat])))
	}
}
