package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Inspect or force topic scores",
}

var scoreSetCmd = &cobra.Command{
	Use:   "set <username> <topic> <score>",
	Short: "Force a learner's score on a topic",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, topic := args[0], args[1]
		score, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[2], err)
		}
		if score < store.MinScore || score > store.MaxScore {
			fmt.Printf("Score %d is outside %d-%d and will be clamped.\n", score, store.MinScore, store.MaxScore)
		}

		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		u, err := s.Users().UserByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("%s: %w", username, err)
		}
		old, err := s.Scores().GetScore(ctx, u.ID, topic)
		if err != nil {
			return err
		}
		if err := s.Scores().SetScore(ctx, u.ID, topic, score); err != nil {
			return err
		}
		now, err := s.Scores().GetScore(ctx, u.ID, topic)
		if err != nil {
			return err
		}

		fmt.Printf("%s / %s: %d -> %d\n", username, topic, old, now)
		return nil
	},
}

func init() {
	scoreCmd.AddCommand(scoreSetCmd)
}
