package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/ui/theme"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all learners, scores and mistakes",
	Long:  "Deletes every account, topic score and wrong answer. LLM request events are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print(theme.Warn.Render("This permanently deletes all learner data.") + " Type 'yes' to continue: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		counts, err := s.Wipe(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d users, %d topic scores, %d wrong answers.\n",
			counts.Users, counts.TopicScores, counts.WrongAnswers)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
