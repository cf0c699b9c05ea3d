package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <username>",
	Short: "Grant the teacher role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], store.RoleTeacher)
	},
}

var userDemoteCmd = &cobra.Command{
	Use:   "demote <username>",
	Short: "Revert to the student role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], store.RoleStudent)
	},
}

func setRole(cmd *cobra.Command, username, role string) error {
	ctx := cmd.Context()
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Users().SetRole(ctx, username, role); err != nil {
		return fmt.Errorf("%s: %w", username, err)
	}
	fmt.Printf("%s is now a %s.\n", username, role)
	return nil
}

func init() {
	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userDemoteCmd)
}
