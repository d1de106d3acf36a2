package cli

import (
	"fmt"

	"trivia-quiz/internal/app"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd lists the subjects the configured bank offers.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List quiz subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg, log, roleTerminal)
			if err != nil {
				return err
			}
			defer d.Close()

			names, err := d.bank.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// NewBestCmd prints the stored best score for one subject.
func NewBestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "best <category>",
		Short: "Show the best score for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg, log, roleTerminal)
			if err != nil {
				return err
			}
			defer d.Close()

			service := app.NewQuizService(d.bank, d.scores, d.sessions)
			score, ok, err := service.HighScore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Best for %s: %s\n", args[0], bestLabel(score, ok))
			return nil
		},
	}
}
