package cli

import (
	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Score reporting commands",
	}

	cmd.AddCommand(newScoresSubmitCmd())
	cmd.AddCommand(newScoresMeCmd())

	return cmd
}

func newScoresSubmitCmd() *cobra.Command {
	var req ScoreComponents

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Report current progress",
		Long: `Report the current value of every progress component.

The server keeps the highest value ever reported for each component, so
submitting a lower value than before leaves that component unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult

			if err := client.Put("/api/scores", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&req.TotalMoneyEarned, "money", 0, "Total money earned")
	cmd.Flags().Float64Var(&req.Reputation, "reputation", 0, "Reputation")
	cmd.Flags().Int32Var(&req.SkillLevelsSum, "skills", 0, "Sum of skill levels")
	cmd.Flags().Int32Var(&req.ConsultantsCount, "consultants", 0, "Number of consultants")
	cmd.Flags().Int32Var(&req.AIToolTiersSum, "ai-tiers", 0, "Sum of AI tool tiers")
	cmd.Flags().Int32Var(&req.ManualTasksCompleted, "manual-tasks", 0, "Manual tasks completed")

	return cmd
}

func newScoresMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current player's recorded components",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Scores

			if err := client.Get("/api/scores/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
