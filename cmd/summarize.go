package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/advisor"
)

var summarizeMax int

var summarizeCmd = &cobra.Command{
	Use:   "summarize <scan-output|snapshot>",
	Short: "Ask the configured model for a narrative summary of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		fmt.Printf("Connecting to %s (Model: %s)...\n", cfg.Advisor.Provider, cfg.Advisor.Model)
		provider, err := advisor.NewProvider(ctx, cfg.Advisor.Provider, cfg.Advisor.APIKey, cfg.Advisor.Model)
		if err != nil {
			return fmt.Errorf("creating provider: %w", err)
		}
		defer provider.Close()

		summary, err := provider.Summarize(ctx, advisor.BuildPrompt(g.Risks(), summarizeMax))
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(summary)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().IntVar(&summarizeMax, "max-findings", advisor.DefaultMaxFindings, "maximum findings sent to the model")
	rootCmd.AddCommand(summarizeCmd)
}
