package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/advisor"
	"github.com/user/ocisec/pkg/config"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (OCI identity, tools, advisor)",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Advisor.APIKey != "" {
			shown.Advisor.APIKey = "********"
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			fmt.Printf("# %s\n", used)
		}
		fmt.Print(string(data))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value",
	Long:  "Set one configuration value. Keys:\n  " + strings.Join(config.Keys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stored, err := config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		updated, err := config.Set(stored, strings.ToLower(args[0]), args[1])
		if err != nil {
			return err
		}
		if err := config.SaveConfig(cfgFile, updated); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("%s updated\n", args[0])
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models from the configured advisor provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Printf("Fetching models for %s...\n", cfg.Advisor.Provider)
		p, err := advisor.NewProvider(ctx, cfg.Advisor.Provider, cfg.Advisor.APIKey, "")
		if err != nil {
			return err
		}
		defer p.Close()

		models, err := p.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("fetching models: %w", err)
		}

		fmt.Printf("\nAvailable Models (%s):\n", cfg.Advisor.Provider)
		for _, m := range models {
			mark := " "
			if m == cfg.Advisor.Model {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, m)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(setCmd)
	configCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(configCmd)
}
