package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/bootstrap"
)

var validateConfigOnly bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check field presence and shape of the credential artifacts",
	Long: `Reads back the scanner credential file, the OCI profile and the connection
spec and checks that required fields are present and well formed. This is a
local check only; no request is sent to OCI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfigOnly {
			c, err := cfg.Credentials().WithDefaults()
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("configured credentials: %w", err)
			}
			fmt.Println("Configured credentials look valid.")
			return nil
		}

		if err := bootstrap.Validate(layout(), cfg.Profile.Name, cfg.Steampipe.Connection); err != nil {
			return err
		}
		fmt.Println("All artifacts look valid.")
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateConfigOnly, "config-only", false, "validate the credentials in the config instead of the written files")
	rootCmd.AddCommand(validateCmd)
}
