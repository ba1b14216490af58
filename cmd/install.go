package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/bootstrap"
	"github.com/user/ocisec/pkg/logging"
	"github.com/user/ocisec/pkg/result"
	"github.com/user/ocisec/pkg/wrappers"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Clone the scanner, install its dependencies and the Steampipe OCI plugin",
	RunE: func(cmd *cobra.Command, args []string) error {
		l := layout()
		if err := os.MkdirAll(l.Root, 0700); err != nil {
			return err
		}
		steps := bootstrap.InstallPlan(bootstrap.InstallOptions{
			Layout:    l,
			Repo:      cfg.Cloudsploit.Repo,
			Steampipe: cfg.Steampipe.Binary,
		})
		logging.Infof("Installing into %s", l.Root)
		err := bootstrap.Install(cmd.Context(), wrappers.ExecRunner{Stream: os.Stderr}, steps, installDryRun, os.Stdout)
		if err != nil {
			return printResponse(result.FromError("install", err))
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "print the commands without running them")
	rootCmd.AddCommand(installCmd)
}
