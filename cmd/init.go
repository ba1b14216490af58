package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/bootstrap"
	"github.com/user/ocisec/pkg/credentials"
	"github.com/user/ocisec/pkg/logging"
)

var (
	initForce         bool
	initLinkSteampipe bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the working folder and write every credential artifact",
	Long: `Creates the working folder layout (cloudsploit/, configs/, output/) and writes
the scanner JSON credential file and config.js, the OCI INI profile, the private
key and the Steampipe connection spec from the configured OCI identity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOptions()
		logging.Debugf("init: workdir=%s profile=%s link=%q force=%v", opts.Layout.Root, opts.ProfileName, opts.LinkDir, opts.Force)
		rep, err := bootstrap.Init(opts)
		if err != nil {
			return err
		}
		fmt.Printf("Working folder: %s\n", cfg.Workdir)
		for _, f := range rep.Written {
			fmt.Printf("  wrote %s\n", f)
		}
		for _, f := range rep.Skipped {
			fmt.Printf("  kept  %s (use --force to overwrite)\n", f)
		}
		if !initLinkSteampipe {
			fmt.Printf("Copy %s into %s or rerun with --link-steampipe.\n", layout().Connection(cfg.Steampipe.Connection), cfg.Steampipe.ConfigDir)
		}
		return nil
	},
}

func initOptions() bootstrap.Options {
	opts := bootstrap.Options{
		Layout:      layout(),
		Credentials: cfg.Credentials(),
		ProfileName: cfg.Profile.Name,
		Connection:  connection(),
		Force:       initForce,
	}
	if initLinkSteampipe {
		opts.LinkDir = cfg.Steampipe.ConfigDir
	}
	return opts
}

// connection is the configured query-engine connection; Init fills the
// profile reference.
func connection() credentials.Connection {
	return credentials.Connection{
		Name:                  cfg.Steampipe.Connection,
		Plugin:                credentials.OCIPlugin,
		Regions:               cfg.Regions(),
		MaxErrorRetryAttempts: cfg.Steampipe.MaxErrorRetryAttempts,
		MinErrorRetryDelay:    cfg.Steampipe.MinErrorRetryDelay,
	}
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing artifacts")
	initCmd.Flags().BoolVar(&initLinkSteampipe, "link-steampipe", false, "also copy the connection spec into the Steampipe config folder")
	rootCmd.AddCommand(initCmd)
}
