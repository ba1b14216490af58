package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/bootstrap"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the external tools and working folder are in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := bootstrap.Doctor{
			Layout:         layout(),
			ConnectionName: cfg.Steampipe.Connection,
			Binaries:       []string{cfg.Cloudsploit.Node, "npm", "git", cfg.Steampipe.Binary},
			LinkDir:        cfg.Steampipe.ConfigDir,
		}
		checks, err := d.Run()
		for _, c := range checks {
			mark := "ok  "
			if !c.OK {
				mark = "FAIL"
			}
			fmt.Printf("[%s] %-22s %s\n", mark, c.Name, c.Detail)
		}
		if err != nil {
			return fmt.Errorf("doctor found problems, see above")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
