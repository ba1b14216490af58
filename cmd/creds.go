package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/credentials"
)

var credsOut string

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Write a single credential artifact",
}

var credsCloudsploitCmd = &cobra.Command{
	Use:   "cloudsploit",
	Short: "Write the scanner JSON credential file and config.js",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.Credentials().WithDefaults()
		if err != nil {
			return err
		}
		if missing := c.Missing("tenancy_id", "user_id", "fingerprint", "private_key"); len(missing) > 0 {
			return fmt.Errorf("missing required fields: %v", missing)
		}
		l := layout()
		path := outPath(l.ScannerCredentials())
		if err := credentials.WriteScannerFile(path, c); err != nil {
			return err
		}
		if err := credentials.WriteScannerConfig(l.ScannerConfig(), path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\nwrote %s\n", path, l.ScannerConfig())
		return nil
	},
}

var credsProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Write the OCI INI profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.Credentials().WithDefaults()
		if err != nil {
			return err
		}
		if missing := c.Missing("tenancy_id", "user_id", "fingerprint", "key_file"); len(missing) > 0 {
			return fmt.Errorf("missing required fields: %v (the profile references the key by path)", missing)
		}
		path := outPath(layout().Profile())
		if err := credentials.WriteProfile(path, cfg.Profile.Name, c); err != nil {
			return err
		}
		fmt.Printf("wrote %s [%s]\n", path, cfg.Profile.Name)
		return nil
	},
}

var credsConnectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Write the Steampipe connection spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn := connection()
		conn.ConfigPath = layout().Profile()
		conn.ConfigProfile = cfg.Profile.Name
		if err := conn.Validate(); err != nil {
			return err
		}
		path := outPath(layout().Connection(conn.Name))
		if err := credentials.WriteConnection(path, conn); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func outPath(def string) string {
	if credsOut != "" {
		return credentials.ExpandHome(credsOut)
	}
	return def
}

func init() {
	credsCmd.PersistentFlags().StringVarP(&credsOut, "out", "o", "", "write to this path instead of the working folder")
	credsCmd.AddCommand(credsCloudsploitCmd)
	credsCmd.AddCommand(credsProfileCmd)
	credsCmd.AddCommand(credsConnectionCmd)
	rootCmd.AddCommand(credsCmd)
}
