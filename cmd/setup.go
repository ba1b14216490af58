package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/bootstrap"
	"github.com/user/ocisec/pkg/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		stored, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Welcome to the ocisec Setup Wizard")
		fmt.Println("----------------------------------")
		fmt.Println("Press enter to keep the value in brackets.")

		p := prompter{in: bufio.NewScanner(os.Stdin), out: os.Stdout}

		fmt.Println("\nStep 1: Working folder")
		stored.Workdir = p.ask("Working folder", stored.Workdir)
		stored.Label = p.ask("Output label", stored.Label)

		fmt.Println("\nStep 2: OCI API key identity")
		stored.OCI.TenancyID = p.ask("Tenancy OCID", stored.OCI.TenancyID)
		stored.OCI.UserID = p.ask("User OCID", stored.OCI.UserID)
		stored.OCI.CompartmentID = p.ask("Compartment OCID (empty for the root compartment)", stored.OCI.CompartmentID)
		stored.OCI.KeyFingerprint = p.ask("API key fingerprint", stored.OCI.KeyFingerprint)
		stored.OCI.KeyFile = p.ask("Private key file", stored.OCI.KeyFile)
		stored.OCI.Region = p.ask("Region(s), comma separated", stored.OCI.Region)

		creds, err := stored.Credentials().WithDefaults()
		if err != nil {
			return err
		}
		if err := creds.Validate(); err != nil {
			fmt.Printf("\nWarning: the identity has problems:\n%v\n", err)
			if !p.confirm("Save anyway?") {
				return fmt.Errorf("setup aborted")
			}
		}

		fmt.Println("\nStep 3: Optional Gemini summaries")
		if key := p.ask("Gemini API key (empty to skip)", ""); key != "" {
			stored.Advisor.APIKey = key
		}

		fmt.Println("\nStep 4: Saving Configuration...")
		if err := config.SaveConfig(cfgFile, stored); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		if p.confirm("Write the credential artifacts now?") {
			cfg, err = loadConfig()
			if err != nil {
				return err
			}
			rep, err := bootstrap.Init(initOptions())
			if err != nil {
				return err
			}
			for _, f := range rep.Written {
				fmt.Printf("  wrote %s\n", f)
			}
		}

		fmt.Println("----------------------------------")
		fmt.Println("Setup Complete!")
		fmt.Println("Next: 'ocisec install', then 'ocisec doctor' and 'ocisec scan'.")
		return nil
	},
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p prompter) ask(label, current string) string {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s] > ", label, current)
	} else {
		fmt.Fprintf(p.out, "%s > ", label)
	}
	if !p.in.Scan() {
		return current
	}
	if v := strings.TrimSpace(p.in.Text()); v != "" {
		return v
	}
	return current
}

func (p prompter) confirm(label string) bool {
	answer := strings.ToLower(p.ask(label+" (y/N)", ""))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
