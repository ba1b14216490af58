package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/result"
	"github.com/user/ocisec/pkg/wrappers"
)

var (
	inventoryRegions     string
	inventoryCompartment string
	inventoryTables      []string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Collect an OCI asset inventory through Steampipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		regions := cfg.Regions()
		if inventoryRegions != "" {
			regions = wrappers.ParseRegions(inventoryRegions)
		}
		compartment := cfg.OCI.CompartmentID
		if cmd.Flags().Changed("compartment") {
			compartment = inventoryCompartment
		}

		w := &wrappers.SteampipeWrapper{
			Runner:             wrappers.ExecRunner{},
			Binary:             cfg.Steampipe.Binary,
			Label:              cfg.Label,
			OutputDir:          cfg.OutputDir,
			Regions:            regions,
			CompartmentID:      compartment,
			Selections:         cfg.Selections(),
			MaxInitialFailures: cfg.Steampipe.MaxInitialFailures,
		}
		if len(inventoryTables) > 0 {
			w.Global, w.Regional = splitTables(inventoryTables)
		}

		resp, err := w.Run(cmd.Context())
		if err != nil {
			return printResponse(result.FromError(wrappers.InventoryModule, err))
		}
		return printResponse(resp)
	},
}

// splitTables sorts a user table list into the global and regional sets.
func splitTables(tables []string) (global, regional []string) {
	global, regional = []string{}, []string{}
	isGlobal := make(map[string]bool, len(wrappers.GlobalTables))
	for _, t := range wrappers.GlobalTables {
		isGlobal[t] = true
	}
	for _, t := range tables {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if isGlobal[t] {
			global = append(global, t)
		} else {
			regional = append(regional, t)
		}
	}
	return global, regional
}

func init() {
	inventoryCmd.Flags().StringVar(&inventoryRegions, "regions", "", "comma separated regions (default from config)")
	inventoryCmd.Flags().StringVar(&inventoryCompartment, "compartment", "", "restrict regional tables to this compartment OCID")
	inventoryCmd.Flags().StringSliceVar(&inventoryTables, "tables", nil, "query only these tables")
	rootCmd.AddCommand(inventoryCmd)
}
