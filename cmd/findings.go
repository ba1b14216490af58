package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/engine"
	"github.com/user/ocisec/pkg/wrappers"
	"go.uber.org/zap"
)

var reportJSON bool

// loadGraph reads either a findings snapshot or a raw scanner output file.
func loadGraph(path string) (*engine.UnifiedGraph, error) {
	g := engine.NewUnifiedGraph()
	snapErr := g.LoadSnapshot(path)
	if snapErr == nil {
		return g, nil
	}
	zap.L().Debug("not a findings snapshot, trying scanner output", zap.String("path", path), zap.Error(snapErr))

	findings, err := wrappers.LoadScanOutput(path)
	if err != nil {
		return nil, fmt.Errorf("%s is neither a findings snapshot nor scanner output: %w", path, err)
	}
	g.AddFindings(findings)
	return g, nil
}

var reportCmd = &cobra.Command{
	Use:   "report <scan-output|snapshot>",
	Short: "Show the open findings of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		if reportJSON {
			data, err := json.MarshalIndent(g.Risks(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Print(g.GetReport())
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and compare findings snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <scan-output> <snapshot>",
	Short: "Normalize a scanner output file into a findings snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		if err := g.SaveSnapshot(args[1]); err != nil {
			return err
		}
		fmt.Printf("Snapshot with %d findings written to %s\n", g.Len(), args[1])
		return nil
	},
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <baseline> <current>",
	Short: "Compare open findings against a baseline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseline, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		current, err := loadGraph(args[1])
		if err != nil {
			return err
		}

		diff := current.CompareSnapshot(baseline)
		fmt.Printf("New: %d  Fixed: %d  Unchanged: %d\n", len(diff.New), len(diff.Fixed), len(diff.Unchanged))
		printFindings("New", diff.New)
		printFindings("Fixed", diff.Fixed)
		return nil
	},
}

func printFindings(title string, findings []engine.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, f := range findings {
		fmt.Printf("  [%d/10] %s %s %s: %s\n", f.Severity, f.Status, f.Category, f.Asset, f.Evidence)
	}
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print open findings as JSON")
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(snapshotCmd)
}
