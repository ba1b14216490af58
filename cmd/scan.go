package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/ocisec/pkg/engine"
	"github.com/user/ocisec/pkg/logging"
	"github.com/user/ocisec/pkg/result"
	"github.com/user/ocisec/pkg/wrappers"
	"go.uber.org/zap"
)

var (
	scanCompliance []string
	scanSnapshot   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the CloudSploit scanner against the configured tenancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		compliance := cfg.Cloudsploit.Compliance
		if cmd.Flags().Changed("compliance") {
			compliance = scanCompliance
		}

		graph := engine.NewUnifiedGraph()
		w := &wrappers.CloudsploitWrapper{
			Runner:     wrappers.ExecRunner{Stream: scannerStream()},
			Graph:      graph,
			Node:       cfg.Cloudsploit.Node,
			Dir:        cfg.Cloudsploit.Dir,
			ConfigPath: layout().ScannerConfig(),
			OutputDir:  cfg.OutputDir,
			Label:      cfg.Label,
			Compliance: compliance,
		}

		resp, err := w.Run(cmd.Context(), cfg.Credentials())
		if err != nil {
			return printResponse(result.FromError(wrappers.CloudsploitModule, err))
		}

		if scanSnapshot != "" {
			if err := graph.SaveSnapshot(scanSnapshot); err != nil {
				zap.L().Warn("could not save findings snapshot", zap.Error(err))
			} else {
				resp.AdditionalInfo = fmt.Sprintf("findings snapshot written to %s", scanSnapshot)
			}
		}
		counts := graph.StatusCounts()
		zap.L().Info("Scan finished",
			zap.Int("fail", counts[engine.StatusFail]),
			zap.Int("warn", counts[engine.StatusWarn]),
			zap.Int("unknown", counts[engine.StatusUnknown]),
			zap.Int("ok", counts[engine.StatusOK]),
		)
		return printResponse(resp)
	},
}

// scannerStream mirrors the scanner's stderr only in debug mode.
func scannerStream() io.Writer {
	if logging.DebugEnabled {
		return os.Stderr
	}
	return nil
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanCompliance, "compliance", nil, "compliance frameworks (hipaa, pci, cis, cis1, cis2)")
	scanCmd.Flags().StringVar(&scanSnapshot, "snapshot", "", "also save the normalized findings to this file")
	rootCmd.AddCommand(scanCmd)
}
