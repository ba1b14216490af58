package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/ocisec/pkg/bootstrap"
	"github.com/user/ocisec/pkg/config"
	"github.com/user/ocisec/pkg/logging"
	"github.com/user/ocisec/pkg/result"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "ocisec",
	Short: "OCI security posture bootstrap and scan tool",
	Long: `ocisec prepares a working folder for the CloudSploit scanner and the
Steampipe query engine, writes their OCI credential files, and runs both
tools against an Oracle Cloud tenancy.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var (
	DebugMode bool
	cfgFile   string
	cfg       *config.Config
	v         *viper.Viper
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	cobra.CheckErr(err)
}

func init() {
	// assigned here because loadConfig refers to rootCmd
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Init(DebugMode)
		var err error
		cfg, err = loadConfig()
		return err
	}
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ocisec/config.yaml)")
	rootCmd.PersistentFlags().String("workdir", "", "working folder for the scanner checkout, configs and output")
	rootCmd.PersistentFlags().String("label", "", "label prefixed to output file names")
}

// bindings maps config keys to persistent flags. A flag set on the command
// line wins over file and environment values.
var bindings = map[string]string{
	"workdir": "workdir",
	"label":   "label",
}

func loadConfig() (*config.Config, error) {
	var err error
	v, err = config.NewViper(cfgFile)
	if err != nil {
		return nil, err
	}
	for key, flag := range bindings {
		f := rootCmd.PersistentFlags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}
	c, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("configuration loaded", zap.String("file", v.ConfigFileUsed()), zap.String("workdir", c.Workdir))
	return c, nil
}

func layout() bootstrap.Layout {
	return bootstrap.NewLayout(cfg.Workdir).WithProfile(cfg.Profile.Path)
}

// printResponse writes the response document to stdout and turns error
// status codes into a command error.
func printResponse(resp result.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	if resp.StatusCode != int(result.Success) && resp.StatusCode != int(result.NoData) {
		return fmt.Errorf("%s failed with status %s", resp.Module, result.StatusCode(resp.StatusCode))
	}
	return nil
}
