package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/user/ocisec/pkg/result"
	"github.com/user/ocisec/pkg/wrappers"
	"go.uber.org/zap"
)

// Step is one installation command.
type Step struct {
	Description string
	Command     wrappers.Command
	// Code classifies a failure of this step.
	Code result.StatusCode
	// Skip explains why the step is not needed; empty means run it.
	Skip string
}

// InstallOptions names the tools and sources used by the install plan.
type InstallOptions struct {
	Layout    Layout
	Repo      string
	Git       string
	Npm       string
	Steampipe string
	Plugin    string
}

// InstallPlan returns the steps that fetch the scanner, install its node
// dependencies and install the query engine's OCI plugin.
func InstallPlan(opts InstallOptions) []Step {
	git := orDefault(opts.Git, "git")
	npm := orDefault(opts.Npm, "npm")
	sp := orDefault(opts.Steampipe, "steampipe")
	plugin := orDefault(opts.Plugin, "oci")
	l := opts.Layout

	clone := Step{
		Description: "clone scanner into " + l.ScannerDir(),
		Command:     wrappers.Command{Name: git, Args: []string{"clone", opts.Repo, l.ScannerDir()}, Dir: l.Root},
		Code:        result.CloneError,
	}
	if present(l.ScannerIndex()) == nil {
		clone.Skip = "checkout already present"
	}

	deps := Step{
		Description: "install scanner node dependencies",
		Command:     wrappers.Command{Name: npm, Args: []string{"install"}, Dir: l.ScannerDir()},
		Code:        result.InstallDependency,
	}
	if present(l.ScannerModules()) == nil {
		deps.Skip = "node_modules already present"
	}

	return []Step{
		clone,
		deps,
		{
			Description: "install query engine plugin " + plugin,
			Command:     wrappers.Command{Name: sp, Args: []string{"plugin", "install", plugin}},
			Code:        result.PackageNotFound,
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// String renders the step as a shell-like command line.
func (s Step) String() string {
	line := s.Command.Name + " " + strings.Join(s.Command.Args, " ")
	if s.Command.Dir != "" {
		line = "(cd " + s.Command.Dir + " && " + line + ")"
	}
	return line
}

// Install runs the plan. With dryRun the commands are only printed.
func Install(ctx context.Context, runner wrappers.Runner, steps []Step, dryRun bool, out io.Writer) error {
	for _, s := range steps {
		if s.Skip != "" {
			fmt.Fprintf(out, "skip  %s (%s)\n", s.Description, s.Skip)
			continue
		}
		if dryRun {
			fmt.Fprintf(out, "plan  %s\n      %s\n", s.Description, s)
			continue
		}

		fmt.Fprintf(out, "run   %s\n", s.Description)
		zap.L().Debug("install step", zap.String("command", s.String()))
		res, err := runner.Run(ctx, s.Command)
		if err != nil {
			return result.Errorf(s.Code, "%s: %v", s.Description, err)
		}
		if res.ExitCode != 0 {
			e := result.Errorf(s.Code, "%s failed with exit code %d", s.Description, res.ExitCode)
			e.ExitCode = res.ExitCode
			e.Stdout = res.Stdout
			e.Stderr = res.Stderr
			return e
		}
	}
	return nil
}
