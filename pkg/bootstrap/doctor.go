package bootstrap

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/user/ocisec/pkg/credentials"
)

// Check is one doctor probe.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Doctor inspects the local installation without touching OCI.
type Doctor struct {
	Layout         Layout
	ConnectionName string
	Binaries       []string
	// LinkDir is the query engine's config folder; skipped when empty.
	LinkDir  string
	LookPath func(string) (string, error)
}

var DefaultBinaries = []string{"node", "npm", "git", "steampipe"}

// Run performs every check. The returned error aggregates the failures.
func (d Doctor) Run() ([]Check, error) {
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	bins := d.Binaries
	if bins == nil {
		bins = DefaultBinaries
	}

	var checks []Check
	var merr *multierror.Error
	add := func(name string, err error, detail string) {
		c := Check{Name: name, OK: err == nil, Detail: detail}
		if err != nil {
			c.Detail = err.Error()
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", name, err))
		}
		checks = append(checks, c)
	}

	for _, b := range bins {
		path, err := lookPath(b)
		add("binary "+b, err, path)
	}

	l := d.Layout
	for _, f := range []struct{ name, path string }{
		{"scanner checkout", l.ScannerIndex()},
		{"scanner dependencies", l.ScannerModules()},
		{"scanner credentials", l.ScannerCredentials()},
		{"scanner config", l.ScannerConfig()},
		{"oci profile", l.Profile()},
		{"connection spec", l.Connection(d.ConnectionName)},
		{"output folder", l.OutputDir()},
	} {
		add(f.name, present(f.path), f.path)
	}

	if d.LinkDir != "" {
		conn := l.Connection(d.ConnectionName)
		linked := filepath.Join(credentials.ExpandHome(d.LinkDir), filepath.Base(conn))
		add("connection linked", present(linked), linked)
	}

	return checks, merr.ErrorOrNil()
}

func present(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s is missing", path)
		}
		return err
	}
	return nil
}

// Validate reads every artifact back and checks field presence and shape.
// Nothing is sent to OCI.
func Validate(l Layout, profile, connectionName string) error {
	if profile == "" {
		profile = credentials.DefaultProfile
	}
	var merr *multierror.Error

	scanner, err := credentials.ReadScannerFile(l.ScannerCredentials())
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("scanner credentials: %w", err))
	} else {
		if scanner.CompartmentID == "" {
			merr = multierror.Append(merr, fmt.Errorf("scanner credentials: compartmentId is required"))
		}
		if scanner.KeyValue == "" {
			merr = multierror.Append(merr, fmt.Errorf("scanner credentials: keyValue is required"))
		}
		if err := scanner.Validate(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("scanner credentials: %w", err))
		}
	}

	if err := present(l.ScannerConfig()); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("scanner config: %w", err))
	}

	prof, err := credentials.ReadProfile(l.Profile(), profile)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("oci profile: %w", err))
	} else {
		if prof.KeyFile == "" {
			merr = multierror.Append(merr, fmt.Errorf("oci profile: key_file is required"))
		} else if prof, err = prof.WithDefaults(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("oci profile: %w", err))
		}
		if err := prof.Validate(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("oci profile: %w", err))
		}
	}

	conns, err := credentials.ReadConnections(l.Connection(connectionName))
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("connection spec: %w", err))
	} else if len(conns) == 0 {
		merr = multierror.Append(merr, fmt.Errorf("connection spec: no connection block"))
	}
	for _, c := range conns {
		if err := c.Validate(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("connection spec: %w", err))
			continue
		}
		if c.ConfigPath != "" {
			if _, err := credentials.ReadProfile(c.ConfigPath, c.ConfigProfile); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("connection %q: %w", c.Name, err))
			}
		}
	}

	return merr.ErrorOrNil()
}
