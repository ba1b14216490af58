// Package credentials models an OCI API-key identity and renders it into the
// files the external scanner and query engine read at startup.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultRegion = "us-ashburn-1"

// Credentials identifies an OCI user by API signing key.
type Credentials struct {
	TenancyID      string `yaml:"tenancy_id" mapstructure:"tenancy_id"`
	CompartmentID  string `yaml:"compartment_id" mapstructure:"compartment_id"`
	UserID         string `yaml:"user_id" mapstructure:"user_id"`
	KeyFingerprint string `yaml:"fingerprint" mapstructure:"fingerprint"`
	Region         string `yaml:"region" mapstructure:"region"`
	KeyFile        string `yaml:"key_file" mapstructure:"key_file"`
	// KeyValue holds the PEM text. It is never saved to the tool config.
	KeyValue string `yaml:"-" mapstructure:"private_key"`
}

// WithDefaults fills the region and loads the key from KeyFile when only the
// path is known.
func (c Credentials) WithDefaults() (Credentials, error) {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.KeyValue == "" && c.KeyFile != "" {
		data, err := os.ReadFile(ExpandHome(c.KeyFile))
		if err != nil {
			return c, fmt.Errorf("read key file: %w", err)
		}
		c.KeyValue = string(data)
	}
	return c, nil
}

// ScannerCompartment is the compartment the scanner is pointed at. The
// tenancy OCID addresses the root compartment when none is configured.
func (c Credentials) ScannerCompartment() string {
	if c.CompartmentID != "" {
		return c.CompartmentID
	}
	return c.TenancyID
}

// Missing returns the names of required fields that are empty.
func (c Credentials) Missing(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		var v string
		switch f {
		case "tenancy_id":
			v = c.TenancyID
		case "compartment_id":
			v = c.CompartmentID
		case "user_id":
			v = c.UserID
		case "fingerprint":
			v = c.KeyFingerprint
		case "region":
			v = c.Region
		case "key_file":
			v = c.KeyFile
		case "private_key":
			v = c.KeyValue
		default:
			continue
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// AbsPath expands "~/" and makes path absolute so it survives being handed
// to a child process running in another directory.
func AbsPath(path string) string {
	if path == "" {
		return path
	}
	path = ExpandHome(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func writePrivate(path string, data []byte) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
