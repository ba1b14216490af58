package credentials

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	DefaultConnectionName = "oci"
	OCIPlugin             = "oci"
)

// Connection is one query-engine connection block. The retry fields are
// passed through to the engine's plugin and are omitted when nil.
type Connection struct {
	Name                  string   `hcl:"name,label"`
	Plugin                string   `hcl:"plugin"`
	ConfigPath            string   `hcl:"config_path,optional"`
	ConfigProfile         string   `hcl:"config_profile,optional"`
	Regions               []string `hcl:"regions,optional"`
	MaxErrorRetryAttempts *int     `hcl:"max_error_retry_attempts,optional"`
	MinErrorRetryDelay    *int     `hcl:"min_error_retry_delay,optional"`
	Remain                hcl.Body `hcl:",remain"`
}

type connectionFile struct {
	Connections []Connection `hcl:"connection,block"`
	Remain      hcl.Body     `hcl:",remain"`
}

// RenderConnection produces the HCL text of a connection spec file.
func RenderConnection(c Connection) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body().AppendNewBlock("connection", []string{c.Name}).Body()

	body.SetAttributeValue("plugin", cty.StringVal(c.Plugin))
	if c.ConfigPath != "" {
		body.SetAttributeValue("config_path", cty.StringVal(c.ConfigPath))
	}
	if c.ConfigProfile != "" {
		body.SetAttributeValue("config_profile", cty.StringVal(c.ConfigProfile))
	}
	if len(c.Regions) > 0 {
		vals := make([]cty.Value, 0, len(c.Regions))
		for _, r := range c.Regions {
			vals = append(vals, cty.StringVal(r))
		}
		body.SetAttributeValue("regions", cty.ListVal(vals))
	}
	if c.MaxErrorRetryAttempts != nil {
		body.SetAttributeValue("max_error_retry_attempts", cty.NumberIntVal(int64(*c.MaxErrorRetryAttempts)))
	}
	if c.MinErrorRetryDelay != nil {
		body.SetAttributeValue("min_error_retry_delay", cty.NumberIntVal(int64(*c.MinErrorRetryDelay)))
	}
	return f.Bytes()
}

// WriteConnection writes a connection spec file.
func WriteConnection(path string, c Connection) error {
	return writePrivate(path, RenderConnection(c))
}

// ReadConnections parses every connection block in a spec file.
func ReadConnections(path string) ([]Connection, error) {
	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, err
	}
	return ParseConnections(data, path)
}

func ParseConnections(data []byte, filename string) ([]Connection, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}
	var cf connectionFile
	diags = gohcl.DecodeBody(file.Body, nil, &cf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}
	return cf.Connections, nil
}

// Validate checks that the block names the OCI plugin and a profile
// reference, and that the retry tuning values are sane.
func (c Connection) Validate() error {
	var merr *multierror.Error
	if c.Name == "" {
		merr = multierror.Append(merr, fmt.Errorf("connection name is required"))
	}
	if c.Plugin != OCIPlugin {
		merr = multierror.Append(merr, fmt.Errorf("connection %q: plugin is %q, want %q", c.Name, c.Plugin, OCIPlugin))
	}
	if c.ConfigProfile == "" {
		merr = multierror.Append(merr, fmt.Errorf("connection %q: config_profile is required", c.Name))
	}
	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		merr = multierror.Append(merr, fmt.Errorf("connection %q: max_error_retry_attempts must be at least 1", c.Name))
	}
	if c.MinErrorRetryDelay != nil && *c.MinErrorRetryDelay < 1 {
		merr = multierror.Append(merr, fmt.Errorf("connection %q: min_error_retry_delay must be at least 1", c.Name))
	}
	for _, r := range c.Regions {
		if !regionRe.MatchString(r) {
			merr = multierror.Append(merr, fmt.Errorf("connection %q: region %q is not an OCI region identifier", c.Name, r))
		}
	}
	return merr.ErrorOrNil()
}
