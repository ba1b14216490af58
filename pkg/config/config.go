package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/user/ocisec/pkg/credentials"
	"github.com/user/ocisec/pkg/wrappers"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix          = "OCISEC"
	DefaultCloudsploit = "https://github.com/aquasecurity/cloudsploit.git"
)

type ProfileConfig struct {
	// Path of the INI profile; empty means configs/oci/config in the workdir.
	Path string `yaml:"path" mapstructure:"path"`
	Name string `yaml:"name" mapstructure:"name"`
}

type CloudsploitConfig struct {
	Repo       string   `yaml:"repo" mapstructure:"repo"`
	Dir        string   `yaml:"dir" mapstructure:"dir"`
	Node       string   `yaml:"node" mapstructure:"node"`
	Compliance []string `yaml:"compliance" mapstructure:"compliance"`
}

type SteampipeConfig struct {
	Binary                string                        `yaml:"binary" mapstructure:"binary"`
	ConfigDir             string                        `yaml:"config_dir" mapstructure:"config_dir"`
	Connection            string                        `yaml:"connection" mapstructure:"connection"`
	Regions               []string                      `yaml:"regions" mapstructure:"regions"`
	MaxErrorRetryAttempts *int                          `yaml:"max_error_retry_attempts,omitempty" mapstructure:"max_error_retry_attempts"`
	MinErrorRetryDelay    *int                          `yaml:"min_error_retry_delay,omitempty" mapstructure:"min_error_retry_delay"`
	MaxInitialFailures    int                           `yaml:"max_initial_failures" mapstructure:"max_initial_failures"`
	Selections            map[string]wrappers.Selection `yaml:"selections,omitempty" mapstructure:"selections"`
}

type AdvisorConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
}

type Config struct {
	Workdir     string                  `yaml:"workdir" mapstructure:"workdir"`
	Label       string                  `yaml:"label" mapstructure:"label"`
	OutputDir   string                  `yaml:"output_dir" mapstructure:"output_dir"`
	OCI         credentials.Credentials `yaml:"oci" mapstructure:"oci"`
	Profile     ProfileConfig           `yaml:"profile" mapstructure:"profile"`
	Cloudsploit CloudsploitConfig       `yaml:"cloudsploit" mapstructure:"cloudsploit"`
	Steampipe   SteampipeConfig         `yaml:"steampipe" mapstructure:"steampipe"`
	Advisor     AdvisorConfig           `yaml:"advisor" mapstructure:"advisor"`
}

var defaults = map[string]interface{}{
	"workdir":                        "~/oci-poc",
	"label":                          "OCI",
	"output_dir":                     "",
	"oci.tenancy_id":                 "",
	"oci.compartment_id":             "",
	"oci.user_id":                    "",
	"oci.fingerprint":                "",
	"oci.region":                     credentials.DefaultRegion,
	"oci.key_file":                   "",
	"oci.private_key":                "",
	"profile.path":                   "",
	"profile.name":                   credentials.DefaultProfile,
	"cloudsploit.repo":               DefaultCloudsploit,
	"cloudsploit.dir":                "",
	"cloudsploit.node":               "node",
	"cloudsploit.compliance":         []string{},
	"steampipe.binary":               "steampipe",
	"steampipe.config_dir":           "~/.steampipe/config",
	"steampipe.connection":           credentials.DefaultConnectionName,
	"steampipe.regions":              []string{},
	"steampipe.max_initial_failures": wrappers.DefaultMaxInitialFailures,
	"advisor.provider":               "gemini",
	"advisor.model":                  "gemini-1.5-flash",
	"advisor.api_key":                "",
}

// legacyEnv lists unprefixed OCI environment names. They are
// consulted after the OCISEC_ prefixed names.
var legacyEnv = map[string][]string{
	"oci.tenancy_id":     {"OCI_TENANCY_ID", "OCI_TENANCY_OCID"},
	"oci.user_id":        {"OCI_USER_ID", "OCI_USER_OCID"},
	"oci.compartment_id": {"OCI_COMPARTMENT_ID", "OCI_COMPARTMENT_OCID"},
	"oci.fingerprint":    {"OCI_FINGERPRINT"},
	"oci.region":         {"OCI_REGION"},
	"oci.private_key":    {"OCI_PRIVATE_KEY"},
	"oci.key_file":       {"OCI_PRIVATE_KEY_PATH"},
	"advisor.api_key":    {"GOOGLE_API_KEY"},
}

// Keys returns every settable configuration key.
func Keys() []string {
	keys := make([]string, 0, len(defaults)+2)
	for k := range defaults {
		keys = append(keys, k)
	}
	keys = append(keys, "steampipe.max_error_retry_attempts", "steampipe.min_error_retry_delay")
	sort.Strings(keys)
	return keys
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".ocisec")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// NewViper builds a viper instance with defaults and env bindings. path may
// be empty for the default location.
func NewViper(path string) (*viper.Viper, error) {
	return newViper(path, true)
}

func newViper(path string, env bool) (*viper.Viper, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(credentials.ExpandHome(path))
	v.SetConfigType("yaml")
	if !env {
		return v, nil
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		envs := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load reads the config file (a missing file yields defaults) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// LoadFile reads the config file and defaults only, without environment
// overrides or derived paths. Use it before SaveConfig.
func LoadFile(path string) (*Config, error) {
	v, err := newViper(path, false)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// FromViper reads the config file bound to v and decodes the result.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.applyDerived()
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDerived() {
	c.Workdir = credentials.AbsPath(c.Workdir)
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.Workdir, "output")
	}
	c.OutputDir = credentials.AbsPath(c.OutputDir)
	if c.Cloudsploit.Dir == "" {
		c.Cloudsploit.Dir = filepath.Join(c.Workdir, "cloudsploit")
	}
	c.Cloudsploit.Dir = credentials.AbsPath(c.Cloudsploit.Dir)
	if c.Selections() == nil {
		c.Steampipe.Selections = map[string]wrappers.Selection{}
	}
}

func (c *Config) Selections() map[string]wrappers.Selection {
	return c.Steampipe.Selections
}

// Regions is the region list for inventory runs: steampipe.regions when set,
// otherwise oci.region read as a comma separated list.
func (c *Config) Regions() []string {
	if len(c.Steampipe.Regions) > 0 {
		return c.Steampipe.Regions
	}
	return wrappers.ParseRegions(c.OCI.Region)
}

// Credentials returns the OCI identity with a single scanner region.
func (c *Config) Credentials() credentials.Credentials {
	creds := c.OCI
	if regions := wrappers.ParseRegions(creds.Region); len(regions) > 0 {
		creds.Region = regions[0]
	}
	return creds
}

// SaveConfig writes cfg to path (the default location when empty).
func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions, the file may hold an API key
	return os.WriteFile(credentials.ExpandHome(path), data, 0600)
}

// Set assigns one dotted key, using viper's decoding for lists and numbers.
func Set(cfg *Config, key, value string) (*Config, error) {
	known := false
	for _, k := range Keys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	v.Set(key, value)

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}
	if key != "oci.private_key" {
		out.OCI.KeyValue = cfg.OCI.KeyValue
	}
	return &out, nil
}
