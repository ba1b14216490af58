package credentials

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"
)

const DefaultProfile = "DEFAULT"

// WriteProfile writes an OCI SDK style config file with a single profile.
// The private key must already be on disk at c.KeyFile.
func WriteProfile(path, profile string, c Credentials) error {
	if profile == "" {
		profile = DefaultProfile
	}
	cfg := ini.Empty()
	sec, err := cfg.NewSection(profile)
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{"user", c.UserID},
		{"fingerprint", c.KeyFingerprint},
		{"key_file", AbsPath(c.KeyFile)},
		{"tenancy", c.TenancyID},
		{"region", c.Region},
	} {
		if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
			return fmt.Errorf("profile key %s: %w", kv[0], err)
		}
	}

	// go-ini writes the default section without a header, and leaves it out
	// when empty. The OCI SDK needs the [DEFAULT] header.
	var buf bytes.Buffer
	if profile == DefaultProfile {
		buf.WriteString("[" + DefaultProfile + "]\n")
	}
	if _, err := cfg.WriteTo(&buf); err != nil {
		return err
	}
	return writePrivate(path, buf.Bytes())
}

// ReadProfile loads one profile section from an OCI config file.
func ReadProfile(path, profile string) (Credentials, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	cfg, err := ini.Load(ExpandHome(path))
	if err != nil {
		return Credentials{}, fmt.Errorf("load %s: %w", path, err)
	}
	sec, err := cfg.GetSection(profile)
	if err != nil {
		return Credentials{}, fmt.Errorf("profile %s not found in %s", profile, path)
	}
	return Credentials{
		UserID:         sec.Key("user").String(),
		KeyFingerprint: sec.Key("fingerprint").String(),
		KeyFile:        sec.Key("key_file").String(),
		TenancyID:      sec.Key("tenancy").String(),
		Region:         sec.Key("region").String(),
	}, nil
}
