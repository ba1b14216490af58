package credentials

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	fingerprintRe = regexp.MustCompile(`^(?i)([0-9a-f]{2}:){15}[0-9a-f]{2}$`)
	regionRe      = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]+$`)
)

// ValidOCID reports whether id is an OCID of one of the given resource types.
func ValidOCID(id string, types ...string) bool {
	for _, t := range types {
		if strings.HasPrefix(id, "ocid1."+t+".") && strings.Count(id, ".") >= 4 {
			return true
		}
	}
	return false
}

// Validate checks field presence and shape. Every problem is reported, not
// just the first.
func (c Credentials) Validate() error {
	var merr *multierror.Error

	for _, f := range c.Missing("tenancy_id", "user_id", "fingerprint", "region") {
		merr = multierror.Append(merr, fmt.Errorf("%s is required", f))
	}
	if c.TenancyID != "" && !ValidOCID(c.TenancyID, "tenancy") {
		merr = multierror.Append(merr, fmt.Errorf("tenancy_id %q is not a tenancy OCID", c.TenancyID))
	}
	if c.UserID != "" && !ValidOCID(c.UserID, "user") {
		merr = multierror.Append(merr, fmt.Errorf("user_id %q is not a user OCID", c.UserID))
	}
	if c.CompartmentID != "" && !ValidOCID(c.CompartmentID, "compartment", "tenancy") {
		merr = multierror.Append(merr, fmt.Errorf("compartment_id %q is not a compartment OCID", c.CompartmentID))
	}
	if c.KeyFingerprint != "" && !fingerprintRe.MatchString(c.KeyFingerprint) {
		merr = multierror.Append(merr, fmt.Errorf("fingerprint %q is not 16 colon-separated hex pairs", c.KeyFingerprint))
	}
	if c.Region != "" && !regionRe.MatchString(c.Region) {
		merr = multierror.Append(merr, fmt.Errorf("region %q is not an OCI region identifier", c.Region))
	}

	switch {
	case c.KeyValue != "":
		if err := CheckPrivateKey([]byte(c.KeyValue)); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("private key: %w", err))
		}
	case c.KeyFile == "":
		merr = multierror.Append(merr, fmt.Errorf("key_file or private key is required"))
	}

	return merr.ErrorOrNil()
}

// CheckPrivateKey accepts a PEM private key in PKCS#1 or PKCS#8 form.
// Passphrase-protected keys are accepted without decoding.
func CheckPrivateKey(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil {
		return fmt.Errorf("no PEM block found")
	}
	if !strings.HasSuffix(block.Type, "PRIVATE KEY") {
		return fmt.Errorf("PEM block is %q, want a private key", block.Type)
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" || block.Headers["Proc-Type"] != "" {
		return nil
	}
	if _, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return nil
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return nil
	}
	if _, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return nil
	}
	return fmt.Errorf("PEM block does not decode as a private key")
}
