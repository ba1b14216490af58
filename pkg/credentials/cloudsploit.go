package credentials

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScannerFile is the JSON credential file the scanner's config loader reads.
type ScannerFile struct {
	TenancyID      string `json:"tenancyId"`
	CompartmentID  string `json:"compartmentId"`
	UserID         string `json:"userId"`
	KeyFingerprint string `json:"keyFingerprint"`
	Region         string `json:"region"`
	KeyValue       string `json:"keyValue"`
}

func (c Credentials) ScannerFile() ScannerFile {
	return ScannerFile{
		TenancyID:      c.TenancyID,
		CompartmentID:  c.ScannerCompartment(),
		UserID:         c.UserID,
		KeyFingerprint: c.KeyFingerprint,
		Region:         c.Region,
		KeyValue:       c.KeyValue,
	}
}

// WriteScannerFile writes the JSON credential file with owner-only permissions.
func WriteScannerFile(path string, c Credentials) error {
	data, err := json.MarshalIndent(c.ScannerFile(), "", "  ")
	if err != nil {
		return err
	}
	return writePrivate(path, append(data, '\n'))
}

// ReadScannerFile loads a JSON credential file back into Credentials.
func ReadScannerFile(path string) (Credentials, error) {
	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return Credentials{}, err
	}
	var f ScannerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Credentials{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return Credentials{
		TenancyID:      f.TenancyID,
		CompartmentID:  f.CompartmentID,
		UserID:         f.UserID,
		KeyFingerprint: f.KeyFingerprint,
		Region:         f.Region,
		KeyValue:       f.KeyValue,
	}, nil
}

// WriteScannerConfig writes the config.js passed to the scanner with
// --config. It points the oracle credential loader at credentialPath.
func WriteScannerConfig(path, credentialPath string) error {
	quoted, err := json.Marshal(AbsPath(credentialPath))
	if err != nil {
		return err
	}
	js := fmt.Sprintf(`module.exports = {
    credentials: {
        oracle: {
            credential_file: %s
        }
    }
};
`, quoted)
	return writePrivate(path, []byte(js))
}
