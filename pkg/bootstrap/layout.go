// Package bootstrap lays out the working folder for the scanner and the
// query engine, writes their credential artifacts and checks the result.
package bootstrap

import (
	"path/filepath"

	"github.com/user/ocisec/pkg/credentials"
)

// Layout names every path under the working folder.
type Layout struct {
	Root string
	// ProfilePath overrides where the INI profile lives.
	ProfilePath string
}

func NewLayout(root string) Layout {
	return Layout{Root: credentials.AbsPath(root)}
}

// WithProfile returns l with the INI profile moved to path. An empty path
// keeps the profile inside the working folder.
func (l Layout) WithProfile(path string) Layout {
	l.ProfilePath = credentials.AbsPath(path)
	return l
}

func (l Layout) ScannerDir() string { return filepath.Join(l.Root, "cloudsploit") }

func (l Layout) ScannerIndex() string { return filepath.Join(l.ScannerDir(), "index.js") }

func (l Layout) ScannerModules() string { return filepath.Join(l.ScannerDir(), "node_modules") }

func (l Layout) ScannerCredentials() string {
	return filepath.Join(l.Root, "configs", "cloudsploit", "oci_credentials.json")
}

func (l Layout) ScannerConfig() string {
	return filepath.Join(l.Root, "configs", "cloudsploit", "config.js")
}

func (l Layout) Profile() string {
	if l.ProfilePath != "" {
		return l.ProfilePath
	}
	return filepath.Join(l.Root, "configs", "oci", "config")
}

func (l Layout) PrivateKey() string {
	return filepath.Join(l.Root, "configs", "oci", "oci_api_key.pem")
}

// Connection is the connection spec file for the named connection.
func (l Layout) Connection(name string) string {
	if name == "" {
		name = credentials.DefaultConnectionName
	}
	return filepath.Join(l.Root, "configs", "steampipe", name+".spc")
}

func (l Layout) OutputDir() string { return filepath.Join(l.Root, "output") }

// Dirs lists the folders Init creates.
func (l Layout) Dirs() []string {
	return []string{
		l.Root,
		filepath.Join(l.Root, "configs", "cloudsploit"),
		filepath.Join(l.Root, "configs", "oci"),
		filepath.Join(l.Root, "configs", "steampipe"),
		l.OutputDir(),
	}
}
