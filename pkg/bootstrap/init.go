package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/ocisec/pkg/credentials"
	"go.uber.org/zap"
)

// Options controls what Init writes.
type Options struct {
	Layout      Layout
	Credentials credentials.Credentials
	ProfileName string
	Connection  credentials.Connection
	// LinkDir, when set, also receives a copy of the connection file. The
	// query engine only reads connection files from its own config folder.
	LinkDir string
	// Force overwrites artifacts that already exist.
	Force bool
}

// Report lists the files Init wrote and the ones it left alone.
type Report struct {
	Written []string
	Skipped []string
}

// Init creates the folder layout and writes every artifact: the PEM key,
// the scanner credential file and config.js, the INI profile and the
// connection spec.
func Init(opts Options) (Report, error) {
	var rep Report
	l := opts.Layout

	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return rep, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	creds, err := opts.Credentials.WithDefaults()
	if err != nil {
		return rep, err
	}
	if creds.KeyValue == "" {
		return rep, fmt.Errorf("a private key (key_file or private_key) is required")
	}
	if opts.ProfileName == "" {
		opts.ProfileName = credentials.DefaultProfile
	}

	write := func(path string, fn func(string) error) error {
		if !opts.Force && exists(path) {
			zap.L().Debug("keeping existing file", zap.String("path", path))
			rep.Skipped = append(rep.Skipped, path)
			return nil
		}
		if err := fn(path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		rep.Written = append(rep.Written, path)
		return nil
	}

	if creds.KeyFile == "" {
		creds.KeyFile = l.PrivateKey()
		if err := write(creds.KeyFile, func(p string) error {
			return os.WriteFile(p, []byte(creds.KeyValue), 0600)
		}); err != nil {
			return rep, err
		}
	}

	if err := write(l.ScannerCredentials(), func(p string) error {
		return credentials.WriteScannerFile(p, creds)
	}); err != nil {
		return rep, err
	}
	if err := write(l.ScannerConfig(), func(p string) error {
		return credentials.WriteScannerConfig(p, l.ScannerCredentials())
	}); err != nil {
		return rep, err
	}
	if err := write(l.Profile(), func(p string) error {
		return credentials.WriteProfile(p, opts.ProfileName, creds)
	}); err != nil {
		return rep, err
	}

	conn := opts.Connection
	if conn.Name == "" {
		conn.Name = credentials.DefaultConnectionName
	}
	conn.Plugin = credentials.OCIPlugin
	conn.ConfigPath = l.Profile()
	conn.ConfigProfile = opts.ProfileName
	if len(conn.Regions) == 0 {
		conn.Regions = []string{creds.Region}
	}
	if err := conn.Validate(); err != nil {
		return rep, err
	}

	connPath := l.Connection(conn.Name)
	if err := write(connPath, func(p string) error {
		return credentials.WriteConnection(p, conn)
	}); err != nil {
		return rep, err
	}

	if opts.LinkDir != "" {
		link := filepath.Join(credentials.ExpandHome(opts.LinkDir), filepath.Base(connPath))
		if err := write(link, func(p string) error {
			return copyFile(connPath, p)
		}); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
