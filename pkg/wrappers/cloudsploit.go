package wrappers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/user/ocisec/pkg/credentials"
	"github.com/user/ocisec/pkg/engine"
	"github.com/user/ocisec/pkg/result"
	"go.uber.org/zap"
)

const CloudsploitModule = "cloudsploit_oracle"

// ComplianceFrameworks are the scanner's --compliance values.
var ComplianceFrameworks = []string{"hipaa", "pci", "cis", "cis1", "cis2"}

const (
	// The scanner exits non-zero while printing this AWS SDK maintenance
	// notice even though the OCI run succeeded.
	sdkNotice = "We are formalizing our plans to enter AWS SDK for JavaScript"

	invalidTokenMessage = "The security token included in the request is invalid"
)

var ociAuthMarkers = regexp.MustCompile(invalidTokenMessage + `|NotAuthenticated|NotAuthorizedOrNotFound`)

// CloudsploitWrapper runs the posture scanner checkout against OCI.
type CloudsploitWrapper struct {
	Runner     Runner
	Graph      *engine.UnifiedGraph
	Node       string // node binary, default "node"
	Dir        string // scanner checkout containing index.js
	ConfigPath string // config.js passed with --config
	OutputDir  string
	Label      string
	Compliance []string
	Now        func() time.Time
}

// scanResult is one entry of the scanner's --json output
type scanResult struct {
	Plugin            string `json:"plugin"`
	Category          string `json:"category"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Resource          string `json:"resource"`
	Region            string `json:"region"`
	Status            string `json:"status"`
	Message           string `json:"message"`
	RecommendedAction string `json:"recommended_action"`
	Compliance        string `json:"compliance"`
}

func (w *CloudsploitWrapper) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Args builds the scanner command line for the given output file.
func (w *CloudsploitWrapper) Args(outputFile string) []string {
	args := []string{
		"index.js",
		"--config=" + credentials.AbsPath(w.ConfigPath),
		"--json=" + outputFile,
		"--console=none",
	}
	for _, c := range w.Compliance {
		args = append(args, "--compliance="+c)
	}
	return args
}

// Env is the child environment carrying the API key identity.
func (w *CloudsploitWrapper) Env(c credentials.Credentials) []string {
	env := []string{
		"OCI_TENANCY_OCID=" + c.TenancyID,
		"OCI_USER_OCID=" + c.UserID,
		"OCI_FINGERPRINT=" + c.KeyFingerprint,
		"OCI_PRIVATE_KEY=" + c.KeyValue,
		"OCI_REGION=" + c.Region,
	}
	if c.CompartmentID != "" {
		env = append(env, "OCI_COMPARTMENT_OCID="+c.CompartmentID)
	}
	return env
}

// Run executes one scan, moves the JSON output into OutputDir and adds the
// normalized findings to Graph.
func (w *CloudsploitWrapper) Run(ctx context.Context, creds credentials.Credentials) (result.Response, error) {
	start := w.now()
	defer func() {
		zap.L().Debug("scanner run finished", zap.Duration("took", time.Since(start)))
	}()

	creds, err := creds.WithDefaults()
	if err != nil {
		return result.Response{}, result.Errorf(result.FileError, "%v", err)
	}
	if err := w.checkFields(creds); err != nil {
		return result.Response{}, err
	}
	for _, c := range w.Compliance {
		if !validCompliance(c) {
			return result.Response{}, result.Errorf(result.FieldValueError, "unknown compliance framework %q (want one of %s)", c, strings.Join(ComplianceFrameworks, ", "))
		}
	}
	// the child runs inside the checkout, so every path it sees is absolute
	dir := credentials.AbsPath(w.Dir)
	outputDir := credentials.AbsPath(w.OutputDir)
	if _, err := os.Stat(filepath.Join(dir, "index.js")); err != nil {
		return result.Response{}, result.Errorf(result.PackageNotFound, "scanner checkout not found at %s, run 'ocisec install' first", dir)
	}

	node := w.Node
	if node == "" {
		node = "node"
	}
	tmpOutput := filepath.Join(dir, fmt.Sprintf("%d.json", start.UnixNano()))
	defer os.Remove(tmpOutput)

	zap.L().Info("Executing scanner", zap.String("dir", dir), zap.Strings("compliance", w.Compliance))
	out, err := w.Runner.Run(ctx, Command{
		Name: node,
		Args: w.Args(tmpOutput),
		Dir:  dir,
		Env:  w.Env(creds),
	})
	if err != nil {
		code := result.SubprocessError
		if errors.Is(err, exec.ErrNotFound) {
			code = result.PackageNotFound
		}
		return result.Response{}, &result.ModuleError{Code: code, Msg: fmt.Sprintf("An error occurred when running the scanner: %v", err)}
	}
	if out.ExitCode != 0 && !bytes.Contains(out.Stderr, []byte(sdkNotice)) {
		return result.Response{}, subprocessError("An error occurred when running the scanner", out)
	}

	info, err := os.Stat(tmpOutput)
	if err != nil || info.Size() == 0 {
		return result.Response{}, subprocessError(fmt.Sprintf("The scanner output %s is empty", tmpOutput), out)
	}

	data, err := os.ReadFile(tmpOutput)
	if err != nil {
		return result.Response{}, result.Errorf(result.FileError, "read scanner output: %v", err)
	}
	var results []scanResult
	if err := json.Unmarshal(data, &results); err != nil {
		return result.Response{}, result.Errorf(result.SubprocessOutputDecodeError, "scanner output is not the expected JSON: %v", err)
	}
	if msg, failed := authFailure(results); failed {
		return result.Response{}, subprocessError(msg, out)
	}

	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return result.Response{}, result.Errorf(result.FileError, "create output dir: %v", err)
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("%s-CS_ORACLE-%d.json", w.Label, start.Unix()))
	if err := moveFile(tmpOutput, filename); err != nil {
		return result.Response{}, result.Errorf(result.FileError, "move scanner output: %v", err)
	}

	findings := normalizeScanResults(results)
	if w.Graph != nil {
		w.Graph.AddFindings(findings)
		zap.L().Info("Added scanner findings to graph", zap.Int("count", len(findings)))
	}

	return result.Response{
		Module:        CloudsploitModule,
		Response:      fmt.Sprintf("Success! %s written", filename),
		StatusCode:    int(result.Success),
		OutputFile:    filename,
		FindingsCount: len(findings),
	}, nil
}

// LoadScanOutput reads a saved scanner JSON output file and normalizes it.
func LoadScanOutput(path string) ([]engine.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results []scanResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse scanner output %s: %w", path, err)
	}
	return normalizeScanResults(results), nil
}

func (w *CloudsploitWrapper) checkFields(c credentials.Credentials) error {
	missing := c.Missing("tenancy_id", "user_id", "fingerprint", "private_key", "region")
	if w.Label == "" {
		missing = append(missing, "label")
	}
	if len(missing) > 0 {
		return result.Errorf(result.EmptyAttribute, "Provide %s value", strings.Join(missing, ", "))
	}
	return nil
}

func validCompliance(c string) bool {
	for _, f := range ComplianceFrameworks {
		if c == f {
			return true
		}
	}
	return false
}

// authFailure detects the scanner's in-band credential error: a single
// N/A resource with UNKNOWN status whose message names an auth failure.
func authFailure(results []scanResult) (string, bool) {
	for _, r := range results {
		if r.Resource == "N/A" && r.Status == engine.StatusUnknown && ociAuthMarkers.MatchString(r.Message) {
			return fmt.Sprintf("The scanner could not authenticate: %s", r.Message), true
		}
	}
	return "", false
}

func normalizeScanResults(results []scanResult) []engine.Finding {
	findings := make([]engine.Finding, 0, len(results))
	for _, r := range results {
		status := strings.ToUpper(r.Status)
		evidence := r.Title
		if r.Message != "" {
			evidence += ": " + r.Message
		}
		f := engine.Finding{
			ID:              fmt.Sprintf("cloudsploit-%s-%s-%s", r.Plugin, r.Region, r.Resource),
			SourceTool:      "CloudSploit",
			Plugin:          r.Plugin,
			Category:        r.Category,
			Status:          status,
			Severity:        engine.SeverityForStatus(status),
			Confidence:      "High",
			Asset:           r.Resource,
			Region:          r.Region,
			Evidence:        evidence,
			RemediationHint: r.RecommendedAction,
		}
		if r.Compliance != "" {
			for _, c := range strings.Split(r.Compliance, ",") {
				if c = strings.TrimSpace(c); c != "" {
					f.ComplianceList = append(f.ComplianceList, c)
				}
			}
		}
		findings = append(findings, f)
	}
	return findings
}

func subprocessError(msg string, out Output) *result.ModuleError {
	return &result.ModuleError{
		Code:     result.SubprocessError,
		Msg:      msg,
		ExitCode: out.ExitCode,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
	}
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
