package bootstrap

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/user/ocisec/pkg/credentials"
	"github.com/user/ocisec/pkg/result"
	"github.com/user/ocisec/pkg/wrappers"
)

func testCreds(t *testing.T) credentials.Credentials {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	return credentials.Credentials{
		TenancyID:      "ocid1.tenancy.oc1..aaaaaaaa4jve3lkei7lyb3efdnvybx7h27na",
		UserID:         "ocid1.user.oc1..aaaaaaaabibbphgrf5ow3ybcxp7vxbasgil4lt",
		KeyFingerprint: "88:2c:a5:2c:fb:ff:23:a2:b6:e9:24:72:17:a2:50:95",
		Region:         "us-phoenix-1",
		KeyValue:       string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
	}
}

func TestInitWritesAllArtifacts(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(filepath.Join(root, "work"))
	link := filepath.Join(root, "steampipe-config")

	rep, err := Init(Options{Layout: l, Credentials: testCreds(t), LinkDir: link})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if len(rep.Written) != 6 || len(rep.Skipped) != 0 {
		t.Fatalf("expected 6 written files, got %v (skipped %v)", rep.Written, rep.Skipped)
	}

	for _, p := range []string{l.PrivateKey(), l.ScannerCredentials(), l.Profile(), l.Connection("")} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("%s has mode %v, want 0600", p, info.Mode().Perm())
		}
	}
	if _, err := os.Stat(l.OutputDir()); err != nil {
		t.Errorf("output folder not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(link, "oci.spc")); err != nil {
		t.Errorf("connection not linked: %v", err)
	}

	scanner, err := credentials.ReadScannerFile(l.ScannerCredentials())
	if err != nil {
		t.Fatal(err)
	}
	if scanner.CompartmentID != scanner.TenancyID {
		t.Errorf("expected root compartment fallback, got %q", scanner.CompartmentID)
	}

	conns, err := credentials.ReadConnections(l.Connection(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 || conns[0].ConfigPath != l.Profile() || conns[0].ConfigProfile != "DEFAULT" {
		t.Errorf("unexpected connection %+v", conns)
	}
	if len(conns[0].Regions) != 1 || conns[0].Regions[0] != "us-phoenix-1" {
		t.Errorf("expected the credential region, got %v", conns[0].Regions)
	}

	if err := Validate(l, "", ""); err != nil {
		t.Errorf("Validate of fresh artifacts failed: %v", err)
	}

	rep, err = Init(Options{Layout: l, Credentials: testCreds(t), LinkDir: link})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Written) != 0 || len(rep.Skipped) != 6 {
		t.Errorf("second Init should keep files, got written=%v skipped=%v", rep.Written, rep.Skipped)
	}

	rep, err = Init(Options{Layout: l, Credentials: testCreds(t), Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Written) != 5 {
		t.Errorf("forced Init should rewrite 5 files, got %v", rep.Written)
	}
}

func TestInitRequiresKey(t *testing.T) {
	c := testCreds(t)
	c.KeyValue = ""
	if _, err := Init(Options{Layout: NewLayout(t.TempDir()), Credentials: c}); err == nil {
		t.Error("expected an error without a private key")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	l := NewLayout(t.TempDir())
	if _, err := Init(Options{Layout: l, Credentials: testCreds(t)}); err != nil {
		t.Fatal(err)
	}

	bad := []byte(`connection "oci" {
  plugin         = "aws"
  config_profile = "DEFAULT"
}
`)
	if err := os.WriteFile(l.Connection(""), bad, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(l.ScannerConfig()); err != nil {
		t.Fatal(err)
	}

	err := Validate(l, "", "")
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"scanner config", `plugin is "aws"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestDoctor(t *testing.T) {
	l := NewLayout(t.TempDir())
	if _, err := Init(Options{Layout: l, Credentials: testCreds(t)}); err != nil {
		t.Fatal(err)
	}

	d := Doctor{
		Layout:   l,
		Binaries: []string{"node", "steampipe"},
		LookPath: func(name string) (string, error) {
			if name == "steampipe" {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
	}
	checks, err := d.Run()
	if err == nil {
		t.Fatal("expected doctor to fail")
	}

	failed := map[string]bool{}
	for _, c := range checks {
		if !c.OK {
			failed[c.Name] = true
		}
	}
	for _, name := range []string{"binary steampipe", "scanner checkout", "scanner dependencies"} {
		if !failed[name] {
			t.Errorf("expected %q to fail", name)
		}
	}
	for _, name := range []string{"binary node", "scanner credentials", "connection spec", "output folder"} {
		if failed[name] {
			t.Errorf("expected %q to pass", name)
		}
	}
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []wrappers.Command
	fn    func(c wrappers.Command) (wrappers.Output, error)
}

func (r *recordingRunner) Run(ctx context.Context, c wrappers.Command) (wrappers.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	return r.fn(c)
}

func TestInstallDryRun(t *testing.T) {
	l := NewLayout(t.TempDir())
	if err := os.MkdirAll(l.ScannerDir(), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.ScannerIndex(), []byte("//"), 0600); err != nil {
		t.Fatal(err)
	}

	steps := InstallPlan(InstallOptions{Layout: l, Repo: "https://example.invalid/scanner.git"})
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[0].Skip == "" {
		t.Error("clone should be skipped when index.js exists")
	}

	runner := &recordingRunner{fn: func(c wrappers.Command) (wrappers.Output, error) {
		t.Errorf("dry run executed %v", c)
		return wrappers.Output{}, nil
	}}
	var out bytes.Buffer
	if err := Install(context.Background(), runner, steps, true, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "npm install") || !strings.Contains(out.String(), "steampipe plugin install oci") {
		t.Errorf("plan output missing commands:\n%s", out.String())
	}
}

func TestInstallStopsOnFailure(t *testing.T) {
	l := NewLayout(t.TempDir())
	steps := InstallPlan(InstallOptions{Layout: l, Repo: "https://example.invalid/scanner.git"})

	runner := &recordingRunner{fn: func(c wrappers.Command) (wrappers.Output, error) {
		if c.Name == "npm" {
			return wrappers.Output{Stderr: []byte("ERESOLVE"), ExitCode: 1}, nil
		}
		return wrappers.Output{}, nil
	}}
	err := Install(context.Background(), runner, steps, false, &bytes.Buffer{})

	var me *result.ModuleError
	if !errors.As(err, &me) {
		t.Fatalf("expected ModuleError, got %v", err)
	}
	if me.Code != result.InstallDependency || me.ExitCode != 1 {
		t.Errorf("unexpected error %+v", me)
	}
	if len(runner.calls) != 2 {
		t.Errorf("expected clone and npm calls, got %d", len(runner.calls))
	}
	if runner.calls[0].Args[0] != "clone" || runner.calls[1].Dir != l.ScannerDir() {
		t.Errorf("unexpected commands %+v", runner.calls)
	}
}

func TestRelativeWorkdirIsResolved(t *testing.T) {
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	l := NewLayout("poc")
	if l.Root != filepath.Join(wd, "poc") {
		t.Fatalf("expected absolute root, got %q", l.Root)
	}

	steps := InstallPlan(InstallOptions{Layout: l, Repo: "https://example.invalid/scanner.git"})
	clone := steps[0].Command
	target := clone.Args[len(clone.Args)-1]
	if !filepath.IsAbs(target) || target != l.ScannerDir() {
		t.Errorf("clone target %q should be the absolute checkout %q", target, l.ScannerDir())
	}
	if steps[1].Command.Dir != filepath.Join(wd, "poc", "cloudsploit") {
		t.Errorf("npm install runs in %q", steps[1].Command.Dir)
	}

	if _, err := Init(Options{Layout: l, Credentials: testCreds(t)}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(l.ScannerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"`+l.ScannerCredentials()+`"`) {
		t.Errorf("config.js should reference the absolute credential file:\n%s", data)
	}
}

func TestInitHonorsProfilePath(t *testing.T) {
	root := t.TempDir()
	profile := filepath.Join(root, "oci", "config")
	l := NewLayout(filepath.Join(root, "work")).WithProfile(profile)

	if _, err := Init(Options{Layout: l, Credentials: testCreds(t)}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(profile); err != nil {
		t.Fatalf("profile not written to %s: %v", profile, err)
	}
	if _, err := os.Stat(filepath.Join(l.Root, "configs", "oci", "config")); !os.IsNotExist(err) {
		t.Errorf("profile should not be written inside the working folder")
	}

	conns, err := credentials.ReadConnections(l.Connection(""))
	if err != nil {
		t.Fatal(err)
	}
	if conns[0].ConfigPath != profile {
		t.Errorf("connection config_path = %q, want %q", conns[0].ConfigPath, profile)
	}
	if err := Validate(l, "", ""); err != nil {
		t.Errorf("Validate with a custom profile path failed: %v", err)
	}
}
