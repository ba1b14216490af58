package wrappers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/user/ocisec/pkg/result"
)

const compartment = "ocid1.compartment.oc1..c1"

func newInventory(t *testing.T, fn func(c Command) (Output, error)) (*SteampipeWrapper, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{fn: fn}
	return &SteampipeWrapper{
		Runner:    runner,
		Label:     "TEST",
		OutputDir: t.TempDir(),
		Regions:   []string{"us-ashburn-1", "us-phoenix-1"},
		Global:    []string{"oci_identity_user", "oci_identity_compartment"},
		Regional:  []string{"oci_core_vcn", "oci_objectstorage_object"},
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	}, runner
}

func regionOf(c Command) string {
	for _, e := range c.Env {
		if strings.HasPrefix(e, "OCI_REGION=") {
			return strings.TrimPrefix(e, "OCI_REGION=")
		}
	}
	return ""
}

func TestParseRegions(t *testing.T) {
	got := ParseRegions(" us-ashburn-1, us-phoenix-1 ,,")
	if diff := cmp.Diff([]string{"us-ashburn-1", "us-phoenix-1"}, got); diff != "" {
		t.Errorf("ParseRegions mismatch (-want +got):\n%s", diff)
	}
	if ParseRegions("") != nil {
		t.Errorf("empty input should give no regions")
	}
}

func TestQueryCompartmentFilter(t *testing.T) {
	w, _ := newInventory(t, nil)
	w.CompartmentID = compartment
	w.Selections = map[string]Selection{
		"oci_core_vcn": {Columns: "id, display_name", Where: "lifecycle_state = 'AVAILABLE'"},
	}

	tests := map[string]string{
		// global table, never filtered
		"oci_identity_compartment": "select * from oci_identity_compartment",
		// regional but tenant level
		"oci_objectstorage_object": "select * from oci_objectstorage_object",
		"oci_core_vcn":             "select id, display_name from oci_core_vcn where lifecycle_state = 'AVAILABLE' and compartment_id = '" + compartment + "'",
		"oci_core_subnet":          "select * from oci_core_subnet where compartment_id = '" + compartment + "'",
	}
	for table, want := range tests {
		if got := w.Query(table); got != want {
			t.Errorf("Query(%s) = %q, want %q", table, got, want)
		}
	}

	w.CompartmentID = ""
	if got := w.Query("oci_core_subnet"); got != "select * from oci_core_subnet" {
		t.Errorf("no compartment should mean no filter, got %q", got)
	}
}

func TestInventoryRun(t *testing.T) {
	w, runner := newInventory(t, func(c Command) (Output, error) {
		query := c.Args[1]
		switch {
		case strings.Contains(query, "oci_identity_user"):
			return Output{Stdout: []byte(`[{"name":"alice"}]`)}, nil
		case strings.Contains(query, "oci_core_vcn") && regionOf(c) == "us-ashburn-1":
			return Output{Stdout: []byte(`{"columns":[{"name":"id"}],"rows":[{"id":"vcn1"}]}`)}, nil
		default:
			return Output{Stdout: []byte(`[]`)}, nil
		}
	})

	resp, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *resp.TablesScanned != 4 || *resp.TablesWithData != 2 {
		t.Errorf("unexpected counts %+v", resp)
	}
	// 2 global + 2 regional x 2 regions
	if len(runner.calls) != 6 {
		t.Errorf("expected 6 queries, got %d", len(runner.calls))
	}
	first := runner.calls[0]
	if first.Name != "steampipe" || first.Args[0] != "query" || first.Args[2] != "--output" || first.Args[3] != "json" {
		t.Errorf("unexpected command %+v", first)
	}
	if regionOf(first) != "" {
		t.Errorf("global tables should not pin a region")
	}

	wantFile := filepath.Join(w.OutputDir, "TEST-OCI-1700000000.json")
	raw, err := os.ReadFile(wantFile)
	if err != nil {
		t.Fatalf("inventory not written: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"oci_identity_user": []interface{}{map[string]interface{}{"name": "alice"}},
		"oci_core_vcn": map[string]interface{}{
			"us-ashburn-1": []interface{}{map[string]interface{}{"id": "vcn1"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}
}

func TestInventoryNoData(t *testing.T) {
	w, _ := newInventory(t, func(c Command) (Output, error) {
		return Output{Stdout: []byte(`[]`)}, nil
	})
	resp, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.OutputFile != "" || resp.TablesWithData == nil || *resp.TablesWithData != 0 || resp.StatusCode != int(result.Success) {
		t.Errorf("unexpected response %+v", resp)
	}
	if entries, _ := os.ReadDir(w.OutputDir); len(entries) != 0 {
		t.Errorf("no file should be written without data")
	}
}

func TestInventoryAbortsWhenFirstQueriesFail(t *testing.T) {
	w, runner := newInventory(t, func(c Command) (Output, error) {
		return Output{ExitCode: 1, Stderr: []byte("Error: NotAuthenticated")}, nil
	})
	w.MaxInitialFailures = 3

	_, err := w.Run(context.Background())
	var me *result.ModuleError
	if !errors.As(err, &me) || me.Code != result.SubprocessError {
		t.Fatalf("expected SUBPROCESS_ERROR abort, got %v", err)
	}
	if len(runner.calls) != 3 {
		t.Errorf("expected abort after 3 queries, got %d", len(runner.calls))
	}
	if AccessErrorIdentifier(err) != "NotAuthenticated" {
		t.Errorf("expected auth marker, got %q", AccessErrorIdentifier(err))
	}
}

func TestInventorySkipsFailuresAfterSuccess(t *testing.T) {
	w, runner := newInventory(t, func(c Command) (Output, error) {
		if strings.Contains(c.Args[1], "oci_identity_user") {
			return Output{Stdout: []byte(`[{"name":"alice"}]`)}, nil
		}
		return Output{ExitCode: 1, Stderr: []byte("SQLSTATE 42703")}, nil
	})
	w.MaxInitialFailures = 1

	resp, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("failures after a success should be skipped: %v", err)
	}
	if *resp.TablesWithData != 1 || len(runner.calls) != 6 {
		t.Errorf("unexpected response %+v after %d calls", resp, len(runner.calls))
	}
}

func TestInventoryUndecodableOutput(t *testing.T) {
	_, err := decodeRows([]byte("not json"))
	if err == nil {
		t.Fatal("expected decode error")
	}

	w, _ := newInventory(t, func(c Command) (Output, error) {
		return Output{Stdout: []byte("secret-ish garbage")}, nil
	})
	_, err = w.getData(context.Background(), "oci_core_vcn", "us-ashburn-1")
	var me *result.ModuleError
	if !errors.As(err, &me) || me.Stdout != nil {
		t.Fatalf("expected error without stdout, got %+v", err)
	}
}

func TestInventoryFieldChecks(t *testing.T) {
	w, _ := newInventory(t, nil)
	w.Regions = nil
	_, err := w.Run(context.Background())
	var me *result.ModuleError
	if !errors.As(err, &me) || me.Code != result.EmptyAttribute {
		t.Fatalf("expected EMPTY_ATTRIBUTE, got %v", err)
	}

	w, _ = newInventory(t, nil)
	w.CompartmentID = "x' or '1'='1"
	_, err = w.Run(context.Background())
	if !errors.As(err, &me) || me.Code != result.FieldValueError {
		t.Fatalf("expected FIELD_VALUE_ERROR, got %v", err)
	}
}

func TestInventoryStopsOnCancel(t *testing.T) {
	w, runner := newInventory(t, func(c Command) (Output, error) {
		return Output{Stdout: []byte(`[]`)}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no queries should run after cancel")
	}
}
