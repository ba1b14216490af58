package wrappers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/ocisec/pkg/credentials"
	"github.com/user/ocisec/pkg/result"
	"go.uber.org/zap"
)

const (
	InventoryModule = "oci_asset_inventory"

	// DefaultMaxInitialFailures aborts a run whose first queries all fail,
	// which almost always means the connection itself is broken.
	DefaultMaxInitialFailures = 5
)

// Selection narrows the columns or rows fetched from one table.
type Selection struct {
	Columns string `yaml:"columns" mapstructure:"columns"`
	Where   string `yaml:"where" mapstructure:"where"`
}

// SteampipeWrapper collects an OCI asset inventory through the query engine.
type SteampipeWrapper struct {
	Runner        Runner
	Binary        string // default "steampipe"
	Label         string
	OutputDir     string
	Regions       []string
	CompartmentID string
	Selections    map[string]Selection
	Global        []string
	Regional      []string
	// MaxInitialFailures is how many failures are tolerated before the
	// first successful query.
	MaxInitialFailures int
	Now                func() time.Time

	failures  int
	succeeded bool
}

// ParseRegions splits a comma separated region list, ignoring blanks.
func ParseRegions(s string) []string {
	var regions []string
	for _, r := range strings.Split(strings.ReplaceAll(s, " ", ""), ",") {
		if r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

func (w *SteampipeWrapper) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *SteampipeWrapper) globalTables() []string {
	if w.Global != nil {
		return w.Global
	}
	return GlobalTables
}

func (w *SteampipeWrapper) regionalTables() []string {
	if w.Regional != nil {
		return w.Regional
	}
	return RegionalTables
}

func (w *SteampipeWrapper) isGlobal(table string) bool {
	for _, t := range w.globalTables() {
		if t == table {
			return true
		}
	}
	return false
}

// Query builds the select statement for table. The compartment filter only
// applies to regional tables that carry a compartment_id column.
func (w *SteampipeWrapper) Query(table string) string {
	columns, where := "*", ""
	if sel, ok := w.Selections[table]; ok {
		if sel.Columns != "" {
			columns = sel.Columns
		}
		where = sel.Where
	}

	query := fmt.Sprintf("select %s from %s", columns, table)

	var filters []string
	if where != "" {
		filters = append(filters, where)
	}
	if w.CompartmentID != "" && !w.isGlobal(table) && !IsTenantLevel(table) {
		filters = append(filters, fmt.Sprintf("compartment_id = '%s'", w.CompartmentID))
	}
	if len(filters) > 0 {
		query += " where " + strings.Join(filters, " and ")
	}
	return query
}

// Run queries every global table once and every regional table per region,
// then writes the combined inventory as one JSON file.
func (w *SteampipeWrapper) Run(ctx context.Context) (result.Response, error) {
	start := w.now()
	defer func() {
		zap.L().Debug("inventory run finished", zap.Duration("took", time.Since(start)))
	}()

	if err := w.checkFields(); err != nil {
		return result.Response{}, err
	}
	w.failures, w.succeeded = 0, false

	data := make(map[string]interface{})

	for _, table := range w.globalTables() {
		zap.L().Info("About to fetch", zap.String("table", table))
		rows, err := w.callGetData(ctx, table, "")
		if err != nil {
			return result.Response{}, err
		}
		if len(rows) > 0 {
			data[table] = rows
		}
	}

	for _, table := range w.regionalTables() {
		byRegion := make(map[string][]interface{})
		for _, region := range w.Regions {
			zap.L().Info("Fetching regional data", zap.String("table", table), zap.String("region", region))
			rows, err := w.callGetData(ctx, table, region)
			if err != nil {
				return result.Response{}, err
			}
			if len(rows) > 0 {
				byRegion[region] = rows
			}
		}
		if len(byRegion) > 0 {
			data[table] = byRegion
		}
	}

	attempted := len(w.globalTables()) + len(w.regionalTables())
	if len(data) == 0 {
		return result.Response{
			Module:         InventoryModule,
			Response:       "Scan completed but no data available to write to disk",
			StatusCode:     int(result.Success),
			TablesScanned:  result.Count(attempted),
			TablesWithData: result.Count(0),
		}, nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return result.Response{}, result.Errorf(result.JSONEncodeError, "Results data could not be JSON encoded: %v", err)
	}
	if err := os.MkdirAll(w.OutputDir, 0700); err != nil {
		return result.Response{}, result.Errorf(result.FileError, "create output dir: %v", err)
	}
	filename := filepath.Join(w.OutputDir, fmt.Sprintf("%s-OCI-%d.json", w.Label, start.Unix()))
	if err := os.WriteFile(filename, encoded, 0600); err != nil {
		return result.Response{}, result.Errorf(result.FileError, "Could not write results data to file: %v", err)
	}

	zap.L().Info("Inventory written",
		zap.String("file", filename),
		zap.Int("tables_with_data", len(data)),
		zap.Int("global_tables", len(w.globalTables())),
		zap.Int("regional_tables", len(w.regionalTables())),
		zap.Strings("regions", w.Regions),
	)

	return result.Response{
		Module:         InventoryModule,
		Response:       fmt.Sprintf("Success! %s written with data from %d tables", filename, len(data)),
		StatusCode:     int(result.Success),
		OutputFile:     filename,
		TablesScanned:  result.Count(attempted),
		TablesWithData: result.Count(len(data)),
	}, nil
}

func (w *SteampipeWrapper) checkFields() error {
	var missing []string
	if w.Label == "" {
		missing = append(missing, "label")
	}
	if len(w.Regions) == 0 {
		missing = append(missing, "regions")
	}
	if len(missing) > 0 {
		return result.Errorf(result.EmptyAttribute, "Provide %s value", strings.Join(missing, ", "))
	}
	if w.CompartmentID != "" && !credentials.ValidOCID(w.CompartmentID, "compartment", "tenancy") {
		return result.Errorf(result.FieldValueError, "compartment_id %q is not a compartment OCID", w.CompartmentID)
	}
	return nil
}

// callGetData fetches one table. Failures are logged and skipped, except
// that a run whose first MaxInitialFailures queries all fail is aborted.
func (w *SteampipeWrapper) callGetData(ctx context.Context, table, region string) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := w.getData(ctx, table, region)
	if err == nil {
		w.succeeded = true
		return rows, nil
	}

	var me *result.ModuleError
	if errors.As(err, &me) && me.Code == result.PackageNotFound {
		return nil, err
	}

	w.failures++
	limit := w.MaxInitialFailures
	if limit <= 0 {
		limit = DefaultMaxInitialFailures
	}

	if marker := AccessErrorIdentifier(err); marker != "" {
		zap.L().Warn("query failed due to an authorization/authentication issue",
			zap.String("table", table), zap.String("region", region), zap.String("marker", marker))
	} else {
		zap.L().Error("query failed", zap.String("table", table), zap.String("region", region), zap.Error(err))
	}
	zap.L().Debug("query failure detail", zap.String("detail", result.Redact(err.Error())))

	if !w.succeeded && w.failures >= limit {
		return nil, err
	}
	return nil, nil
}

func (w *SteampipeWrapper) getData(ctx context.Context, table, region string) ([]interface{}, error) {
	binary := w.Binary
	if binary == "" {
		binary = "steampipe"
	}
	where := "oci_region: " + region
	if region == "" {
		where = "global"
	}

	cmd := Command{
		Name: binary,
		Args: []string{"query", w.Query(table), "--output", "json"},
	}
	if region != "" {
		cmd.Env = []string{"OCI_REGION=" + region}
	}

	started := time.Now()
	out, err := w.Runner.Run(ctx, cmd)
	zap.L().Debug("query finished", zap.String("table", table), zap.Duration("took", time.Since(started)))
	if err != nil {
		code := result.SubprocessError
		if errors.Is(err, exec.ErrNotFound) {
			code = result.PackageNotFound
		}
		return nil, &result.ModuleError{Code: code, Msg: fmt.Sprintf("Failed to run query on table: %s, %s: %v", table, where, err)}
	}

	switch {
	case out.ExitCode != 0:
		return nil, subprocessError(fmt.Sprintf("Failed to run query on table: %s, %s", table, where), out)
	case len(out.Stdout) == 0 && len(out.Stderr) > 0:
		return nil, subprocessError(fmt.Sprintf("The process was killed when attempting to query table %s, %s", table, where), out)
	case len(out.Stdout) == 0:
		return nil, subprocessError(fmt.Sprintf("Failed to run query on table: %s, %s", table, where), out)
	}

	rows, err := decodeRows(out.Stdout)
	if err != nil {
		// stdout may hold sensitive data, keep only stderr
		return nil, &result.ModuleError{
			Code:     result.SubprocessError,
			Msg:      fmt.Sprintf("The data was in an unexpected format, table: %s, %s", table, where),
			ExitCode: out.ExitCode,
			Stderr:   out.Stderr,
		}
	}
	return rows, nil
}

// decodeRows accepts both the bare array output of older engine releases
// and the {"columns": ..., "rows": ...} object of newer ones.
func decodeRows(data []byte) ([]interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case map[string]interface{}:
		rows, ok := t["rows"]
		if !ok || rows == nil {
			return nil, nil
		}
		list, ok := rows.([]interface{})
		if !ok {
			return nil, fmt.Errorf("rows is %T, want an array", rows)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected JSON %T", v)
	}
}

// AccessErrorIdentifier returns the first access-error marker found in the
// error's stderr, or "" when the failure is not auth related.
func AccessErrorIdentifier(err error) string {
	text := err.Error()
	var me *result.ModuleError
	if errors.As(err, &me) && len(me.Stderr) > 0 {
		text = string(me.Stderr)
	}
	for _, marker := range accessErrorMarkers {
		if strings.Contains(text, marker) {
			return marker
		}
	}
	return ""
}
