package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// SnapshotDiff groups open findings by how they changed against a baseline
type SnapshotDiff struct {
	New       []Finding
	Fixed     []Finding
	Unchanged []Finding
}

type snapshotFile struct {
	Findings []Finding `json:"findings"`
}

// SaveSnapshot writes all findings to path as JSON.
func (g *UnifiedGraph) SaveSnapshot(path string) error {
	g.mu.RLock()
	data, err := json.MarshalIndent(snapshotFile{Findings: g.Findings}, "", "  ")
	g.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// LoadSnapshot reads a snapshot file and adds its findings to the graph.
func (g *UnifiedGraph) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	g.AddFindings(sf.Findings)
	return nil
}

// CompareSnapshot diffs the open findings of g against baseline.
func (g *UnifiedGraph) CompareSnapshot(baseline *UnifiedGraph) SnapshotDiff {
	current := g.Risks()
	previous := baseline.Risks()

	seen := make(map[string]bool, len(previous))
	for _, f := range previous {
		seen[f.key()] = true
	}

	var diff SnapshotDiff
	still := make(map[string]bool, len(current))
	for _, f := range current {
		still[f.key()] = true
		if seen[f.key()] {
			diff.Unchanged = append(diff.Unchanged, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}
	for _, f := range previous {
		if !still[f.key()] {
			diff.Fixed = append(diff.Fixed, f)
		}
	}
	return diff
}
