package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// UnifiedGraph holds the normalized findings of one or more scans
type UnifiedGraph struct {
	Findings []Finding
	mu       sync.RWMutex
}

// NewUnifiedGraph creates a new graph instance
func NewUnifiedGraph() *UnifiedGraph {
	return &UnifiedGraph{
		Findings: make([]Finding, 0),
	}
}

// AddFindings ingests new findings, clamps severity and deduplicates.
// A finding seen again replaces the earlier copy.
func (g *UnifiedGraph) AddFindings(newFindings []Finding) {
	g.mu.Lock()
	defer g.mu.Unlock()

	index := make(map[string]int, len(g.Findings))
	for i, f := range g.Findings {
		index[f.key()] = i
	}

	for _, f := range newFindings {
		if f.Severity < 1 {
			f.Severity = 1
		}
		if f.Severity > 10 {
			f.Severity = 10
		}

		if i, ok := index[f.key()]; ok {
			g.Findings[i] = f
			continue
		}
		index[f.key()] = len(g.Findings)
		g.Findings = append(g.Findings, f)
	}
}

// Len returns the number of findings held.
func (g *UnifiedGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.Findings)
}

// StatusCounts tallies findings per scanner status.
func (g *UnifiedGraph) StatusCounts() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	counts := make(map[string]int)
	for _, f := range g.Findings {
		counts[f.Status]++
	}
	return counts
}

// Risks returns the open findings ordered by descending severity.
func (g *UnifiedGraph) Risks() []Finding {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var risks []Finding
	for _, f := range g.Findings {
		if f.IsRisk() {
			risks = append(risks, f)
		}
	}
	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Severity > risks[j].Severity
	})
	return risks
}

// GetReport returns a text summary of the open findings
func (g *UnifiedGraph) GetReport() string {
	risks := g.Risks()
	counts := g.StatusCounts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Unified Finding Graph (%d findings, %d open):\n", g.Len(), len(risks)))
	sb.WriteString(fmt.Sprintf("FAIL: %d  WARN: %d  UNKNOWN: %d  OK: %d\n",
		counts[StatusFail], counts[StatusWarn], counts[StatusUnknown], counts[StatusOK]))
	sb.WriteString("--------------------------------------------------\n")

	for _, f := range risks {
		sb.WriteString(fmt.Sprintf("[%d/10] %s %s (%s)\n", f.Severity, f.Status, f.Category, f.SourceTool))
		sb.WriteString(fmt.Sprintf("  Asset: %s", f.Asset))
		if f.Region != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", f.Region))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  Evidence: %s\n", f.Evidence))
		if f.RemediationHint != "" {
			sb.WriteString(fmt.Sprintf("  Fix: %s\n", f.RemediationHint))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
