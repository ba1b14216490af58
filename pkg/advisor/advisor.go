// Package advisor turns normalized scan findings into a narrative summary
// using a hosted language model.
package advisor

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/user/ocisec/pkg/engine"
)

//go:embed prompts/summary_prompt.md
var summaryPrompt string

// DefaultMaxFindings bounds how many findings are sent to the model.
const DefaultMaxFindings = 200

// Provider is a model backend able to summarize a report.
type Provider interface {
	Summarize(ctx context.Context, report string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	Close()
}

func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	switch providerName {
	case "", "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini requires an API key (advisor.api_key or GOOGLE_API_KEY)")
		}
		return NewGeminiProvider(ctx, apiKey, modelName)
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}

// BuildPrompt renders the risk findings, highest severity first, below the
// summary instructions.
func BuildPrompt(findings []engine.Finding, max int) string {
	if max <= 0 {
		max = DefaultMaxFindings
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(summaryPrompt))
	sb.WriteString("\n\nFindings:\n")

	risks := 0
	for _, f := range findings {
		if !f.IsRisk() {
			continue
		}
		if risks == max {
			sb.WriteString(fmt.Sprintf("... %d more findings omitted\n", countRisks(findings)-max))
			break
		}
		risks++
		sb.WriteString(fmt.Sprintf("- [%d] %s/%s %s (%s): %s", f.Severity, f.Category, f.Plugin, f.Asset, f.Region, f.Evidence))
		if f.RemediationHint != "" {
			sb.WriteString(" | action: " + f.RemediationHint)
		}
		sb.WriteString("\n")
	}
	if risks == 0 {
		sb.WriteString("(none)\n")
	}
	return sb.String()
}

func countRisks(findings []engine.Finding) int {
	n := 0
	for _, f := range findings {
		if f.IsRisk() {
			n++
		}
	}
	return n
}
