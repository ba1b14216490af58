package engine

import (
	"strings"
	"testing"
)

func TestUnifiedGraphDeduplicatesAndClamps(t *testing.T) {
	graph := NewUnifiedGraph()

	graph.AddFindings([]Finding{
		{ID: "a", SourceTool: "CloudSploit", Category: "Identity", Asset: "u1", Status: StatusFail, Severity: 15, Evidence: "no MFA"},
		{ID: "b", SourceTool: "CloudSploit", Category: "Networking", Asset: "sl1", Status: StatusWarn, Severity: 0, Evidence: "open port"},
	})
	graph.AddFindings([]Finding{
		{ID: "a", SourceTool: "CloudSploit", Category: "Identity", Asset: "u1", Status: StatusFail, Severity: 8, Evidence: "no MFA", RemediationHint: "latest"},
	})

	if graph.Len() != 2 {
		t.Fatalf("Expected 2 findings, got %d", graph.Len())
	}
	if graph.Findings[0].RemediationHint != "latest" || graph.Findings[0].Severity != 8 {
		t.Errorf("Expected latest finding to win, got %+v", graph.Findings[0])
	}
	if graph.Findings[1].Severity != 1 {
		t.Errorf("Expected severity clamped to 1, got %d", graph.Findings[1].Severity)
	}
}

func TestUnifiedGraphKeepsDistinctMessages(t *testing.T) {
	graph := NewUnifiedGraph()
	graph.AddFindings([]Finding{
		{ID: "cloudsploit-policyAdmins-global-ocid1.policy.oc1..p", SourceTool: "CloudSploit", Category: "Identity", Asset: "ocid1.policy.oc1..p", Region: "global", Status: StatusFail, Severity: 8, Evidence: "Policy Admins: allows manage all-resources"},
		{ID: "cloudsploit-policyAdmins-global-ocid1.policy.oc1..p", SourceTool: "CloudSploit", Category: "Identity", Asset: "ocid1.policy.oc1..p", Region: "global", Status: StatusFail, Severity: 8, Evidence: "Policy Admins: allows manage users"},
	})
	if graph.Len() != 2 {
		t.Fatalf("Expected both messages to be kept, got %d findings", graph.Len())
	}
}

func TestUnifiedGraphReport(t *testing.T) {
	graph := NewUnifiedGraph()
	graph.AddFindings([]Finding{
		{ID: "warn", Category: "Storage", Status: StatusWarn, Severity: 5, Asset: "bucket", Evidence: "versioning off"},
		{ID: "fail", Category: "Identity", Status: StatusFail, Severity: 8, Asset: "user", Region: "us-ashburn-1", Evidence: "no MFA", RemediationHint: "Enable MFA"},
		{ID: "ok", Category: "Compute", Status: StatusOK, Severity: 1, Asset: "vm", Evidence: "fine"},
	})

	risks := graph.Risks()
	if len(risks) != 2 || risks[0].ID != "fail" {
		t.Fatalf("Expected FAIL first among 2 risks, got %+v", risks)
	}

	report := graph.GetReport()
	if !strings.Contains(report, "3 findings, 2 open") {
		t.Errorf("Report header wrong:\n%s", report)
	}
	if !strings.Contains(report, "Fix: Enable MFA") || !strings.Contains(report, "[us-ashburn-1]") {
		t.Errorf("Report missing details:\n%s", report)
	}
	if strings.Contains(report, "fine") {
		t.Errorf("Passing checks should not be listed:\n%s", report)
	}
}

func TestSeverityForStatus(t *testing.T) {
	for status, want := range map[string]int{StatusFail: 8, StatusWarn: 5, StatusUnknown: 3, StatusOK: 1} {
		if got := SeverityForStatus(status); got != want {
			t.Errorf("SeverityForStatus(%s) = %d, want %d", status, got, want)
		}
	}
}
