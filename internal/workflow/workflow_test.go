package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/probity/internal/types"
)

var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(opts...)
}

func findActions(actions []types.FollowUpAction, actionType string) []types.FollowUpAction {
	var out []types.FollowUpAction

	for _, a := range actions {
		if a.ActionType == actionType {
			out = append(out, a)
		}
	}

	return out
}

func TestGenerateActions_RuleTable(t *testing.T) {
	engine := newTestEngine()

	testCases := []struct {
		name       string
		findings   []types.Finding
		actionType string
		priority   string
		dueDays    int
		subject    string
	}{
		{
			name: "missing compliance framework",
			findings: []types.Finding{
				{Category: types.CategoryComplianceFrameworks, Type: types.FindingMissing, RiskLevel: types.RiskHigh},
			},
			actionType: types.ActionDocumentRequest,
			priority:   types.PriorityHigh,
			dueDays:    5,
			subject:    "Security Assessment Follow-up: Missing Compliance Framework",
		},
		{
			name: "missing attestation also triggers the framework rule",
			findings: []types.Finding{
				{Category: types.CategoryAttestation, Type: types.FindingMissing, RiskLevel: types.RiskHigh},
			},
			actionType: types.ActionDocumentRequest,
			priority:   types.PriorityHigh,
			dueDays:    5,
			subject:    "Security Assessment Follow-up: Missing Compliance Framework",
		},
		{
			name: "missing privacy documentation",
			findings: []types.Finding{
				{Category: types.CategoryPrivacyCompliance, Type: types.FindingMissing, RiskLevel: types.RiskMedium},
			},
			actionType: types.ActionDocumentRequest,
			priority:   types.PriorityMedium,
			dueDays:    7,
			subject:    "Security Assessment Follow-up: Missing Privacy Documentation",
		},
		{
			name: "unclear encryption practices",
			findings: []types.Finding{
				{Category: types.CategoryEncryption, Type: types.FindingUnclear, RiskLevel: types.RiskMedium},
			},
			actionType: types.ActionClarification,
			priority:   types.PriorityHigh,
			dueDays:    3,
			subject:    "Security Assessment Follow-up: Unclear Encryption Practices",
		},
		{
			name: "critical finding",
			findings: []types.Finding{
				{Category: types.CategoryAccessControl, Type: types.FindingNonCompliant, RiskLevel: types.RiskCritical},
			},
			actionType: types.ActionUrgentClarify,
			priority:   types.PriorityUrgent,
			dueDays:    2,
			subject:    "Security Assessment Follow-up: Critical Compliance Gaps",
		},
		{
			name: "three high findings trigger risk review",
			findings: []types.Finding{
				{Category: types.CategoryEncryption, Type: types.FindingUnclear, RiskLevel: types.RiskHigh},
				{Category: types.CategoryAccessControl, Type: types.FindingUnclear, RiskLevel: types.RiskHigh},
				{Category: types.CategoryNetworkSecurity, Type: types.FindingUnclear, RiskLevel: types.RiskHigh},
			},
			actionType: types.ActionRiskReview,
			priority:   types.PriorityHigh,
			dueDays:    5,
			subject:    "Security Assessment Follow-up: High Risk Vendor Review",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actions, _ := engine.GenerateActions(tc.findings, "Acme Corp", "security@acme.example.com")

			matched := findActions(actions, tc.actionType)
			require.NotEmpty(t, matched)

			action := matched[0]
			assert.Equal(t, tc.priority, action.Priority)
			assert.Equal(t, tc.subject, action.Subject)
			assert.Equal(t, "security@acme.example.com", action.Recipient)
			assert.Equal(t, fixedNow.AddDate(0, 0, tc.dueDays), action.DueDate)
			assert.Contains(t, action.Message, "Acme Corp")
			assert.Zero(t, action.AttemptCount)
			assert.False(t, action.Escalated)
		})
	}
}

func TestGenerateActions_NoFindingsNoRuleActions(t *testing.T) {
	engine := newTestEngine()

	actions, audit := engine.GenerateActions(nil, "Acme Corp", "security@acme.example.com")

	assert.Empty(t, actions)

	// workflow start is still recorded
	require.Len(t, audit, 1)
	assert.Equal(t, EventWorkflowStarted, audit[0].EventType)
}

func TestGenerateActions_ConsolidatesMissingByCategory(t *testing.T) {
	engine := newTestEngine()

	findings := []types.Finding{
		{Category: types.CategoryMissingElements, Type: types.FindingMissing, Description: "missing expected element: management assertion"},
		{Category: types.CategoryMissingElements, Type: types.FindingMissing, Description: "missing expected element: testing procedures"},
		{Category: types.CategoryIncidentResponse, Type: types.FindingMissing, Description: "missing compliance indicators for incident response"},
	}

	actions, _ := engine.GenerateActions(findings, "Acme Corp", "security@acme.example.com")

	requests := findActions(actions, types.ActionDocumentRequest)

	var consolidated []types.FollowUpAction

	for _, r := range requests {
		if r.Subject == "Missing Missing Elements Documentation" {
			consolidated = append(consolidated, r)
		}
	}

	// one consolidated request for the two missing_elements findings, none for
	// the single incident_response finding
	require.Len(t, consolidated, 1)

	action := consolidated[0]
	assert.Equal(t, types.PriorityMedium, action.Priority)
	assert.Equal(t, fixedNow.AddDate(0, 0, consolidatedDueDays), action.DueDate)
	assert.Contains(t, action.Message, "management assertion")
	assert.Contains(t, action.Message, "testing procedures")

	for _, r := range requests {
		assert.NotEqual(t, "Missing Incident Response Documentation", r.Subject)
	}
}

func TestGenerateActions_AuditTrail(t *testing.T) {
	engine := newTestEngine()

	findings := []types.Finding{
		{Category: types.CategoryComplianceFrameworks, Type: types.FindingMissing, RiskLevel: types.RiskHigh},
	}

	actions, audit := engine.GenerateActions(findings, "Acme Corp", "security@acme.example.com")

	require.Len(t, actions, 1)
	require.Len(t, audit, 2)

	assert.Equal(t, EventWorkflowStarted, audit[0].EventType)
	assert.Equal(t, EventActionGenerated, audit[1].EventType)

	for _, entry := range audit {
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, fixedNow, entry.Timestamp)
	}
}

func TestProcessQueue_OverdueGainsAttempt(t *testing.T) {
	engine := newTestEngine()

	actions := []types.FollowUpAction{
		{Subject: "overdue", DueDate: fixedNow.AddDate(0, 0, -1)},
		{Subject: "current", DueDate: fixedNow.AddDate(0, 0, 3)},
	}

	updated, stats, audit := engine.ProcessQueue(actions)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 2, stats.Sendable)
	assert.Zero(t, stats.Escalated)
	assert.Empty(t, audit)

	assert.Equal(t, 1, updated[0].AttemptCount)
	assert.Zero(t, updated[1].AttemptCount)

	// inputs are not mutated
	assert.Zero(t, actions[0].AttemptCount)
}

func TestProcessQueue_EscalatesOnce(t *testing.T) {
	engine := newTestEngine(WithMaxAttempts(2))

	actions := []types.FollowUpAction{
		{Subject: "stubborn", DueDate: fixedNow.AddDate(0, 0, -1), AttemptCount: 1},
	}

	updated, stats, audit := engine.ProcessQueue(actions)

	require.True(t, updated[0].Escalated)
	assert.Equal(t, 2, updated[0].AttemptCount)
	assert.Equal(t, 1, stats.Escalated)
	assert.Zero(t, stats.Sendable)

	require.Len(t, audit, 1)
	assert.Equal(t, EventActionEscalated, audit[0].EventType)

	// a second pass leaves the escalated action untouched
	final, stats, audit := engine.ProcessQueue(updated)

	assert.True(t, final[0].Escalated)
	assert.Equal(t, 2, final[0].AttemptCount)
	assert.Zero(t, stats.Escalated)
	assert.Zero(t, stats.Overdue)
	assert.Zero(t, stats.Sendable)
	assert.Empty(t, audit)
}

func TestProcessQueue_Empty(t *testing.T) {
	engine := newTestEngine()

	updated, stats, audit := engine.ProcessQueue(nil)

	assert.Empty(t, updated)
	assert.Zero(t, stats.Processed)
	assert.Empty(t, audit)
}
