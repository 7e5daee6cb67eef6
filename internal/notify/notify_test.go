package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/probity/internal/types"
)

func sampleResult() *types.AssessmentResult {
	return &types.AssessmentResult{
		ID:           "run-1",
		Domain:       "acme.com",
		OverallScore: 72.5,
		RiskCategory: types.RiskHigh,
		Scores: types.ScoreBreakdown{
			DataSecurity: 74,
			Privacy:      60,
			Compliance:   68,
			Operational:  60,
		},
		KeyRiskFactors:      []string{"missing critical security controls", "GDPR compliance gaps identified"},
		RequiresHumanReview: true,
		Documents: []types.DocumentSummary{
			{Type: types.DocumentTypeSecurityPolicy, URL: "https://acme.com/security"},
		},
		FollowUpActions: []types.FollowUpAction{
			{ActionType: types.ActionDocumentRequest, Priority: types.PriorityHigh},
		},
	}
}

func TestNewSlackNotifier_MissingWebhookURL(t *testing.T) {
	_, err := NewSlackNotifier("")
	assert.ErrorIs(t, err, ErrMissingWebhookURL)
}

func TestNotifyAssessment(t *testing.T) {
	var received Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewSlackNotifier(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	require.NoError(t, notifier.NotifyAssessment(context.Background(), sampleResult()))

	assert.Contains(t, received.Text, "acme.com")
	assert.Contains(t, received.Text, "72.5")

	require.NotEmpty(t, received.Blocks)
	assert.Equal(t, "header", received.Blocks[0].Type)
	assert.Contains(t, received.Blocks[0].Text.Text, "acme.com")
}

func TestNotifyAssessment_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier, err := NewSlackNotifier(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	err = notifier.NotifyAssessment(context.Background(), sampleResult())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestBuildAssessmentMessage(t *testing.T) {
	msg := BuildAssessmentMessage(sampleResult())

	require.GreaterOrEqual(t, len(msg.Blocks), 2)

	section := msg.Blocks[1]
	assert.Equal(t, "section", section.Type)

	joined := ""
	for _, f := range section.Fields {
		joined += f.Text + "\n"
	}

	assert.Contains(t, joined, "72.5 (high)")
	assert.Contains(t, joined, "*Documents Analyzed:*\n1")
	assert.Contains(t, joined, "*Human Review:*\nRequired")
	assert.Contains(t, joined, "*Follow-up Actions:*\n1")

	// risk factor bullets follow the summary section
	assert.Contains(t, msg.Blocks[2].Text.Text, "missing critical security controls")
}
