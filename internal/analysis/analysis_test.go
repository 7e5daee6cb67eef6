package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/probity/internal/types"
)

// fakeCompleter returns a fixed response or error
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (c *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	c.calls++
	return c.response, c.err
}

func findByCategory(findings []types.Finding, category string) []types.Finding {
	var out []types.Finding

	for _, f := range findings {
		if f.Category == category {
			out = append(out, f)
		}
	}

	return out
}

func TestAnalyze_PatternPass(t *testing.T) {
	engine := NewEngine()

	t.Run("strict pattern yields compliant", func(t *testing.T) {
		findings := engine.Analyze(context.Background(), "All data uses AES-256 with encryption at rest and TLS 1.3.", types.DocumentTypeOther)

		enc := findByCategory(findings, types.CategoryEncryption)
		require.Len(t, enc, 1)

		assert.Equal(t, types.FindingCompliant, enc[0].Type)
		assert.Equal(t, types.RiskLow, enc[0].RiskLevel)
		assert.InDelta(t, 0.8, enc[0].Confidence, 1e-9)
		assert.Equal(t, 3, enc[0].Impact) // round(0.25 * 10)
		assert.Contains(t, enc[0].Evidence, "AES-256")
	})

	t.Run("keyword majority yields unclear", func(t *testing.T) {
		findings := engine.Analyze(context.Background(), "traffic is encrypted over tls, and encryption keys rotate", types.DocumentTypeOther)

		enc := findByCategory(findings, types.CategoryEncryption)
		require.Len(t, enc, 1)

		assert.Equal(t, types.FindingUnclear, enc[0].Type)
		assert.InDelta(t, 0.6, enc[0].Confidence, 1e-9)
	})

	t.Run("empty text yields missing for every category", func(t *testing.T) {
		findings := engine.Analyze(context.Background(), "", types.DocumentTypeOther)

		for _, category := range []string{
			types.CategoryEncryption,
			types.CategoryAccessControl,
			types.CategoryDataProtection,
			types.CategoryIncidentResponse,
			types.CategoryComplianceFrameworks,
		} {
			got := findByCategory(findings, category)
			require.Len(t, got, 1, "category %s", category)
			assert.Equal(t, types.FindingMissing, got[0].Type)
			assert.InDelta(t, 0.7, got[0].Confidence, 1e-9)
			assert.Equal(t, types.RiskHigh, got[0].RiskLevel)
		}
	})
}

func TestAnalyze_AttestationSpecialization(t *testing.T) {
	engine := NewEngine()

	text := "This SOC 2 Type II report covers the Trust Services Criteria. Testing results are included. No exceptions were noted."

	findings := findByCategory(engine.Analyze(context.Background(), text, types.DocumentTypeAttestationReport), types.CategoryAttestation)
	require.NotEmpty(t, findings)

	for _, f := range findings {
		assert.Equal(t, types.FindingCompliant, f.Type)
		assert.InDelta(t, 0.9, f.Confidence, 1e-9)
		assert.Equal(t, 3, f.Impact)
	}

	labels := make([]string, 0, len(findings))
	for _, f := range findings {
		labels = append(labels, f.Description)
	}

	joined := strings.Join(labels, "|")
	assert.Contains(t, joined, "type II report")
	assert.Contains(t, joined, "trust services criteria")
	assert.Contains(t, joined, "testing results")
}

func TestAnalyze_AttestationNegationContext(t *testing.T) {
	engine := NewEngine()

	// aspirational language must not produce a compliant attestation finding
	text := "We are preparing for our Type II report and working toward the trust services criteria."

	findings := findByCategory(engine.Analyze(context.Background(), text, types.DocumentTypeAttestationReport), types.CategoryAttestation)
	assert.Empty(t, findings)
}

func TestAnalyze_PrivacySpecialization(t *testing.T) {
	engine := NewEngine()

	text := "You have the right to erasure of personal data. Our legal basis for processing is consent."

	findings := findByCategory(engine.Analyze(context.Background(), text, types.DocumentTypePrivacyPolicy), types.CategoryPrivacyCompliance)
	require.Len(t, findings, len(privacyRequirements))

	byLabel := map[string]types.Finding{}
	for _, f := range findings {
		byLabel[f.Description] = f
	}

	rights := byLabel["privacy requirement addressed: data subject rights"]
	assert.Equal(t, types.FindingCompliant, rights.Type)
	assert.Equal(t, 2, rights.Impact)

	retention := byLabel["missing privacy requirement: data retention"]
	assert.Equal(t, types.FindingMissing, retention.Type)
	assert.Equal(t, 5, retention.Impact)
}

func TestAnalyze_MissingElements(t *testing.T) {
	engine := NewEngine()

	text := "Our security policy covers access controls, encryption, incident response, and security monitoring."

	findings := findByCategory(engine.Analyze(context.Background(), text, types.DocumentTypeSecurityPolicy), types.CategoryMissingElements)
	require.Len(t, findings, 1)

	assert.Equal(t, types.FindingMissing, findings[0].Type)
	assert.Equal(t, "missing expected element: employee training", findings[0].Description)
	assert.InDelta(t, 0.8, findings[0].Confidence, 1e-9)
	assert.Equal(t, 6, findings[0].Impact)
}

func TestAnalyze_NarrativePass(t *testing.T) {
	t.Run("structured response parsed", func(t *testing.T) {
		completer := &fakeCompleter{response: `{"findings":[{"category":"encryption","finding_type":"compliant","risk_level":"low","confidence":0.85,"description":"key management documented","evidence":"keys rotate every 90 days"}]}`}
		engine := NewEngine(WithCompleter(completer))

		findings := engine.Analyze(context.Background(), "some document text", types.DocumentTypeOther)

		var narrative []types.Finding

		for _, f := range findings {
			if f.Evidence == "keys rotate every 90 days" {
				narrative = append(narrative, f)
			}
		}

		require.Len(t, narrative, 1)
		assert.Equal(t, types.FindingCompliant, narrative[0].Type)
		assert.InDelta(t, 0.85, narrative[0].Confidence, 1e-9)
	})

	t.Run("free text response becomes one unclear finding", func(t *testing.T) {
		completer := &fakeCompleter{response: strings.Repeat("the document discusses controls. ", 40)}
		engine := NewEngine(WithCompleter(completer))

		findings := findByCategory(engine.Analyze(context.Background(), "some document text", types.DocumentTypeOther), types.CategoryAIAnalysis)
		require.Len(t, findings, 1)

		assert.Equal(t, types.FindingUnclear, findings[0].Type)
		assert.LessOrEqual(t, len(findings[0].Evidence), 500)
	})

	t.Run("completion error degrades to nothing", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("rate limited")}
		engine := NewEngine(WithCompleter(completer))

		findings := findByCategory(engine.Analyze(context.Background(), "some document text", types.DocumentTypeOther), types.CategoryAIAnalysis)
		assert.Empty(t, findings)
	})

	t.Run("invalid enum values fall back to defaults", func(t *testing.T) {
		completer := &fakeCompleter{response: `{"findings":[{"category":"","finding_type":"sort of fine","risk_level":"enormous","confidence":7,"description":"","evidence":"x"}]}`}
		engine := NewEngine(WithCompleter(completer))

		var got *types.Finding

		for _, f := range engine.Analyze(context.Background(), "text", types.DocumentTypeOther) {
			if f.Evidence == "x" {
				got = &f
				break
			}
		}

		require.NotNil(t, got)
		assert.Equal(t, types.CategoryAIAnalysis, got.Category)
		assert.Equal(t, types.FindingUnclear, got.Type)
		assert.Equal(t, types.RiskMedium, got.RiskLevel)
		assert.InDelta(t, 0.7, got.Confidence, 1e-9)
	})
}

func TestAnalyze_ChunkingSubmitsMultipleCompletions(t *testing.T) {
	completer := &fakeCompleter{response: `{"findings":[]}`}
	engine := NewEngine(WithCompleter(completer), WithChunking(100, 60, 10))

	engine.Analyze(context.Background(), strings.Repeat("a", 150), types.DocumentTypeOther)

	assert.Greater(t, completer.calls, 1, "long text must be analyzed in chunks")
}

func TestChunkText(t *testing.T) {
	t.Run("short text single chunk", func(t *testing.T) {
		chunks := chunkText("hello", 8000, 4000, 200)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0])
	})

	t.Run("long text overlapping chunks", func(t *testing.T) {
		text := strings.Repeat("x", 10000)
		chunks := chunkText(text, 8000, 4000, 200)

		require.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 4000)
		assert.Len(t, chunks[1], 4000)
		assert.Len(t, chunks[2], 10000-2*3800)

		// consecutive chunks share the overlap region
		assert.Equal(t, chunks[0][3800:], chunks[1][:200])
	})
}
