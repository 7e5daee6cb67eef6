// Package analysis turns extracted document text into compliance findings.
// A deterministic pattern pass walks the indicator table, a best-effort
// narrative pass asks the language model for findings the patterns cannot
// see, and per-document-type specializations cover attestation reports and
// privacy notices. The engine never fails for malformed input; degraded
// passes simply contribute nothing.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/probity/internal/completion"
	"github.com/theopenlane/probity/internal/types"
)

const (
	// defaultChunkThreshold is the text length above which the narrative pass chunks
	defaultChunkThreshold = 8000
	// defaultChunkSize is the narrative chunk length
	defaultChunkSize = 4000
	// defaultChunkOverlap is the overlap between consecutive chunks
	defaultChunkOverlap = 200
	// evidenceLimit caps evidence text carried on a finding
	evidenceLimit = 500
	// maxEvidenceMatches caps how many strict-pattern matches are quoted
	maxEvidenceMatches = 3
)

// Analyzer produces findings from document text
type Analyzer interface {
	// Analyze inspects text declared as docType and returns findings. It
	// never returns an error; unanalyzable input yields low-confidence or
	// missing findings instead.
	Analyze(ctx context.Context, text string, docType types.DocumentType) []types.Finding
}

// Options configures the analysis engine
type Options struct {
	completer      completion.Completer
	chunkThreshold int
	chunkSize      int
	chunkOverlap   int
}

// Option is a functional option for configuring analysis
type Option func(*Options)

// WithCompleter enables the narrative language-model pass
func WithCompleter(c completion.Completer) Option {
	return func(o *Options) {
		o.completer = c
	}
}

// WithChunking overrides the narrative pass chunking parameters
func WithChunking(threshold, size, overlap int) Option {
	return func(o *Options) {
		if threshold > 0 && size > 0 && overlap >= 0 && overlap < size {
			o.chunkThreshold = threshold
			o.chunkSize = size
			o.chunkOverlap = overlap
		}
	}
}

// Engine implements Analyzer
type Engine struct {
	options *Options
}

// NewEngine creates an analysis engine with the given options
func NewEngine(opts ...Option) *Engine {
	o := &Options{
		chunkThreshold: defaultChunkThreshold,
		chunkSize:      defaultChunkSize,
		chunkOverlap:   defaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Engine{options: o}
}

// Analyze runs the pattern pass, the narrative pass, the document-type
// specialization, and the missing-elements check over the text
func (e *Engine) Analyze(ctx context.Context, text string, docType types.DocumentType) []types.Finding {
	findings := e.patternPass(text)

	findings = append(findings, e.narrativePass(ctx, text, docType)...)

	switch docType {
	case types.DocumentTypeAttestationReport:
		findings = append(findings, attestationPass(text)...)
	case types.DocumentTypePrivacyPolicy:
		findings = append(findings, privacyPass(text)...)
	}

	findings = append(findings, missingElementsPass(text, docType)...)

	log.Debug().Str("document_type", string(docType)).Int("findings", len(findings)).Msg("document analysis complete")

	return findings
}

// patternPass emits one finding per indicator category: compliant when a
// strict pattern matches, unclear when at least half the keywords are
// present, missing otherwise
func (e *Engine) patternPass(text string) []types.Finding {
	lower := strings.ToLower(text)

	findings := make([]types.Finding, 0, len(indicators))

	for _, ind := range indicators {
		var strictMatches []string

		for _, pattern := range ind.strict {
			strictMatches = append(strictMatches, pattern.FindAllString(text, maxEvidenceMatches)...)
		}

		var present []string

		for _, kw := range ind.keywords {
			if strings.Contains(lower, kw) {
				present = append(present, kw)
			}
		}

		finding := types.Finding{
			Category: ind.category,
			Impact:   int(math.Round(ind.riskWeight * 10)),
		}

		switch {
		case len(strictMatches) > 0:
			finding.Type = types.FindingCompliant
			finding.RiskLevel = types.RiskLow
			finding.Confidence = 0.8
			finding.Description = fmt.Sprintf("found compliance indicators for %s", ind.description)

			if len(strictMatches) > maxEvidenceMatches {
				strictMatches = strictMatches[:maxEvidenceMatches]
			}

			finding.Evidence = strings.Join(strictMatches, "; ")
		case len(present) >= len(ind.keywords)/2:
			finding.Type = types.FindingUnclear
			finding.RiskLevel = types.RiskMedium
			finding.Confidence = 0.6
			finding.Description = fmt.Sprintf("partial compliance indicators found for %s", ind.description)
			finding.Evidence = "keywords found: " + strings.Join(present, ", ")
		default:
			finding.Type = types.FindingMissing
			finding.RiskLevel = types.RiskHigh
			finding.Confidence = 0.7
			finding.Description = fmt.Sprintf("missing compliance indicators for %s", ind.description)
			finding.Evidence = "no relevant patterns or keywords found"
		}

		findings = append(findings, finding)
	}

	return findings
}

// narrativeSystemPrompt instructs the model to return structured findings
const narrativeSystemPrompt = `You are a compliance expert analyzing vendor security documentation. Surface compliance indicators covering encryption, access control, data protection, incident response, and compliance frameworks. Respond with JSON: {"findings":[{"category":"...","finding_type":"compliant|non_compliant|missing|unclear","risk_level":"low|medium|high|critical","confidence":0.0,"description":"...","evidence":"..."}]}`

// narrativeFinding is the wire shape of one model-reported finding
type narrativeFinding struct {
	Category    string  `json:"category"`
	FindingType string  `json:"finding_type"`
	RiskLevel   string  `json:"risk_level"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	Evidence    string  `json:"evidence"`
}

// narrativePass submits the text (chunked when large) to the language model
// and parses responses into findings. Completions run one at a time; any
// failure degrades to zero findings for that chunk.
func (e *Engine) narrativePass(ctx context.Context, text string, docType types.DocumentType) []types.Finding {
	if e.options.completer == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	chunks := chunkText(text, e.options.chunkThreshold, e.options.chunkSize, e.options.chunkOverlap)

	var findings []types.Finding

	for i, chunk := range chunks {
		userPrompt := fmt.Sprintf("Document Type: %s\n\nDocument Content:\n%s", docType, chunk)

		response, err := e.options.completer.Complete(ctx, narrativeSystemPrompt, userPrompt)
		if err != nil {
			log.Warn().Err(err).Int("chunk", i).Msg("narrative analysis failed")
			continue
		}

		findings = append(findings, parseNarrativeResponse(response)...)
	}

	return findings
}

// parseNarrativeResponse converts a model response into findings. Structured
// JSON is used directly; anything else becomes a single unclear finding with
// the raw response as capped evidence.
func parseNarrativeResponse(response string) []types.Finding {
	payload := strings.TrimSpace(response)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)

	var wrapper struct {
		Findings []narrativeFinding `json:"findings"`
	}

	var bare []narrativeFinding

	var parsed []narrativeFinding

	switch {
	case json.Unmarshal([]byte(payload), &wrapper) == nil && wrapper.Findings != nil:
		parsed = wrapper.Findings
	case json.Unmarshal([]byte(payload), &bare) == nil && bare != nil:
		parsed = bare
	default:
		return []types.Finding{{
			Category:    types.CategoryAIAnalysis,
			Type:        types.FindingUnclear,
			RiskLevel:   types.RiskMedium,
			Confidence:  0.7,
			Impact:      5,
			Description: "narrative analysis result",
			Evidence:    capEvidence(payload),
		}}
	}

	findings := make([]types.Finding, 0, len(parsed))

	for _, nf := range parsed {
		findings = append(findings, types.Finding{
			Category:    defaultString(nf.Category, types.CategoryAIAnalysis),
			Type:        validFindingType(nf.FindingType),
			RiskLevel:   validRiskLevel(nf.RiskLevel),
			Confidence:  clamp01(nf.Confidence, 0.7),
			Impact:      5,
			Description: defaultString(nf.Description, "narrative analysis result"),
			Evidence:    capEvidence(nf.Evidence),
		})
	}

	return findings
}

// attestationPass scans attestation report text for report elements and
// emits a high-confidence compliant finding per affirmative match
func attestationPass(text string) []types.Finding {
	var findings []types.Finding

	for _, ap := range attestationPatterns {
		evidence, ok := matchesAffirmatively(ap.pattern, text)
		if !ok {
			continue
		}

		findings = append(findings, types.Finding{
			Category:    types.CategoryAttestation,
			Type:        types.FindingCompliant,
			RiskLevel:   types.RiskLow,
			Confidence:  0.9,
			Impact:      3,
			Description: fmt.Sprintf("attestation element identified: %s", ap.label),
			Evidence:    evidence,
		})
	}

	return findings
}

// privacyPass checks the required-disclosure list against privacy notice
// text, emitting compliant or missing per requirement
func privacyPass(text string) []types.Finding {
	findings := make([]types.Finding, 0, len(privacyRequirements))

	for _, req := range privacyRequirements {
		found := false

		for _, pattern := range req.patterns {
			if pattern.MatchString(text) {
				found = true
				break
			}
		}

		finding := types.Finding{
			Category:   types.CategoryPrivacyCompliance,
			Confidence: 0.7,
			Evidence:   "pattern analysis",
		}

		if found {
			finding.Type = types.FindingCompliant
			finding.RiskLevel = types.RiskLow
			finding.Impact = 2
			finding.Description = fmt.Sprintf("privacy requirement addressed: %s", req.label)
		} else {
			finding.Type = types.FindingMissing
			finding.RiskLevel = types.RiskMedium
			finding.Impact = 5
			finding.Description = fmt.Sprintf("missing privacy requirement: %s", req.label)
		}

		findings = append(findings, finding)
	}

	return findings
}

// missingElementsPass emits a missing finding for every expected term the
// document type requires but the text lacks
func missingElementsPass(text string, docType types.DocumentType) []types.Finding {
	elements, ok := expectedElements[docType]
	if !ok {
		return nil
	}

	lower := strings.ToLower(text)

	var findings []types.Finding

	for _, element := range elements {
		if strings.Contains(lower, element) {
			continue
		}

		findings = append(findings, types.Finding{
			Category:    types.CategoryMissingElements,
			Type:        types.FindingMissing,
			RiskLevel:   types.RiskMedium,
			Confidence:  0.8,
			Impact:      6,
			Description: fmt.Sprintf("missing expected element: %s", element),
			Evidence:    "element not found in document",
		})
	}

	return findings
}

// chunkText splits text into overlapping chunks when it exceeds threshold
func chunkText(text string, threshold, size, overlap int) []string {
	if len(text) <= threshold {
		return []string{text}
	}

	step := size - overlap

	var chunks []string

	for start := 0; start < len(text); start += step {
		end := min(start+size, len(text))
		chunks = append(chunks, text[start:end])

		if end == len(text) {
			break
		}
	}

	return chunks
}

func capEvidence(s string) string {
	if len(s) > evidenceLimit {
		return s[:evidenceLimit]
	}

	return s
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}

	return s
}

func validFindingType(s string) types.FindingType {
	switch types.FindingType(s) {
	case types.FindingCompliant, types.FindingNonCompliant, types.FindingMissing, types.FindingUnclear:
		return types.FindingType(s)
	}

	return types.FindingUnclear
}

func validRiskLevel(s string) types.RiskLevel {
	switch types.RiskLevel(s) {
	case types.RiskLow, types.RiskMedium, types.RiskHigh, types.RiskCritical:
		return types.RiskLevel(s)
	}

	return types.RiskMedium
}

func clamp01(v, fallback float64) float64 {
	if v <= 0 || v > 1 {
		return fallback
	}

	return v
}
