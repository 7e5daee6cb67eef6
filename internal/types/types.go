// Package types holds the shared vocabulary for vendor risk assessments:
// findings, risk criteria, scores, and follow-up actions. Engines exchange
// these values; none of them carry behavior beyond small helpers.
package types

import "time"

// DocumentType categorizes a discovered compliance document or page
type DocumentType string

const (
	// DocumentTypeAttestationReport identifies third-party audit reports (SOC 2, ISO attestations)
	DocumentTypeAttestationReport DocumentType = "attestation_report"
	// DocumentTypePrivacyPolicy identifies privacy policies and notices
	DocumentTypePrivacyPolicy DocumentType = "privacy_policy"
	// DocumentTypeDPA identifies data processing agreements and addenda
	DocumentTypeDPA DocumentType = "dpa"
	// DocumentTypeSecurityPolicy identifies security policy and practices pages
	DocumentTypeSecurityPolicy DocumentType = "security_policy"
	// DocumentTypeIncidentResponse identifies incident response and breach notification pages
	DocumentTypeIncidentResponse DocumentType = "incident_response"
	// DocumentTypeOther identifies compliance material that fits no specific type
	DocumentTypeOther DocumentType = "other"
)

// FindingType classifies what an analysis pass concluded about an indicator
type FindingType string

const (
	// FindingCompliant indicates affirmative evidence of the control or disclosure
	FindingCompliant FindingType = "compliant"
	// FindingNonCompliant indicates evidence the control is absent or contradicted
	FindingNonCompliant FindingType = "non_compliant"
	// FindingMissing indicates the expected material was not present at all
	FindingMissing FindingType = "missing"
	// FindingUnclear indicates partial or ambiguous evidence
	FindingUnclear FindingType = "unclear"
)

// RiskLevel grades the severity of a finding or an overall assessment
type RiskLevel string

const (
	// RiskLow is the lowest severity grade
	RiskLow RiskLevel = "low"
	// RiskMedium is the default severity grade
	RiskMedium RiskLevel = "medium"
	// RiskHigh marks findings or assessments needing prompt attention
	RiskHigh RiskLevel = "high"
	// RiskCritical marks findings or assessments needing immediate attention
	RiskCritical RiskLevel = "critical"
)

// Finding category constants. Categories are open strings (analysis passes
// may emit others) but these are the ones the scoring tables group on.
const (
	CategoryEncryption           = "encryption"
	CategoryAccessControl        = "access_control"
	CategoryDataProtection       = "data_protection"
	CategoryNetworkSecurity      = "network_security"
	CategoryIncidentResponse     = "incident_response"
	CategoryComplianceFrameworks = "compliance_frameworks"
	CategoryAttestation          = "attestation"
	CategoryPrivacyCompliance    = "privacy_compliance"
	CategoryMissingElements      = "missing_elements"
	CategoryAIAnalysis           = "ai_analysis"
)

// Finding is a single classified observation about a document's compliance
// posture. Findings are immutable once produced and scoped to one document
// within one assessment run.
type Finding struct {
	// Category is the indicator category the finding belongs to
	Category string `json:"category"`
	// Type classifies the conclusion (compliant, non_compliant, missing, unclear)
	Type FindingType `json:"finding_type"`
	// RiskLevel grades the severity of the finding
	RiskLevel RiskLevel `json:"risk_level"`
	// Confidence is the analyzer's confidence in the conclusion, 0.0-1.0
	Confidence float64 `json:"confidence"`
	// Impact is the business impact of the finding on a 1-10 scale
	Impact int `json:"impact"`
	// Description is a human-readable summary of the finding
	Description string `json:"description"`
	// Evidence is the supporting quote or match list from the source text
	Evidence string `json:"evidence,omitempty"`
	// SourceURL is the document URL the finding was derived from
	SourceURL string `json:"source_url,omitempty"`
}

// Sensitivity levels for RiskCriteria.DataSensitivity and BusinessCriticality
const (
	SensitivityLow      = "low"
	SensitivityMedium   = "medium"
	SensitivityHigh     = "high"
	SensitivityCritical = "critical"
)

// Vendor access levels for RiskCriteria.VendorAccessLevel
const (
	AccessReadOnly = "read_only"
	AccessLimited  = "limited"
	AccessFull     = "full"
	AccessAdmin    = "admin"
)

// RiskCriteria is the caller-supplied profile describing how sensitive and
// critical the vendor relationship is. Zero values are filled in by
// DefaultCriteria before scoring.
type RiskCriteria struct {
	// DataSensitivity is the sensitivity of data shared with the vendor (low, medium, high, critical)
	DataSensitivity string `json:"data_sensitivity,omitempty"`
	// GeographicLocations lists the countries or regions the vendor operates in
	GeographicLocations []string `json:"geographic_locations,omitempty"`
	// RegulatoryExposure lists regulations applicable to the relationship (GDPR, HIPAA, ...)
	RegulatoryExposure []string `json:"regulatory_exposure,omitempty"`
	// VendorAccessLevel describes the vendor's access to internal systems (read_only, limited, full, admin)
	VendorAccessLevel string `json:"vendor_access_level,omitempty"`
	// BusinessCriticality is how critical the vendor is to operations (low, medium, high, critical)
	BusinessCriticality string `json:"business_criticality,omitempty"`
}

// Normalize fills unset criteria fields with conservative defaults
func (c RiskCriteria) Normalize() RiskCriteria {
	if c.DataSensitivity == "" {
		c.DataSensitivity = SensitivityMedium
	}

	if len(c.GeographicLocations) == 0 {
		c.GeographicLocations = []string{"US"}
	}

	if len(c.RegulatoryExposure) == 0 {
		c.RegulatoryExposure = []string{"SOC2"}
	}

	if c.VendorAccessLevel == "" {
		c.VendorAccessLevel = AccessLimited
	}

	if c.BusinessCriticality == "" {
		c.BusinessCriticality = SensitivityMedium
	}

	return c
}

// DefaultCriteria returns the criteria profile used when the caller supplies none
func DefaultCriteria() RiskCriteria {
	return RiskCriteria{}.Normalize()
}

// ScoreBreakdown holds the four component risk scores, each 0-100 where
// higher means more risk
type ScoreBreakdown struct {
	// DataSecurity covers encryption, access control, and data protection findings
	DataSecurity float64 `json:"data_security"`
	// Privacy covers privacy compliance findings adjusted for regulatory exposure
	Privacy float64 `json:"privacy"`
	// Compliance covers framework certification coverage
	Compliance float64 `json:"compliance"`
	// Operational covers incident response and operational findings scaled by criticality
	Operational float64 `json:"operational"`
}

// Priority levels for follow-up actions
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Follow-up action types
const (
	ActionDocumentRequest = "document_request"
	ActionClarification   = "clarification"
	ActionUrgentClarify   = "urgent_clarification"
	ActionRiskReview      = "risk_review"
)

// FollowUpAction is an outbound communication or internal task generated
// from assessment findings
type FollowUpAction struct {
	// ActionType identifies the kind of follow-up (document_request, clarification, ...)
	ActionType string `json:"action_type"`
	// Priority orders the action queue (low, medium, high, urgent)
	Priority string `json:"priority"`
	// Subject is the communication subject line
	Subject string `json:"subject"`
	// Message is the communication body
	Message string `json:"message"`
	// Recipient is the vendor contact address the action targets
	Recipient string `json:"recipient,omitempty"`
	// DueDate is when a response is expected
	DueDate time.Time `json:"due_date"`
	// AttemptCount tracks how many times the action has been processed while overdue
	AttemptCount int `json:"attempt_count"`
	// Escalated marks actions that exhausted their attempts; escalated actions
	// are excluded from normal send processing
	Escalated bool `json:"escalated"`
}

// DocumentSummary describes one retrieved document in an assessment result
type DocumentSummary struct {
	// Type is the classified document type
	Type DocumentType `json:"document_type"`
	// Title is the extracted page or document title
	Title string `json:"title"`
	// URL is the source URL the document was retrieved from
	URL string `json:"url"`
	// ContentHash is the hex SHA-256 digest of the raw bytes
	ContentHash string `json:"content_hash,omitempty"`
	// ByteSize is the raw document size in bytes
	ByteSize int `json:"byte_size"`
	// Location is where the raw bytes were archived, empty when archiving is disabled
	Location string `json:"location,omitempty"`
}

// AssessmentResult is the complete output of one vendor assessment run
type AssessmentResult struct {
	// ID uniquely identifies the assessment run
	ID string `json:"id"`
	// Domain is the vendor domain that was assessed
	Domain string `json:"domain"`
	// OverallScore is the weighted risk score, 0-100, higher is riskier
	OverallScore float64 `json:"overall_score"`
	// Scores holds the four component scores
	Scores ScoreBreakdown `json:"component_scores"`
	// RiskCategory is the grade derived from the overall score
	RiskCategory RiskLevel `json:"risk_category"`
	// KeyRiskFactors lists the most significant contributors to the score
	KeyRiskFactors []string `json:"key_risk_factors,omitempty"`
	// Recommendations lists suggested remediation or diligence steps
	Recommendations []string `json:"recommendations,omitempty"`
	// RequiresHumanReview flags assessments that need analyst attention
	RequiresHumanReview bool `json:"requires_human_review"`
	// Findings holds every finding produced during the run
	Findings []Finding `json:"findings"`
	// Documents summarizes the retrieved source material
	Documents []DocumentSummary `json:"documents"`
	// FollowUpActions holds the generated follow-up queue
	FollowUpActions []FollowUpAction `json:"follow_up_actions"`
	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the run finished
	CompletedAt time.Time `json:"completed_at"`
}
