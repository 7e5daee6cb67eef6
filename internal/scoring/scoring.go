// Package scoring computes vendor risk scores from compliance findings and
// the caller's risk criteria. Scoring is pure: the same findings and criteria
// always produce the same scores. Higher scores mean more risk. The weighting
// constants are empirically chosen defaults and configurable, not normative.
package scoring

import (
	"fmt"
	"math"

	"github.com/theopenlane/probity/internal/types"
)

const (
	// neutralScore is used for categories and runs with no findings
	neutralScore = 50.0
	// complianceBaseScore is the starting compliance component score
	complianceBaseScore = 60.0
	// complianceImprovement is subtracted per compliant framework finding
	complianceImprovement = 5.0
	// compliancePenalty is added per missing framework finding
	compliancePenalty = 8.0
	// regulatoryPenaltyPerItem is added to the privacy score per privacy regulation
	regulatoryPenaltyPerItem = 10.0
	// regulatoryPenaltyCap bounds the total privacy regulation penalty
	regulatoryPenaltyCap = 30.0
	// defaultReviewThreshold is the overall score at which human review is forced
	defaultReviewThreshold = 85.0
	// highFindingReviewCount forces review when this many high or critical findings exist
	highFindingReviewCount = 3
	// lowConfidenceReviewCount forces review when this many uncertain, high-impact findings exist
	lowConfidenceReviewCount = 2
	// lowConfidenceThreshold marks a finding as too uncertain to act on automatically
	lowConfidenceThreshold = 0.6
	// highImpactThreshold marks a finding as high impact
	highImpactThreshold = 7
)

// findingTypeScores maps finding types to raw risk contributions; higher is worse
var findingTypeScores = map[types.FindingType]float64{
	types.FindingCompliant:    20,
	types.FindingUnclear:      60,
	types.FindingNonCompliant: 80,
	types.FindingMissing:      90,
}

// geographicMultipliers adjusts for vendor operating locations; unknown
// locations carry the elevated default
var geographicMultipliers = map[string]float64{
	"US": 1.0,
	"EU": 1.0,
	"UK": 1.0,
	"CA": 1.0,
	"AU": 1.0,
}

// geographicDefaultMultiplier applies to locations outside the known table
const geographicDefaultMultiplier = 1.2

// regulatoryMultipliers adjusts for regulatory complexity
var regulatoryMultipliers = map[string]float64{
	"GDPR":     1.3,
	"HIPAA":    1.4,
	"PCI_DSS":  1.2,
	"SOX":      1.3,
	"CCPA":     1.1,
	"SOC2":     1.0,
	"ISO27001": 0.9,
}

// regulatoryDefaultMultiplier applies to regulations outside the known table
const regulatoryDefaultMultiplier = 1.1

// sensitivityMultipliers adjusts for the sensitivity of shared data
var sensitivityMultipliers = map[string]float64{
	types.SensitivityLow:      0.8,
	types.SensitivityMedium:   1.0,
	types.SensitivityHigh:     1.3,
	types.SensitivityCritical: 1.6,
}

// accessMultipliers adjusts for the vendor's access to internal systems
var accessMultipliers = map[string]float64{
	types.AccessReadOnly: 0.9,
	types.AccessLimited:  1.0,
	types.AccessFull:     1.2,
	types.AccessAdmin:    1.4,
}

// criticalityMultipliers scales the operational score by business criticality
var criticalityMultipliers = map[string]float64{
	types.SensitivityLow:      0.8,
	types.SensitivityMedium:   1.0,
	types.SensitivityHigh:     1.2,
	types.SensitivityCritical: 1.4,
}

// privacyRegulations are the regulatory exposures that add privacy penalty
var privacyRegulations = map[string]struct{}{
	"GDPR":   {},
	"CCPA":   {},
	"PIPEDA": {},
}

// Weights holds the component weights for the overall score; they must sum
// to 1.0 for a neutral finding set to score neutral
type Weights struct {
	// DataSecurity weights the data security component
	DataSecurity float64 `json:"dataSecurity" koanf:"dataSecurity" default:"0.3"`
	// Privacy weights the privacy component
	Privacy float64 `json:"privacy" koanf:"privacy" default:"0.25"`
	// Compliance weights the compliance component
	Compliance float64 `json:"compliance" koanf:"compliance" default:"0.2"`
	// Operational weights the operational component
	Operational float64 `json:"operational" koanf:"operational" default:"0.25"`
}

// DefaultWeights returns the default component weighting
func DefaultWeights() Weights {
	return Weights{
		DataSecurity: 0.3,
		Privacy:      0.25,
		Compliance:   0.2,
		Operational:  0.25,
	}
}

// Options configures the scoring engine
type Options struct {
	weights         Weights
	reviewThreshold float64
}

// Option is a functional option for configuring scoring
type Option func(*Options)

// WithWeights overrides the component weights
func WithWeights(w Weights) Option {
	return func(o *Options) {
		if w.DataSecurity+w.Privacy+w.Compliance+w.Operational > 0 {
			o.weights = w
		}
	}
}

// WithReviewThreshold overrides the human-review score threshold
func WithReviewThreshold(t float64) Option {
	return func(o *Options) {
		if t > 0 {
			o.reviewThreshold = t
		}
	}
}

// Engine computes risk scores; safe for concurrent use
type Engine struct {
	options *Options
}

// NewEngine creates a scoring engine with the given options
func NewEngine(opts ...Option) *Engine {
	o := &Options{
		weights:         DefaultWeights(),
		reviewThreshold: defaultReviewThreshold,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Engine{options: o}
}

// Score computes the overall risk score and the four component scores. An
// empty finding set scores neutral across the board.
func (e *Engine) Score(findings []types.Finding, criteria types.RiskCriteria) (float64, types.ScoreBreakdown) {
	criteria = criteria.Normalize()

	if len(findings) == 0 {
		neutral := types.ScoreBreakdown{
			DataSecurity: neutralScore,
			Privacy:      neutralScore,
			Compliance:   neutralScore,
			Operational:  neutralScore,
		}

		return neutralScore, neutral
	}

	components := types.ScoreBreakdown{
		DataSecurity: dataSecurityScore(findings, criteria),
		Privacy:      privacyScore(findings, criteria),
		Compliance:   complianceScore(findings),
		Operational:  operationalScore(findings, criteria),
	}

	w := e.options.weights

	overall := components.DataSecurity*w.DataSecurity +
		components.Privacy*w.Privacy +
		components.Compliance*w.Compliance +
		components.Operational*w.Operational

	overall *= maxMultiplier(criteria)

	return clampScore(overall), components
}

// RiskCategory grades an overall score
func RiskCategory(score float64) types.RiskLevel {
	switch {
	case score >= 80:
		return types.RiskCritical
	case score >= 65:
		return types.RiskHigh
	case score >= 40:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// RequiresHumanReview reports whether the assessment needs analyst attention:
// the overall score crossed the review threshold, any finding is critical,
// high/critical findings reached the review count, or enough high-impact
// findings are too uncertain to act on automatically
func (e *Engine) RequiresHumanReview(score float64, findings []types.Finding) bool {
	if score >= e.options.reviewThreshold {
		return true
	}

	high := 0
	uncertain := 0

	for _, f := range findings {
		if f.RiskLevel == types.RiskCritical {
			return true
		}

		if f.RiskLevel == types.RiskHigh {
			high++
		}

		if f.Confidence < lowConfidenceThreshold && f.Impact >= highImpactThreshold {
			uncertain++
		}
	}

	return high >= highFindingReviewCount || uncertain >= lowConfidenceReviewCount
}

// dataSecurityScore averages the security categories, weighting encryption
// more heavily when the shared data is sensitive
func dataSecurityScore(findings []types.Finding, criteria types.RiskCriteria) float64 {
	encryptionWeight := 0.3
	if criteria.DataSensitivity == types.SensitivityHigh || criteria.DataSensitivity == types.SensitivityCritical {
		encryptionWeight = 0.4
	}

	// remaining weight split evenly across the other three categories
	otherWeight := (1.0 - encryptionWeight) / 3.0

	return categoryScore(findings, types.CategoryEncryption)*encryptionWeight +
		categoryScore(findings, types.CategoryAccessControl)*otherWeight +
		categoryScore(findings, types.CategoryNetworkSecurity)*otherWeight +
		categoryScore(findings, types.CategoryDataProtection)*otherWeight
}

// privacyScore scores privacy findings plus a capped penalty per privacy
// regulation in scope
func privacyScore(findings []types.Finding, criteria types.RiskCriteria) float64 {
	score := categoryScore(findings, types.CategoryPrivacyCompliance)

	penalty := 0.0

	for _, regulation := range criteria.RegulatoryExposure {
		if _, ok := privacyRegulations[regulation]; ok {
			penalty += regulatoryPenaltyPerItem
		}
	}

	score += math.Min(penalty, regulatoryPenaltyCap)

	return math.Min(100, score)
}

// complianceScore starts at the base and moves down per compliant framework
// finding and up per missing one
func complianceScore(findings []types.Finding) float64 {
	score := complianceBaseScore

	for _, f := range findings {
		if f.Category != types.CategoryComplianceFrameworks && f.Category != types.CategoryAttestation {
			continue
		}

		switch f.Type {
		case types.FindingCompliant:
			score -= complianceImprovement
		case types.FindingMissing:
			score += compliancePenalty
		}
	}

	return clampScore(score)
}

// operationalScore scores incident response findings scaled by business
// criticality
func operationalScore(findings []types.Finding, criteria types.RiskCriteria) float64 {
	multiplier, ok := criticalityMultipliers[criteria.BusinessCriticality]
	if !ok {
		multiplier = 1.0
	}

	return math.Min(100, categoryScore(findings, types.CategoryIncidentResponse)*multiplier)
}

// categoryScore averages the finding-type score table over one category,
// weighted by confidence and impact; no findings scores neutral
func categoryScore(findings []types.Finding, category string) float64 {
	totalScore := 0.0
	totalWeight := 0.0

	for _, f := range findings {
		if f.Category != category {
			continue
		}

		score, ok := findingTypeScores[f.Type]
		if !ok {
			score = neutralScore
		}

		weight := f.Confidence * (float64(f.Impact) / 10.0)

		totalScore += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return neutralScore
	}

	return totalScore / totalWeight
}

// maxMultiplier returns the largest of the geography, regulatory,
// sensitivity, and access multipliers for the criteria
func maxMultiplier(criteria types.RiskCriteria) float64 {
	m := 1.0

	for _, location := range criteria.GeographicLocations {
		m = math.Max(m, lookupMultiplier(geographicMultipliers, location, geographicDefaultMultiplier))
	}

	for _, regulation := range criteria.RegulatoryExposure {
		m = math.Max(m, lookupMultiplier(regulatoryMultipliers, regulation, regulatoryDefaultMultiplier))
	}

	m = math.Max(m, lookupMultiplier(sensitivityMultipliers, criteria.DataSensitivity, 1.0))
	m = math.Max(m, lookupMultiplier(accessMultipliers, criteria.VendorAccessLevel, 1.0))

	return m
}

func lookupMultiplier(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}

	return fallback
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// KeyRiskFactors summarizes the most significant score contributors
func KeyRiskFactors(findings []types.Finding, criteria types.RiskCriteria) []string {
	criteria = criteria.Normalize()

	var factors []string

	critical := 0
	high := 0

	for _, f := range findings {
		switch f.RiskLevel {
		case types.RiskCritical:
			critical++
		case types.RiskHigh:
			high++
		}
	}

	if critical > 0 {
		factors = append(factors, fmt.Sprintf("%d critical security finding(s)", critical))
	}

	if high > 0 {
		factors = append(factors, fmt.Sprintf("%d high-risk finding(s)", high))
	}

	missingControl := false
	missingPrivacy := false
	weakEncryption := false

	for _, f := range findings {
		if f.Type == types.FindingMissing {
			if f.Category == types.CategoryEncryption || f.Category == types.CategoryAccessControl {
				missingControl = true
			}

			if f.Category == types.CategoryPrivacyCompliance {
				missingPrivacy = true
			}
		}

		if f.Category == types.CategoryEncryption && f.Type != types.FindingCompliant {
			weakEncryption = true
		}
	}

	if missingControl {
		factors = append(factors, "missing critical security controls")
	}

	if missingPrivacy && contains(criteria.RegulatoryExposure, "GDPR") {
		factors = append(factors, "GDPR compliance gaps identified")
	}

	sensitive := criteria.DataSensitivity == types.SensitivityHigh || criteria.DataSensitivity == types.SensitivityCritical
	if sensitive && weakEncryption {
		factors = append(factors, "inadequate encryption for sensitive data")
	}

	return factors
}

// Recommendations derives diligence steps from findings, component scores,
// and criteria
func Recommendations(findings []types.Finding, components types.ScoreBreakdown, criteria types.RiskCriteria) []string {
	criteria = criteria.Normalize()

	var recs []string

	if components.DataSecurity > 60 {
		recs = append(recs, "strengthen data security controls and encryption practices")
	}

	if components.Privacy > 60 {
		recs = append(recs, "improve privacy compliance and data subject rights implementation")
	}

	if components.Compliance > 60 {
		recs = append(recs, "obtain additional compliance certifications (SOC 2, ISO 27001)")
	}

	missingFramework := false
	missingEncryption := false

	for _, f := range findings {
		if f.Type != types.FindingMissing {
			continue
		}

		switch f.Category {
		case types.CategoryComplianceFrameworks, types.CategoryAttestation:
			missingFramework = true
		case types.CategoryEncryption:
			missingEncryption = true
		}
	}

	if missingFramework {
		recs = append(recs, "request current SOC 2 Type II report")
	}

	if missingEncryption {
		recs = append(recs, "clarify data encryption practices and key management procedures")
	}

	if criteria.DataSensitivity == types.SensitivityHigh || criteria.DataSensitivity == types.SensitivityCritical {
		recs = append(recs, "conduct enhanced due diligence given high data sensitivity")
	}

	if contains(criteria.RegulatoryExposure, "GDPR") {
		recs = append(recs, "verify GDPR compliance and DPA execution")
	}

	return recs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
