package analysis

import (
	"regexp"

	"github.com/theopenlane/probity/internal/types"
)

const (
	// negationWindowBefore is the number of characters before a match to check
	// for aspirational/planning context that would negate the detection.
	negationWindowBefore = 80
	// negationWindowAfter is the number of characters after a match to check
	// for aspirational/planning context that would negate the detection.
	negationWindowAfter = 50
)

// negativeContextPattern matches phrases that indicate aspirational or planned
// compliance status rather than achieved certification. Used to prevent false
// positives from statements like "preparing to get our SOC 2".
var negativeContextPattern = regexp.MustCompile(`(?i)\b(preparing|pursuing|working\s+toward|planned|planning|roadmap|in\s+progress|upcoming|aspiring|intending|evaluating|considering|exploring|investigating|future|goal|target|aiming|expect\s+to|plan\s+to|hope\s+to|looking\s+into)\b`)

// indicator defines the keyword and strict-pattern evidence checked for one
// compliance category during the pattern pass
type indicator struct {
	category    string
	keywords    []string
	strict      []*regexp.Regexp
	riskWeight  float64
	description string
}

// indicators is the fixed table the pattern pass walks; every category yields
// exactly one finding per analyzed document
var indicators = []indicator{
	{
		category: types.CategoryEncryption,
		keywords: []string{"encryption", "encrypted", "tls", "ssl", "aes", "rsa"},
		strict: compileAll(
			`(?i)AES[-\s]?256`,
			`(?i)TLS\s*1\.[23]`,
			`(?i)encryption\s+at\s+rest`,
			`(?i)encryption\s+in\s+transit`,
		),
		riskWeight:  0.25,
		description: "data encryption standards and implementation",
	},
	{
		category: types.CategoryAccessControl,
		keywords: []string{"access control", "authentication", "authorization", "mfa", "2fa"},
		strict: compileAll(
			`(?i)multi[-\s]?factor\s+authentication`,
			`(?i)role[-\s]?based\s+access`,
			`(?i)principle\s+of\s+least\s+privilege`,
			`(?i)access\s+reviews?`,
		),
		riskWeight:  0.2,
		description: "access control and authentication mechanisms",
	},
	{
		category: types.CategoryDataProtection,
		keywords: []string{"data protection", "gdpr", "ccpa", "personal data", "pii"},
		strict: compileAll(
			`(?i)GDPR\s+complian[ct]e?`,
			`(?i)data\s+subject\s+rights`,
			`(?i)data\s+retention\s+policy`,
			`(?i)right\s+to\s+erasure`,
		),
		riskWeight:  0.2,
		description: "data protection and privacy compliance",
	},
	{
		category: types.CategoryIncidentResponse,
		keywords: []string{"incident response", "breach notification", "security incident"},
		strict: compileAll(
			`(?i)incident\s+response\s+plan`,
			`(?i)breach\s+notification`,
			`(?i)security\s+incident\s+management`,
			`(?i)72\s+hours?\s+notification`,
		),
		riskWeight:  0.15,
		description: "incident response and breach notification procedures",
	},
	{
		category: types.CategoryComplianceFrameworks,
		keywords: []string{"soc 2", "iso 27001", "pci dss", "hipaa", "fedramp"},
		strict: compileAll(
			`(?i)SOC\s*2\s*Type\s*II`,
			`(?i)ISO\s*27001`,
			`(?i)PCI[-\s]?DSS`,
			`(?i)HIPAA\s+complian[ct]e?`,
		),
		riskWeight:  0.2,
		description: "compliance with industry frameworks",
	},
}

// attestationPatterns are report elements scanned for in attestation report
// text; each affirmative match yields a high-confidence compliant finding
var attestationPatterns = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{label: "type II report", pattern: regexp.MustCompile(`(?i)type\s*ii\s*report`)},
	{label: "trust services criteria", pattern: regexp.MustCompile(`(?i)trust\s+services?\s+criteria`)},
	{label: "control exceptions", pattern: regexp.MustCompile(`(?i)exceptions?|deviations?|deficienc(y|ies)`)},
	{label: "testing results", pattern: regexp.MustCompile(`(?i)testing\s+results?|test\s+work\s+performed`)},
}

// privacyRequirements are the disclosures a privacy notice is expected to
// make; each yields a compliant or missing finding
var privacyRequirements = []struct {
	label    string
	patterns []*regexp.Regexp
}{
	{
		label: "data subject rights",
		patterns: compileAll(
			`(?i)right\s+to\s+access`,
			`(?i)right\s+to\s+rectification`,
			`(?i)right\s+to\s+erasure`,
			`(?i)right\s+to\s+portability`,
		),
	},
	{
		label: "legal basis",
		patterns: compileAll(
			`(?i)legal\s+basis`,
			`(?i)legitimate\s+interest`,
		),
	},
	{
		label: "data retention",
		patterns: compileAll(
			`(?i)retention\s+period`,
			`(?i)how\s+long\s+we\s+keep`,
		),
	},
	{
		label: "international transfers",
		patterns: compileAll(
			`(?i)international\s+transfers?`,
			`(?i)adequacy\s+decision`,
			`(?i)standard\s+contractual\s+clauses`,
		),
	},
}

// expectedElements lists terms a complete document of each type should
// contain; absent terms yield missing_elements findings
var expectedElements = map[types.DocumentType][]string{
	types.DocumentTypeAttestationReport: {
		"management assertion",
		"service auditor's report",
		"description of controls",
		"testing procedures",
	},
	types.DocumentTypePrivacyPolicy: {
		"data collection",
		"purpose of processing",
		"data sharing",
		"user rights",
		"contact information",
	},
	types.DocumentTypeSecurityPolicy: {
		"access controls",
		"encryption",
		"incident response",
		"security monitoring",
		"employee training",
	},
}

// matchesAffirmatively returns true if the pattern matches the text AND the
// match is not negated by nearby aspirational/planning context words. This
// prevents false positives from statements like "preparing to get our SOC 2".
func matchesAffirmatively(pattern *regexp.Regexp, text string) (string, bool) {
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		if !isNegatedByContext(text, loc[0], loc[1]) {
			return text[loc[0]:loc[1]], true
		}
	}

	return "", false
}

// isNegatedByContext checks whether a match at a given position is surrounded
// by words indicating aspirational rather than achieved status
func isNegatedByContext(text string, matchStart, matchEnd int) bool {
	windowStart := max(matchStart-negationWindowBefore, 0)
	windowEnd := min(matchEnd+negationWindowAfter, len(text))

	return negativeContextPattern.MatchString(text[windowStart:windowEnd])
}

// compileAll compiles multiple regex patterns, panicking on invalid patterns
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}
