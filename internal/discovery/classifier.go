package discovery

import (
	"regexp"
	"strings"

	"github.com/theopenlane/probity/internal/types"
)

const (
	// MethodPattern marks candidates found by probing conventional paths
	MethodPattern = "pattern"
	// MethodScrape marks candidates found by scraping page links
	MethodScrape = "scrape"
	// MethodLLM marks candidates suggested by the language model
	MethodLLM = "llm"
)

// Candidate holds a discovered document descriptor
type Candidate struct {
	// Type is the classified document type
	Type types.DocumentType `json:"type"`
	// Title is the page title or anchor text the candidate was found under
	Title string `json:"title"`
	// URL is the normalized candidate URL
	URL string `json:"url"`
	// Method records how the candidate was discovered
	Method string `json:"method"`
}

// classificationRule defines regex patterns for a single document type
type classificationRule struct {
	docType       types.DocumentType
	urlPatterns   []*regexp.Regexp
	titlePatterns []*regexp.Regexp
	bodyPatterns  []*regexp.Regexp
}

// classificationRules is the ordered list of classification rules; first match wins
var classificationRules []classificationRule

func init() {
	classificationRules = []classificationRule{
		{
			docType: types.DocumentTypeAttestationReport,
			urlPatterns: compileAll(
				`(?i)/soc-?2`,
				`(?i)/compliance/soc`,
				`(?i)/certifications`,
			),
			titlePatterns: compileAll(
				`(?i)soc\s*(2|ii)`,
				`(?i)service\s+organization\s+control`,
			),
			bodyPatterns: compileAll(
				`(?i)soc\s*2\s*type\s*(ii|i|1|2)`,
				`(?i)service\s+organization\s+control`,
				`(?i)ssae\s*18`,
			),
		},
		{
			docType: types.DocumentTypeDPA,
			urlPatterns: compileAll(
				`(?i)/(dpa|data-processing)`,
				`(?i)/legal/dpa`,
			),
			titlePatterns: compileAll(
				`(?i)data\s+processing\s+(agreement|addendum)`,
				`(?i)\bdpa\b`,
			),
			bodyPatterns: compileAll(
				`(?i)data\s+processor\b`,
				`(?i)standard\s+contractual\s+clauses`,
			),
		},
		{
			docType: types.DocumentTypePrivacyPolicy,
			urlPatterns: compileAll(
				`(?i)/privac(y|y-policy|y-notice)`,
				`(?i)/legal/privac`,
				`(?i)(/|-)(data-protection|gdpr|ccpa|hipaa)`,
			),
			titlePatterns: compileAll(
				`(?i)privacy\s+(policy|notice|statement)`,
				`(?i)data\s+protection\s+(policy|notice)`,
			),
			bodyPatterns: compileAll(
				`(?i)this\s+privacy\s+(policy|notice)`,
				`(?i)personal\s+(data|information).{0,80}collect`,
			),
		},
		{
			docType: types.DocumentTypeIncidentResponse,
			urlPatterns: compileAll(
				`(?i)/incident-?response`,
			),
			titlePatterns: compileAll(
				`(?i)incident\s+response`,
				`(?i)breach\s+notification`,
			),
			bodyPatterns: compileAll(
				`(?i)incident\s+response\s+(plan|policy|team|procedure)`,
				`(?i)breach\s+notification`,
				`(?i)security\s+incident\s+(handling|management)`,
			),
		},
		{
			docType: types.DocumentTypeSecurityPolicy,
			urlPatterns: compileAll(
				`(?i)^https?://security\.`,
				`(?i)/security(-policy)?(/|$)`,
				`(?i)/legal/security`,
			),
			titlePatterns: compileAll(
				`(?i)security\s+(policy|overview|practices|program)`,
				`(?i)information\s+security`,
				`(?i)^security$`,
			),
			bodyPatterns: compileAll(
				`(?i)information\s+security\s+(policy|program)`,
				`(?i)security\s+practices`,
				`(?i)vulnerability\s+disclosure`,
			),
		},
	}
}

// Classify determines the document type from URL, title, and body content.
// URL patterns are checked first across all rules, then title patterns, then
// body patterns, so a URL match always beats a body match from a
// higher-priority rule. Returns empty string when nothing matches.
func Classify(pageURL, title, body string) types.DocumentType {
	for _, rule := range classificationRules {
		if matchesAny(rule.urlPatterns, pageURL) {
			return rule.docType
		}
	}

	for _, rule := range classificationRules {
		if matchesAny(rule.titlePatterns, title) {
			return rule.docType
		}
	}

	for _, rule := range classificationRules {
		if matchesAny(rule.bodyPatterns, body) {
			return rule.docType
		}
	}

	return ""
}

// trustIndicators are weighted keywords whose combined presence marks a trust
// center page
var trustIndicators = map[string]int{
	"trust center":           2,
	"soc 2":                  2,
	"soc ii":                 2,
	"iso 27001":              2,
	"security certification": 2,
	"compliance":             1,
	"privacy policy":         1,
	"data protection":        1,
	"gdpr":                   1,
	"security controls":      1,
}

// trustIndicatorThreshold is the minimum weighted indicator count for a page
// to classify as a trust center
const trustIndicatorThreshold = 3

// IsTrustCenterPage reports whether page text reads like a trust center by
// weighted indicator count
func IsTrustCenterPage(text string) bool {
	lower := strings.ToLower(text)

	score := 0
	for indicator, weight := range trustIndicators {
		if strings.Contains(lower, indicator) {
			score += weight
		}
	}

	return score >= trustIndicatorThreshold
}

// compileAll compiles multiple regex patterns, panicking on invalid patterns
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return compiled
}

// matchesAny returns true if the input matches any of the compiled patterns
func matchesAny(patterns []*regexp.Regexp, input string) bool {
	for _, p := range patterns {
		if p.MatchString(input) {
			return true
		}
	}

	return false
}
