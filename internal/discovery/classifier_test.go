package discovery

import (
	"testing"

	"github.com/theopenlane/probity/internal/types"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name  string
		url   string
		title string
		body  string
		want  types.DocumentType
	}{
		{
			name: "privacy policy by url",
			url:  "https://example.com/privacy-policy",
			want: types.DocumentTypePrivacyPolicy,
		},
		{
			name: "privacy policy by legal path",
			url:  "https://example.com/legal/privacy",
			want: types.DocumentTypePrivacyPolicy,
		},
		{
			name: "vendor specific gdpr page",
			url:  "https://mixpanel.com/legal/mixpanel-gdpr",
			want: types.DocumentTypePrivacyPolicy,
		},
		{
			name: "vendor specific hipaa page",
			url:  "https://mixpanel.com/legal/mixpanel-hipaa",
			want: types.DocumentTypePrivacyPolicy,
		},
		{
			name: "dpa by url",
			url:  "https://example.com/legal/dpa",
			want: types.DocumentTypeDPA,
		},
		{
			name: "dpa by title",
			url:  "https://example.com/legal/agreements",
			// url does not match any rule, title does
			title: "Data Processing Addendum",
			want:  types.DocumentTypeDPA,
		},
		{
			name: "attestation by url",
			url:  "https://example.com/soc2",
			want: types.DocumentTypeAttestationReport,
		},
		{
			name:  "attestation by title",
			url:   "https://example.com/resources/report",
			title: "SOC 2 Type II Report",
			want:  types.DocumentTypeAttestationReport,
		},
		{
			name: "attestation by body",
			url:  "https://example.com/about-our-audit",
			body: "our annual audit follows ssae 18 standards",
			want: types.DocumentTypeAttestationReport,
		},
		{
			name: "security policy by subdomain",
			url:  "https://security.example.com",
			want: types.DocumentTypeSecurityPolicy,
		},
		{
			name: "security policy by path",
			url:  "https://example.com/security",
			want: types.DocumentTypeSecurityPolicy,
		},
		{
			name:  "incident response by title",
			url:   "https://example.com/docs/ir-plan",
			title: "Incident Response Plan",
			want:  types.DocumentTypeIncidentResponse,
		},
		{
			name: "incident response by body",
			url:  "https://example.com/docs/handling",
			body: "our incident response team follows a breach notification procedure",
			want: types.DocumentTypeIncidentResponse,
		},
		{
			name: "url match beats body match",
			// body says privacy but the URL is authoritative
			url:  "https://example.com/security",
			body: "this privacy policy describes how personal data we collect",
			want: types.DocumentTypeSecurityPolicy,
		},
		{
			name:  "title match beats body match",
			url:   "https://example.com/resources/doc",
			title: "Privacy Notice",
			body:  "vulnerability disclosure program details",
			want:  types.DocumentTypePrivacyPolicy,
		},
		{
			name: "no match",
			url:  "https://example.com/careers",
			body: "join our team",
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.url, tc.title, tc.body)
			if got != tc.want {
				t.Errorf("Classify(%q, %q, ...): expected %q, got %q", tc.url, tc.title, tc.want, got)
			}
		})
	}
}

func TestIsTrustCenterPage(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "heavy indicators",
			text: "Our Trust Center covers SOC 2 and ISO 27001 certifications",
			want: true,
		},
		{
			name: "threshold from light indicators",
			text: "compliance gdpr data protection",
			want: true,
		},
		{
			name: "single light indicator below threshold",
			text: "we take compliance seriously",
			want: false,
		},
		{
			name: "single heavy indicator below threshold",
			text: "download our soc 2 report",
			want: false,
		},
		{
			name: "empty text",
			text: "",
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTrustCenterPage(tc.text); got != tc.want {
				t.Errorf("IsTrustCenterPage(%q): expected %v, got %v", tc.text, tc.want, got)
			}
		})
	}
}
