package extract

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/probity/internal/fetch"
)

func TestFromHTML(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantTitle string
		wantText  string
	}{
		{
			name:      "title and body text",
			body:      "<html><head><title>Security Overview</title></head><body><p>We encrypt data at rest using AES-256.</p></body></html>",
			wantTitle: "Security Overview",
			wantText:  "We encrypt data at rest using AES-256.",
		},
		{
			name:      "script and style stripped",
			body:      "<html><body><script>var x = 'soc 2';</script><style>.a{}</style><p>ISO 27001 certified</p></body></html>",
			wantTitle: "",
			wantText:  "ISO 27001 certified",
		},
		{
			name:      "whitespace collapsed",
			body:      "<html><body><p>data   protection\n\n addendum</p></body></html>",
			wantTitle: "",
			wantText:  "data protection addendum",
		},
		{
			name:      "nested elements joined",
			body:      "<div><span>privacy</span> <span>policy</span></div>",
			wantTitle: "",
			wantText:  "privacy policy",
		},
		{
			name:      "empty body",
			body:      "",
			wantTitle: "",
			wantText:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := FromHTML([]byte(tc.body))

			assert.Equal(t, tc.wantTitle, doc.Title)
			assert.Equal(t, tc.wantText, doc.Text)
		})
	}
}

func TestFromResult_SniffsPDF(t *testing.T) {
	// truncated magic bytes only, parse is expected to fail cleanly
	result := &fetch.Result{
		Header: http.Header{"Content-Type": []string{"application/pdf"}},
		Body:   []byte("%PDF-1.4 not a real pdf"),
	}

	_, err := FromResult(result)
	assert.ErrorIs(t, err, ErrPDFParseFailed)
}

func TestFromResult_HTML(t *testing.T) {
	result := &fetch.Result{
		Header: http.Header{"Content-Type": []string{"text/html"}},
		Body:   []byte("<title>DPA</title><p>standard contractual clauses</p>"),
	}

	doc, err := FromResult(result)
	require.NoError(t, err)

	assert.Equal(t, "DPA", doc.Title)
	assert.Contains(t, doc.Text, "standard contractual clauses")
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\t b \n\nc "))
	assert.Equal(t, "", CollapseWhitespace("   "))
}
