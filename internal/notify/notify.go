// Package notify delivers completed assessments to Slack via incoming
// webhooks. Messages use Block Kit with a plain-text fallback.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/probity/internal/types"
)

const (
	// defaultRequestTimeout is the default timeout for webhook requests
	defaultRequestTimeout = 10 * time.Second
	// messageTruncateLimit caps a single text block
	messageTruncateLimit = 2900
	// maxFactorBlocks caps how many risk factors are listed
	maxFactorBlocks = 5
)

// Message is a Slack webhook payload
type Message struct {
	// Text is the fallback text for the notification
	Text string `json:"text"`
	// Blocks holds the rich layout blocks for the message
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a Slack Block Kit block
type Block struct {
	// Type is the block type (section, divider, header, etc.)
	Type string `json:"type"`
	// Text is the text object for this block
	Text *TextObject `json:"text,omitempty"`
	// Fields holds multiple text objects for section blocks
	Fields []TextObject `json:"fields,omitempty"`
}

// TextObject is a Slack text object
type TextObject struct {
	// Type is the text type (plain_text or mrkdwn)
	Type string `json:"type"`
	// Text is the actual text content
	Text string `json:"text"`
}

// SlackNotifier posts assessment summaries to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// Option configures the SlackNotifier
type Option func(*SlackNotifier)

// WithHTTPClient sets a custom HTTP client for webhook requests
func WithHTTPClient(client *http.Client) Option {
	return func(n *SlackNotifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// NewSlackNotifier creates a webhook notifier
func NewSlackNotifier(webhookURL string, opts ...Option) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}

	notifier := &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(notifier)
	}

	return notifier, nil
}

// NotifyAssessment posts a summary of the assessment to the webhook
func (n *SlackNotifier) NotifyAssessment(ctx context.Context, result *types.AssessmentResult) error {
	return n.Send(ctx, BuildAssessmentMessage(result))
}

// Send posts a message to the configured webhook
func (n *SlackNotifier) Send(ctx context.Context, msg Message) error {
	requester := httpsling.MustNew(
		httpsling.URL(n.webhookURL),
		httpsling.Post(),
		httpsling.JSONBody(msg),
		httpsling.WithHTTPClient(n.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// BuildAssessmentMessage formats an assessment result into a Block Kit message
func BuildAssessmentMessage(result *types.AssessmentResult) Message {
	headerText := fmt.Sprintf("Vendor Risk Assessment: %s", result.Domain)

	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: headerText},
		},
	}

	fields := []TextObject{
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Overall Score:*\n%.1f (%s)", result.OverallScore, result.RiskCategory),
		},
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Documents Analyzed:*\n%d", len(result.Documents)),
		},
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Data Security:*\n%.1f", result.Scores.DataSecurity),
		},
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Privacy:*\n%.1f", result.Scores.Privacy),
		},
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Compliance:*\n%.1f", result.Scores.Compliance),
		},
		{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Operational:*\n%.1f", result.Scores.Operational),
		},
	}

	if result.RequiresHumanReview {
		fields = append(fields, TextObject{
			Type: "mrkdwn",
			Text: "*Human Review:*\nRequired",
		})
	}

	if len(result.FollowUpActions) > 0 {
		fields = append(fields, TextObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Follow-up Actions:*\n%d", len(result.FollowUpActions)),
		})
	}

	blocks = append(blocks, Block{
		Type:   "section",
		Fields: fields,
	})

	factorLimit := min(len(result.KeyRiskFactors), maxFactorBlocks)

	for _, factor := range result.KeyRiskFactors[:factorLimit] {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: truncateText(fmt.Sprintf("• %s", factor), messageTruncateLimit),
			},
		})
	}

	fallback := fmt.Sprintf("Vendor Risk Assessment: %s, score %.1f (%s)", result.Domain, result.OverallScore, result.RiskCategory)

	return Message{
		Text:   fallback,
		Blocks: blocks,
	}
}

func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
