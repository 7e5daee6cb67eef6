// Package workflow turns assessment findings into follow-up actions. A fixed
// rule table maps finding-set predicates to action templates, a consolidation
// pass merges repeated missing findings into one document request per
// category, and queue processing escalates overdue actions after a bounded
// number of attempts. Every state change is recorded as an audit entry.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/probity/internal/types"
)

const (
	// defaultMaxAttempts is the attempt count at which an overdue action escalates
	defaultMaxAttempts = 3
	// consolidationThreshold is the minimum missing findings per category for a
	// consolidated document request
	consolidationThreshold = 2
	// consolidatedDueDays is the response window for consolidated requests
	consolidatedDueDays = 7
)

// followUpRule maps a finding-set predicate to an action template. Rules are
// independent and non-exclusive; every satisfied rule contributes one action.
type followUpRule struct {
	name       string
	trigger    func([]types.Finding) bool
	actionType string
	priority   string
	dueDays    int
}

// followUpRules is the fixed rule table evaluated for every assessment
var followUpRules = []followUpRule{
	{
		name: "missing compliance framework",
		trigger: func(findings []types.Finding) bool {
			return anyFinding(findings, func(f types.Finding) bool {
				return (f.Category == types.CategoryComplianceFrameworks || f.Category == types.CategoryAttestation) &&
					f.Type == types.FindingMissing
			})
		},
		actionType: types.ActionDocumentRequest,
		priority:   types.PriorityHigh,
		dueDays:    5,
	},
	{
		name: "missing privacy documentation",
		trigger: func(findings []types.Finding) bool {
			return anyFinding(findings, func(f types.Finding) bool {
				return f.Category == types.CategoryPrivacyCompliance && f.Type == types.FindingMissing
			})
		},
		actionType: types.ActionDocumentRequest,
		priority:   types.PriorityMedium,
		dueDays:    7,
	},
	{
		name: "unclear encryption practices",
		trigger: func(findings []types.Finding) bool {
			return anyFinding(findings, func(f types.Finding) bool {
				return f.Category == types.CategoryEncryption && f.Type == types.FindingUnclear
			})
		},
		actionType: types.ActionClarification,
		priority:   types.PriorityHigh,
		dueDays:    3,
	},
	{
		name: "critical compliance gaps",
		trigger: func(findings []types.Finding) bool {
			return anyFinding(findings, func(f types.Finding) bool {
				return f.RiskLevel == types.RiskCritical
			})
		},
		actionType: types.ActionUrgentClarify,
		priority:   types.PriorityUrgent,
		dueDays:    2,
	},
	{
		name: "high risk vendor review",
		trigger: func(findings []types.Finding) bool {
			count := 0

			for _, f := range findings {
				if f.RiskLevel == types.RiskHigh || f.RiskLevel == types.RiskCritical {
					count++
				}
			}

			return count >= 3
		},
		actionType: types.ActionRiskReview,
		priority:   types.PriorityHigh,
		dueDays:    5,
	},
}

// Options configures the workflow engine
type Options struct {
	maxAttempts int
	now         func() time.Time
}

// Option is a functional option for configuring the workflow engine
type Option func(*Options)

// WithMaxAttempts sets the attempt count at which overdue actions escalate
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.now = now
		}
	}
}

// Engine generates and processes follow-up actions
type Engine struct {
	options *Options
}

// NewEngine creates a workflow engine with the given options
func NewEngine(opts ...Option) *Engine {
	o := &Options{
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Engine{options: o}
}

// GenerateActions evaluates the rule table and the consolidation pass over
// the findings for one vendor, returning the action queue and audit entries
func (e *Engine) GenerateActions(findings []types.Finding, vendorName, recipient string) ([]types.FollowUpAction, []AuditEntry) {
	now := e.options.now()

	audit := []AuditEntry{newAuditEntry(EventWorkflowStarted, "assessment", vendorName,
		fmt.Sprintf("follow-up generation started with %d findings", len(findings)), now)}

	var actions []types.FollowUpAction

	for _, rule := range followUpRules {
		if !rule.trigger(findings) {
			continue
		}

		action := types.FollowUpAction{
			ActionType: rule.actionType,
			Priority:   rule.priority,
			Subject:    fmt.Sprintf("Security Assessment Follow-up: %s", titleCase(rule.name)),
			Message:    ruleMessage(rule, vendorName, now),
			Recipient:  recipient,
			DueDate:    now.AddDate(0, 0, rule.dueDays),
		}

		actions = append(actions, action)
		audit = append(audit, newAuditEntry(EventActionGenerated, "follow_up_action", vendorName,
			fmt.Sprintf("rule %q generated a %s action", rule.name, rule.actionType), now))
	}

	consolidated := e.consolidateMissing(findings, vendorName, recipient, now)
	for range consolidated {
		audit = append(audit, newAuditEntry(EventActionGenerated, "follow_up_action", vendorName,
			"consolidated document request generated", now))
	}

	actions = append(actions, consolidated...)

	log.Info().Str("vendor", vendorName).Int("actions", len(actions)).Msg("follow-up action generation complete")

	return actions, audit
}

// consolidateMissing groups missing findings by category and emits one
// document request per category with enough gaps, avoiding one email per
// finding
func (e *Engine) consolidateMissing(findings []types.Finding, vendorName, recipient string, now time.Time) []types.FollowUpAction {
	byCategory := map[string][]string{}

	var categoryOrder []string

	for _, f := range findings {
		if f.Type != types.FindingMissing {
			continue
		}

		if _, ok := byCategory[f.Category]; !ok {
			categoryOrder = append(categoryOrder, f.Category)
		}

		byCategory[f.Category] = append(byCategory[f.Category], f.Description)
	}

	var actions []types.FollowUpAction

	for _, category := range categoryOrder {
		descriptions := byCategory[category]
		if len(descriptions) < consolidationThreshold {
			continue
		}

		actions = append(actions, types.FollowUpAction{
			ActionType: types.ActionDocumentRequest,
			Priority:   types.PriorityMedium,
			Subject:    fmt.Sprintf("Missing %s Documentation", titleCase(strings.ReplaceAll(category, "_", " "))),
			Message:    consolidatedMessage(vendorName, descriptions, now),
			Recipient:  recipient,
			DueDate:    now.AddDate(0, 0, consolidatedDueDays),
		})
	}

	return actions
}

// QueueStats summarizes one queue processing pass
type QueueStats struct {
	// Processed is the number of actions examined
	Processed int `json:"processed"`
	// Sendable is the number of actions eligible for sending
	Sendable int `json:"sendable"`
	// Overdue is the number of actions past their due date
	Overdue int `json:"overdue"`
	// Escalated is the number of actions that transitioned to escalated
	Escalated int `json:"escalated"`
}

// ProcessQueue advances a previously generated action queue: overdue actions
// gain an attempt, actions that exhaust their attempts escalate exactly once,
// and escalated actions are excluded from sending. The updated queue is
// returned; input actions are not mutated.
func (e *Engine) ProcessQueue(actions []types.FollowUpAction) ([]types.FollowUpAction, QueueStats, []AuditEntry) {
	now := e.options.now()

	var (
		stats QueueStats
		audit []AuditEntry
	)

	updated := make([]types.FollowUpAction, len(actions))
	copy(updated, actions)

	for i := range updated {
		action := &updated[i]
		stats.Processed++

		// terminal state: no further attempts or sends
		if action.Escalated {
			continue
		}

		if now.After(action.DueDate) {
			stats.Overdue++
			action.AttemptCount++

			if action.AttemptCount >= e.options.maxAttempts {
				action.Escalated = true
				stats.Escalated++

				audit = append(audit, newAuditEntry(EventActionEscalated, "follow_up_action", action.Subject,
					fmt.Sprintf("no response after %d attempts", action.AttemptCount), now))

				continue
			}
		}

		stats.Sendable++
	}

	log.Info().Int("processed", stats.Processed).Int("overdue", stats.Overdue).Int("escalated", stats.Escalated).Msg("follow-up queue processed")

	return updated, stats, audit
}

// ruleMessage renders the body for a rule-generated action
func ruleMessage(rule followUpRule, vendorName string, now time.Time) string {
	due := now.AddDate(0, 0, rule.dueDays).Format("2006-01-02")

	return fmt.Sprintf(
		"Hello,\n\nDuring a security and privacy assessment of %s we identified an item needing your attention: %s.\n\nTo ensure timely completion of the assessment, please respond by %s.\n\nThank you,\nVendor Risk Management",
		vendorName, rule.name, due,
	)
}

// consolidatedMessage renders the body for a consolidated document request
func consolidatedMessage(vendorName string, descriptions []string, now time.Time) string {
	due := now.AddDate(0, 0, consolidatedDueDays).Format("2006-01-02")

	items := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		items = append(items, "- "+d)
	}

	return fmt.Sprintf(
		"Hello,\n\nThe following documentation could not be located during a security assessment of %s:\n\n%s\n\nPlease provide the listed material by %s.\n\nThank you,\nVendor Risk Management",
		vendorName, strings.Join(items, "\n"), due,
	)
}

func anyFinding(findings []types.Finding, predicate func(types.Finding) bool) bool {
	for _, f := range findings {
		if predicate(f) {
			return true
		}
	}

	return false
}

// titleCase uppercases the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}
