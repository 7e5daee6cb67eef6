// Package assessment orchestrates a full vendor risk assessment run:
// document discovery, bounded-parallel retrieval and extraction, compliance
// analysis, risk scoring, and follow-up generation. The pipeline degrades
// gracefully; a vendor with no reachable documentation still produces a
// neutral result rather than an error.
package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/theopenlane/probity/internal/analysis"
	"github.com/theopenlane/probity/internal/archive"
	"github.com/theopenlane/probity/internal/discovery"
	"github.com/theopenlane/probity/internal/domain"
	"github.com/theopenlane/probity/internal/extract"
	"github.com/theopenlane/probity/internal/fetch"
	"github.com/theopenlane/probity/internal/scoring"
	"github.com/theopenlane/probity/internal/types"
	"github.com/theopenlane/probity/internal/workflow"
)

const (
	// defaultRetrieveThreads bounds concurrent document retrieval
	defaultRetrieveThreads = 4
	// defaultRetrieveTimeout bounds a single document retrieval
	defaultRetrieveTimeout = 30 * time.Second
)

// Notifier delivers a completed assessment to an external channel
type Notifier interface {
	// NotifyAssessment reports a completed assessment needing attention
	NotifyAssessment(ctx context.Context, result *types.AssessmentResult) error
}

// Options configures the assessment engine
type Options struct {
	discoverer      discovery.Discoverer
	fetcher         fetch.Getter
	analyzer        analysis.Analyzer
	scorer          *scoring.Engine
	workflows       *workflow.Engine
	archiver        archive.Archiver
	notifier        Notifier
	retrieveThreads int
	retrieveTimeout time.Duration
}

// Option is a functional option for configuring the assessment engine
type Option func(*Options)

// WithDiscoverer sets the document discovery engine
func WithDiscoverer(d discovery.Discoverer) Option {
	return func(o *Options) {
		o.discoverer = d
	}
}

// WithFetcher sets the HTTP client used for document retrieval
func WithFetcher(f fetch.Getter) Option {
	return func(o *Options) {
		o.fetcher = f
	}
}

// WithAnalyzer sets the compliance analysis engine
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(o *Options) {
		o.analyzer = a
	}
}

// WithScorer sets the risk scoring engine
func WithScorer(s *scoring.Engine) Option {
	return func(o *Options) {
		o.scorer = s
	}
}

// WithWorkflows sets the follow-up workflow engine
func WithWorkflows(w *workflow.Engine) Option {
	return func(o *Options) {
		o.workflows = w
	}
}

// WithArchiver enables best-effort archiving of retrieved documents
func WithArchiver(a archive.Archiver) Option {
	return func(o *Options) {
		o.archiver = a
	}
}

// WithNotifier enables notifications for assessments needing human review
func WithNotifier(n Notifier) Option {
	return func(o *Options) {
		o.notifier = n
	}
}

// WithRetrieveThreads bounds concurrent document retrieval
func WithRetrieveThreads(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.retrieveThreads = n
		}
	}
}

// WithRetrieveTimeout bounds a single document retrieval
func WithRetrieveTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.retrieveTimeout = d
		}
	}
}

// Engine runs the assessment pipeline
type Engine struct {
	options *Options
}

// NewEngine creates an assessment engine. Discovery, fetch, analysis,
// scoring, and workflow engines default to their standard configurations;
// archiving and notification are off unless provided.
func NewEngine(opts ...Option) *Engine {
	o := &Options{
		retrieveThreads: defaultRetrieveThreads,
		retrieveTimeout: defaultRetrieveTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.fetcher == nil {
		o.fetcher = fetch.New()
	}

	if o.discoverer == nil {
		o.discoverer = discovery.NewEngine(o.fetcher)
	}

	if o.analyzer == nil {
		o.analyzer = analysis.NewEngine()
	}

	if o.scorer == nil {
		o.scorer = scoring.NewEngine()
	}

	if o.workflows == nil {
		o.workflows = workflow.NewEngine()
	}

	return &Engine{options: o}
}

// document is one retrieved and extracted source during a run
type document struct {
	candidate discovery.Candidate
	summary   types.DocumentSummary
	text      string
}

// AssessVendor runs the full pipeline for one vendor. Only invalid input is
// an error; per-document failures degrade to fewer findings.
func (e *Engine) AssessVendor(ctx context.Context, vendorDomain string, criteria types.RiskCriteria) (*types.AssessmentResult, error) {
	startedAt := time.Now()

	vendor, err := domain.Parse(vendorDomain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVendor, err)
	}

	criteria = criteria.Normalize()

	log.Info().Str("domain", vendor.Registrable).Msg("vendor assessment started")

	candidates, err := e.options.discoverer.Discover(ctx, vendor.Registrable)
	if err != nil {
		return nil, err
	}

	documents := e.retrieveAll(ctx, vendor.Registrable, candidates)

	var findings []types.Finding

	for _, doc := range documents {
		docFindings := e.options.analyzer.Analyze(ctx, doc.text, doc.candidate.Type)
		for i := range docFindings {
			docFindings[i].SourceURL = doc.candidate.URL
		}

		findings = append(findings, docFindings...)
	}

	overall, components := e.options.scorer.Score(findings, criteria)

	actions, _ := e.options.workflows.GenerateActions(findings, vendor.DisplayName, "security@"+vendor.Registrable)

	result := &types.AssessmentResult{
		ID:                  uuid.NewString(),
		Domain:              vendor.Registrable,
		OverallScore:        overall,
		Scores:              components,
		RiskCategory:        scoring.RiskCategory(overall),
		KeyRiskFactors:      scoring.KeyRiskFactors(findings, criteria),
		Recommendations:     scoring.Recommendations(findings, components, criteria),
		RequiresHumanReview: e.options.scorer.RequiresHumanReview(overall, findings),
		Findings:            findings,
		Documents:           summaries(documents),
		FollowUpActions:     actions,
		StartedAt:           startedAt,
		CompletedAt:         time.Now(),
	}

	log.Info().
		Str("domain", result.Domain).
		Float64("overall_score", result.OverallScore).
		Str("risk_category", string(result.RiskCategory)).
		Int("documents", len(result.Documents)).
		Int("findings", len(result.Findings)).
		Msg("vendor assessment complete")

	if result.RequiresHumanReview && e.options.notifier != nil {
		if err := e.options.notifier.NotifyAssessment(ctx, result); err != nil {
			log.Warn().Err(err).Str("domain", result.Domain).Msg("review notification failed")
		}
	}

	return result, nil
}

// retrieveAll fetches and extracts every candidate with bounded concurrency.
// Results keep candidate order; failed retrievals are dropped. Cancellation
// stops new retrievals from starting; in-flight retrievals run to completion
// so documents already fetched still contribute to the assessment.
func (e *Engine) retrieveAll(ctx context.Context, vendorDomain string, candidates []discovery.Candidate) []document {
	results := make([]*document, len(candidates))

	sem := make(chan struct{}, e.options.retrieveThreads)

	var wg sync.WaitGroup

acquire:
	for i, candidate := range candidates {
		select {
		case sem <- struct{}{}:
			// cancellation can race the semaphore slot; re-check so a
			// cancelled run never starts another retrieval
			if ctx.Err() != nil {
				<-sem
				break acquire
			}
		case <-ctx.Done():
			break acquire
		}

		wg.Add(1)

		go func(i int, candidate discovery.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			if doc := e.retrieve(ctx, vendorDomain, candidate); doc != nil {
				results[i] = doc
			}
		}(i, candidate)
	}

	wg.Wait()

	return compact(results)
}

// retrieve fetches one candidate, extracts its text, and archives the raw
// bytes when an archiver is configured
func (e *Engine) retrieve(ctx context.Context, vendorDomain string, candidate discovery.Candidate) *document {
	ctx, cancel := context.WithTimeout(ctx, e.options.retrieveTimeout)
	defer cancel()

	result, err := e.options.fetcher.Get(ctx, candidate.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", candidate.URL).Msg("document retrieval failed")
		return nil
	}

	if !result.OK() {
		log.Debug().Int("status", result.StatusCode).Str("url", candidate.URL).Msg("document retrieval rejected")
		return nil
	}

	extracted, err := extract.FromResult(result)
	if err != nil {
		log.Debug().Err(err).Str("url", candidate.URL).Msg("document extraction failed")
		return nil
	}

	digest := sha256.Sum256(result.Body)
	hash := hex.EncodeToString(digest[:])

	title := extracted.Title
	if title == "" {
		title = candidate.Title
	}

	doc := &document{
		candidate: candidate,
		text:      extracted.Text,
		summary: types.DocumentSummary{
			Type:        candidate.Type,
			Title:       title,
			URL:         candidate.URL,
			ContentHash: hash,
			ByteSize:    len(result.Body),
		},
	}

	if e.options.archiver != nil {
		key := fmt.Sprintf("%s/%s", vendorDomain, hash)

		location, err := e.options.archiver.Save(ctx, key, result.ContentType(), result.Body)
		if err != nil {
			log.Warn().Err(err).Str("url", candidate.URL).Msg("document archiving failed")
		} else {
			doc.summary.Location = location
		}
	}

	return doc
}

func summaries(documents []document) []types.DocumentSummary {
	return lo.Map(documents, func(doc document, _ int) types.DocumentSummary {
		return doc.summary
	})
}

func compact(results []*document) []document {
	out := make([]document, 0, len(results))

	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	return out
}
