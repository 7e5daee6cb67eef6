// Package discovery finds candidate compliance documents for a vendor domain
// by probing trust-center locations, scraping page links, and checking a
// catalog of conventional paths including vendor-specific variants like
// /legal/<vendor>-hipaa. An optional language-model pass widens the candidate
// set. Results are deduplicated by normalized URL and capped per document
// type; per-URL failures are dropped silently.
package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/theopenlane/probity/internal/completion"
	"github.com/theopenlane/probity/internal/domain"
	"github.com/theopenlane/probity/internal/extract"
	"github.com/theopenlane/probity/internal/fetch"
	"github.com/theopenlane/probity/internal/types"
)

const (
	// defaultProbeTimeout bounds a single discovery probe
	defaultProbeTimeout = 10 * time.Second
	// defaultProbeThreads controls concurrent probe workers
	defaultProbeThreads = 6
	// defaultMaxPerType caps candidates kept per document type
	defaultMaxPerType = 5
	// dnsResolveTimeout is the per-lookup timeout for subdomain DNS resolution
	dnsResolveTimeout = 2 * time.Second
	// bodyClassifyLimit limits text scanned for classification (32KB)
	bodyClassifyLimit = 32 * 1024
	// minRegexMatchGroups is the minimum submatch length for a regex with one capture group
	minRegexMatchGroups = 2
)

// anchorPattern matches anchor tags, capturing href and inner text
var anchorPattern = regexp.MustCompile(`(?is)<a\s[^>]*href=["']([^"'#][^"']*)["'][^>]*>(.*?)</a\s*>`)

// tagPattern strips residual markup from anchor inner text
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// trustSubdomains are well-known trust center subdomain prefixes, resolved
// via DNS before probing
var trustSubdomains = []string{
	"trust",
	"security",
	"compliance",
}

// trustPaths are well-known trust center locations probed on the registrable
// domain and its www variant
var trustPaths = []string{
	"/trust",
	"/security",
	"/compliance",
}

// conventionalPaths are document locations vendors commonly publish under
var conventionalPaths = []string{
	"/privacy",
	"/privacy-policy",
	"/legal/privacy",
	"/security",
	"/security-policy",
	"/legal/security",
	"/legal/security-overview",
	"/compliance",
	"/certifications",
	"/legal/compliance",
	"/gdpr",
	"/legal/gdpr",
	"/dpa",
	"/legal/dpa",
	"/data-processing-agreement",
	"/incident-response",
}

// vendorPathTemplates generate vendor-specific document paths from the
// vendor's short name; vendors frequently publish pages like
// /legal/mixpanel-hipaa
var vendorPathTemplates = []string{
	"/legal/%s-gdpr",
	"/legal/%s-hipaa",
	"/legal/%s-ccpa",
	"/legal/%s-privacy",
	"/compliance/%s-gdpr",
}

// HostResolver resolves hostnames; net.DefaultResolver satisfies it and
// tests substitute a static map
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Discoverer finds candidate compliance documents for a vendor domain
type Discoverer interface {
	// Discover produces a most-confident-first candidate list for the domain.
	// Per-URL failures are dropped; only an invalid domain is an error.
	Discover(ctx context.Context, vendorDomain string) ([]Candidate, error)
}

// Options configures discovery behavior
type Options struct {
	probeTimeout time.Duration
	probeThreads int
	maxPerType   int
	completer    completion.Completer
	resolver     HostResolver
}

// Option is a functional option for configuring discovery
type Option func(*Options)

// WithProbeTimeout sets the per-probe timeout
func WithProbeTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// WithProbeThreads sets the concurrent probe worker count
func WithProbeThreads(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.probeThreads = n
		}
	}
}

// WithMaxPerType sets the per-document-type candidate cap
func WithMaxPerType(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxPerType = n
		}
	}
}

// WithCompleter enables language-model candidate widening
func WithCompleter(c completion.Completer) Option {
	return func(o *Options) {
		o.completer = c
	}
}

// WithResolver overrides the DNS resolver used for subdomain liveness checks
func WithResolver(r HostResolver) Option {
	return func(o *Options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// Engine implements Discoverer over a fetch.Getter
type Engine struct {
	fetcher fetch.Getter
	options *Options
}

// NewEngine creates a discovery engine with the given options
func NewEngine(fetcher fetch.Getter, opts ...Option) *Engine {
	o := &Options{
		probeTimeout: defaultProbeTimeout,
		probeThreads: defaultProbeThreads,
		maxPerType:   defaultMaxPerType,
		resolver:     net.DefaultResolver,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Engine{fetcher: fetcher, options: o}
}

// Discover probes trust-center locations, scrapes links from the trust
// center (or site root), probes the conventional path catalog, and optionally
// widens the set via the language model. Candidates are ordered scrape
// results first, then pattern probes, then model suggestions.
func (e *Engine) Discover(ctx context.Context, vendorDomain string) ([]Candidate, error) {
	vendor, err := domain.Parse(vendorDomain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}

	base := vendor.Registrable

	// The conventional path probe is independent of the trust-center phase,
	// so it runs while trust targets are resolved, probed, and scraped.
	pathTargets := buildPathTargets(base, vendor.ShortName)
	pathCh := lo.Async(func() []Candidate {
		return e.probeAndClassify(ctx, pathTargets)
	})

	trustTargets := e.buildTrustTargets(ctx, base)
	trustCenterURL := e.findTrustCenter(ctx, trustTargets)
	log.Info().Str("domain", base).Str("trust_center", trustCenterURL).Int("targets", len(trustTargets)).Msg("trust center probe complete")

	scraped := e.scrapeCandidates(ctx, trustCenterURL, base)
	log.Info().Str("domain", base).Int("scraped", len(scraped)).Msg("link scrape complete")

	probed := <-pathCh
	log.Info().Str("domain", base).Int("path_candidates", len(probed)).Msg("conventional path probe complete")

	candidates := make([]Candidate, 0, len(scraped)+len(probed))
	candidates = append(candidates, scraped...)
	candidates = append(candidates, probed...)

	if e.options.completer != nil {
		widened := e.widenWithCompletion(ctx, base, candidates)
		candidates = append(candidates, widened...)
		log.Info().Str("domain", base).Int("llm_candidates", len(widened)).Msg("language model widening complete")
	}

	candidates = dedupeAndCap(candidates, e.options.maxPerType)
	log.Info().Str("domain", base).Int("candidates", len(candidates)).Msg("document discovery complete")

	return candidates, nil
}

// buildTrustTargets returns trust-center probe URLs: DNS-live subdomains
// first, then path variants on the registrable domain and www
func (e *Engine) buildTrustTargets(ctx context.Context, base string) []string {
	fqdns := lo.Map(trustSubdomains, func(sub string, _ int) string {
		return fmt.Sprintf("%s.%s", sub, base)
	})

	live := resolveSubdomains(ctx, e.options.resolver, fqdns)

	targets := lo.Map(live, func(fqdn string, _ int) string {
		return fmt.Sprintf("https://%s", fqdn)
	})

	for _, path := range trustPaths {
		targets = append(targets, fmt.Sprintf("https://%s%s", base, path))
	}

	// www variants for the two most common locations
	targets = append(targets,
		fmt.Sprintf("https://www.%s/trust", base),
		fmt.Sprintf("https://www.%s/security", base),
	)

	return targets
}

// findTrustCenter probes targets concurrently and returns the first target,
// in target order, whose page text passes the trust indicator threshold
func (e *Engine) findTrustCenter(ctx context.Context, targets []string) string {
	hits := e.probe(ctx, targets, func(target string, doc *extract.Document) bool {
		return IsTrustCenterPage(doc.Text)
	})

	for i, target := range targets {
		if hits[i] {
			return target
		}
	}

	return ""
}

// scrapeCandidates extracts anchor links from the trust center page, or the
// site root when none was found, and classifies each by anchor text and URL
func (e *Engine) scrapeCandidates(ctx context.Context, trustCenterURL, base string) []Candidate {
	sourceURL := trustCenterURL
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("https://%s", base)
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.options.probeTimeout)
	defer cancel()

	resp, err := e.fetcher.Get(probeCtx, sourceURL)
	if err != nil || !resp.OK() {
		log.Warn().Str("url", sourceURL).Msg("scrape source fetch failed")
		return nil
	}

	var candidates []Candidate

	for _, match := range anchorPattern.FindAllStringSubmatch(string(resp.Body), -1) {
		if len(match) <= minRegexMatchGroups {
			continue
		}

		href := strings.TrimSpace(match[1])
		if href == "" {
			continue
		}

		normalized := NormalizeURL(resolveAgainst(href, base))
		if !isSameDomain(normalized, base) {
			continue
		}

		anchorText := extract.CollapseWhitespace(tagPattern.ReplaceAllString(match[2], " "))

		docType := Classify(normalized, anchorText, "")
		if docType == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			Type:   docType,
			Title:  anchorText,
			URL:    normalized,
			Method: MethodScrape,
		})
	}

	return candidates
}

// buildPathTargets returns conventional and vendor-specific path probe URLs
// against the registrable domain and its www variant
func buildPathTargets(base, shortName string) []string {
	paths := make([]string, 0, len(conventionalPaths)+len(vendorPathTemplates))
	paths = append(paths, conventionalPaths...)

	for _, tmpl := range vendorPathTemplates {
		paths = append(paths, fmt.Sprintf(tmpl, shortName))
	}

	targets := make([]string, 0, 2*len(paths))

	for _, host := range []string{base, "www." + base} {
		for _, path := range paths {
			targets = append(targets, fmt.Sprintf("https://%s%s", host, path))
		}
	}

	return targets
}

// probeAndClassify fetches targets concurrently and classifies successful
// responses, preserving target order in the returned candidates
func (e *Engine) probeAndClassify(ctx context.Context, targets []string) []Candidate {
	results := make([]*Candidate, len(targets))

	var wg sync.WaitGroup

	sem := make(chan struct{}, e.options.probeThreads)

	for i, target := range targets {
		wg.Add(1)

		go func(idx int, targetURL string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			probeCtx, cancel := context.WithTimeout(ctx, e.options.probeTimeout)
			defer cancel()

			resp, err := e.fetcher.Get(probeCtx, targetURL)
			if err != nil || !resp.OK() {
				return
			}

			doc := extract.FromHTML(resp.Body)

			body := doc.Text
			if len(body) > bodyClassifyLimit {
				body = body[:bodyClassifyLimit]
			}

			docType := Classify(targetURL, doc.Title, body)
			if docType == "" {
				return
			}

			results[idx] = &Candidate{
				Type:   docType,
				Title:  doc.Title,
				URL:    NormalizeURL(targetURL),
				Method: MethodPattern,
			}
		}(i, target)
	}

	wg.Wait()

	candidates := make([]Candidate, 0, len(targets))

	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates
}

// probe fetches targets concurrently and records which ones satisfy the
// accept predicate, indexed by target position
func (e *Engine) probe(ctx context.Context, targets []string, accept func(string, *extract.Document) bool) []bool {
	hits := make([]bool, len(targets))

	var wg sync.WaitGroup

	sem := make(chan struct{}, e.options.probeThreads)

	for i, target := range targets {
		wg.Add(1)

		go func(idx int, targetURL string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			probeCtx, cancel := context.WithTimeout(ctx, e.options.probeTimeout)
			defer cancel()

			resp, err := e.fetcher.Get(probeCtx, targetURL)
			if err != nil || !resp.OK() {
				return
			}

			hits[idx] = accept(targetURL, extract.FromHTML(resp.Body))
		}(i, target)
	}

	wg.Wait()

	return hits
}

// completionSystemPrompt instructs the model to suggest compliance URLs
const completionSystemPrompt = `You locate public security and privacy compliance pages for software vendors. Respond with one URL per line and nothing else.`

// widenWithCompletion asks the language model for additional candidate URLs.
// Any failure degrades to zero extra candidates.
func (e *Engine) widenWithCompletion(ctx context.Context, base string, known []Candidate) []Candidate {
	knownURLs := lo.Map(known, func(c Candidate, _ int) string { return c.URL })

	userPrompt := fmt.Sprintf(
		"Vendor domain: %s\nAlready found:\n%s\nList up to 10 additional likely URLs on this domain for attestation reports, privacy policies, data processing agreements, security policies, or incident response documentation.",
		base, strings.Join(knownURLs, "\n"),
	)

	response, err := e.options.completer.Complete(ctx, completionSystemPrompt, userPrompt)
	if err != nil {
		log.Warn().Err(err).Str("domain", base).Msg("completion widening failed")
		return nil
	}

	var candidates []Candidate

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), `"',-*`))
		if !strings.HasPrefix(line, "http") {
			continue
		}

		normalized := NormalizeURL(line)
		if !isSameDomain(normalized, base) {
			continue
		}

		docType := Classify(normalized, "", "")
		if docType == "" {
			docType = types.DocumentTypeOther
		}

		candidates = append(candidates, Candidate{
			Type:   docType,
			URL:    normalized,
			Method: MethodLLM,
		})
	}

	return candidates
}

// dedupeAndCap removes candidates sharing a normalized URL and keeps at most
// maxPerType candidates per document type, preserving order
func dedupeAndCap(candidates []Candidate, maxPerType int) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	perType := make(map[types.DocumentType]int)

	result := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := NormalizeURL(c.URL)

		if _, dup := seen[key]; dup {
			continue
		}

		if perType[c.Type] >= maxPerType {
			continue
		}

		seen[key] = struct{}{}
		perType[c.Type]++

		result = append(result, c)
	}

	return result
}

// resolveSubdomains performs concurrent DNS lookups and returns only FQDNs
// that resolve to at least one address, in input order
func resolveSubdomains(ctx context.Context, resolver HostResolver, fqdns []string) []string {
	alive := make([]bool, len(fqdns))

	var wg sync.WaitGroup

	for i, fqdn := range fqdns {
		wg.Add(1)

		go func(idx int, host string) {
			defer wg.Done()

			dnsCtx, cancel := context.WithTimeout(ctx, dnsResolveTimeout)
			defer cancel()

			addrs, err := resolver.LookupHost(dnsCtx, host)
			if err != nil || len(addrs) == 0 {
				return
			}

			alive[idx] = true
		}(i, fqdn)
	}

	wg.Wait()

	var live []string

	for i, fqdn := range fqdns {
		if alive[i] {
			live = append(live, fqdn)
		}
	}

	return live
}

// NormalizeURL lowercases the scheme and host, strips the fragment, and
// removes any trailing slash so duplicate candidates compare equal
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	return parsed.String()
}

// resolveAgainst resolves a potentially relative URL against the domain
func resolveAgainst(rawURL, base string) string {
	rawURL = strings.TrimSpace(rawURL)

	if strings.HasPrefix(rawURL, "/") {
		return fmt.Sprintf("https://%s%s", base, rawURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return fmt.Sprintf("https://%s/%s", base, strings.TrimPrefix(rawURL, "/"))
	}

	return rawURL
}

// isSameDomain checks whether a URL belongs to the given domain
func isSameDomain(rawURL, base string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := parsed.Hostname()

	return host == base || strings.HasSuffix(host, "."+base)
}
