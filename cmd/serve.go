package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/theopenlane/probity/config"
	"github.com/theopenlane/probity/internal/analysis"
	"github.com/theopenlane/probity/internal/api"
	"github.com/theopenlane/probity/internal/archive"
	"github.com/theopenlane/probity/internal/assessment"
	"github.com/theopenlane/probity/internal/completion"
	"github.com/theopenlane/probity/internal/discovery"
	"github.com/theopenlane/probity/internal/fetch"
	"github.com/theopenlane/probity/internal/notify"
	"github.com/theopenlane/probity/internal/scoring"
	"github.com/theopenlane/probity/internal/workflow"
)

// serveCmd is the cobra command that starts the probity API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the probity api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command and its flags on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().String("config", "./config/.config.yaml", "config file location")
}

// serve initializes dependencies and starts the probity API server
func serve(ctx context.Context) error {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	engine, err := setupAssessment(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setting up assessment: %w", err)
	}

	handler := api.NewRouter(engine, cfg.Server.MaxBodySize, cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Msg("starting probity service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// setupAssessment wires the full assessment pipeline from config
func setupAssessment(ctx context.Context, cfg *config.Config) (*assessment.Engine, error) {
	completer := setupCompletion(cfg)

	discoveryOpts := []discovery.Option{
		discovery.WithProbeTimeout(cfg.Discovery.ProbeTimeout),
		discovery.WithProbeThreads(cfg.Discovery.ProbeThreads),
		discovery.WithMaxPerType(cfg.Discovery.MaxPerType),
	}

	analysisOpts := []analysis.Option{
		analysis.WithChunking(cfg.Analysis.ChunkThreshold, cfg.Analysis.ChunkSize, cfg.Analysis.ChunkOverlap),
	}

	if completer != nil {
		discoveryOpts = append(discoveryOpts, discovery.WithCompleter(completer))
		analysisOpts = append(analysisOpts, analysis.WithCompleter(completer))
	}

	scorer := scoring.NewEngine(
		scoring.WithWeights(cfg.Scoring.Weights),
		scoring.WithReviewThreshold(cfg.Scoring.ReviewThreshold),
	)

	workflows := workflow.NewEngine(workflow.WithMaxAttempts(cfg.Workflow.MaxAttempts))

	fetcher := fetch.New()

	opts := []assessment.Option{
		assessment.WithDiscoverer(discovery.NewEngine(fetcher, discoveryOpts...)),
		assessment.WithFetcher(fetcher),
		assessment.WithAnalyzer(analysis.NewEngine(analysisOpts...)),
		assessment.WithScorer(scorer),
		assessment.WithWorkflows(workflows),
		assessment.WithRetrieveThreads(cfg.Assessment.RetrieveThreads),
		assessment.WithRetrieveTimeout(cfg.Assessment.RetrieveTimeout),
	}

	archiver, err := setupArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if archiver != nil {
		opts = append(opts, assessment.WithArchiver(archiver))
	}

	if notifier := setupNotifier(cfg); notifier != nil {
		opts = append(opts, assessment.WithNotifier(notifier))
	}

	return assessment.NewEngine(opts...), nil
}

// setupCompletion initializes the language model client from config,
// returning nil when unconfigured
func setupCompletion(cfg *config.Config) completion.Completer {
	if cfg.Completion.APIKey == "" {
		log.Info().Msg("completion not configured, narrative analysis disabled")
		return nil
	}

	log.Info().Str("model", cfg.Completion.Model).Msg("completion configured")

	return completion.New(
		cfg.Completion.APIKey,
		completion.WithModel(cfg.Completion.Model),
		completion.WithMaxTokens(cfg.Completion.MaxTokens),
	)
}

// setupArchive initializes the object store from config, returning nil when
// archiving is disabled
func setupArchive(ctx context.Context, cfg *config.Config) (archive.Archiver, error) {
	if !cfg.Archive.Enabled {
		log.Info().Msg("document archiving not configured, skipping")
		return nil, nil
	}

	store, err := archive.NewObjectStore(ctx, cfg.Archive.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("initializing object store: %w", err)
	}

	log.Info().Str("bucket", cfg.Archive.ObjectStore.Bucket).Msg("document archiving configured")

	return store, nil
}

// setupNotifier initializes the Slack webhook notifier from config,
// returning nil when unconfigured
func setupNotifier(cfg *config.Config) assessment.Notifier {
	if cfg.Slack.WebhookURL == "" {
		log.Info().Msg("slack notifications not configured, skipping")
		return nil
	}

	notifier, err := notify.NewSlackNotifier(
		cfg.Slack.WebhookURL,
		notify.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize slack notifier")
		return nil
	}

	log.Info().Msg("slack notifications configured")

	return notifier
}
