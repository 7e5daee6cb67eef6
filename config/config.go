// Package config holds the service configuration loaded from YAML and
// environment variables. Defaults come from struct tags; a config file
// overrides defaults and PROBITY_-prefixed environment variables override
// both.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
	"github.com/theopenlane/probity/internal/archive"
	"github.com/theopenlane/probity/internal/scoring"
)

const (
	// envPrefix is the environment variable prefix for overrides
	envPrefix = "PROBITY_"
	// delimiter separates nested config keys
	delimiter = "."
)

// Config holds service configuration
type Config struct {
	// Server holds the HTTP server settings
	Server Server `json:"server" koanf:"server"`
	// Discovery holds the document discovery settings
	Discovery Discovery `json:"discovery" koanf:"discovery"`
	// Analysis holds the compliance analysis settings
	Analysis Analysis `json:"analysis" koanf:"analysis"`
	// Scoring holds the risk scoring settings
	Scoring Scoring `json:"scoring" koanf:"scoring"`
	// Workflow holds the follow-up workflow settings
	Workflow Workflow `json:"workflow" koanf:"workflow"`
	// Completion holds the language model settings
	Completion Completion `json:"completion" koanf:"completion"`
	// Archive holds the document archive settings
	Archive Archive `json:"archive" koanf:"archive"`
	// Slack holds the notification settings
	Slack Slack `json:"slack" koanf:"slack"`
	// Assessment holds the pipeline orchestration settings
	Assessment Assessment `json:"assessment" koanf:"assessment"`
}

// Server holds the HTTP server settings
type Server struct {
	// Listen is the address and port the server binds to
	Listen string `json:"listen" koanf:"listen" default:":8080"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `json:"readtimeout" koanf:"readtimeout" default:"30s"`
	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration `json:"writetimeout" koanf:"writetimeout" default:"30s"`
	// ShutdownGracePeriod is how long in-flight requests get on shutdown
	ShutdownGracePeriod time.Duration `json:"shutdowngraceperiod" koanf:"shutdowngraceperiod" default:"30s"`
	// RequestTimeout bounds a single API request end to end
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"120s"`
	// MaxBodySize caps the request body size in bytes
	MaxBodySize int64 `json:"maxbodysize" koanf:"maxbodysize" default:"102400"`
	// Debug enables debug logging, set from the --debug flag
	Debug bool `json:"debug" koanf:"debug"`
	// Pretty enables human readable logging, set from the --pretty flag
	Pretty bool `json:"pretty" koanf:"pretty"`
}

// Discovery holds the document discovery settings
type Discovery struct {
	// ProbeTimeout bounds a single URL probe
	ProbeTimeout time.Duration `json:"probetimeout" koanf:"probetimeout" default:"10s"`
	// ProbeThreads bounds concurrent URL probes
	ProbeThreads int `json:"probethreads" koanf:"probethreads" default:"6"`
	// MaxPerType caps candidates kept per document type
	MaxPerType int `json:"maxpertype" koanf:"maxpertype" default:"5"`
}

// Analysis holds the compliance analysis settings
type Analysis struct {
	// ChunkThreshold is the text length above which narrative analysis chunks
	ChunkThreshold int `json:"chunkthreshold" koanf:"chunkthreshold" default:"8000"`
	// ChunkSize is the narrative chunk length
	ChunkSize int `json:"chunksize" koanf:"chunksize" default:"4000"`
	// ChunkOverlap is the overlap between consecutive chunks
	ChunkOverlap int `json:"chunkoverlap" koanf:"chunkoverlap" default:"200"`
}

// Scoring holds the risk scoring settings
type Scoring struct {
	// Weights holds the component weights for the overall score
	Weights scoring.Weights `json:"weights" koanf:"weights"`
	// ReviewThreshold is the overall score at which human review is required
	ReviewThreshold float64 `json:"reviewthreshold" koanf:"reviewthreshold" default:"85"`
}

// Workflow holds the follow-up workflow settings
type Workflow struct {
	// MaxAttempts is the attempt count at which overdue actions escalate
	MaxAttempts int `json:"maxattempts" koanf:"maxattempts" default:"3"`
}

// Completion holds the language model settings
type Completion struct {
	// APIKey authenticates against the completion API; narrative analysis
	// and discovery widening are skipped when empty
	APIKey string `json:"apikey" koanf:"apikey" sensitive:"true"`
	// Model is the completion model identifier
	Model string `json:"model" koanf:"model" default:"gpt-4o-mini"`
	// MaxTokens caps completion response length
	MaxTokens int `json:"maxtokens" koanf:"maxtokens" default:"2048"`
}

// Archive holds the document archive settings
type Archive struct {
	// Enabled turns document archiving on
	Enabled bool `json:"enabled" koanf:"enabled"`
	// ObjectStore holds the S3-compatible object store settings
	ObjectStore archive.ObjectStoreConfig `json:"objectstore" koanf:"objectstore"`
}

// Slack holds the notification settings
type Slack struct {
	// WebhookURL is the incoming webhook for assessment notifications;
	// notifications are skipped when empty
	WebhookURL string `json:"webhookurl" koanf:"webhookurl" sensitive:"true"`
	// RequestTimeout bounds a webhook request
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10s"`
}

// Assessment holds the pipeline orchestration settings
type Assessment struct {
	// RetrieveThreads bounds concurrent document retrieval
	RetrieveThreads int `json:"retrievethreads" koanf:"retrievethreads" default:"4"`
	// RetrieveTimeout bounds a single document retrieval
	RetrieveTimeout time.Duration `json:"retrievetimeout" koanf:"retrievetimeout" default:"30s"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// PROBITY_-prefixed environment variables, in increasing precedence
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(delimiter)

	cfg := &Config{}
	defaults.SetDefaults(cfg)

	if cfgFile != nil && *cfgFile != "" {
		if _, err := os.Stat(*cfgFile); err == nil {
			if err := k.Load(file.Provider(*cfgFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
			}
		}
	}

	// PROBITY_SERVER_LISTEN -> server.listen
	if err := k.Load(env.Provider(envPrefix, delimiter, func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", delimiter)
	}), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return cfg, nil
}
