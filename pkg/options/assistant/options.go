// Package assistant provides retrieval pipeline configuration options.
package assistant

import (
	"fmt"

	"github.com/kart-io/teamsync/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Defaults for the retrieval pipeline.
const (
	// DefaultCollection holds workspace and member embeddings.
	DefaultCollection = "project_teams_embeddings"

	// DefaultDimension matches OpenAI text-embedding vector size.
	DefaultDimension = 1536

	// DefaultTopK is the number of context snippets fed to the LLM.
	DefaultTopK = 5

	// DefaultMaxTextLength bounds entity text stored in vector payloads.
	DefaultMaxTextLength = 1000

	// DefaultMaxQueryLength bounds user queries.
	DefaultMaxQueryLength = 4096
)

// Options contains assistant retrieval configuration.
type Options struct {
	// Collections are the vector collections searched for every query.
	Collections []string `json:"collections" mapstructure:"collections"`

	// Dimension is the embedding vector dimension.
	Dimension int `json:"dimension" mapstructure:"dimension"`

	// TopK limits how many context snippets reach the prompt.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MaxTextLength truncates entity text before indexing.
	MaxTextLength int `json:"max-text-length" mapstructure:"max-text-length"`

	// MaxQueryLength rejects oversized queries.
	MaxQueryLength int `json:"max-query-length" mapstructure:"max-query-length"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Collections:    []string{DefaultCollection, "project_embeddings", "task_embeddings"},
		Dimension:      DefaultDimension,
		TopK:           DefaultTopK,
		MaxTextLength:  DefaultMaxTextLength,
		MaxQueryLength: DefaultMaxQueryLength,
	}
}

// AddFlags adds flags for assistant options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Collections, options.Join(prefixes...)+"assistant.collections", o.Collections, "Vector collections searched per query.")
	fs.IntVar(&o.Dimension, options.Join(prefixes...)+"assistant.dimension", o.Dimension, "Embedding vector dimension.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"assistant.top-k", o.TopK, "Number of context snippets per answer.")
	fs.IntVar(&o.MaxTextLength, options.Join(prefixes...)+"assistant.max-text-length", o.MaxTextLength, "Maximum entity text length stored in vector payloads.")
	fs.IntVar(&o.MaxQueryLength, options.Join(prefixes...)+"assistant.max-query-length", o.MaxQueryLength, "Maximum accepted query length.")
}

// Validate validates the assistant options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if len(o.Collections) == 0 {
		errs = append(errs, fmt.Errorf("assistant.collections cannot be empty"))
	}
	if o.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("assistant.dimension must be positive"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("assistant.top-k must be positive"))
	}
	if o.MaxTextLength <= 0 {
		errs = append(errs, fmt.Errorf("assistant.max-text-length must be positive"))
	}
	return errs
}

// Complete completes the assistant options with defaults.
func (o *Options) Complete() error {
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = DefaultMaxQueryLength
	}
	return nil
}
