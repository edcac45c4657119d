// Package options contains flags and options for initializing the assistant server.
package options

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/teamsync/internal/assistant"
	"github.com/kart-io/teamsync/pkg/component/mongodb"
	assistantopts "github.com/kart-io/teamsync/pkg/options/assistant"
	cacheopts "github.com/kart-io/teamsync/pkg/options/cache"
	httpopts "github.com/kart-io/teamsync/pkg/options/http"
	jwtopts "github.com/kart-io/teamsync/pkg/options/jwt"
	llmopts "github.com/kart-io/teamsync/pkg/options/llm"
	logopts "github.com/kart-io/teamsync/pkg/options/logger"
	milvusopts "github.com/kart-io/teamsync/pkg/options/milvus"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MongoOptions contains MongoDB configuration.
	MongoOptions *mongodb.Options `json:"mongodb" mapstructure:"mongodb"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// AssistantOptions contains retrieval pipeline configuration.
	AssistantOptions *assistantopts.Options `json:"assistant" mapstructure:"assistant"`

	// CacheOptions contains embedding cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// JWTOptions contains token verification configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MongoOptions:     mongodb.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		AssistantOptions: assistantopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		JWTOptions:       jwtopts.NewOptions(),
	}
}

// AddFlags adds all server flags to the given flag set.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs, "http.")
	o.LogOptions.AddFlags(fs)
	o.MongoOptions.AddFlags(fs, "mongodb.")
	o.MilvusOptions.AddFlags(fs, "milvus.")
	o.EmbeddingOptions.AddFlags(fs, "embedding.")
	o.ChatOptions.AddFlags(fs, "chat.")
	o.AssistantOptions.AddFlags(fs, "assistant.")
	o.CacheOptions.AddFlags(fs, "cache.")
	o.JWTOptions.AddFlags(fs, "jwt.")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := o.MongoOptions.Complete(); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.AssistantOptions.Complete(); err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := o.JWTOptions.Complete(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.MongoOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.AssistantOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.JWTOptions.Validate()...)

	return errors.Join(errs...)
}

// Config builds an assistant.Config based on ServerOptions.
func (o *ServerOptions) Config() (*assistant.Config, error) {
	return &assistant.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MongoOptions:     o.MongoOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		AssistantOptions: o.AssistantOptions,
		CacheOptions:     o.CacheOptions,
		JWTOptions:       o.JWTOptions,
	}, nil
}
