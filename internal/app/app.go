// Package app assembles a ready-to-use session from a validated Config.
package app

import (
	"fmt"
	"log/slog"

	"github.com/martinemde/plancritic/agent"
	"github.com/martinemde/plancritic/completion"
	"github.com/martinemde/plancritic/internal/config"
	"github.com/martinemde/plancritic/internal/observability"
)

// App holds the wired components for one process.
type App struct {
	Config  config.Config
	Client  *completion.Client
	Agent   *agent.Agent
	Session *agent.Session
}

type buildOptions struct {
	logger    *slog.Logger
	adapter   completion.ProviderAdapter
	listeners []agent.Listener
}

// Option configures Build.
type Option func(*buildOptions)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = l
	}
}

// WithAdapter replaces the provider adapter Build would construct.
func WithAdapter(a completion.ProviderAdapter) Option {
	return func(o *buildOptions) {
		o.adapter = a
	}
}

// WithListener subscribes l to the session before it starts.
func WithListener(l agent.Listener) Option {
	return func(o *buildOptions) {
		o.listeners = append(o.listeners, l)
	}
}

// Build validates cfg and wires adapter, middleware, text client, agent and
// session. An invalid configuration fails before any adapter is created.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	o := &buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	adapter := o.adapter
	if adapter == nil {
		var err error
		adapter, err = NewAdapter(cfg)
		if err != nil {
			return nil, err
		}
	}

	client := completion.NewClient(
		completion.WithProvider(adapter.Name(), adapter),
		completion.WithDefaultProvider(adapter.Name()),
		completion.WithMiddleware(
			observability.CompletionMiddleware(),
			completion.NewRateLimiter(cfg.RequestsPerMinute).Middleware(),
		),
	)
	if err := client.Initialize(); err != nil {
		return nil, err
	}

	text := completion.NewTextClient(client, cfg.RetryPolicy(),
		completion.WithRequestTimeout(cfg.RequestTimeout),
		completion.WithDefaultMaxTokens(cfg.MaxTokens),
		completion.WithLogger(o.logger),
	)

	a, err := agent.New(text, cfg.AgentConfig(), agent.WithLogger(o.logger))
	if err != nil {
		client.Close()
		return nil, err
	}

	sessionOpts := []agent.SessionOption{agent.WithSessionLogger(o.logger)}
	for _, l := range o.listeners {
		sessionOpts = append(sessionOpts, agent.WithListener(l))
	}

	o.logger.Debug("app built",
		"provider", adapter.Name(),
		"backend", cfg.ResolveBackend(),
		"model", cfg.ModelID,
		"max_iterations", cfg.MaxIterations,
	)

	return &App{
		Config:  cfg,
		Client:  client,
		Agent:   a,
		Session: agent.NewSession(a, sessionOpts...),
	}, nil
}

// NewAdapter constructs the provider adapter for cfg's backend.
func NewAdapter(cfg config.Config) (completion.ProviderAdapter, error) {
	switch backend := cfg.ResolveBackend(); backend {
	case config.BackendOpenAI:
		return completion.NewOpenAIAdapter(cfg.APIKey, []completion.OpenAIAdapterOption{
			completion.WithOpenAIModel(cfg.ModelID),
			completion.WithOpenAIMaxTokens(cfg.MaxTokens),
		})
	case config.BackendAnthropic:
		return completion.NewAnthropicAdapter(cfg.APIKey, cfg.ModelID, cfg.MaxTokens)
	case config.BackendGollm:
		return completion.NewGollmAdapter(cfg.Provider, cfg.APIKey,
			completion.WithGollmModel(cfg.ModelID),
			completion.WithGollmMaxTokens(cfg.MaxTokens),
		)
	default:
		return nil, &completion.ConfigurationError{SDKError: completion.SDKError{
			Message: fmt.Sprintf("unknown backend %q", backend),
		}}
	}
}

// Close ends the session and releases provider resources.
func (a *App) Close() error {
	a.Session.Close()
	return a.Client.Close()
}
