package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/mcp"
	"github.com/spetersoncode/stepper/observer"
	"github.com/spetersoncode/stepper/provider/anthropic"
	"github.com/spetersoncode/stepper/provider/google"
	"github.com/spetersoncode/stepper/provider/openai"
	"github.com/spetersoncode/stepper/retry"
	"github.com/spetersoncode/stepper/runstore"
)

// Harness holds everything a command needs to run agents.
type Harness struct {
	Generator *agent.NextStepGenerator
	Store     runstore.Store
	Profile   *Profile
	Logger    *slog.Logger
	Tracer    trace.Tracer

	closers []func(context.Context) error
}

// New builds the backend, actions, store and tracing described by cfg.
// Whatever was opened is released again when New fails.
func New(ctx context.Context, cfg *Config, profile *Profile) (h *Harness, err error) {
	h = &Harness{Profile: profile, Logger: cfg.Logger(), Tracer: noop.NewTracerProvider().Tracer("")}
	defer func() {
		if err != nil {
			h.Close(ctx)
			h = nil
		}
	}()

	gen, err := NewTextGenerator(ctx, cfg, h.Logger)
	if err != nil {
		return h, err
	}

	responseFormat, err := profile.ResponseFormat()
	if err != nil {
		return h, err
	}
	registry := action.NewRegistry(responseFormat, action.Done())
	if cfg.DemoActions {
		registry.Add(DemoActions()...)
	}

	if cfg.MCPCommand != "" {
		remote, err := mcp.Connect(ctx, cfg.MCPCommand, nil, cfg.MCPArgs...)
		if err != nil {
			return h, fmt.Errorf("connect MCP server: %w", err)
		}
		h.closers = append(h.closers, func(context.Context) error { return remote.Close() })
		for _, a := range remote.Actions() {
			if err := registry.Register(a); err != nil {
				return h, err
			}
		}
		h.Logger.Info("registered MCP actions", "count", remote.Len(), "names", remote.Names())
	}

	formatters, err := profile.ResultFormatters()
	if err != nil {
		return h, err
	}

	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return h, err
	}
	h.closers = append(h.closers, func(context.Context) error { return closeStore() })
	h.Store = store

	if cfg.OTLPEndpoint != "" {
		tp, err := observer.NewTracerProvider(ctx, observer.OTLPConfig{
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
			ServiceName: "stepper",
		})
		if err != nil {
			return h, err
		}
		h.closers = append(h.closers, tp.Shutdown)
		h.Tracer = tp.Tracer("github.com/spetersoncode/stepper")
	}

	h.Generator, err = agent.NewNextStepGenerator(agent.Config{
		Role:          profile.Role,
		Constraints:   profile.Constraints,
		Actions:       registry,
		TextGenerator: gen,
		Formatters:    formatters,
	},
		agent.WithLogger(h.Logger),
		agent.WithRecoverParseErrors(true),
	)
	return h, err
}

// NewRun creates a run persisted to the harness store and observed by the
// logger and tracer observers. The returned func ends any open span.
func (h *Harness) NewRun(instructions string, opts ...agent.RunOption) (*agent.Run, func()) {
	tracer := observer.NewTracer(h.Tracer)
	opts = append([]agent.RunOption{
		agent.WithStore(h.Store),
		agent.WithObserver(observer.NewLogger(h.Logger)),
		agent.WithObserver(tracer),
	}, opts...)
	return agent.NewRun(instructions, opts...), tracer.Close
}

// RunLister is implemented by stores that can enumerate their runs.
type RunLister interface {
	Runs(ctx context.Context) ([]string, error)
}

// OpenStore opens the SQLite history at cfg.DB, or an in-memory store when
// no path is configured.
func OpenStore(cfg *Config) (runstore.Store, func() error, error) {
	if cfg.DB == "" {
		return runstore.NewMemory(), func() error { return nil }, nil
	}
	store, err := runstore.OpenSQLite(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// Close releases resources in reverse order of acquisition.
func (h *Harness) Close(ctx context.Context) error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i](ctx))
	}
	h.closers = nil
	return errors.Join(errs...)
}

// NewTextGenerator creates the configured backend wrapped with retries.
func NewTextGenerator(ctx context.Context, cfg *Config, logger *slog.Logger) (stepper.TextGenerator, error) {
	var gen stepper.TextGenerator
	switch cfg.Provider {
	case "anthropic":
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(anthropic.ChatModel(cfg.Model)))
		}
		gen = anthropic.New(cfg.AnthropicKey, opts...)
	case "openai":
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(openai.ChatModel(cfg.Model)))
		}
		gen = openai.New(cfg.OpenAIKey, opts...)
	case "google":
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(google.ChatModel(cfg.Model)))
		}
		client, err := google.New(ctx, cfg.GoogleKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create google client: %w", err)
		}
		gen = client
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxAttempts
	return retry.NewGenerator(gen, retryCfg, retry.WithLogger(logger)), nil
}
