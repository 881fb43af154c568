package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spetersoncode/stepper"
	"github.com/spetersoncode/stepper/action"
	"github.com/spetersoncode/stepper/format"
	"github.com/spetersoncode/stepper/formatter"
	"github.com/spetersoncode/stepper/step"
)

// errorPrefix starts the transcript message of a failed step.
const errorPrefix = "ERROR:\n"

// Config holds the collaborators of a NextStepGenerator.
type Config struct {
	// Role describes who the agent is. Required.
	Role string

	// Constraints lists the rules the agent must follow. Required.
	Constraints string

	// Actions is the registry of available actions and their format. Required.
	Actions *action.Registry

	// TextGenerator is the language model backend. Required.
	TextGenerator stepper.TextGenerator

	// Formatters renders succeeded step outputs. Optional.
	Formatters *formatter.Registry
}

// NextStepGenerator produces the next step of a run from its history.
// It holds no per-run state and may serve many runs concurrently.
type NextStepGenerator struct {
	role        string
	constraints string
	actions     *action.Registry
	generator   stepper.TextGenerator
	formatters  *formatter.Registry
	options     *Options
	logger      *slog.Logger
}

// NewNextStepGenerator validates cfg and creates a generator.
// Missing required fields fail with *ConfigError.
func NewNextStepGenerator(cfg Config, opts ...Option) (*NextStepGenerator, error) {
	switch {
	case strings.TrimSpace(cfg.Role) == "":
		return nil, &ConfigError{Field: "Role"}
	case strings.TrimSpace(cfg.Constraints) == "":
		return nil, &ConfigError{Field: "Constraints"}
	case cfg.Actions == nil:
		return nil, &ConfigError{Field: "Actions"}
	case cfg.TextGenerator == nil:
		return nil, &ConfigError{Field: "TextGenerator"}
	}

	formatters := cfg.Formatters
	if formatters == nil {
		formatters = formatter.NewRegistry()
	}

	options := ApplyOptions(opts...)
	return &NextStepGenerator{
		role:        cfg.Role,
		constraints: cfg.Constraints,
		actions:     cfg.Actions,
		generator:   cfg.TextGenerator,
		formatters:  formatters,
		options:     options,
		logger:      options.Logger,
	}, nil
}

// MustNewNextStepGenerator is like NewNextStepGenerator but panics on error.
func MustNewNextStepGenerator(cfg Config, opts ...Option) *NextStepGenerator {
	g, err := NewNextStepGenerator(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// GenerateMessages builds the transcript for the next model call. The result
// depends only on the configuration, the completed steps and the run's
// instructions. A succeeded output that does not match its formatter's schema
// fails with *formatter.ValidationError.
func (g *NextStepGenerator) GenerateMessages(completedSteps []*step.Step, run *Run) ([]stepper.Message, error) {
	if run == nil {
		return nil, ErrNilRun
	}

	messages := make([]stepper.Message, 0, 2+2*len(completedSteps))
	messages = append(messages,
		stepper.NewSystemMessage(g.systemPrompt()),
		stepper.NewUserMessage(run.Instructions()),
	)

	for _, s := range completedSteps {
		if s == nil {
			continue
		}
		if text, ok := s.GeneratedText(); ok {
			messages = append(messages, stepper.NewAssistantMessage(text))
		}

		content, err := g.stateContent(s)
		if err != nil {
			return nil, err
		}
		if content != "" {
			messages = append(messages, stepper.NewSystemMessage(content))
		}
	}
	return messages, nil
}

func (g *NextStepGenerator) systemPrompt() string {
	return strings.Join([]string{
		"## ROLE\n" + g.role,
		"## CONSTRAINTS\n" + g.constraints,
		g.actions.AvailableActionInstructions(),
	}, "\n\n")
}

// stateContent renders the system message derived from a step's state.
// An empty string means the step contributes no system message.
func (g *NextStepGenerator) stateContent(s *step.Step) (string, error) {
	switch st := s.State().(type) {
	case step.Failed:
		return errorPrefix + st.Summary, nil
	case step.Succeeded:
		if !st.HasOutput() {
			return "", nil
		}
		text, ok, err := g.formatters.Format(s.Type(), st)
		if err != nil {
			return "", err
		}
		if ok {
			return text, nil
		}
		return formatter.Default(st)
	default:
		return "", fmt.Errorf("agent: step %s has unknown state %T", s.ID(), st)
	}
}

// GenerateNextStep asks the model for the next step of run.
//
// Action failures (unknown action, CreateStep error or panic, nil step)
// become error steps and are never returned as errors. Backend failures,
// *format.ParseError (unless WithRecoverParseErrors is set) and
// *formatter.ValidationError are returned.
func (g *NextStepGenerator) GenerateNextStep(ctx context.Context, completedSteps []*step.Step, run *Run) (*step.Step, error) {
	messages, err := g.GenerateMessages(completedSteps, run)
	if err != nil {
		return nil, err
	}

	logger := g.logger.With("run", run.ID(), "step", len(completedSteps)+1)
	obs := run.observer()

	if obs != nil {
		obs.OnStepGenerationStarted(ctx, StartedEvent{Run: run, Messages: stepper.CloneMessages(messages)})
	}
	logger.Debug("step generation started", "messages", len(messages))

	text, err := g.generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("agent: generate text: %w", err)
	}

	next, err := g.nextStep(ctx, logger, text)
	if err != nil {
		return nil, err
	}

	if obs != nil {
		obs.OnStepGenerationFinished(ctx, FinishedEvent{Run: run, GeneratedText: text, Step: next})
	}
	logger.Debug("step generation finished", "type", next.Type(), "summary", next.Summary())

	return next, nil
}

func (g *NextStepGenerator) generate(ctx context.Context, messages []stepper.Message) (string, error) {
	if g.options.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.GenerationTimeout)
		defer cancel()
	}
	return g.generator.GenerateText(ctx, stepper.CloneMessages(messages), g.options.ChatOptions...)
}

// nextStep turns raw model text into a step.
func (g *NextStepGenerator) nextStep(ctx context.Context, logger *slog.Logger, text string) (*step.Step, error) {
	parsed, err := g.actions.Format().Parse(text)
	if err != nil {
		var parseErr *format.ParseError
		if g.options.RecoverParseErrors && errors.As(err, &parseErr) {
			logger.Warn("unparseable model output", "error", err)
			return step.NewError(text, err), nil
		}
		return nil, err
	}

	if !parsed.HasAction() {
		return step.NewThought(text, parsed.FreeText), nil
	}

	a, err := g.actions.Get(parsed.Action)
	if err != nil {
		logger.Warn("action lookup failed", "action", parsed.Action, "error", err)
		return step.NewError(text, err), nil
	}

	s, err := g.createStep(ctx, a, text, parsed)
	if err != nil {
		logger.Warn("action failed", "action", parsed.Action, "error", err)
		return step.NewError(text, err), nil
	}
	if s == nil {
		logger.Warn("action returned no step", "action", parsed.Action)
		return step.NewError(text, fmt.Errorf("%w: %s", ErrNilStep, parsed.Action)), nil
	}
	if _, ok := s.GeneratedText(); !ok {
		s = s.With(step.WithGeneratedText(text))
	}
	return s, nil
}

// createStep runs the action, converting a panic into *action.PanicError.
func (g *NextStepGenerator) createStep(ctx context.Context, a action.Action, text string, parsed format.Parsed) (s *step.Step, err error) {
	if g.options.ActionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.ActionTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			s, err = nil, &action.PanicError{Type: a.Type(), Value: r}
		}
	}()
	return a.CreateStep(ctx, text, parsed)
}
