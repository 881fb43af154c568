package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/stepper/agent"
	"github.com/spetersoncode/stepper/internal/harness"
)

func runCmd() *cobra.Command {
	var (
		resumeID string
		maxSteps int
	)
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run a task until the agent is done",
		Long: "Run a task until the agent is done. The task is taken from the " +
			"arguments, or from the profile when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), strings.Join(args, " "), resumeID, maxSteps)
		},
	}
	cmd.Flags().StringVar(&resumeID, "resume", "", "continue a stored run (requires STEPPER_DB)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "override STEPPER_MAX_STEPS")
	return cmd
}

func runTask(ctx context.Context, task, resumeID string, maxSteps int) error {
	cfg, err := harness.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if maxSteps > 0 {
		cfg.MaxSteps = maxSteps
	}

	profile, err := harness.LoadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	task = strings.TrimSpace(task)
	if task == "" {
		task = profile.Task
	}
	if task == "" {
		return fmt.Errorf("no task: pass one as arguments or set task in the profile")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := harness.New(ctx, cfg, profile)
	if err != nil {
		return err
	}
	defer h.Close(context.Background())

	var opts []agent.RunOption
	if resumeID != "" {
		steps, err := h.Store.Steps(ctx, resumeID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", resumeID, err)
		}
		opts = append(opts, agent.WithRunID(resumeID), agent.WithSteps(steps...))
		h.Logger.Info("resuming run", "run", resumeID, "steps", len(steps))
	}

	r, endSpans := h.NewRun(task, opts...)
	defer endSpans()

	result, err := agent.Loop(ctx, h.Generator, r,
		agent.WithMaxSteps(cfg.MaxSteps),
		agent.WithTimeout(cfg.Timeout),
	)
	if result == nil {
		return err
	}

	printSteps(result.Steps)
	fmt.Printf("\nrun %s finished: %s\n", r.ID(), result.Termination)

	if err != nil {
		return err
	}
	if last := result.Last(); last != nil && last.IsDone() {
		fmt.Println(last.Summary())
	}
	return nil
}
