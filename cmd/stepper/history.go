package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/stepper/internal/harness"
	"github.com/spetersoncode/stepper/runstore"
	"github.com/spetersoncode/stepper/step"
)

func runsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openHistory()
			if err != nil {
				return err
			}
			defer closeStore()

			lister, ok := store.(harness.RunLister)
			if !ok {
				return fmt.Errorf("store cannot list runs")
			}
			ids, err := lister.Runs(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(ids)
			}
			if len(ids) == 0 {
				fmt.Println("No runs found.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTEPS\tLAST")
			for _, id := range ids {
				steps, err := store.Steps(cmd.Context(), id)
				if err != nil {
					return err
				}
				last := "-"
				if n := len(steps); n > 0 {
					last = steps[n-1].Type()
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", id, len(steps), last)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func stepsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "steps [run-id]",
		Short: "Show the step history of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openHistory()
			if err != nil {
				return err
			}
			defer closeStore()

			steps, err := store.Steps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(steps)
			}
			if len(steps) == 0 {
				fmt.Printf("Run %s has no steps.\n", args[0])
				return nil
			}
			printSteps(steps)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

// openHistory opens STEPPER_DB without requiring a provider.
func openHistory() (runstore.Store, func() error, error) {
	cfg := harness.LoadEnv()
	if cfg.DB == "" {
		return nil, nil, fmt.Errorf("STEPPER_DB is not set")
	}
	return harness.OpenStore(cfg)
}

func printSteps(steps []*step.Step) {
	for i, s := range steps {
		status := "ok"
		if _, failed := s.State().(step.Failed); failed {
			status = "failed"
		}
		fmt.Printf("[%d] %s (%s) %s\n", i+1, s.Type(), status, s.Summary())
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
