// Command stepper runs agent tasks from the command line and inspects stored
// runs.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	STEPPER_PROVIDER       - Provider: anthropic, openai, or google (required for run)
//	STEPPER_MODEL          - Model override (optional, uses provider default)
//	STEPPER_PROFILE        - YAML agent profile (role, constraints, task)
//	STEPPER_MAX_STEPS      - Max steps per run (default: 10)
//	STEPPER_TIMEOUT        - Run timeout (default: 2m)
//	STEPPER_RETRY_ATTEMPTS - Attempts per model call (default: 5)
//	STEPPER_DB             - SQLite file for step history (default: in memory)
//	STEPPER_MCP_COMMAND    - MCP server whose tools become actions
//	STEPPER_MCP_ARGS       - Arguments for the MCP server
//	STEPPER_OTLP_ENDPOINT  - OTLP/HTTP collector for traces
//	STEPPER_DEMO_ACTIONS   - Enable demo actions (default: true)
//	STEPPER_LOG_LEVEL      - debug, info, warn, error (default: info)
//
// Usage:
//
//	STEPPER_PROVIDER=anthropic go run ./cmd/stepper run "What is 17 times 23?"
//	STEPPER_DB=runs.db go run ./cmd/stepper run --resume <run-id>
//	STEPPER_DB=runs.db go run ./cmd/stepper runs
//	STEPPER_DB=runs.db go run ./cmd/stepper steps <run-id> --json
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stepper",
		Short:        "Run step-by-step agents and inspect their history",
		SilenceUsage: true,
	}
	cmd.AddCommand(runCmd())
	cmd.AddCommand(runsCmd())
	cmd.AddCommand(stepsCmd())
	return cmd
}
