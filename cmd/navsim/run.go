package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/navmesh/config"
	"github.com/hupe1980/navmesh/internal/scenario"
	"github.com/hupe1980/navmesh/internal/telemetry"
	"github.com/hupe1980/navmesh/logging"
)

func newRunCmd() *cobra.Command {
	var (
		showEvents bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Run a scenario and print its outcome",
		Long: `Run executes every step of a scenario in order. A step that fails does
not stop the run. The command exits non-zero when a step ends with an
outcome other than the one it expects.

Examples:
  # Run a scenario
  navsim run wizard.yaml

  # Include every raised event in the output
  navsim run --events wizard.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			logger := logging.NewLogger(&logging.LoggerConfig{
				Level:     cfg.Level(),
				Format:    cfg.LogFormat,
				Output:    cmd.ErrOrStderr(),
				AddSource: cfg.LogSource,
				Component: "navsim",
			})

			ctx := cmd.Context()
			shutdown, err := telemetry.Setup(ctx, cfg.TracingEndpoint(), cfg.ServiceName)
			if err != nil {
				return fmt.Errorf("setup tracing: %w", err)
			}
			defer func() { _ = shutdown(ctx) }()

			runner := scenario.NewRunner(func(o *scenario.RunnerOptions) { o.Logger = logger })
			report, runErr := runner.Run(ctx, sc)
			if report != nil {
				report.Print(cmd.OutOrStdout(), showEvents)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&showEvents, "events", false, "Print every raised event")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	return cmd
}
