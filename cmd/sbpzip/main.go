package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sbpzip/internal/config"
	"sbpzip/internal/constants"
	"sbpzip/internal/logger"
	"sbpzip/pkg/cel"
	"sbpzip/pkg/errors"
	"sbpzip/pkg/logging"
)

var (
	configFile string

	// version is set at build time with -ldflags "-X main.version=...".
	version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(errors.ToExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Merge base and rover SBP logs into one time-ordered stream",
		Long:          "sbpzip zips a base station log and a rover log, ordered by GPS time, into one log a post-processing engine can consume",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (or SBPZIP_CONFIG_FILE)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log encoding: json or console")
	flags.String("metrics-textfile", "", "Write run metrics to this node_exporter textfile")

	rootCmd.AddCommand(zipCmd(), splitCmd(), versionCmd())
	return rootCmd
}

func zipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zip [rover-or-combined-log]",
		Short: "Zip a base and a rover log",
		Long: "Zip a base and a rover log by GPS time. With --base omitted the positional log is " +
			"treated as a combined log and split into <stem>_base<ext> and <stem>_rover<ext> first.",
		Example: filterExamples(),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if len(args) == 1 {
				overrides["input.rover"] = args[0]
			}
			if cmd.Flags().Changed("output") {
				output, _ := cmd.Flags().GetString("output")
				if output == constants.OutputAuto {
					output = ""
				}
				overrides["output.path"] = output
				if !cmd.Flags().Changed("output-mode") {
					overrides["output.mode"] = constants.OutputModeFile
				}
			}

			return run(cmd, "zip", overrides, func(ctx context.Context, app *App) error {
				stats, err := app.RunZip(ctx)
				if err != nil {
					return err
				}
				app.Logger.InfowCtx(ctx, "Zip finished",
					"emitted", stats.Base.Emitted+stats.Rover.Emitted,
					"last_gps_time", stats.LastGpsTime.String(),
				)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.String("base", "", "Base station log; omit to read a combined log")
	flags.Float64("base-rate", constants.DefaultBaseRate, "Base observation rate in Hz kept in the output (0 keeps every message)")
	flags.Float64("base-rate-limit-ms", 0, "Minimum time-of-week separation between base messages, overrides --base-rate")
	flags.String("output", "", "Write to a file instead of stdout; bare --output writes <stem>_zip<ext>, --output=path writes path")
	flags.Lookup("output").NoOptDefVal = constants.OutputAuto
	flags.String("output-mode", "", "Output sink: console, file or kafka")
	flags.String("filter", "", "CEL expression a message must satisfy to be forwarded")
	flags.StringSlice("kafka-brokers", nil, "Kafka bootstrap brokers")
	flags.String("kafka-topic", "", "Kafka topic for zipped records")
	flags.Float64("kafka-rps", 0, "Maximum records per second published to Kafka (0 is unlimited)")

	return cmd
}

// filterExamples renders the stock --filter expressions for zip --help.
func filterExamples() string {
	names := make([]string, 0, len(cel.FilterExpressionExamples))
	for name := range cel.FilterExpressionExamples {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  # %s\n  %s zip rover.json --base base.json --filter '%s'",
			name, constants.AppName, cel.FilterExpressionExamples[name]))
	}
	return strings.Join(lines, "\n\n")
}

func splitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <combined-log>",
		Short: "Split a combined log into base and rover halves",
		Long:  "Split a combined log by sender: sender 0 goes to <stem>_base<ext>, every other sender to <stem>_rover<ext>.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{"input.rover": args[0]}
			return run(cmd, "split", overrides, func(ctx context.Context, app *App) error {
				_, err := app.RunSplit(ctx, args[0])
				return err
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, version)
		},
	}
}

// run loads configuration, builds the logger and the App, and drives fn
// under a signal-aware context.
func run(cmd *cobra.Command, command string, overrides map[string]interface{}, fn func(ctx context.Context, app *App) error) (err error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv(constants.EnvPrefix + "_CONFIG_FILE")
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		Overrides:  overrides,
	})
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		if !errors.IsValidation(err) {
			err = errors.ErrValidation.WithCause(err)
		}
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = logging.WithRunID(ctx, uuid.NewString())
	ctx = logging.WithCommand(ctx, command)
	ctx = logging.WithInput(ctx, cfg.Input.Rover)

	defer func() {
		if r := recover(); r != nil {
			err = errors.RecoverPanic(r)
			log.ErrorwCtx(ctx, "Panic recovered", "error", err)
		}
	}()

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
		return err
	}

	runErr := fn(ctx, app)
	if runErr != nil {
		log.ErrorwCtx(ctx, "Run failed", "error", runErr)
	}

	if err := app.Shutdown(ctx); err != nil {
		log.ErrorwCtx(ctx, "Shutdown failed", "error", err)
		if runErr == nil {
			return err
		}
	}

	return runErr
}
