package commands

import (
	"bvvassist-backend/internal/app"
	"bvvassist-backend/internal/components/chrono"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/config"
	"bvvassist-backend/internal/district"
	libtelemetry "bvvassist-backend/lib/telemetry"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	maxRetries int
	retryDelay float64
	dumpHttp   string

	application *app.App
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Overrides log_level from bvvassist.json5 (debug, info, warn, error).")
	flags.IntVar(&maxRetries, "retries", 0, "Overrides the attempts per page when collecting persons.")
	flags.Float64Var(&retryDelay, "retry-delay", 0, "Overrides the seconds to wait between two attempts.")
	flags.StringVar(&dumpHttp, "dump-http", "", "Writes every upstream response into a new http-* directory under this one.")
}

var rootCmd = &cobra.Command{
	Use:   "bvv-cli",
	Short: "bvv-cli shows the council data of the Berlin district assemblies (BVV).",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("retries") {
			cfg.Retry.MaxRetries = maxRetries
		}
		if cmd.Flags().Changed("retry-delay") {
			cfg.Retry.DelaySeconds = retryDelay
		}
		if dumpHttp != "" {
			cfg.DumpHttpDir = dumpHttp
		}

		telemetry.InitSlog(os.Stderr, cfg.LogLevel)
		err = libtelemetry.Setup(cmd.Context(), cfg.OtlpSetup("bvv-cli"))
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err.Error())
		}
		application = app.New(
			telemetry.SlogAPI{},
			cfg,
			prometheus.NewRegistry(),
			chrono.NewStandardTime(),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.Shutdown(context.Background())
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSnapshot loads the district named by the first positional argument.
func loadSnapshot(cmd *cobra.Command, args []string) (district.Snapshot, error) {
	return application.Load(cmd.Context(), args[0])
}
