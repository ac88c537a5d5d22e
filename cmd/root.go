package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iveel36/spacetime-sim-2020/app"
	"github.com/iveel36/spacetime-sim-2020/config"
	"github.com/iveel36/spacetime-sim-2020/core/monitoring"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
	infmon "github.com/iveel36/spacetime-sim-2020/infra/monitoring"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath string
	envFile string

	// populated by setup for the running command
	cfg      *config.Config
	cleanups []func()
)

var rootCmd = &cobra.Command{
	Use:               "spacetime",
	Short:             "Traffic demand generation and simulation trace extraction",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer teardown()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	closeLog, err := logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	cleanups = append(cleanups, func() { _ = closeLog() })

	reporter, err := infmon.NewSentryReporter(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	restore := monitoring.SetReporter(reporter)
	flush := time.Duration(cfg.Sentry.FlushSeconds) * time.Second
	cleanups = append(cleanups, func() {
		monitoring.Flush(flush)
		restore()
	})
	return nil
}

func teardown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// withService builds the pipeline service for a command and closes it,
// flushing metrics, once fn returns.
func withService(cmd *cobra.Command, fn func(context.Context, *app.Service) error) error {
	return monitoring.Guard(cmd.CommandPath(), func() (err error) {
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := svc.Close(); cerr != nil {
				logger.New("cli").Errorf("flush metrics: %v", cerr)
			}
		}()
		return fn(cmd.Context(), svc)
	})
}
