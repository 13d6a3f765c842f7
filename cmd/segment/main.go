package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"customer-segmentation/internal/config"
	"customer-segmentation/internal/database"
	"customer-segmentation/internal/report"
	"customer-segmentation/internal/runner"
	"customer-segmentation/internal/synth"
)

var (
	configPath string
	verbose    bool

	genRows       int
	genSeed       int64
	genOut        string
	genDuplicates int
	genMissing    int
	genReference  string
)

var rootCmd = &cobra.Command{
	Use:           "segment",
	Short:         "RFM customer segmentation with KMeans",
	Long:          "Loads customer records, derives Recency/Frequency/Monetary features, clusters them into three groups and labels the groups High, Medium and Low Value.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSegmentation(cmd.Context(), cmd.OutOrStdout(), cmd.Flags().Changed("config"))
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic customer table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := time.Parse(config.DateLayout, genReference)
		if err != nil {
			return fmt.Errorf("invalid --reference-date: %w", err)
		}
		table := synth.Generate(synth.Options{
			Rows:          genRows,
			Seed:          genSeed,
			ReferenceDate: ref,
			Duplicates:    genDuplicates,
			Missing:       genMissing,
		})
		if err := synth.WriteCSV(genOut, table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d customers to %s\n", table.Len(), genOut)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	defaults := config.DefaultConfig()
	generateCmd.Flags().IntVar(&genRows, "rows", 1000, "number of distinct customers")
	generateCmd.Flags().Int64Var(&genSeed, "seed", defaults.Segmentation.Seed, "random seed")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", defaults.Input, "output CSV path")
	generateCmd.Flags().IntVar(&genDuplicates, "duplicates", 0, "extra rows repeating an existing CustomerID")
	generateCmd.Flags().IntVar(&genMissing, "missing", 0, "extra rows with TotalSpend left empty")
	generateCmd.Flags().StringVar(&genReference, "reference-date", defaults.Segmentation.ReferenceDate, "date recency is measured against")

	rootCmd.AddCommand(generateCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// loadConfig falls back to the built-in defaults when the default config
// file is absent; an explicitly requested file must exist.
func loadConfig(explicit bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return config.DefaultConfig(), nil
	}
	return nil, fmt.Errorf("failed to load config: %w", err)
}

func newLogger(cfg config.Logging) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging.level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func runSegmentation(ctx context.Context, out io.Writer, explicitConfig bool) error {
	cfg, err := loadConfig(explicitConfig)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	opts := runner.Options{
		Sink:   report.NewPNGSink(),
		Logger: logger,
	}

	if cfg.Export.Driver != "" {
		driver, err := database.Open(cfg.Export.Driver)
		if err != nil {
			return err
		}
		if err := driver.Connect(cfg.Export.DSN); err != nil {
			return fmt.Errorf("failed to connect to %s: %w", cfg.Export.Driver, err)
		}
		defer driver.Close()
		opts.Store = driver
	}

	logger.Info("Starting segmentation", zap.String("input", cfg.Input))
	result, err := runner.Run(ctx, cfg, opts)
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}
	logger.Info("Segmentation finished",
		zap.String("run_id", result.RunID),
		zap.Int("customers", result.CleanRows),
		zap.Float64("inertia", result.Inertia),
		zap.Int64("exported", result.Exported),
		zap.Duration("total_time", result.TotalTime),
		zap.Duration("p95_stage", result.P95Stage))

	fmt.Fprintf(out, "Segmentation complete. Output saved to %s.\n", result.Table)
	fmt.Fprintf(out, "Visualizations saved: %s\n", strings.Join(result.Charts, ", "))
	return nil
}
