package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"customer-segmentation/internal/cleaner"
	"customer-segmentation/internal/cluster"
	"customer-segmentation/internal/config"
	"customer-segmentation/internal/customer"
	"customer-segmentation/internal/database"
	"customer-segmentation/internal/features"
	"customer-segmentation/internal/loader"
	"customer-segmentation/internal/report"
	"customer-segmentation/internal/tier"
)

// Options carries the collaborators of a run. Sink is required; Store is
// used only when non-nil and must already be connected.
type Options struct {
	Sink   report.Sink
	Store  database.Driver
	Logger *zap.Logger
	RunID  string
}

type Result struct {
	RunID      string
	InputRows  int
	CleanRows  int
	Duplicates int
	Incomplete int
	Inertia    float64
	Tiers      []tier.Summary
	Exported   int64

	Table  string
	Charts []string

	TotalTime    time.Duration
	AverageStage time.Duration
	P95Stage     time.Duration
	MaxStage     time.Duration
}

// Run executes load, clean, features, cluster, label, persist and
// visualize in order. The first failing stage aborts the run.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("report sink is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With(zap.String("run_id", runID))

	reference, err := cfg.ReferenceDate()
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, Table: cfg.Output.Table, Charts: cfg.ChartPaths()}
	totalStartTime := time.Now()

	// Max stage latency of 1 hour in microseconds, significant figures of 3
	histogram := hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)
	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := fn()
		latency := time.Since(start)
		histogram.RecordValue(latency.Microseconds())
		if err != nil {
			logger.Error("Stage failed", zap.String("stage", name), zap.Duration("latency", latency), zap.Error(err))
			return fmt.Errorf("%s: %w", name, err)
		}
		logger.Info("Stage complete", zap.String("stage", name), zap.Duration("latency", latency))
		return nil
	}

	var table *customer.Table
	var model *cluster.Model

	err = stage("load", func() error {
		table, err = loader.Load(cfg.Input)
		if err != nil {
			return err
		}
		result.InputRows = table.Len()
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("clean", func() error {
		var stats cleaner.Stats
		table, stats = cleaner.Clean(table)
		result.CleanRows = stats.OutputRows
		result.Duplicates = stats.Duplicates
		result.Incomplete = stats.Incomplete
		logger.Debug("Cleaned table",
			zap.Int("input_rows", stats.InputRows),
			zap.Int("duplicates", stats.Duplicates),
			zap.Int("incomplete", stats.Incomplete),
			zap.Int("output_rows", stats.OutputRows))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("features", func() error {
		table = features.Build(table, reference)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("cluster", func() error {
		km := cluster.KMeans{
			K:             cfg.Segmentation.Clusters,
			Seed:          cfg.Segmentation.Seed,
			Restarts:      cfg.Segmentation.Restarts,
			MaxIterations: cfg.Segmentation.MaxIterations,
			Tolerance:     cfg.Segmentation.Tolerance,
			Logger:        logger,
		}
		table, model, err = cluster.Segment(table, km)
		if err != nil {
			return err
		}
		result.Inertia = model.Inertia
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("label", func() error {
		table, result.Tiers, err = tier.Label(table)
		if err != nil {
			return err
		}
		for _, s := range result.Tiers {
			logger.Info("Tier assigned",
				zap.String("tier", string(s.Tier)),
				zap.Int("segment", s.Segment),
				zap.Int("customers", s.Customers),
				zap.Float64("mean_monetary", s.MeanMonetary))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("persist", func() error {
		if err := report.WriteCSV(cfg.Output.Table, table); err != nil {
			return err
		}
		if cfg.Output.Workbook != "" {
			if err := report.WriteWorkbook(cfg.Output.Workbook, table, result.Tiers); err != nil {
				return err
			}
		}
		if opts.Store != nil {
			if cfg.Export.Reset {
				if err := opts.Store.Reset(ctx); err != nil {
					return fmt.Errorf("reset store: %w", err)
				}
			}
			if err := opts.Store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
			n, err := opts.Store.SaveSegments(ctx, runID, table)
			if err != nil {
				return fmt.Errorf("save segments: %w", err)
			}
			result.Exported = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("visualize", func() error {
		charts := report.BuildCharts(table, report.Paths{
			TierDistribution:  result.Charts[0],
			SpendDistribution: result.Charts[1],
			RecencyVsMonetary: result.Charts[2],
		})
		return report.RenderAll(ctx, opts.Sink, charts)
	})
	if err != nil {
		return nil, err
	}

	result.TotalTime = time.Since(totalStartTime)
	result.AverageStage = time.Duration(histogram.Mean()) * time.Microsecond
	result.P95Stage = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
	result.MaxStage = time.Duration(histogram.Max()) * time.Microsecond

	return result, nil
}
